// Package backendtest provides an in-memory implementation of the exercises backend REST API.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/period"

	"github.com/gorilla/mux"
)

type failure struct {
	status  int
	message string
}

// Server is a fake exercises backend. Aggregates are computed from the stored
// exercises on every request, completions are appended on every complete call.
type Server struct {
	srv *httptest.Server

	now       func() time.Time
	loc       *time.Location
	weekStart time.Weekday
	envelope  bool
	token     string

	mu        sync.Mutex
	exercises []*exercises.Exercise
	nextID    int
	calls     map[string]int
	failures  map[string][]failure
	hooks     map[string]func(r *http.Request)
}

type Option func(s *Server)

func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.now = clock
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		s.loc = loc
	}
}

func WithWeekStart(weekStart time.Weekday) Option {
	return func(s *Server) {
		s.weekStart = weekStart
	}
}

// WithEnvelope wraps every response into {success, data, message}.
func WithEnvelope() Option {
	return func(s *Server) {
		s.envelope = true
	}
}

// WithToken makes the server reject requests without the given bearer token.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		now:       time.Now,
		loc:       time.UTC,
		weekStart: time.Monday,
		exercises: make([]*exercises.Exercise, 0),
		calls:     make(map[string]int),
		failures:  make(map[string][]failure),
		hooks:     make(map[string]func(r *http.Request)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(s.router())
	return s
}

func (s *Server) URL() string {
	return s.srv.URL
}

func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.intercept)

	r.HandleFunc("/exercises", s.handleList).Methods("GET")
	r.HandleFunc("/exercises", s.handleCreate).Methods("POST")
	r.HandleFunc("/exercises/active", s.handleActive).Methods("GET")
	r.HandleFunc("/exercises/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/exercises/daily-summary", s.handleDailySummary).Methods("GET")
	r.HandleFunc("/exercises/{id}", s.handleGet).Methods("GET")
	r.HandleFunc("/exercises/{id}", s.handleUpdate).Methods("PUT")
	r.HandleFunc("/exercises/{id}", s.handleDelete).Methods("DELETE")
	r.HandleFunc("/exercises/{id}/history", s.handleHistory).Methods("GET")
	r.HandleFunc("/exercises/{id}/complete", s.handleComplete).Methods("POST")
	r.HandleFunc("/exercises/{id}/toggle", s.handleToggle).Methods("PATCH")

	return r
}

func routeKey(method, route string) string {
	return method + " " + route
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		key := routeKey(r.Method, route)

		s.mu.Lock()
		s.calls[key]++
		hook := s.hooks[key]
		var fail *failure
		if queued := s.failures[key]; len(queued) > 0 {
			fail = &queued[0]
			s.failures[key] = queued[1:]
		}
		s.mu.Unlock()

		if hook != nil {
			hook(r)
		}

		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if fail != nil {
			s.writeError(w, fail.status, fail.message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Seed stores the exercises as they are, assigning ids to those without one.
func (s *Server) Seed(list ...exercises.Exercise) []exercises.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := make([]exercises.Exercise, 0, len(list))
	for _, ex := range list {
		ex := ex.Clone()
		if ex.ID == "" {
			ex.ID = s.newID()
		}
		if ex.CreatedAt.IsZero() {
			ex.CreatedAt = s.now()
			ex.UpdatedAt = ex.CreatedAt
		}
		ex.CompletedCount = len(ex.CompletionHistory)
		s.exercises = append(s.exercises, &ex)
		seeded = append(seeded, ex.Clone())
	}
	return seeded
}

// FailNext makes the next request of method+route (a mux path template, e.g.
// "/exercises/{id}/complete") fail with the given status.
func (s *Server) FailNext(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, route)
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// OnRequest runs hook before the request of method+route is handled. Used to hold responses back.
func (s *Server) OnRequest(method, route string, hook func(r *http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[routeKey(method, route)] = hook
}

func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, route)]
}

// Exercise returns a copy of the stored exercise.
func (s *Server) Exercise(id string) (exercises.Exercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ex := s.find(id); ex != nil {
		return ex.Clone(), true
	}
	return exercises.Exercise{}, false
}

func (s *Server) newID() string {
	s.nextID++
	return fmt.Sprintf("ex-%d", s.nextID)
}

func (s *Server) find(id string) *exercises.Exercise {
	for _, ex := range s.exercises {
		if ex.ID == id {
			return ex
		}
	}
	return nil
}

func (s *Server) today() time.Time {
	return exercises.Day(s.now(), s.loc)
}

// withTransient fills in the per-day fields the real backend computes for today.
func (s *Server) withTransient(ex *exercises.Exercise) exercises.Exercise {
	c := ex.Clone()
	today := s.today()
	todays := exercises.CompletionsBetween(c, today, today, s.loc)
	c.TodayCompletions = len(todays)
	c.CompletedDuration = exercises.TotalDuration(todays)
	c.IsCompletedToday = len(todays) > 0
	return c
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	list := make([]exercises.Exercise, 0, len(s.exercises))
	for _, ex := range s.exercises {
		if active := q.Get("isActive"); active != "" {
			want, err := strconv.ParseBool(active)
			if err == nil && ex.IsActive != want {
				continue
			}
		}
		list = append(list, s.withTransient(ex))
	}
	s.mu.Unlock()

	desc := strings.EqualFold(q.Get("sortOrder"), "desc")
	switch q.Get("sortBy") {
	case "name":
		sort.SliceStable(list, func(i, j int) bool {
			if desc {
				return list[i].Name > list[j].Name
			}
			return list[i].Name < list[j].Name
		})
	case "createdAt":
		sort.SliceStable(list, func(i, j int) bool {
			if desc {
				return list[i].CreatedAt.After(list[j].CreatedAt)
			}
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		from := (page - 1) * limit
		if from > len(list) {
			from = len(list)
		}
		to := from + limit
		if to > len(list) {
			to = len(list)
		}
		list = list[from:to]
	}

	s.writeData(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var data exercises.CreateExerciseData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := data.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	now := s.now()
	ex := &exercises.Exercise{
		ID:                s.newID(),
		UserID:            "user-1",
		CompletionHistory: make([]exercises.CompletionRecord, 0),
		IsActive:          true,
		StartDate:         s.today(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	applyData(ex, data)
	s.exercises = append(s.exercises, ex)
	created := s.withTransient(ex)
	s.mu.Unlock()

	s.writeData(w, http.StatusCreated, created)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ex := s.find(mux.Vars(r)["id"])
	if ex == nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}
	c := s.withTransient(ex)
	s.mu.Unlock()

	s.writeData(w, http.StatusOK, c)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var data exercises.CreateExerciseData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := data.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	ex := s.find(mux.Vars(r)["id"])
	if ex == nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}
	applyData(ex, data)
	ex.UpdatedAt = s.now()
	c := s.withTransient(ex)
	s.mu.Unlock()

	s.writeData(w, http.StatusOK, c)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	idx := -1
	for i, ex := range s.exercises {
		if ex.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}
	s.exercises = append(s.exercises[:idx], s.exercises[idx+1:]...)
	s.mu.Unlock()

	if s.envelope {
		s.writeData(w, http.StatusOK, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var data exercises.CompleteExerciseData
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := data.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	ex := s.find(mux.Vars(r)["id"])
	if ex == nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}

	duration := ex.Duration
	if data.Duration != nil {
		duration = *data.Duration
	}
	now := s.now()
	ex.CompletionHistory = append(ex.CompletionHistory, exercises.CompletionRecord{
		CompletedAt: now,
		Duration:    duration,
		Notes:       data.Notes,
	})
	ex.CompletedCount++
	ex.UpdatedAt = now
	c := s.withTransient(ex)
	s.mu.Unlock()

	s.writeData(w, http.StatusOK, c)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ex := s.find(mux.Vars(r)["id"])
	if ex == nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}
	ex.IsActive = !ex.IsActive
	ex.UpdatedAt = s.now()
	c := s.withTransient(ex)
	s.mu.Unlock()

	s.writeData(w, http.StatusOK, c)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	ex := s.find(mux.Vars(r)["id"])
	if ex == nil {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, "exercise not found")
		return
	}
	c := ex.Clone()
	s.mu.Unlock()

	from := time.Time{}
	to := s.today().AddDate(100, 0, 0)
	if v := q.Get("startDate"); v != "" {
		d, err := time.ParseInLocation(exercises.DateLayout, v, s.loc)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		from = d
	}
	if v := q.Get("endDate"); v != "" {
		d, err := time.ParseInLocation(exercises.DateLayout, v, s.loc)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		to = d
	}

	history := exercises.CompletionsBetween(c, from, to, s.loc)
	if history == nil {
		history = make([]exercises.CompletionRecord, 0)
	}
	s.writeData(w, http.StatusOK, history)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	p := exercises.AggregationPeriod(r.URL.Query().Get("period"))
	if p == "" {
		p = exercises.AggregationDaily
	}
	if !p.IsValid() {
		s.writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	start, end := period.Window(p, s.now(), s.weekStart, s.loc)
	aggregate := exercises.ActivePeriodAggregate{
		Period:      p,
		PeriodLabel: backendLabel(p),
		StartDate:   start,
		EndDate:     end,
		Exercises:   make([]exercises.ExerciseSummary, 0),
	}

	s.mu.Lock()
	for _, ex := range s.exercises {
		if !ex.IsActive {
			continue
		}

		due := false
		completions, completedDuration := 0, 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if exercises.IsDue(*ex, d, s.loc) {
				due = true
			}
			for _, c := range ex.CompletionHistory {
				if exercises.DayKey(c.CompletedAt, s.loc) == d.Format(exercises.DateLayout) {
					completions++
					completedDuration += c.Duration
				}
			}
		}
		if !due {
			continue
		}

		aggregate.Exercises = append(aggregate.Exercises, exercises.ExerciseSummary{
			ID:                ex.ID,
			Name:              ex.Name,
			TargetDuration:    ex.Duration,
			CompletedDuration: completedDuration,
			Completions:       completions,
			IsCompleted:       completions > 0,
		})
		aggregate.TotalExercises++
		aggregate.TotalDuration += completedDuration
		if completions > 0 {
			aggregate.CompletedExercises++
		}
	}
	s.mu.Unlock()

	s.writeData(w, http.StatusOK, aggregate)
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	date := s.today()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(exercises.DateLayout, v, s.loc)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		date = d
	}

	summary := exercises.DailySummary{
		Date:      date,
		Exercises: make([]exercises.ExerciseSummary, 0),
	}

	s.mu.Lock()
	for _, ex := range s.exercises {
		if !ex.IsActive || !exercises.IsDue(*ex, date, s.loc) {
			continue
		}
		todays := exercises.CompletionsBetween(*ex, date, date, s.loc)
		row := exercises.ExerciseSummary{
			ID:                ex.ID,
			Name:              ex.Name,
			TargetDuration:    ex.Duration,
			CompletedDuration: exercises.TotalDuration(todays),
			Completions:       len(todays),
			IsCompleted:       len(todays) > 0,
		}
		summary.Exercises = append(summary.Exercises, row)
		summary.TotalExercises++
		summary.TotalDuration += row.CompletedDuration
		if row.IsCompleted {
			summary.CompletedExercises++
		}
	}
	s.mu.Unlock()

	s.writeData(w, http.StatusOK, summary)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := exercises.ExerciseStats{}

	s.mu.Lock()
	for _, ex := range s.exercises {
		stats.TotalExercises++
		if ex.IsActive {
			stats.ActiveExercises++
		}
		stats.TotalCompletions += len(ex.CompletionHistory)
		stats.TotalDuration += exercises.TotalDuration(ex.CompletionHistory)
		if longest := exercises.LongestStreak(*ex, s.loc); longest > stats.LongestStreak {
			stats.LongestStreak = longest
		}
	}
	s.mu.Unlock()

	s.writeData(w, http.StatusOK, stats)
}

func applyData(ex *exercises.Exercise, data exercises.CreateExerciseData) {
	ex.Name = strings.TrimSpace(data.Name)
	ex.Description = data.Description
	ex.Duration = data.Duration
	ex.Period = data.Period
	ex.CustomPeriod = data.CustomPeriod
	if data.IsActive != nil {
		ex.IsActive = *data.IsActive
	}
	if data.StartDate != nil {
		ex.StartDate = *data.StartDate
	}
	ex.EndDate = data.EndDate
}

func backendLabel(p exercises.AggregationPeriod) string {
	switch p {
	case exercises.AggregationWeekly:
		return "This week"
	case exercises.AggregationMonthly:
		return "This month"
	default:
		return "Today"
	}
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	var payload any = data
	if s.envelope {
		payload = map[string]any{
			"success": true,
			"data":    data,
		}
	}
	writeJSON(w, status, payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package tracker

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/backend"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"
	"github.com/2beens/exercisetracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 64 << 10

type ListResponse struct {
	Exercises []exercises.Exercise `json:"exercises"`
	Total     int                  `json:"total"`
}

type DeleteExerciseResponse struct {
	DeletedID string `json:"deletedId"`
}

type HistoryResponse struct {
	ExerciseID string                       `json:"exerciseId"`
	History    []exercises.CompletionRecord `json:"history"`
}

type SelectedDateRequest struct {
	Date string `json:"date"`
}

// Handler serves the tracker HTTP API on top of a Service.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes mounts the tracker routes. Static segments are registered before {id} routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/exercises", h.HandleList).Methods("GET").Name("list-exercises")
	r.HandleFunc("/exercises", h.HandleCreate).Methods("POST").Name("create-exercise")
	r.HandleFunc("/exercises/active", h.HandleActive).Methods("GET").Name("active-exercises")
	r.HandleFunc("/exercises/stats", h.HandleStats).Methods("GET").Name("exercise-stats")
	r.HandleFunc("/exercises/daily-summary", h.HandleDailySummary).Methods("GET").Name("daily-summary")
	r.HandleFunc("/exercises/{id}", h.HandleGet).Methods("GET").Name("get-exercise")
	r.HandleFunc("/exercises/{id}", h.HandleUpdate).Methods("PUT").Name("update-exercise")
	r.HandleFunc("/exercises/{id}", h.HandleDelete).Methods("DELETE").Name("delete-exercise")
	r.HandleFunc("/exercises/{id}/complete", h.HandleComplete).Methods("POST").Name("complete-exercise")
	r.HandleFunc("/exercises/{id}/toggle", h.HandleToggle).Methods("PATCH").Name("toggle-exercise")
	r.HandleFunc("/exercises/{id}/history", h.HandleHistory).Methods("GET").Name("exercise-history")
	r.HandleFunc("/exercises/{id}/streak", h.HandleStreak).Methods("GET").Name("exercise-streak")
	r.HandleFunc("/calendar/{year:[0-9]{4}}/{month:[0-9]{1,2}}", h.HandleCalendar).Methods("GET").Name("month-calendar")
	r.HandleFunc("/state", h.HandleState).Methods("GET").Name("state")
	r.HandleFunc("/state/selected-date", h.HandleSelectedDate).Methods("PUT").Name("selected-date")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	params, ok := listParams(w, r)
	if !ok {
		return
	}

	list, err := h.service.Store().FetchExercises(ctx, params)
	if err != nil {
		writeError(w, "list exercises", err)
		return
	}

	pkg.WriteJSON(w, ListResponse{Exercises: list, Total: len(list)}, http.StatusOK)
}

func listParams(w http.ResponseWriter, r *http.Request) (backend.ListParams, bool) {
	q := r.URL.Query()
	params := backend.ListParams{
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	var err error
	if page := q.Get("page"); page != "" {
		if params.Page, err = strconv.Atoi(page); err != nil || params.Page < 1 {
			badRequest(w, "page", "page must be a positive number")
			return params, false
		}
	}
	if limit := q.Get("limit"); limit != "" {
		if params.Limit, err = strconv.Atoi(limit); err != nil || params.Limit < 1 {
			badRequest(w, "limit", "limit must be a positive number")
			return params, false
		}
	}
	if isActive := q.Get("isActive"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			badRequest(w, "isActive", "isActive must be true or false")
			return params, false
		}
		params.IsActive = &active
	}
	if params.SortOrder != "" && params.SortOrder != "asc" && params.SortOrder != "desc" {
		badRequest(w, "sortOrder", "sortOrder must be asc or desc")
		return params, false
	}

	return params, true
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.create")
	defer span.End()

	var data exercises.CreateExerciseData
	if !decodeBody(w, r, &data, false) {
		return
	}

	created, err := h.service.Store().CreateExercise(ctx, data)
	if err != nil {
		writeError(w, "create exercise", err)
		return
	}

	log.Debugf("exercise created: %s [%s]", created.ID, created.Name)
	pkg.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	exercise, err := h.service.Store().FetchExercise(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "get exercise", err)
		return
	}

	pkg.WriteJSON(w, exercise, http.StatusOK)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	var data exercises.CreateExerciseData
	if !decodeBody(w, r, &data, false) {
		return
	}

	updated, err := h.service.Store().UpdateExercise(ctx, mux.Vars(r)["id"], data)
	if err != nil {
		writeError(w, "update exercise", err)
		return
	}

	pkg.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if err := h.service.Store().DeleteExercise(ctx, id); err != nil {
		writeError(w, "delete exercise", err)
		return
	}

	pkg.WriteJSON(w, DeleteExerciseResponse{DeletedID: id}, http.StatusOK)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.complete")
	defer span.End()

	var data exercises.CompleteExerciseData
	if !decodeBody(w, r, &data, true) {
		return
	}

	completed, err := h.service.Store().CompleteExercise(ctx, mux.Vars(r)["id"], data)
	if err != nil {
		writeError(w, "complete exercise", err)
		return
	}

	pkg.WriteJSON(w, completed, http.StatusOK)
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.toggle")
	defer span.End()

	toggled, err := h.service.Store().ToggleExercise(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "toggle exercise", err)
		return
	}

	pkg.WriteJSON(w, toggled, http.StatusOK)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.history")
	defer span.End()

	from, ok := h.optionalDate(w, r, "startDate")
	if !ok {
		return
	}
	to, ok := h.optionalDate(w, r, "endDate")
	if !ok {
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		badRequest(w, "endDate", "endDate must not be before startDate")
		return
	}

	id := mux.Vars(r)["id"]
	history, err := h.service.Store().FetchHistory(ctx, id, from, to)
	if err != nil {
		writeError(w, "exercise history", err)
		return
	}

	pkg.WriteJSON(w, HistoryResponse{ExerciseID: id, History: history}, http.StatusOK)
}

func (h *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.streak")
	defer span.End()

	streak, err := h.service.Streak(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "exercise streak", err)
		return
	}

	pkg.WriteJSON(w, streak, http.StatusOK)
}

func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.active")
	defer span.End()

	q := r.URL.Query()
	p := exercises.AggregationPeriod(q.Get("period"))
	if p == "" {
		p = exercises.AggregationDaily
	}
	date, ok := h.optionalDate(w, r, "date")
	if !ok {
		return
	}
	var at time.Time
	if date != nil {
		at = *date
	}

	aggregate, err := h.service.PeriodSummary(ctx, p, q.Get("source"), at)
	if err != nil {
		writeError(w, "active exercises", err)
		return
	}

	pkg.WriteJSON(w, aggregate, http.StatusOK)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.stats")
	defer span.End()

	stats, err := h.service.Store().FetchStats(ctx)
	if err != nil {
		writeError(w, "exercise stats", err)
		return
	}

	pkg.WriteJSON(w, stats, http.StatusOK)
}

func (h *Handler) HandleDailySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.dailySummary")
	defer span.End()

	date, ok := h.optionalDate(w, r, "date")
	if !ok {
		return
	}
	var at time.Time
	if date != nil {
		at = *date
	}

	summary, err := h.service.Store().FetchDailySummary(ctx, at)
	if err != nil {
		writeError(w, "daily summary", err)
		return
	}

	pkg.WriteJSON(w, summary, http.StatusOK)
}

func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.month")
	defer span.End()

	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		badRequest(w, "year", "year must be a number")
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil {
		badRequest(w, "month", "month must be a number")
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	grid, err := h.service.MonthCalendar(ctx, year, time.Month(month), refresh)
	if err != nil {
		writeError(w, "month calendar", err)
		return
	}

	pkg.WriteJSON(w, grid, http.StatusOK)
}

func (h *Handler) HandleState(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, h.service.Store().Snapshot(), http.StatusOK)
}

func (h *Handler) HandleSelectedDate(w http.ResponseWriter, r *http.Request) {
	var req SelectedDateRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	date, err := time.ParseInLocation(exercises.DateLayout, req.Date, h.service.Store().Location())
	if err != nil {
		badRequest(w, "date", "date must be formatted as YYYY-MM-DD")
		return
	}

	h.service.Store().SetSelectedDate(date)
	pkg.WriteJSON(w, h.service.Store().Snapshot(), http.StatusOK)
}

func (h *Handler) optionalDate(w http.ResponseWriter, r *http.Request, param string) (*time.Time, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, true
	}
	date, err := time.ParseInLocation(exercises.DateLayout, raw, h.service.Store().Location())
	if err != nil {
		badRequest(w, param, param+" must be formatted as YYYY-MM-DD")
		return nil, false
	}
	return &date, true
}

// decodeBody reads a JSON body into out. allowEmpty accepts a missing body.
func decodeBody(w http.ResponseWriter, r *http.Request, out any, allowEmpty bool) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != pkg.ContentType.JSON {
			pkg.WriteResponse(w, pkg.ContentType.Text, "invalid content type", http.StatusUnsupportedMediaType)
			return false
		}
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		log.Tracef("decode request body [%s]: %s", r.URL.Path, err)
		badRequest(w, "body", "invalid JSON body")
		return false
	}
	return true
}

package exercises

import (
	"errors"
	"time"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// Period is the recurrence rule of an exercise.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodCustom  Period = "custom"
)

func (p Period) String() string {
	return string(p)
}

func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodCustom:
		return true
	default:
		return false
	}
}

// AggregationPeriod is the window asked for by the period summary views.
// Custom is not an aggregation window.
type AggregationPeriod string

const (
	AggregationDaily   AggregationPeriod = "daily"
	AggregationWeekly  AggregationPeriod = "weekly"
	AggregationMonthly AggregationPeriod = "monthly"
)

func (p AggregationPeriod) String() string {
	return string(p)
}

func (p AggregationPeriod) IsValid() bool {
	switch p {
	case AggregationDaily, AggregationWeekly, AggregationMonthly:
		return true
	default:
		return false
	}
}

type Exercise struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Duration     int        `json:"duration"` // target duration, minutes
	Period       Period     `json:"period"`
	CustomPeriod *int       `json:"customPeriod,omitempty"`
	IsActive     bool       `json:"isActive"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`

	CompletedCount    int                `json:"completedCount"`
	CompletionHistory []CompletionRecord `json:"completionHistory"`

	// computed by the backend for the requested period only, never authoritative
	TodayCompletions  int  `json:"todayCompletions"`
	CompletedDuration int  `json:"completedDuration"`
	IsCompletedToday  bool `json:"isCompletedToday"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy, so callers can't mutate store owned slices and pointers.
func (e Exercise) Clone() Exercise {
	c := e
	if e.CustomPeriod != nil {
		cp := *e.CustomPeriod
		c.CustomPeriod = &cp
	}
	if e.EndDate != nil {
		ed := *e.EndDate
		c.EndDate = &ed
	}
	if e.CompletionHistory != nil {
		c.CompletionHistory = make([]CompletionRecord, len(e.CompletionHistory))
		copy(c.CompletionHistory, e.CompletionHistory)
	}
	return c
}

// Summary builds the per-exercise row of a period aggregate
// out of the transient fields the backend filled in.
func (e Exercise) Summary() ExerciseSummary {
	return ExerciseSummary{
		ID:                e.ID,
		Name:              e.Name,
		TargetDuration:    e.Duration,
		CompletedDuration: e.CompletedDuration,
		Completions:       e.TodayCompletions,
		IsCompleted:       e.IsCompletedToday,
	}
}

type CompletionRecord struct {
	CompletedAt time.Time `json:"completedAt"`
	Duration    int       `json:"duration"`
	Notes       string    `json:"notes,omitempty"`
}

// CreateExerciseData is the body of both create and update requests.
type CreateExerciseData struct {
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Duration     int        `json:"duration"`
	Period       Period     `json:"period"`
	CustomPeriod *int       `json:"customPeriod,omitempty"`
	IsActive     *bool      `json:"isActive,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

type CompleteExerciseData struct {
	Duration *int   `json:"duration,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type ExerciseSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TargetDuration    int    `json:"targetDuration"`
	CompletedDuration int    `json:"completedDuration"`
	Completions       int    `json:"completions"`
	IsCompleted       bool   `json:"isCompleted"`
}

// ActivePeriodAggregate is the summary of exercises due and completed within a period window.
type ActivePeriodAggregate struct {
	Period             AggregationPeriod `json:"period"`
	PeriodLabel        string            `json:"periodLabel"`
	StartDate          time.Time         `json:"startDate"`
	EndDate            time.Time         `json:"endDate"`
	TotalExercises     int               `json:"totalExercises"`
	CompletedExercises int               `json:"completedExercises"`
	TotalDuration      int               `json:"totalDuration"`
	Exercises          []ExerciseSummary `json:"exercises"`
}

func (a *ActivePeriodAggregate) Clone() *ActivePeriodAggregate {
	if a == nil {
		return nil
	}
	c := *a
	c.Exercises = make([]ExerciseSummary, len(a.Exercises))
	copy(c.Exercises, a.Exercises)
	return &c
}

// IndexOf returns the position of the exercise row with the given id, or -1.
func (a *ActivePeriodAggregate) IndexOf(id string) int {
	for i := range a.Exercises {
		if a.Exercises[i].ID == id {
			return i
		}
	}
	return -1
}

type DailySummary struct {
	Date               time.Time         `json:"date"`
	TotalExercises     int               `json:"totalExercises"`
	CompletedExercises int               `json:"completedExercises"`
	TotalDuration      int               `json:"totalDuration"`
	Exercises          []ExerciseSummary `json:"exercises"`
}

func (d *DailySummary) Clone() *DailySummary {
	if d == nil {
		return nil
	}
	c := *d
	c.Exercises = make([]ExerciseSummary, len(d.Exercises))
	copy(c.Exercises, d.Exercises)
	return &c
}

// ExerciseStats are the lifetime aggregates of the owner's exercises.
type ExerciseStats struct {
	TotalExercises   int `json:"totalExercises"`
	ActiveExercises  int `json:"activeExercises"`
	TotalCompletions int `json:"totalCompletions"`
	TotalDuration    int `json:"totalDuration"`
	LongestStreak    int `json:"longestStreak"`
}

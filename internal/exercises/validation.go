package exercises

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	NameMinLen          = 2
	NameMaxLen          = 100
	DescriptionMaxLen   = 500
	NotesMaxLen         = 200
	DurationMin         = 1
	DurationMax         = 300
	CustomPeriodMinDays = 1
	CustomPeriodMaxDays = 365
)

// ValidationErrors maps a field name to its error message.
// It never reaches the network: it is returned before any backend call.
type ValidationErrors map[string]string

func (ve ValidationErrors) Error() string {
	fields := make([]string, 0, len(ve))
	for f := range ve {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f, ve[f]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (ve ValidationErrors) orNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// Validate checks the exercise data the same way the backend does.
func (d CreateExerciseData) Validate() error {
	errs := ValidationErrors{}

	nameLen := utf8.RuneCountInString(strings.TrimSpace(d.Name))
	switch {
	case nameLen == 0:
		errs["name"] = "name is required"
	case nameLen < NameMinLen || nameLen > NameMaxLen:
		errs["name"] = fmt.Sprintf("name must be between %d and %d characters", NameMinLen, NameMaxLen)
	}

	if utf8.RuneCountInString(d.Description) > DescriptionMaxLen {
		errs["description"] = fmt.Sprintf("description must be at most %d characters", DescriptionMaxLen)
	}

	if d.Duration < DurationMin || d.Duration > DurationMax {
		errs["duration"] = fmt.Sprintf("duration must be between %d and %d minutes", DurationMin, DurationMax)
	}

	switch {
	case !d.Period.IsValid():
		errs["period"] = "period must be one of daily, weekly, monthly, custom"
	case d.Period == PeriodCustom:
		if d.CustomPeriod == nil {
			errs["customPeriod"] = "custom period is required for custom exercises"
		} else if *d.CustomPeriod < CustomPeriodMinDays || *d.CustomPeriod > CustomPeriodMaxDays {
			errs["customPeriod"] = fmt.Sprintf("custom period must be between %d and %d days", CustomPeriodMinDays, CustomPeriodMaxDays)
		}
	case d.CustomPeriod != nil:
		errs["customPeriod"] = "custom period is only allowed for custom exercises"
	}

	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		errs["endDate"] = "end date must not be before start date"
	}

	return errs.orNil()
}

func (d CompleteExerciseData) Validate() error {
	errs := ValidationErrors{}
	if d.Duration != nil && (*d.Duration < DurationMin || *d.Duration > DurationMax) {
		errs["duration"] = fmt.Sprintf("duration must be between %d and %d minutes", DurationMin, DurationMax)
	}
	if utf8.RuneCountInString(d.Notes) > NotesMaxLen {
		errs["notes"] = fmt.Sprintf("notes must be at most %d characters", NotesMaxLen)
	}
	return errs.orNil()
}

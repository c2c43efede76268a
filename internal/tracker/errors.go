package tracker

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/backend"
	"github.com/2beens/exercisetracker/internal/exercises/store"
	"github.com/2beens/exercisetracker/pkg"

	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors exercises.ValidationErrors `json:"errors"`
}

// StatusFor maps store and backend errors to the status returned to tracker clients.
func StatusFor(err error) int {
	var ve exercises.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrActionInFlight), errors.Is(err, store.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, exercises.ErrExerciseNotFound), backend.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)

	var ve exercises.ValidationErrors
	if errors.As(err, &ve) {
		pkg.WriteJSON(w, ValidationErrorResponse{Errors: ve}, status)
		return
	}

	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %s", op, err)
	} else {
		log.Debugf("%s: %s", op, err)
	}
	pkg.WriteJSON(w, ErrorResponse{Error: clientMessage(err)}, status)
}

func clientMessage(err error) string {
	var backendErr *backend.Error
	switch {
	case errors.Is(err, store.ErrActionInFlight):
		return store.ErrActionInFlight.Error()
	case errors.Is(err, store.ErrStaleResponse):
		return store.ErrStaleResponse.Error()
	case errors.Is(err, exercises.ErrExerciseNotFound):
		return exercises.ErrExerciseNotFound.Error()
	case errors.As(err, &backendErr) && backendErr.Message != "":
		return backendErr.Message
	default:
		return err.Error()
	}
}

func badRequest(w http.ResponseWriter, field, message string) {
	pkg.WriteJSON(w, ValidationErrorResponse{Errors: exercises.ValidationErrors{field: message}}, http.StatusBadRequest)
}

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

// Error codes carried in ErrorBody.Code.
const (
	CodeValidation        = "validation"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeIllegalTransition = "illegal_transition"
	CodeActionNotAllowed  = "action_not_allowed"
	CodeNotMutable        = "not_mutable"
	CodeInternal          = "internal"
)

// ErrorBody is the JSON error envelope of the scheduling API. Conflict and
// status fields are set only for their codes.
type ErrorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`

	Kind       conflict.Kind   `json:"kind,omitempty"`
	ConflictID int64           `json:"conflict_id,omitempty"`
	Resource   *model.Resource `json:"resource,omitempty"`
	Start      *time.Time      `json:"start,omitempty"`
	End        *time.Time      `json:"end,omitempty"`

	AppointmentID int64                   `json:"appointment_id,omitempty"`
	From          model.AppointmentStatus `json:"from,omitempty"`
	To            model.AppointmentStatus `json:"to,omitempty"`
	Status        model.AppointmentStatus `json:"status,omitempty"`
	Action        status.Action           `json:"action,omitempty"`
}

// EncodeError maps err to an HTTP status and error body.
func EncodeError(err error) (int, ErrorBody) {
	body := ErrorBody{Error: err.Error()}

	var c *conflict.Conflict
	var ite *status.IllegalTransitionError
	var ana *status.ActionNotAllowedError
	var nme *status.NotMutableError
	switch {
	case errors.As(err, &c):
		body.Code = CodeConflict
		body.Kind = c.Kind
		body.ConflictID = c.ConflictID
		r := c.Resource
		start, end := c.Start, c.End
		body.Resource, body.Start, body.End = &r, &start, &end
		return http.StatusConflict, body
	case errors.As(err, &ite):
		body.Code = CodeIllegalTransition
		body.From, body.To = ite.From, ite.To
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &ana):
		body.Code = CodeActionNotAllowed
		body.From, body.To, body.Action = ana.From, ana.To, ana.Action
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &nme):
		body.Code = CodeNotMutable
		body.AppointmentID, body.Status = nme.AppointmentID, nme.Status
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, ErrNotFound):
		body.Code = CodeNotFound
		return http.StatusNotFound, body
	case errors.Is(err, model.ErrInvalidDuration), errors.Is(err, ErrValidation):
		body.Code = CodeValidation
		return http.StatusBadRequest, body
	}
	body.Code = CodeInternal
	body.Error = "internal error"
	return http.StatusInternalServerError, body
}

// decodeError turns a non-2xx response back into the error it encodes.
func decodeError(op string, code int, body ErrorBody) error {
	switch {
	case code >= 500:
		return &TransportError{Op: op, Status: code}
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case code == http.StatusConflict && body.Kind != "":
		c := &conflict.Conflict{Kind: body.Kind, ConflictID: body.ConflictID}
		if body.Resource != nil {
			c.Resource = *body.Resource
		}
		if body.Start != nil {
			c.Start = *body.Start
		}
		if body.End != nil {
			c.End = *body.End
		}
		return c
	case code == http.StatusUnprocessableEntity:
		switch body.Code {
		case CodeIllegalTransition:
			return &status.IllegalTransitionError{From: body.From, To: body.To}
		case CodeActionNotAllowed:
			return &status.ActionNotAllowedError{Action: body.Action, From: body.From, To: body.To}
		case CodeNotMutable:
			return &status.NotMutableError{AppointmentID: body.AppointmentID, Status: body.Status}
		}
	}

	detail := body.Error
	if detail == "" {
		detail = body.Detail
	}
	return &APIError{Op: op, Status: code, Detail: detail}
}

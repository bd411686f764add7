package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/waybill/internal/fault"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Details []string `json:"details,omitempty"`
}

// statusFor maps a fault kind to an HTTP status.
func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.NotFound:
		return http.StatusNotFound
	case fault.InvalidArgument:
		return http.StatusBadRequest
	case fault.Conflict, fault.ImmutableInState, fault.CannotRollback, fault.CannotDelete:
		return http.StatusConflict
	case fault.PreconditionFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service failure as JSON with the mapped status.
func writeError(c *gin.Context, err error) {
	var fe *fault.Error
	if errors.As(err, &fe) {
		c.JSON(statusFor(fe.Kind), errorBody{
			Error:   fe.Message,
			Kind:    string(fe.Kind),
			IDs:     fe.IDs,
			Details: fe.Details,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
}

// badRequest renders a malformed-body failure.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody{
		Error: "request body does not decode: " + err.Error(),
		Kind:  string(fault.InvalidArgument),
	})
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/model"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotValid),
		errors.Is(err, model.ErrUnknownCommand),
		errors.Is(err, model.ErrMustJoinOperation),
		errors.Is(err, model.ErrTransformFailure),
		errors.Is(err, model.ErrFilePrep):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrOperationComplete), errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// errorBody renders an error, issuance errors echo the command and params being issued.
func errorBody(err error) gin.H {
	body := gin.H{"status": "error", "error": err.Error()}

	var ierr *issue.Error
	if errors.As(err, &ierr) {
		body["cmd"] = ierr.Cmd
		body["params"] = ierr.Params
	}

	var terr *model.TransformError
	if errors.As(err, &terr) {
		body["step"] = terr.Step
	}

	return body
}

func (h *handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithCtxValues(c.Request.Context()).Errorf("Request failed: %s", err)
	}
	c.JSON(status, errorBody(err))
}

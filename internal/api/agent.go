package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slok/opsdesk/internal/app/nexttask"
	"github.com/slok/opsdesk/internal/app/respond"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/view"
)

func (h *handler) getNextTask(c *gin.Context) {
	callbackID, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}

	if !h.limiter.allow(callbackID) {
		c.JSON(http.StatusTooManyRequests, gin.H{})
		return
	}

	res, err := h.nextTask.Run(c.Request.Context(), nexttask.Request{CallbackID: callbackID})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{})
			return
		}
		h.logger.Errorf("Could not get next task for callback %d: %s", callbackID, err)
		c.JSON(http.StatusInternalServerError, gin.H{})
		return
	}

	contentType := gin.MIMEJSON
	if res.Encrypted {
		contentType = gin.MIMEPlain
	}
	c.Data(http.StatusOK, contentType, res.Body)
}

type responseBody struct {
	Response string `json:"response" validate:"required"`
}

func (h *handler) postResponse(c *gin.Context) {
	taskID, err := pathID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var body responseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, fmt.Errorf("invalid body: %w: %w", model.ErrNotValid, err))
		return
	}
	if err := h.validate.Struct(body); err != nil {
		h.writeError(c, fmt.Errorf("%w: %w", model.ErrNotValid, err))
		return
	}

	r, err := h.responder.Run(c.Request.Context(), respond.Request{TaskID: taskID, Response: body.Response})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view.Merge(view.Response(*r), view.Object{"status": "success"}))
}

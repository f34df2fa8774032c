package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/app/tasks"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/view"
)

// multipartJSONField is the form field that carries the issue body on multipart requests,
// the rest of the parts are attachments for the params key in their field name.
const multipartJSONField = "json"

// attachmentFieldPrefix prefixes the params key in attachment field names, "file<key>"
// wins over a bare "<key>" field.
const attachmentFieldPrefix = "file"

const maxUploadMemory = 32 << 20

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", c.Param("id"), model.ErrNotValid)
	}
	return id, nil
}

type issueBody struct {
	Command         string          `json:"command" validate:"required"`
	Params          string          `json:"params"`
	TransformStatus map[string]bool `json:"transform_status"`
	TestCommand     bool            `json:"test_command"`
}

func (b issueBody) toggles() (map[int]bool, error) {
	toggles := make(map[int]bool, len(b.TransformStatus))
	for k, v := range b.TransformStatus {
		order, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid transform order %q: %w", k, model.ErrNotValid)
		}
		toggles[order] = v
	}
	return toggles, nil
}

func (h *handler) postTask(c *gin.Context) {
	callbackID, err := pathID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	body, attachments, err := h.readIssueBody(c)
	if err != nil {
		h.writeError(c, &issue.Error{Cmd: body.Command, Params: body.Params, Err: err})
		return
	}
	toggles, err := body.toggles()
	if err != nil {
		h.writeError(c, &issue.Error{Cmd: body.Command, Params: body.Params, Err: err})
		return
	}

	res, err := h.issuer.Run(c.Request.Context(), issue.Request{
		Identity:    identity(c),
		CallbackID:  callbackID,
		Command:     body.Command,
		Params:      body.Params,
		Toggles:     toggles,
		Attachments: attachments,
		Test:        body.TestCommand,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	if res.Task == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":      "success",
			"cmd":         res.Command,
			"params":      res.OriginalParams,
			"test_output": res.Trace.Map(),
		})
		return
	}

	c.JSON(http.StatusOK, view.Merge(view.Task(*res.Task), view.Object{
		"status":      "success",
		"task_status": string(res.Task.Status),
	}))
}

// readIssueBody reads a JSON body or a multipart form with the JSON in its own field.
func (h *handler) readIssueBody(c *gin.Context) (issueBody, map[string]issue.Attachment, error) {
	var body issueBody
	var attachments map[string]issue.Attachment

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		form, err := c.MultipartForm()
		if err != nil {
			return body, nil, fmt.Errorf("invalid multipart form: %w: %w", model.ErrNotValid, err)
		}
		raw := form.Value[multipartJSONField]
		if len(raw) != 1 {
			return body, nil, fmt.Errorf("multipart form needs one %q field: %w", multipartJSONField, model.ErrNotValid)
		}
		if err := json.Unmarshal([]byte(raw[0]), &body); err != nil {
			return body, nil, fmt.Errorf("invalid body: %w: %w", model.ErrNotValid, err)
		}

		attachments = map[string]issue.Attachment{}
		prefixed := map[string]bool{}
		for field, files := range form.File {
			if len(files) != 1 {
				return body, nil, fmt.Errorf("only one file allowed for %q: %w", field, model.ErrNotValid)
			}
			f, err := files[0].Open()
			if err != nil {
				return body, nil, fmt.Errorf("could not open attachment %q: %w: %w", field, model.ErrFilePrep, err)
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return body, nil, fmt.Errorf("could not read attachment %q: %w: %w", field, model.ErrFilePrep, err)
			}

			att := issue.Attachment{Filename: files[0].Filename, Data: data}
			if !prefixed[field] {
				attachments[field] = att
			}
			if key, ok := strings.CutPrefix(field, attachmentFieldPrefix); ok && key != "" {
				attachments[key] = att
				prefixed[key] = true
			}
		}
	} else if err := c.ShouldBindJSON(&body); err != nil {
		return body, nil, fmt.Errorf("invalid body: %w: %w", model.ErrNotValid, err)
	}

	if err := h.validate.Struct(body); err != nil {
		return body, nil, fmt.Errorf("%w: %w", model.ErrNotValid, err)
	}

	return body, attachments, nil
}

type clearBody struct {
	Task string `json:"task"`
}

func (h *handler) postClear(c *gin.Context) {
	callbackID, err := pathID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var body clearBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(c, fmt.Errorf("invalid body: %w: %w", model.ErrNotValid, err))
		return
	}

	cleared, err := h.clearer.Run(c.Request.Context(), clear.Request{
		Identity:   identity(c),
		CallbackID: callbackID,
		Selector:   body.Task,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "tasks": taskViews(cleared)})
}

func taskViews(ts []model.Task) []view.Object {
	objs := make([]view.Object, 0, len(ts))
	for _, t := range ts {
		objs = append(objs, view.Task(t))
	}
	return objs
}

func (h *handler) listCallbackTasks(c *gin.Context) {
	callbackID, err := pathID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.listTasksWith(c, tasks.ListRequest{Identity: identity(c), CallbackID: callbackID})
}

func (h *handler) listTasks(c *gin.Context) {
	h.listTasksWith(c, tasks.ListRequest{
		Identity:      identity(c),
		NotCompleted:  c.Query("not_completed") == "true",
		Search:        c.Query("search"),
		Commented:     c.Query("commented") == "true",
		CommentSearch: c.Query("comment_search"),
	})
}

func (h *handler) listTasksWith(c *gin.Context, req tasks.ListRequest) {
	ts, err := h.tasks.List(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "tasks": taskViews(ts)})
}

func (h *handler) getTask(c *gin.Context) {
	taskID, err := pathID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	res, err := h.tasks.Get(c.Request.Context(), tasks.GetRequest{Identity: identity(c), TaskID: taskID})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resps := make([]view.Object, 0, len(res.Responses))
	for _, r := range res.Responses {
		resps = append(resps, view.Response(r))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "task": view.Task(res.Task), "responses": resps})
}

type commentBody struct {
	Comment string `json:"comment" validate:"required"`
}

func (h *handler) postComment(c *gin.Context) {
	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, fmt.Errorf("invalid body: %w: %w", model.ErrNotValid, err))
		return
	}
	if err := h.validate.Struct(body); err != nil {
		h.writeError(c, fmt.Errorf("%w: %w", model.ErrNotValid, err))
		return
	}

	h.comment(c, body.Comment)
}

func (h *handler) deleteComment(c *gin.Context) {
	h.comment(c, "")
}

func (h *handler) comment(c *gin.Context, comment string) {
	taskID, err := pathID(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	t, err := h.tasks.Comment(c.Request.Context(), tasks.CommentRequest{Identity: identity(c), TaskID: taskID, Comment: comment})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view.Merge(view.Task(*t), view.Object{"status": "success", "task_status": string(t.Status)}))
}

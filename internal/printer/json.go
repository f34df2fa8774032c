package printer

import (
	"encoding/json"
	"io"

	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/transform"
	"github.com/slok/opsdesk/internal/view"
)

// JSONPrinter prints tasking information in JSON format, using the same
// representation the API serves.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	objs := make([]view.Object, 0, len(tasks))
	for _, t := range tasks {
		objs = append(objs, view.Task(t))
	}
	return j.encode(objs)
}

// PrintTask prints a task with its responses in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task, responses []model.Response) error {
	resps := make([]view.Object, 0, len(responses))
	for _, r := range responses {
		resps = append(resps, view.Response(r))
	}
	return j.encode(map[string]any{"task": view.Task(task), "responses": resps})
}

// PrintTestOutput prints a test issuance in JSON format.
func (j *JSONPrinter) PrintTestOutput(cmd, params string, trace transform.Trace) error {
	return j.encode(map[string]any{"cmd": cmd, "params": params, "test_output": trace.Map()})
}

type transformsOutput struct {
	Command []string `json:"command"`
	Load    []string `json:"load"`
}

// PrintTransforms prints the registered transform names in JSON format.
func (j *JSONPrinter) PrintTransforms(command, load []string) error {
	out := transformsOutput{Command: command, Load: load}
	if out.Command == nil {
		out.Command = []string{}
	}
	if out.Load == nil {
		out.Load = []string{}
	}
	return j.encode(out)
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

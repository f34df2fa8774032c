package printer

import (
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/transform"
)

// Printer knows how to print tasking information in different formats.
type Printer interface {
	PrintTasks(tasks []model.Task) error
	PrintTask(task model.Task, responses []model.Response) error
	// PrintTestOutput prints the outputs of a test issuance.
	PrintTestOutput(cmd, params string, trace transform.Trace) error
	PrintTransforms(command, load []string) error
	PrintMessage(msg string) error
}

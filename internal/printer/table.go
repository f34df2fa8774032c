package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/transform"
)

const maxParamsWidth = 60

// TablePrinter prints tasking information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

func taskCommand(t model.Task) string {
	if t.CommandID == nil {
		return "-"
	}
	return t.Command
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tCALLBACK\tCOMMAND\tPARAMS\tSTATUS\tOPERATOR\tISSUED")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.CallbackID,
			taskCommand(task),
			truncate(task.Params, maxParamsWidth),
			task.Status,
			task.OperatorName,
			TimeAgo(task.Timestamp),
		)
	}

	return nil
}

// PrintTask prints a task with its responses.
func (t *TablePrinter) PrintTask(task model.Task, responses []model.Response) error {
	fmt.Fprintf(t.writer, "ID:         %d\n", task.ID)
	fmt.Fprintf(t.writer, "Callback:   %d\n", task.CallbackID)
	fmt.Fprintf(t.writer, "Command:    %s\n", taskCommand(task))
	fmt.Fprintf(t.writer, "Params:     %s\n", task.Params)
	if task.OriginalParams != task.Params {
		fmt.Fprintf(t.writer, "Original:   %s\n", task.OriginalParams)
	}
	fmt.Fprintf(t.writer, "Status:     %s\n", task.Status)
	fmt.Fprintf(t.writer, "Operator:   %s\n", task.OperatorName)
	fmt.Fprintf(t.writer, "Issued:     %s\n", FormatTimestamp(task.Timestamp))
	if task.Comment != "" {
		fmt.Fprintf(t.writer, "Comment:    %s (%s)\n", task.Comment, task.CommentOperator)
	}

	for _, r := range responses {
		fmt.Fprintf(t.writer, "\n[%s]\n%s\n", FormatTimestamp(r.Timestamp), r.Response)
	}

	return nil
}

// PrintTestOutput prints every step of a test issuance.
func (t *TablePrinter) PrintTestOutput(cmd, params string, trace transform.Trace) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Command:\t%s\n", cmd)
	fmt.Fprintf(tw, "Params:\t%s\n\n", params)
	fmt.Fprintln(tw, "STEP\tOUTPUT")
	for _, s := range trace {
		fmt.Fprintf(tw, "%s\t%v\n", s.Label(), s.Value)
	}

	return nil
}

// PrintTransforms prints the registered transform names.
func (t *TablePrinter) PrintTransforms(command, load []string) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tCHAIN")
	for _, n := range command {
		fmt.Fprintf(tw, "%s\tcommand\n", n)
	}
	for _, n := range load {
		fmt.Fprintf(tw, "%s\tload\n", n)
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

package issue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/app/derive"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/metrics"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
	"github.com/slok/opsdesk/internal/transform"
)

// Built-in pseudo commands, available when the payload type doesn't define them.
const (
	BuiltinTasks = "tasks"
	BuiltinClear = "clear"
)

// ChainRunner runs transform chains.
type ChainRunner interface {
	RunCommandChain(ctx context.Context, req transform.CommandChainRequest) (*transform.CommandChainResult, error)
	RunLoadChain(ctx context.Context, req transform.LoadChainRequest) (*transform.LoadChainResult, error)
}

// Deriver records the techniques and artifacts of a created task.
type Deriver interface {
	Run(ctx context.Context, req derive.Request) (*derive.Response, error)
}

// Clearer clears submitted tasks.
type Clearer interface {
	Run(ctx context.Context, req clear.Request) ([]model.Task, error)
}

// FileReleaser discards file metas honoring other references to the same file.
type FileReleaser interface {
	ReleaseFileMeta(ctx context.Context, f model.FileMeta) error
}

// ServiceConfig is the configuration of the issue service.
type ServiceConfig struct {
	Repository storage.Repository
	Transforms ChainRunner
	Deriver    Deriver
	Clearer    Clearer
	Files      FileReleaser
	// DataDir is where staged attachments are written.
	DataDir         string
	MetricsRecorder metrics.Recorder
	TimeNow         func() time.Time
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Transforms == nil {
		return fmt.Errorf("transforms is required")
	}
	if c.Deriver == nil {
		return fmt.Errorf("deriver is required")
	}
	if c.Clearer == nil {
		return fmt.Errorf("clearer is required")
	}
	if c.Files == nil {
		return fmt.Errorf("files is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Issue"})
	return nil
}

// Service issues tasks to callbacks.
type Service struct {
	repo       storage.Repository
	transforms ChainRunner
	deriver    Deriver
	clearer    Clearer
	files      FileReleaser
	dataDir    string
	metrics    metrics.Recorder
	timeNow    func() time.Time
	logger     log.Logger
}

// NewService returns a new issue service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:       cfg.Repository,
		transforms: cfg.Transforms,
		deriver:    cfg.Deriver,
		clearer:    cfg.Clearer,
		files:      cfg.Files,
		dataDir:    cfg.DataDir,
		metrics:    cfg.MetricsRecorder,
		timeNow:    cfg.TimeNow,
		logger:     cfg.Logger,
	}, nil
}

// Attachment is a file uploaded with the issue request.
type Attachment struct {
	Filename string
	Data     []byte
}

type Request struct {
	Identity   model.Identity
	CallbackID int64
	Command    string
	Params     string
	// Toggles turns configured command transforms on or off for this issuance, keyed
	// by transform order. Missing orders are on.
	Toggles map[int]bool
	// Attachments are bound to the top level params keys whose value is FileUploadMarker.
	Attachments map[string]Attachment
	// Test runs everything without creating the task and discards staged files.
	Test bool
}

type Result struct {
	// Task is the created task, nil on test issuances.
	Task           *model.Task
	Command        string
	Params         string
	OriginalParams string
	// Trace is the output of every command transform step.
	Trace transform.Trace
}

// Error is an issuance failure. It carries the command and params being issued so the
// operator can fix and retry them.
type Error struct {
	Cmd    string
	Params string
	Err    error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// issuance is the state of one issuance while it's being processed.
type issuance struct {
	req       Request
	operator  *model.Operator
	operation *model.Operation
	callback  *model.Callback
	command   *model.Command
	params    string
	// staged are file metas created for this issuance, discarded if it doesn't end in a task.
	staged []stagedFile
	// loaded are the commands a load task will register in the callback.
	loaded []model.Command
}

type stagedFile struct {
	meta model.FileMeta
	// ownsFile is false for files that only get referenced, like payload type command
	// sources, they are never removed from disk.
	ownsFile bool
}

// Run issues a task.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"operator": req.Identity.Username, "callback-id": req.CallbackID, "cmd": req.Command})
	logger := s.logger.WithCtxValues(ctx)

	is := &issuance{req: req, params: req.Params}
	res, err := s.run(ctx, is)
	if err != nil {
		// A created task keeps its files.
		var derr *model.DerivationError
		if !errors.As(err, &derr) {
			s.discardStaged(ctx, is)
		}

		var terr *model.TransformError
		if errors.As(err, &terr) {
			s.metrics.TransformFailed(terr.Chain)
		}
		logger.Warningf("Could not issue task: %s", err)
		return nil, &Error{Cmd: req.Command, Params: is.params, Err: err}
	}

	s.metrics.TaskIssued(res.Command, req.Test)
	return res, nil
}

func (s *Service) run(ctx context.Context, is *issuance) (*Result, error) {
	if err := s.resolve(ctx, is); err != nil {
		return nil, err
	}

	cmd, err := s.repo.GetCommandByName(ctx, is.req.Command, is.callback.PayloadTypeID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("could not get command: %w", err)
		}
		switch is.req.Command {
		case BuiltinTasks:
			return s.runTasks(ctx, is)
		case BuiltinClear:
			return s.runClear(ctx, is)
		}
		return nil, fmt.Errorf("%q is not a command of payload type %q: %w", is.req.Command, is.callback.PayloadTypeName, model.ErrUnknownCommand)
	}
	is.command = cmd

	if len(is.req.Attachments) > 0 {
		if err := s.stageAttachments(ctx, is); err != nil {
			return nil, err
		}
	}

	if pre, ok := preprocessors[cmd.Cmd]; ok {
		if err := pre(ctx, s, is); err != nil {
			return nil, err
		}
	}

	original := is.params
	chain, err := s.transforms.RunCommandChain(ctx, transform.CommandChainRequest{
		CommandID:   cmd.ID,
		OperationID: is.operation.ID,
		Params:      is.params,
		Toggles:     is.req.Toggles,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Command:        cmd.Cmd,
		Params:         chain.Params,
		OriginalParams: original,
		Trace:          chain.Trace,
	}
	if is.req.Test {
		s.discardStaged(ctx, is)
		return res, nil
	}

	task := &model.Task{
		CommandID:      &cmd.ID,
		Params:         chain.Params,
		OriginalParams: original,
		Status:         model.TaskStatusSubmitted,
		CallbackID:     is.callback.ID,
		OperatorID:     is.operator.ID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not create task: %w", err)
	}

	// From here the task exists, failures don't undo it.
	for _, sf := range is.staged {
		f := sf.meta
		f.TaskID = &task.ID
		if err := s.repo.UpdateFileMeta(ctx, f); err != nil {
			return nil, &model.DerivationError{TaskID: task.ID, Err: fmt.Errorf("could not attach file %d: %w", f.ID, err)}
		}
	}
	is.staged = nil

	for _, c := range is.loaded {
		lc := model.LoadedCommand{CommandID: c.ID, CallbackID: is.callback.ID, OperatorID: is.operator.ID, Version: c.Version}
		if err := s.repo.UpsertLoadedCommand(ctx, &lc); err != nil {
			return nil, &model.DerivationError{TaskID: task.ID, Err: fmt.Errorf("could not register loaded command %q: %w", c.Cmd, err)}
		}
	}

	if _, err := s.deriver.Run(ctx, derive.Request{Task: *task}); err != nil {
		return nil, &model.DerivationError{TaskID: task.ID, Err: err}
	}

	created, err := s.repo.GetTask(ctx, task.ID)
	if err != nil {
		return nil, &model.DerivationError{TaskID: task.ID, Err: fmt.Errorf("could not get created task: %w", err)}
	}
	res.Task = created

	s.logger.WithCtxValues(ctx).Infof("Task %d issued", task.ID)
	return res, nil
}

// resolve loads the operator, operation and callback of the issuance.
func (s *Service) resolve(ctx context.Context, is *issuance) error {
	id := is.req.Identity
	if id.CurrentOperation == "" || id.CurrentOperationID == 0 {
		return model.ErrMustJoinOperation
	}

	op, err := s.repo.GetOperator(ctx, id.OperatorID)
	if err != nil {
		return fmt.Errorf("could not get operator: %w", err)
	}
	is.operator = op

	operation, err := s.repo.GetOperation(ctx, id.CurrentOperationID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("operation %q: %w", id.CurrentOperation, model.ErrMustJoinOperation)
		}
		return fmt.Errorf("could not get operation: %w", err)
	}
	if operation.Complete {
		return fmt.Errorf("operation %q: %w", operation.Name, model.ErrOperationComplete)
	}
	is.operation = operation

	cb, err := s.repo.GetCallback(ctx, is.req.CallbackID)
	if err != nil {
		return fmt.Errorf("could not get callback: %w", err)
	}
	if cb.OperationID != operation.ID {
		return fmt.Errorf("callback %d is not part of operation %q: %w", cb.ID, operation.Name, model.ErrPermissionDenied)
	}
	is.callback = cb

	return nil
}

func (s *Service) runTasks(ctx context.Context, is *issuance) (*Result, error) {
	is.params = BuiltinTasks
	res := &Result{Command: BuiltinTasks, Params: BuiltinTasks, OriginalParams: BuiltinTasks, Trace: transform.Trace{{Value: BuiltinTasks}}}
	if is.req.Test {
		return res, nil
	}

	pending, err := s.repo.ListTasks(ctx, model.TaskQuery{CallbackID: is.callback.ID, NotStatus: model.TaskStatusProcessed})
	if err != nil {
		return nil, fmt.Errorf("could not list pending tasks: %w", err)
	}
	lines := make([]string, 0, len(pending))
	for _, t := range pending {
		lines = append(lines, fmt.Sprintf("%d %s %s %s", t.ID, t.Command, t.Params, t.Status))
	}

	task, err := s.createSynthetic(ctx, is, BuiltinTasks, strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}
	res.Task = task
	return res, nil
}

func (s *Service) runClear(ctx context.Context, is *issuance) (*Result, error) {
	params := BuiltinClear + " " + is.req.Params
	is.params = params
	res := &Result{Command: BuiltinClear, Params: params, OriginalParams: params, Trace: transform.Trace{{Value: params}}}
	if is.req.Test {
		return res, nil
	}

	cleared, err := s.clearer.Run(ctx, clear.Request{Identity: is.req.Identity, CallbackID: is.callback.ID, Selector: is.req.Params})
	if err != nil {
		return nil, err
	}
	lines := []string{"Removed the following:"}
	for _, t := range cleared {
		lines = append(lines, fmt.Sprintf("%d %s %s", t.ID, t.Command, t.Params))
	}

	task, err := s.createSynthetic(ctx, is, params, strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}
	res.Task = task
	return res, nil
}

// createSynthetic creates an already processed task without command and its response.
func (s *Service) createSynthetic(ctx context.Context, is *issuance, params, response string) (*model.Task, error) {
	task := &model.Task{
		Params:         params,
		OriginalParams: params,
		Status:         model.TaskStatusProcessed,
		CallbackID:     is.callback.ID,
		OperatorID:     is.operator.ID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not create task: %w", err)
	}
	resp := model.Response{TaskID: task.ID, Response: response}
	if err := s.repo.CreateResponse(ctx, &resp); err != nil {
		return nil, fmt.Errorf("could not create response: %w", err)
	}

	created, err := s.repo.GetTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get created task: %w", err)
	}
	return created, nil
}

// discardStaged releases the file metas created for an issuance that didn't create a task.
func (s *Service) discardStaged(ctx context.Context, is *issuance) {
	for _, sf := range is.staged {
		var err error
		if sf.ownsFile {
			err = s.files.ReleaseFileMeta(ctx, sf.meta)
		} else {
			err = s.repo.DeleteFileMeta(ctx, sf.meta.ID)
		}
		if err != nil {
			s.logger.WithCtxValues(ctx).Errorf("Could not discard staged file %d: %s", sf.meta.ID, err)
		}
	}
	is.staged = nil
}

package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/conventions"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
	"github.com/slok/opsdesk/internal/view"
)

// Stream describes a notification stream.
type Stream struct {
	Name  string
	Kinds []changefeed.Kind
	// AdminOnly streams see every operation, the rest only the session current operation.
	AdminOnly bool
	// Global streams are open to every operator and see every operation.
	Global bool
	// Interval is the idle time before a heartbeat.
	Interval time.Duration
	// ViewFilter streams only deliver rows of the callbacks the session is viewing.
	ViewFilter bool
	// Replay returns the rows sent when the stream opens, nil streams don't replay.
	Replay func(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error)
	// Resolve reads the row of a change. model.ErrNotFound and ErrSkip skip the change.
	Resolve func(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error)
}

// Stream names.
const (
	StreamTasks                   = "tasks"
	StreamTasksCurrentOperation   = "tasks/current_operation"
	StreamResponses               = "responses"
	StreamResponsesCurrentOp      = "responses/current_operation"
	StreamCallbacksCurrentOp      = "callbacks/current_operation"
	StreamUpdatedCallbacks        = "updatedcallbacks"
	StreamUpdatedCallbacksCurrent = "updatedcallbacks/current_operation"
	StreamPayloads                = "payloads"
	StreamPayloadsCurrentOp       = "payloads/current_operation"
	StreamC2Profiles              = "c2profiles"
	StreamPayloadTypeC2Profile    = "payloadtypec2profile"
	StreamOperators               = "operators"
	StreamUpdatedOperators        = "updatedoperators"
	StreamPayloadTypes            = "payloadtypes"
	StreamCommands                = "commands"
	StreamAllCommandInfo          = "all_command_info"
	StreamScreenshots             = "screenshots"
	StreamUpdatedScreenshots      = "updated_screenshots"
	StreamFilesCurrentOp          = "files/current_operation"
	StreamUpdatedFilesCurrentOp   = "updated_files/current_operation"
	StreamCredentialsCurrentOp    = "credentials/current_operation"
)

func kind(op changefeed.Op, table string) changefeed.Kind {
	return changefeed.Kind{Op: op, Table: table}
}

// Catalog returns every stream served by the engine keyed by name.
func Catalog() map[string]Stream {
	streams := []Stream{
		{
			Name:      StreamTasks,
			Kinds:     []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableTask)},
			AdminOnly: true,
			Interval:  time.Second,
			Replay:    replayTasks,
			Resolve:   resolveTask,
		},
		{
			Name: StreamTasksCurrentOperation,
			Kinds: []changefeed.Kind{
				kind(changefeed.OpInsert, changefeed.TableTask),
				kind(changefeed.OpUpdate, changefeed.TableTask),
			},
			Interval:   500 * time.Millisecond,
			ViewFilter: true,
			Resolve:    resolveTask,
		},
		{
			Name:      StreamResponses,
			Kinds:     []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableResponse)},
			AdminOnly: true,
			Interval:  time.Second,
			Replay:    replayResponses,
			Resolve:   resolveResponse,
		},
		{
			Name:       StreamResponsesCurrentOp,
			Kinds:      []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableResponse)},
			Interval:   500 * time.Millisecond,
			ViewFilter: true,
			Resolve:    resolveResponse,
		},
		{
			Name:     StreamCallbacksCurrentOp,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableCallback)},
			Interval: 500 * time.Millisecond,
			Replay:   replayCallbacks,
			Resolve:  resolveCallback,
		},
		{
			Name:     StreamUpdatedCallbacks,
			Kinds:    []changefeed.Kind{kind(changefeed.OpUpdate, changefeed.TableCallback)},
			Global:   true,
			Interval: 2 * time.Second,
			Resolve:  resolveCallback,
		},
		{
			Name:     StreamUpdatedCallbacksCurrent,
			Kinds:    []changefeed.Kind{kind(changefeed.OpUpdate, changefeed.TableCallback)},
			Interval: 500 * time.Millisecond,
			Resolve:  resolveCallback,
		},
		{
			Name:     StreamPayloads,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TablePayload)},
			Global:   true,
			Interval: 2 * time.Second,
			Replay:   replayPayloads,
			Resolve:  resolvePayload,
		},
		{
			Name:     StreamPayloadsCurrentOp,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TablePayload)},
			Interval: time.Second,
			Replay:   replayPayloads,
			Resolve:  resolvePayload,
		},
		{
			Name:     StreamC2Profiles,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableC2Profile)},
			Global:   true,
			Interval: 2 * time.Second,
			Replay:   replayC2Profiles,
			Resolve:  resolveC2Profile,
		},
		{
			Name:     StreamPayloadTypeC2Profile,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TablePayloadTypeC2Profile)},
			Global:   true,
			Interval: 2 * time.Second,
			Replay:   replayPayloadTypeC2Profiles,
			Resolve:  resolvePayloadTypeC2Profile,
		},
		{
			Name:     StreamOperators,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableOperator)},
			Global:   true,
			Interval: 2 * time.Second,
			Replay:   replayOperators,
			Resolve:  resolveOperator,
		},
		{
			Name:     StreamUpdatedOperators,
			Kinds:    []changefeed.Kind{kind(changefeed.OpUpdate, changefeed.TableOperator)},
			Global:   true,
			Interval: 2 * time.Second,
			Resolve:  resolveOperator,
		},
		{
			Name:     StreamPayloadTypes,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TablePayloadType)},
			Global:   true,
			Interval: 2 * time.Second,
			Replay:   replayPayloadTypes,
			Resolve:  resolvePayloadType,
		},
		{
			Name:     StreamCommands,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableCommand)},
			Global:   true,
			Interval: 2 * time.Second,
			Replay:   replayCommands,
			Resolve:  resolveCommand,
		},
		{
			Name: StreamAllCommandInfo,
			Kinds: []changefeed.Kind{
				kind(changefeed.OpInsert, changefeed.TableCommand),
				kind(changefeed.OpUpdate, changefeed.TableCommand),
				kind(changefeed.OpDelete, changefeed.TableCommand),
				kind(changefeed.OpInsert, changefeed.TableCommandParameter),
				kind(changefeed.OpDelete, changefeed.TableCommandParameter),
				kind(changefeed.OpInsert, changefeed.TableCommandTransform),
				kind(changefeed.OpUpdate, changefeed.TableCommandTransform),
				kind(changefeed.OpDelete, changefeed.TableCommandTransform),
			},
			Interval: 2 * time.Second,
			Resolve:  resolveCommandInfo,
		},
		{
			Name:     StreamScreenshots,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableFileMeta)},
			Interval: 2 * time.Second,
			Replay:   replayScreenshots,
			Resolve:  resolveScreenshot,
		},
		{
			Name:     StreamUpdatedScreenshots,
			Kinds:    []changefeed.Kind{kind(changefeed.OpUpdate, changefeed.TableFileMeta)},
			Interval: 2 * time.Second,
			Resolve:  resolveScreenshot,
		},
		{
			Name:     StreamFilesCurrentOp,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableFileMeta)},
			Interval: time.Second,
			Replay:   replayFiles,
			Resolve:  resolveFile,
		},
		{
			Name:     StreamUpdatedFilesCurrentOp,
			Kinds:    []changefeed.Kind{kind(changefeed.OpUpdate, changefeed.TableFileMeta)},
			Interval: time.Second,
			Resolve:  resolveFile,
		},
		{
			Name:     StreamCredentialsCurrentOp,
			Kinds:    []changefeed.Kind{kind(changefeed.OpInsert, changefeed.TableCredential)},
			Interval: 2 * time.Second,
			Replay:   replayCredentials,
			Resolve:  resolveCredential,
		},
	}

	m := make(map[string]Stream, len(streams))
	for _, s := range streams {
		m[s.Name] = s
	}
	return m
}

func taskItem(t model.Task) Item {
	return Item{Object: view.Task(t), OperationID: t.OperationID, CallbackID: t.CallbackID}
}

func replayTasks(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error) {
	q := model.TaskQuery{}
	if !scope.AllOperations {
		q.OperationID = scope.OperationID
	}
	ts, err := repo.ListTasks(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(ts))
	for _, t := range ts {
		items = append(items, taskItem(t))
	}
	return items, nil
}

func resolveTask(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	t, err := repo.GetTask(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return taskItem(*t), nil
}

func replayResponses(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error) {
	opID := scope.OperationID
	if scope.AllOperations {
		opID = 0
	}
	rs, err := repo.ListOperationResponses(ctx, opID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rs))
	for _, r := range rs {
		items = append(items, Item{Object: view.Response(r), OperationID: opID})
	}
	return items, nil
}

func resolveResponse(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	r, err := repo.GetResponse(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	t, err := repo.GetTask(ctx, r.TaskID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.Response(*r), OperationID: t.OperationID, CallbackID: t.CallbackID}, nil
}

func replayCallbacks(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error) {
	cbs, err := repo.ListCallbacks(ctx, scope.OperationID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(cbs))
	for _, cb := range cbs {
		items = append(items, Item{Object: view.Callback(cb), OperationID: cb.OperationID, CallbackID: cb.ID})
	}
	return items, nil
}

func resolveCallback(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	cb, err := repo.GetCallback(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.Callback(*cb), OperationID: cb.OperationID, CallbackID: cb.ID}, nil
}

func replayPayloads(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error) {
	opID := scope.OperationID
	if scope.AllOperations {
		opID = 0
	}
	ps, err := repo.ListPayloads(ctx, opID, scope.AllOperations)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(ps))
	for _, p := range ps {
		items = append(items, Item{Object: view.Payload(p), OperationID: p.OperationID})
	}
	return items, nil
}

func resolvePayload(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	p, err := repo.GetPayload(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.Payload(*p), OperationID: p.OperationID}, nil
}

// ManualUploadHost is the host of files operators uploaded without a task.
const ManualUploadHost = "MANUAL FILE UPLOAD"

func replayFiles(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error) {
	fs, err := repo.ListFileMeta(ctx, model.FileMetaQuery{OperationID: scope.OperationID})
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(fs))
	for _, f := range fs {
		if conventions.IsScreenshot(f.Path) {
			continue
		}
		it, err := fileItem(ctx, repo, f)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func resolveFile(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	f, err := repo.GetFileMeta(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	if f.Deleted || conventions.IsScreenshot(f.Path) {
		return Item{}, ErrSkip
	}
	return fileItem(ctx, repo, *f)
}

// fileItem renders a file with the host it belongs to. Downloads carry the params of
// the task that pulled them, uploads the params of the task that pushes them.
func fileItem(ctx context.Context, repo storage.Repository, f model.FileMeta) (Item, error) {
	obj := view.FileMeta(f)
	it := Item{OperationID: f.OperationID}

	op, err := repo.GetOperation(ctx, f.OperationID)
	if err != nil {
		return Item{}, err
	}

	if f.TaskID == nil {
		if !conventions.IsDownload(f.Path, op.Name) {
			upload := fmt.Sprintf(`{"remote_path": "opsdesk", "file_id": %d}`, f.ID)
			obj = view.Merge(obj, view.Object{"host": ManualUploadHost, "upload": upload, "task": "null"})
		}
		it.Object = obj
		return it, nil
	}

	t, err := repo.GetTask(ctx, *f.TaskID)
	if err != nil {
		return Item{}, err
	}
	cb, err := repo.GetCallback(ctx, t.CallbackID)
	if err != nil {
		return Item{}, err
	}
	key := "upload"
	if conventions.IsDownload(f.Path, op.Name) {
		key = "params"
	}
	it.Object = view.Merge(obj, view.Object{"host": cb.Host, key: t.Params})
	it.CallbackID = cb.ID
	return it, nil
}

func replayScreenshots(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error) {
	fs, err := repo.ListFileMeta(ctx, model.FileMetaQuery{OperationID: scope.OperationID, IncludeDeleted: true})
	if err != nil {
		return nil, err
	}
	items := []Item{}
	for _, f := range fs {
		it, err := screenshotItem(ctx, repo, f)
		if err != nil {
			if errors.Is(err, ErrSkip) || errors.Is(err, model.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func resolveScreenshot(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	f, err := repo.GetFileMeta(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return screenshotItem(ctx, repo, *f)
}

// screenshotItem renders a screen capture download with the callback and operator of
// the task that took it, 0 and "null" when no task did.
func screenshotItem(ctx context.Context, repo storage.Repository, f model.FileMeta) (Item, error) {
	if !conventions.IsScreenshot(f.Path) {
		return Item{}, ErrSkip
	}
	op, err := repo.GetOperation(ctx, f.OperationID)
	if err != nil {
		return Item{}, err
	}
	if !conventions.IsDownload(f.Path, op.Name) {
		return Item{}, ErrSkip
	}

	var callbackID int64
	operator := "null"
	if f.TaskID != nil {
		t, err := repo.GetTask(ctx, *f.TaskID)
		if err != nil {
			return Item{}, err
		}
		callbackID = t.CallbackID
		operator = t.OperatorName
	}
	obj := view.Merge(view.FileMeta(f), view.Object{"callback_id": callbackID, "operator": operator})
	return Item{Object: obj, OperationID: f.OperationID, CallbackID: callbackID}, nil
}

func replayCredentials(ctx context.Context, repo storage.Repository, scope Scope) ([]Item, error) {
	cs, err := repo.ListCredentials(ctx, scope.OperationID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(cs))
	for _, c := range cs {
		items = append(items, Item{Object: view.Credential(c), OperationID: c.OperationID})
	}
	return items, nil
}

func resolveCredential(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	cred, err := repo.GetCredential(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.Credential(*cred), OperationID: cred.OperationID}, nil
}

func replayOperators(ctx context.Context, repo storage.Repository, _ Scope) ([]Item, error) {
	ops, err := repo.ListOperators(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(ops))
	for _, o := range ops {
		items = append(items, Item{Object: view.Operator(o)})
	}
	return items, nil
}

func resolveOperator(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	o, err := repo.GetOperator(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.Operator(*o)}, nil
}

func replayPayloadTypes(ctx context.Context, repo storage.Repository, _ Scope) ([]Item, error) {
	pts, err := repo.ListPayloadTypes(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(pts))
	for _, p := range pts {
		items = append(items, Item{Object: view.PayloadType(p)})
	}
	return items, nil
}

func resolvePayloadType(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	p, err := repo.GetPayloadType(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.PayloadType(*p)}, nil
}

func replayC2Profiles(ctx context.Context, repo storage.Repository, _ Scope) ([]Item, error) {
	cs, err := repo.ListC2Profiles(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(cs))
	for _, c := range cs {
		items = append(items, Item{Object: view.C2Profile(c)})
	}
	return items, nil
}

func resolveC2Profile(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	p, err := repo.GetC2Profile(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.C2Profile(*p)}, nil
}

func replayPayloadTypeC2Profiles(ctx context.Context, repo storage.Repository, _ Scope) ([]Item, error) {
	ps, err := repo.ListPayloadTypeC2Profiles(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(ps))
	for _, p := range ps {
		items = append(items, Item{Object: view.PayloadTypeC2Profile(p)})
	}
	return items, nil
}

func resolvePayloadTypeC2Profile(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	p, err := repo.GetPayloadTypeC2Profile(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.PayloadTypeC2Profile(*p)}, nil
}

func replayCommands(ctx context.Context, repo storage.Repository, _ Scope) ([]Item, error) {
	cmds, err := repo.ListCommands(ctx, 0)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(cmds))
	for _, c := range cmds {
		items = append(items, Item{Object: view.Command(c)})
	}
	return items, nil
}

func resolveCommand(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	cmd, err := repo.GetCommand(ctx, c.ID)
	if err != nil {
		return Item{}, err
	}
	return Item{Object: view.Command(*cmd)}, nil
}

// resolveCommandInfo renders command, parameter and transform changes tagged with
// their channel. Deletes render the row snapshot carried by the change.
func resolveCommandInfo(ctx context.Context, repo storage.Repository, c changefeed.Change) (Item, error) {
	channel := view.Object{"channel": c.Kind.String()}

	switch c.Kind.Table {
	case changefeed.TableCommand:
		var cmd model.Command
		if c.Kind.Op == changefeed.OpDelete {
			old, ok := c.Old.(model.Command)
			if !ok {
				return Item{}, fmt.Errorf("unexpected deleted row %T", c.Old)
			}
			cmd = old
		} else {
			got, err := repo.GetCommand(ctx, c.ID)
			if err != nil {
				return Item{}, err
			}
			cmd = *got
		}
		return Item{Object: view.Merge(channel, view.Command(cmd))}, nil

	case changefeed.TableCommandParameter:
		var p model.CommandParameter
		if c.Kind.Op == changefeed.OpDelete {
			old, ok := c.Old.(model.CommandParameter)
			if !ok {
				return Item{}, fmt.Errorf("unexpected deleted row %T", c.Old)
			}
			p = old
		} else {
			got, err := repo.GetCommandParameter(ctx, c.ID)
			if err != nil {
				return Item{}, err
			}
			p = *got
		}
		return Item{Object: view.Merge(channel, view.CommandParameter(p))}, nil

	case changefeed.TableCommandTransform:
		var ct model.CommandTransform
		if c.Kind.Op == changefeed.OpDelete {
			old, ok := c.Old.(model.CommandTransform)
			if !ok {
				return Item{}, fmt.Errorf("unexpected deleted row %T", c.Old)
			}
			ct = old
		} else {
			got, err := repo.GetCommandTransform(ctx, c.ID)
			if err != nil {
				return Item{}, err
			}
			ct = *got
		}
		return Item{Object: view.Merge(channel, view.CommandTransform(ct)), OperationID: ct.OperationID}, nil
	}

	return Item{}, fmt.Errorf("unexpected table %q", c.Kind.Table)
}

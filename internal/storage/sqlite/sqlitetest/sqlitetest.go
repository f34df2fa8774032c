// Package sqlitetest has helpers to test against a real SQLite repository.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage/sqlite"
)

// NewRepository returns a migrated repository on a temporary database closed on test cleanup.
func NewRepository(t *testing.T, pub changefeed.Publisher) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath:    filepath.Join(t.TempDir(), "test.db"),
		Publisher: pub,
		Logger:    log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// Fixture are the minimum rows a task needs.
type Fixture struct {
	Operator  model.Operator
	Operation model.Operation
	PType     model.PayloadType
	C2Profile model.C2Profile
	Payload   model.Payload
	Command   model.Command
	Callback  model.Callback
}

// NewFixture creates an operator member of a new operation, a payload type with a
// "shell" command, a c2 profile, a payload and a callback. Names derive from name so
// more than one fixture can live in the same database.
func NewFixture(t *testing.T, repo *sqlite.Repository, name string) Fixture {
	t.Helper()
	ctx := context.Background()
	require := require.New(t)

	f := Fixture{}
	f.Operator = model.Operator{Username: "op-" + name, Active: true}
	require.NoError(repo.CreateOperator(ctx, &f.Operator))
	f.Operation = model.Operation{Name: name, AdminID: f.Operator.ID}
	require.NoError(repo.CreateOperation(ctx, &f.Operation))
	require.NoError(repo.AddOperatorToOperation(ctx, f.Operator.ID, f.Operation.ID))
	f.Operator.CurrentOperationID = &f.Operation.ID
	require.NoError(repo.UpdateOperator(ctx, f.Operator))

	f.PType = model.PayloadType{Name: "pt-" + name, OperatorID: f.Operator.ID}
	require.NoError(repo.CreatePayloadType(ctx, &f.PType))
	f.C2Profile = model.C2Profile{Name: "c2-" + name, OperatorID: f.Operator.ID}
	require.NoError(repo.CreateC2Profile(ctx, &f.C2Profile))
	f.Payload = model.Payload{
		UUID:          "uuid-" + name,
		OperatorID:    f.Operator.ID,
		PayloadTypeID: f.PType.ID,
		C2ProfileID:   f.C2Profile.ID,
		OperationID:   f.Operation.ID,
		Location:      "/payloads/" + name,
	}
	require.NoError(repo.CreatePayload(ctx, &f.Payload))

	f.Command = model.Command{Cmd: "shell", PayloadTypeID: f.PType.ID, OperatorID: f.Operator.ID}
	require.NoError(repo.CreateCommand(ctx, &f.Command))

	f.Callback = model.Callback{
		User:        "root",
		Host:        "host-" + name,
		OperatorID:  f.Operator.ID,
		Active:      true,
		PayloadID:   f.Payload.ID,
		OperationID: f.Operation.ID,
	}
	require.NoError(repo.CreateCallback(ctx, &f.Callback))

	return f
}

// Identity returns the identity of the fixture operator working on the fixture operation.
func (f Fixture) Identity() model.Identity {
	return model.Identity{
		OperatorID:         f.Operator.ID,
		Username:           f.Operator.Username,
		CurrentOperation:   f.Operation.Name,
		CurrentOperationID: f.Operation.ID,
		Operations:         []string{f.Operation.Name},
	}
}

// Task returns a new not persisted task for the fixture command and callback.
func (f Fixture) Task(params string, status model.TaskStatus) *model.Task {
	return &model.Task{
		CommandID:      &f.Command.ID,
		Params:         params,
		OriginalParams: params,
		Status:         status,
		CallbackID:     f.Callback.ID,
		OperatorID:     f.Operator.ID,
	}
}

// CreateTask persists a new task.
func (f Fixture) CreateTask(t *testing.T, repo *sqlite.Repository, params string, status model.TaskStatus) model.Task {
	t.Helper()
	task := f.Task(params, status)
	require.NoError(t, repo.CreateTask(context.Background(), task))
	return *task
}

package clear_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/app/cascade"
	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage/sqlite"
	"github.com/slok/opsdesk/internal/storage/sqlite/sqlitetest"
	"github.com/slok/opsdesk/internal/storage/storagemock"
)

func newService(t *testing.T, repo *sqlite.Repository) *clear.Service {
	t.Helper()
	c, err := cascade.NewService(cascade.ServiceConfig{Repository: repo})
	require.NoError(t, err)
	svc, err := clear.NewService(clear.ServiceConfig{Repository: repo, Cascade: c})
	require.NoError(t, err)
	return svc
}

func TestClear(t *testing.T) {
	tests := map[string]struct {
		tasks      []model.TaskStatus
		selector   func(ids []int64) string
		expCleared []int
		expErr     error
	}{
		"Clearing all should clear every submitted task.": {
			tasks:      []model.TaskStatus{model.TaskStatusSubmitted, model.TaskStatusProcessing, model.TaskStatusSubmitted, model.TaskStatusProcessed},
			selector:   func([]int64) string { return "all" },
			expCleared: []int{0, 2},
		},

		"Clearing without selector should clear the last submitted task.": {
			tasks:      []model.TaskStatus{model.TaskStatusSubmitted, model.TaskStatusSubmitted, model.TaskStatusProcessing},
			selector:   func([]int64) string { return "" },
			expCleared: []int{1},
		},

		"Clearing a submitted task by id should clear it.": {
			tasks:      []model.TaskStatus{model.TaskStatusSubmitted, model.TaskStatusSubmitted},
			selector:   func(ids []int64) string { return strconv.FormatInt(ids[0], 10) },
			expCleared: []int{0},
		},

		"Clearing a task that is being processed by id should not clear it.": {
			tasks:      []model.TaskStatus{model.TaskStatusProcessing},
			selector:   func(ids []int64) string { return strconv.FormatInt(ids[0], 10) },
			expCleared: []int{},
		},

		"An invalid selector should fail.": {
			tasks:    []model.TaskStatus{model.TaskStatusSubmitted},
			selector: func([]int64) string { return "some" },
			expErr:   model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			repo := sqlitetest.NewRepository(t, nil)
			f := sqlitetest.NewFixture(t, repo, "op1")
			var ids []int64
			for i, st := range test.tasks {
				task := f.CreateTask(t, repo, "task-"+strconv.Itoa(i), st)
				ids = append(ids, task.ID)
			}

			got, err := newService(t, repo).Run(ctx, clear.Request{
				Identity:   f.Identity(),
				CallbackID: f.Callback.ID,
				Selector:   test.selector(ids),
			})
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			var gotIDs, expIDs []int64
			for _, task := range got {
				gotIDs = append(gotIDs, task.ID)
				assert.Equal(model.TaskStatusSubmitted, task.Status, "snapshots are taken before clearing")
			}
			for _, i := range test.expCleared {
				expIDs = append(expIDs, ids[i])
			}
			assert.Equal(expIDs, gotIDs)

			for _, id := range expIDs {
				task, err := repo.GetTask(ctx, id)
				require.NoError(err)
				assert.Equal(model.TaskStatusProcessed, task.Status)
				resps, err := repo.ListResponses(ctx, id)
				require.NoError(err)
				require.Len(resps, 1)
				assert.Equal("CLEARED TASK by op-op1", resps[0].Response)
			}
		})
	}
}

func TestClearAllIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo := sqlitetest.NewRepository(t, nil)
	f := sqlitetest.NewFixture(t, repo, "op1")
	for i := 0; i < 5; i++ {
		f.CreateTask(t, repo, "ls", model.TaskStatusSubmitted)
	}
	svc := newService(t, repo)
	req := clear.Request{Identity: f.Identity(), CallbackID: f.Callback.ID, Selector: "all"}

	got, err := svc.Run(ctx, req)
	require.NoError(err)
	assert.Len(got, 5)

	submitted, err := repo.ListTasks(ctx, model.TaskQuery{CallbackID: f.Callback.ID, Statuses: []model.TaskStatus{model.TaskStatusSubmitted}})
	require.NoError(err)
	assert.Empty(submitted)

	got, err = svc.Run(ctx, req)
	require.NoError(err)
	assert.Empty(got)
}

func TestClearRemovesTaskFiles(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	repo := sqlitetest.NewRepository(t, nil)
	f := sqlitetest.NewFixture(t, repo, "op1")
	task := f.CreateTask(t, repo, "upload", model.TaskStatusSubmitted)

	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(os.WriteFile(path, []byte("x"), 0644))
	require.NoError(repo.CreateFileMeta(ctx, &model.FileMeta{Path: path, TotalChunks: 1, TaskID: &task.ID, OperatorID: f.Operator.ID, OperationID: f.Operation.ID}))

	_, err := newService(t, repo).Run(ctx, clear.Request{Identity: f.Identity(), CallbackID: f.Callback.ID, Selector: "all"})
	require.NoError(err)
	assert.NoFileExists(t, path)
}

func TestClearRequiresMembership(t *testing.T) {
	repo := sqlitetest.NewRepository(t, nil)
	f1 := sqlitetest.NewFixture(t, repo, "op1")
	f2 := sqlitetest.NewFixture(t, repo, "op2")

	_, err := newService(t, repo).Run(context.Background(), clear.Request{
		Identity:   f2.Identity(),
		CallbackID: f1.Callback.ID,
		Selector:   "all",
	})
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

type cascadeFunc func(ctx context.Context, taskID int64) error

func (c cascadeFunc) DeleteTaskCascade(ctx context.Context, taskID int64) error {
	return c(ctx, taskID)
}

var noCascade = cascadeFunc(func(context.Context, int64) error { return nil })

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    clear.ServiceConfig
		expErr bool
	}{
		"Valid configuration should create service successfully": {
			cfg: clear.ServiceConfig{Repository: &storagemock.MockRepository{}, Cascade: noCascade, Logger: log.Noop},
		},

		"Missing repository should fail": {
			cfg:    clear.ServiceConfig{Cascade: noCascade},
			expErr: true,
		},

		"Missing cascade should fail": {
			cfg:    clear.ServiceConfig{Repository: &storagemock.MockRepository{}},
			expErr: true,
		},

		"Missing logger should use noop logger": {
			cfg: clear.ServiceConfig{Repository: &storagemock.MockRepository{}, Cascade: noCascade},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			svc, err := clear.NewService(test.cfg)
			if test.expErr {
				assert.Error(err)
				assert.Nil(svc)
			} else {
				assert.NoError(err)
				assert.NotNil(svc)
			}
		})
	}
}

func TestClearRepositoryFailures(t *testing.T) {
	errTest := errors.New("whatever")
	cb := &model.Callback{ID: 1, OperationName: "op1"}
	tasks := []model.Task{{ID: 10, CallbackID: 1}, {ID: 11, CallbackID: 1}}
	clearedResponse := func(taskID int64) any {
		return mock.MatchedBy(func(r *model.Response) bool {
			return r.TaskID == taskID && r.Response == "CLEARED TASK by op"
		})
	}

	tests := map[string]struct {
		mock       func(m *storagemock.MockRepository)
		cascadeErr error
		expCleared []int64
		expErr     bool
	}{
		"Failing to get the callback should fail.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(nil, errTest)
			},
			expErr: true,
		},

		"Failing to list the tasks should fail.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(nil, errTest)
			},
			expErr: true,
		},

		"Failing to update the status should fail without clearing.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(tasks, nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(10), model.TaskStatusSubmitted, model.TaskStatusProcessed).Once().Return(false, errTest)
			},
			expCleared: []int64{},
			expErr:     true,
		},

		"Tasks picked up before clearing should be skipped.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(tasks, nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(10), model.TaskStatusSubmitted, model.TaskStatusProcessed).Once().Return(false, nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(11), model.TaskStatusSubmitted, model.TaskStatusProcessed).Once().Return(true, nil)
				m.On("CreateResponse", mock.Anything, clearedResponse(11)).Once().Return(nil)
			},
			expCleared: []int64{11},
		},

		"Failing to delete the task records should fail after the status update.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(tasks, nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(10), model.TaskStatusSubmitted, model.TaskStatusProcessed).Once().Return(true, nil)
			},
			cascadeErr: errTest,
			expCleared: []int64{},
			expErr:     true,
		},

		"Failing to store the clear response should fail after the status update.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(tasks, nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(10), model.TaskStatusSubmitted, model.TaskStatusProcessed).Once().Return(true, nil)
				m.On("CreateResponse", mock.Anything, clearedResponse(10)).Once().Return(errTest)
			},
			expCleared: []int64{},
			expErr:     true,
		},

		"Failing on a later task should return the tasks already cleared.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(tasks, nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(10), model.TaskStatusSubmitted, model.TaskStatusProcessed).Once().Return(true, nil)
				m.On("CreateResponse", mock.Anything, clearedResponse(10)).Once().Return(nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(11), model.TaskStatusSubmitted, model.TaskStatusProcessed).Once().Return(true, nil)
				m.On("CreateResponse", mock.Anything, clearedResponse(11)).Once().Return(errTest)
			},
			expCleared: []int64{10},
			expErr:     true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := storagemock.NewMockRepository(t)
			test.mock(mRepo)
			deleter := cascadeFunc(func(context.Context, int64) error { return test.cascadeErr })

			svc, err := clear.NewService(clear.ServiceConfig{Repository: mRepo, Cascade: deleter})
			require.NoError(err)

			got, err := svc.Run(context.Background(), clear.Request{
				Identity:   model.Identity{Username: "op", Operations: []string{"op1"}},
				CallbackID: 1,
				Selector:   clear.SelectorAll,
			})
			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}

			var ids []int64
			if got != nil {
				ids = []int64{}
				for _, task := range got {
					ids = append(ids, task.ID)
				}
			}
			assert.Equal(test.expCleared, ids)
		})
	}
}

package nexttask_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/app/nexttask"
	"github.com/slok/opsdesk/internal/cipher"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage/sqlite"
	"github.com/slok/opsdesk/internal/storage/sqlite/sqlitetest"
	"github.com/slok/opsdesk/internal/storage/storagemock"
)

var now = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newService(t *testing.T, repo *sqlite.Repository) *nexttask.Service {
	t.Helper()
	svc, err := nexttask.NewService(nexttask.ServiceConfig{
		Repository: repo,
		TimeNow:    func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc
}

func TestNextTask(t *testing.T) {
	tests := map[string]struct {
		tasks     []model.TaskStatus
		expBody   func(ids []int64) string
		expClaim  int
		expStatus []model.TaskStatus
	}{
		"Without pending tasks the callback should get the none command.": {
			tasks:     []model.TaskStatus{model.TaskStatusProcessed},
			expBody:   func([]int64) string { return `{"command":"none"}` },
			expClaim:  -1,
			expStatus: []model.TaskStatus{model.TaskStatusProcessed},
		},

		"The oldest submitted task should be claimed.": {
			tasks: []model.TaskStatus{model.TaskStatusProcessing, model.TaskStatusSubmitted, model.TaskStatusSubmitted},
			expBody: func(ids []int64) string {
				return `{"command":"shell","params":"task-1","id":` + itoa(ids[1]) + `}`
			},
			expClaim:  1,
			expStatus: []model.TaskStatus{model.TaskStatusProcessing, model.TaskStatusProcessing, model.TaskStatusSubmitted},
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
				ids = append(ids, f.CreateTask(t, repo, "task-"+itoa(int64(i)), st).ID)
			}

			svc := newService(t, repo)
			res, err := svc.Run(ctx, nexttask.Request{CallbackID: f.Callback.ID})
			require.NoError(err)

			assert.JSONEq(test.expBody(ids), string(res.Body))
			if test.expClaim < 0 {
				assert.Nil(res.Task)
			} else {
				require.NotNil(res.Task)
				assert.Equal(ids[test.expClaim], res.Task.ID)
			}
			for i, id := range ids {
				task, err := repo.GetTask(ctx, id)
				require.NoError(err)
				assert.Equal(test.expStatus[i], task.Status)
			}

			cb, err := repo.GetCallback(ctx, f.Callback.ID)
			require.NoError(err)
			assert.True(cb.Active)
			assert.Equal(now.Unix(), cb.LastCheckin.Unix())
		})
	}
}

func TestNextTaskNotFound(t *testing.T) {
	tests := map[string]struct {
		prepare func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) int64
	}{
		"Unknown callbacks should not be found.": {
			prepare: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) int64 { return 9999 },
		},

		"Callbacks of complete operations should not be found.": {
			prepare: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) int64 {
				op := f.Operation
				op.Complete = true
				require.NoError(t, repo.UpdateOperation(context.Background(), op))
				f.CreateTask(t, repo, "whoami", model.TaskStatusSubmitted)
				return f.Callback.ID
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := sqlitetest.NewRepository(t, nil)
			f := sqlitetest.NewFixture(t, repo, "op1")
			id := test.prepare(t, repo, f)

			_, err := newService(t, repo).Run(context.Background(), nexttask.Request{CallbackID: id})
			assert.ErrorIs(t, err, model.ErrNotFound)

			submitted, err := repo.ListTasks(context.Background(), model.TaskQuery{Statuses: []model.TaskStatus{model.TaskStatusProcessing}})
			require.NoError(t, err)
			assert.Empty(t, submitted)
		})
	}
}

func TestNextTaskEncrypted(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo := sqlitetest.NewRepository(t, nil)
	f := sqlitetest.NewFixture(t, repo, "op1")
	key, err := cipher.GenerateKey()
	require.NoError(err)
	cb := f.Callback
	cb.EncryptionType = model.EncryptionTypeAES256
	cb.EncryptionKey = key
	require.NoError(repo.UpdateCallback(ctx, cb))
	task := f.CreateTask(t, repo, "id", model.TaskStatusSubmitted)

	res, err := newService(t, repo).Run(ctx, nexttask.Request{CallbackID: cb.ID})
	require.NoError(err)

	assert.True(res.Encrypted)
	_, err = base64.StdEncoding.DecodeString(string(res.Body))
	require.NoError(err)
	rawKey, err := base64.StdEncoding.DecodeString(key)
	require.NoError(err)
	c, err := cipher.NewAES256(rawKey)
	require.NoError(err)
	plain, err := c.Decrypt(res.Body)
	require.NoError(err)
	assert.JSONEq(`{"command":"shell","params":"id","id":`+itoa(task.ID)+`}`, string(plain))
}

func TestNextTaskConcurrentPollsClaimOnce(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo := sqlitetest.NewRepository(t, nil)
	f := sqlitetest.NewFixture(t, repo, "op1")
	const total = 10
	for i := 0; i < total; i++ {
		f.CreateTask(t, repo, "task-"+itoa(int64(i)), model.TaskStatusSubmitted)
	}
	svc := newService(t, repo)

	var mu sync.Mutex
	claimed := map[int64]int{}
	var wg sync.WaitGroup
	for i := 0; i < total*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Run(ctx, nexttask.Request{CallbackID: f.Callback.ID})
			if !assert.NoError(err) || res.Task == nil {
				return
			}
			mu.Lock()
			claimed[res.Task.ID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(claimed, total)
	for id, n := range claimed {
		assert.Equal(1, n, "task %d claimed more than once", id)
	}
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    nexttask.ServiceConfig
		expErr bool
	}{
		"Valid configuration should create service successfully": {
			cfg: nexttask.ServiceConfig{Repository: &storagemock.MockRepository{}, Logger: log.Noop},
		},

		"Missing repository should fail": {
			cfg:    nexttask.ServiceConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			svc, err := nexttask.NewService(test.cfg)
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

func TestNextTaskRepositoryFailures(t *testing.T) {
	errTest := errors.New("whatever")
	cb := &model.Callback{ID: 1, OperationID: 2}
	op := &model.Operation{ID: 2, Name: "op1"}
	tasks := []model.Task{{ID: 10, CallbackID: 1, Command: "shell", Params: "whoami"}}
	checkIn := mock.MatchedBy(func(c model.Callback) bool { return c.ID == 1 && c.Active && c.LastCheckin.Equal(now) })

	tests := map[string]struct {
		mock func(m *storagemock.MockRepository)
	}{
		"Failing to get the callback should fail.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(nil, errTest)
			},
		},

		"Failing to get the operation should fail.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("GetOperation", mock.Anything, int64(2)).Once().Return(nil, errTest)
			},
		},

		"Failing to check in the callback should fail before claiming.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("GetOperation", mock.Anything, int64(2)).Once().Return(op, nil)
				m.On("UpdateCallback", mock.Anything, checkIn).Once().Return(errTest)
			},
		},

		"Failing to list the submitted tasks should fail.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("GetOperation", mock.Anything, int64(2)).Once().Return(op, nil)
				m.On("UpdateCallback", mock.Anything, checkIn).Once().Return(nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(nil, errTest)
			},
		},

		"Failing to claim the task should fail.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetCallback", mock.Anything, int64(1)).Once().Return(cb, nil)
				m.On("GetOperation", mock.Anything, int64(2)).Once().Return(op, nil)
				m.On("UpdateCallback", mock.Anything, checkIn).Once().Return(nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(tasks, nil)
				m.On("UpdateTaskStatus", mock.Anything, int64(10), model.TaskStatusSubmitted, model.TaskStatusProcessing).Once().Return(false, errTest)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := storagemock.NewMockRepository(t)
			test.mock(mRepo)

			svc, err := nexttask.NewService(nexttask.ServiceConfig{
				Repository: mRepo,
				TimeNow:    func() time.Time { return now },
			})
			require.NoError(err)

			res, err := svc.Run(context.Background(), nexttask.Request{CallbackID: 1})
			assert.ErrorIs(err, errTest)
			assert.Nil(res)
		})
	}
}

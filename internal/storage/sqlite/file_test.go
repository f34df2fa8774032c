package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/model"
)

func TestFileMetaLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	hub := changefeed.NewHub()
	deleted := changefeed.Kind{Op: changefeed.OpDelete, Table: changefeed.TableFileMeta}
	sub := hub.Subscribe(deleted)
	defer sub.Close()

	repo := newRepo(t, hub)
	f := newFixture(t, repo, "op1")

	fm1 := model.FileMeta{TotalChunks: 1, ChunksReceived: 1, Complete: true, Path: "/files/a", OperatorID: f.Operator.ID, OperationID: f.Operation.ID}
	fm2 := model.FileMeta{TotalChunks: 3, Path: "/files/a", OperatorID: f.Operator.ID, OperationID: f.Operation.ID}
	require.NoError(repo.CreateFileMeta(ctx, &fm1))
	require.NoError(repo.CreateFileMeta(ctx, &fm2))

	n, err := repo.CountFileMetaByPath(ctx, "/files/a")
	require.NoError(err)
	assert.Equal(2, n)

	// Tombstoned rows don't count as references.
	fm2.Deleted = true
	require.NoError(repo.UpdateFileMeta(ctx, fm2))
	n, err = repo.CountFileMetaByPath(ctx, "/files/a")
	require.NoError(err)
	assert.Equal(1, n)

	task := f.Task("x", model.TaskStatusSubmitted)
	require.NoError(repo.CreateTask(ctx, task))
	fm1.TaskID = &task.ID
	require.NoError(repo.UpdateFileMeta(ctx, fm1))

	byTask, err := repo.ListFileMeta(ctx, model.FileMetaQuery{TaskID: task.ID})
	require.NoError(err)
	require.Len(byTask, 1)
	assert.Equal(fm1.ID, byTask[0].ID)

	all, err := repo.ListFileMeta(ctx, model.FileMetaQuery{OperationID: f.Operation.ID, IncludeDeleted: true})
	require.NoError(err)
	assert.Len(all, 2)

	require.NoError(repo.DeleteFileMeta(ctx, fm1.ID))
	_, err = repo.GetFileMeta(ctx, fm1.ID)
	assert.ErrorIs(err, model.ErrNotFound)
	assert.ErrorIs(repo.DeleteFileMeta(ctx, fm1.ID), model.ErrNotFound)

	c, ok := sub.TryNext()
	require.True(ok)
	assert.Equal(fm1.ID, c.ID)
	old, ok := c.Old.(model.FileMeta)
	require.True(ok)
	assert.Equal("/files/a", old.Path)
}

func TestCountPayloadsByLocation(t *testing.T) {
	repo := newRepo(t, nil)
	newFixture(t, repo, "op1")

	n, err := repo.CountPayloadsByLocation(context.Background(), "/payloads/op1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.CountPayloadsByLocation(context.Background(), "/payloads/missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

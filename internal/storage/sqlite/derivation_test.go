package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/model"
)

func TestGetOrCreateAttackTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo := newRepo(t, nil)
	f := newFixture(t, repo, "op1")
	attack := model.Attack{TNum: "T1059", Name: "Command and Scripting Interpreter"}
	require.NoError(repo.CreateAttack(ctx, &attack))
	task := f.Task("x", model.TaskStatusSubmitted)
	require.NoError(repo.CreateTask(ctx, task))

	at1, created, err := repo.GetOrCreateAttackTask(ctx, attack.ID, task.ID)
	require.NoError(err)
	assert.True(created)
	assert.Equal("T1059", at1.TNum)

	at2, created, err := repo.GetOrCreateAttackTask(ctx, attack.ID, task.ID)
	require.NoError(err)
	assert.False(created)
	assert.Equal(at1.ID, at2.ID)

	ats, err := repo.ListAttackTasks(ctx, task.ID)
	require.NoError(err)
	assert.Len(ats, 1)

	require.NoError(repo.DeleteAttackTask(ctx, at1.ID))
	ats, err = repo.ListAttackTasks(ctx, task.ID)
	require.NoError(err)
	assert.Len(ats, 0)
}

func TestArtifactTemplates(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo := newRepo(t, nil)
	f := newFixture(t, repo, "op1")
	param := model.CommandParameter{CommandID: f.Command.ID, Name: "path", Type: model.ParameterTypeString}
	require.NoError(repo.CreateCommandParameter(ctx, &param))
	artifact := model.Artifact{Name: "Process Create"}
	require.NoError(repo.CreateArtifact(ctx, &artifact))

	templates := []model.ArtifactTemplate{
		{CommandID: f.Command.ID, ArtifactID: artifact.ID, ArtifactString: "sh -c {cmd}", ReplaceString: "{cmd}"},
		{CommandID: f.Command.ID, ArtifactID: artifact.ID, CommandParameterID: &param.ID, ArtifactString: "open {p}", ReplaceString: "{p}"},
	}
	for i := range templates {
		require.NoError(repo.CreateArtifactTemplate(ctx, &templates[i]))
	}

	got, err := repo.ListArtifactTemplates(ctx, f.Command.ID)
	require.NoError(err)
	require.Len(got, 2)
	assert.Equal("", got[0].ParameterName)
	assert.Nil(got[0].CommandParameterID)
	assert.Equal("path", got[1].ParameterName)

	task := f.Task("x", model.TaskStatusSubmitted)
	require.NoError(repo.CreateTask(ctx, task))
	ta := model.TaskArtifact{TaskID: task.ID, ArtifactTemplateID: got[0].ID, ArtifactInstance: "sh -c x"}
	require.NoError(repo.CreateTaskArtifact(ctx, &ta))

	tas, err := repo.ListTaskArtifacts(ctx, task.ID)
	require.NoError(err)
	require.Len(tas, 1)
	assert.Equal("sh -c x", tas[0].ArtifactInstance)

	require.NoError(repo.DeleteTaskArtifact(ctx, ta.ID))
	assert.ErrorIs(repo.DeleteTaskArtifact(ctx, ta.ID), model.ErrNotFound)
}

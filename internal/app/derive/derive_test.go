package derive_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/app/derive"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage/sqlite"
	"github.com/slok/opsdesk/internal/storage/sqlite/sqlitetest"
)

func newArtifactTemplate(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture, str, replace, param string) {
	t.Helper()
	ctx := context.Background()

	artifact, err := repo.GetArtifactByName(ctx, "Process Create")
	if err != nil {
		artifact = &model.Artifact{Name: "Process Create"}
		require.NoError(t, repo.CreateArtifact(ctx, artifact))
	}

	tpl := model.ArtifactTemplate{CommandID: f.Command.ID, ArtifactID: artifact.ID, ArtifactString: str, ReplaceString: replace}
	if param != "" {
		p := model.CommandParameter{CommandID: f.Command.ID, Name: param, Type: model.ParameterTypeString}
		require.NoError(t, repo.CreateCommandParameter(ctx, &p))
		tpl.CommandParameterID = &p.ID
	}
	require.NoError(t, repo.CreateArtifactTemplate(ctx, &tpl))
}

func TestDerive(t *testing.T) {
	tests := map[string]struct {
		params       string
		templates    func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture)
		expArtifacts []string
		expErr       bool
	}{
		"Templates without parameter should be rendered with the raw params.": {
			params: "whoami /all",
			templates: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) {
				newArtifactTemplate(t, repo, f, "cmd.exe /c CMD", "CMD", "")
			},
			expArtifacts: []string{"cmd.exe /c whoami /all"},
		},

		"Templates with a parameter should be rendered with that parameter value.": {
			params: `{"path": "/etc/passwd", "count": 7}`,
			templates: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) {
				newArtifactTemplate(t, repo, f, "open FILE", "FILE", "path")
				newArtifactTemplate(t, repo, f, "read N lines", "N", "count")
			},
			expArtifacts: []string{"open /etc/passwd", "read 7 lines"},
		},

		"Numeric parameters should be rendered as written in the params.": {
			params: `{"remote_path": "/tmp/x", "file_id": 1000000, "seed": 9007199254740993}`,
			templates: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) {
				newArtifactTemplate(t, repo, f, "fetch file ID", "ID", "file_id")
				newArtifactTemplate(t, repo, f, "seed SEED", "SEED", "seed")
			},
			expArtifacts: []string{"fetch file 1000000", "seed 9007199254740993"},
		},

		"Templates without replace string should be kept as they are.": {
			params: "ls",
			templates: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) {
				newArtifactTemplate(t, repo, f, "static", "", "")
			},
			expArtifacts: []string{"static"},
		},

		"Parameter templates on non JSON params should fail.": {
			params: "ls -la",
			templates: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) {
				newArtifactTemplate(t, repo, f, "open FILE", "FILE", "path")
			},
			expErr: true,
		},

		"Parameter templates on params missing the parameter should fail.": {
			params: `{"other": 1}`,
			templates: func(t *testing.T, repo *sqlite.Repository, f sqlitetest.Fixture) {
				newArtifactTemplate(t, repo, f, "open FILE", "FILE", "path")
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			repo := sqlitetest.NewRepository(t, nil)
			f := sqlitetest.NewFixture(t, repo, "op1")
			test.templates(t, repo, f)
			task := f.CreateTask(t, repo, test.params, model.TaskStatusSubmitted)

			svc, err := derive.NewService(derive.ServiceConfig{Repository: repo})
			require.NoError(err)
			_, err = svc.Run(ctx, derive.Request{Task: task})
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			got, err := repo.ListTaskArtifacts(ctx, task.ID)
			require.NoError(err)
			var instances []string
			for _, a := range got {
				instances = append(instances, a.ArtifactInstance)
			}
			assert.Equal(test.expArtifacts, instances)
		})
	}
}

func TestDeriveAttacksAreIdempotent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	repo := sqlitetest.NewRepository(t, nil)
	f := sqlitetest.NewFixture(t, repo, "op1")
	for _, tnum := range []string{"T1059", "T1083"} {
		a := model.Attack{TNum: tnum}
		require.NoError(repo.CreateAttack(ctx, &a))
		require.NoError(repo.CreateAttackCommand(ctx, &model.AttackCommand{AttackID: a.ID, CommandID: f.Command.ID}))
	}
	task := f.CreateTask(t, repo, "ls", model.TaskStatusSubmitted)

	svc, err := derive.NewService(derive.ServiceConfig{Repository: repo})
	require.NoError(err)
	_, err = svc.Run(ctx, derive.Request{Task: task})
	require.NoError(err)
	_, err = svc.Run(ctx, derive.Request{Task: task})
	require.NoError(err)

	got, err := repo.ListAttackTasks(ctx, task.ID)
	require.NoError(err)
	require.Len(got, 2)
	assert.ElementsMatch([]string{"T1059", "T1083"}, []string{got[0].TNum, got[1].TNum})
}

func TestDeriveWithoutCommand(t *testing.T) {
	svc, err := derive.NewService(derive.ServiceConfig{Repository: sqlitetest.NewRepository(t, nil)})
	require.NoError(t, err)

	res, err := svc.Run(context.Background(), derive.Request{Task: model.Task{ID: 1, Params: "tasks"}})
	require.NoError(t, err)
	assert.Empty(t, res.Attacks)
	assert.Empty(t, res.Artifacts)
}

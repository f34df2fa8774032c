package transform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/transform"
)

func TestWatcherRefreshesOnChange(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "transforms.yaml")
	src := transform.NewFileSource(path)
	reg, err := transform.NewRegistry(context.TODO(), transform.RegistryConfig{
		Sources: []transform.Source{transform.Builtins, src},
	})
	require.NoError(err)

	w, err := transform.NewWatcher(transform.WatcherConfig{
		Source:   src,
		OnChange: func(ctx context.Context) { _ = reg.Refresh(ctx) },
	})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("command:\n  shout:\n    - func: upper\n"), 0644)
		_, ok := reg.CommandFunc("shout")
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(<-done)
}

package conventions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/opsdesk/internal/conventions"
)

func TestPaths(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("/d/opsdesk.db", conventions.DBPath("/d"))
	assert.Equal("/d/transforms.yaml", conventions.TransformsPath("/d"))
	assert.Equal("/d/files/op1", conventions.OperationFilesDir("/d", "op1"))
	assert.Equal("/d/files/op1/downloads", conventions.OperationDownloadsDir("/d", "op1"))
	assert.Equal("/d/files/op1/downloads/h1/screenshots", conventions.HostScreenshotsDir("/d", "op1", "h1"))
	assert.Equal("/d/payloads/poseidon/payload", conventions.PayloadTypeTemplateDir("/d", "poseidon"))
	assert.Equal("/d/payloads/poseidon/commands/ls", conventions.CommandPath("/d", "poseidon", "ls"))
	assert.Equal("/d/payloads/operations/op1/01H", conventions.LoadWorkingDir("/d", "op1", "01H"))
	assert.Equal(
		"/d/payloads/operations/op1/load-2026-03-04-05:06:07",
		conventions.LoadOutputPath("/d", "op1", time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)),
	)
}

func TestFileKinds(t *testing.T) {
	tests := map[string]struct {
		path          string
		expDownload   bool
		expScreenshot bool
	}{
		"A staged file should not be a download.": {
			path: "/d/files/op1/tool.exe",
		},

		"A file pulled from a host should be a download.": {
			path:        "/d/files/op1/downloads/h1/passwd",
			expDownload: true,
		},

		"A screen capture should be a download and a screenshot.": {
			path:          "/d/files/op1/downloads/h1/screenshots/2026-05-06-07:08:09.png",
			expDownload:   true,
			expScreenshot: true,
		},

		"Downloads of other operations should not be downloads of the operation.": {
			path:          "/d/files/op2/downloads/h1/screenshots/a.png",
			expScreenshot: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expDownload, conventions.IsDownload(test.path, "op1"))
			assert.Equal(t, test.expScreenshot, conventions.IsScreenshot(test.path))
		})
	}
}

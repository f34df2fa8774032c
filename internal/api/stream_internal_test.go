package api

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCloseReason(t *testing.T) {
	tests := map[string]struct {
		err       error
		expReason string
	}{
		"A short message should be kept.": {
			err:       errors.New("stream ended"),
			expReason: "stream ended",
		},

		"A long message should be cut at the limit.": {
			err:       errors.New(strings.Repeat("a", 130)),
			expReason: strings.Repeat("a", 120),
		},

		"A long message should not split a rune.": {
			err:       errors.New(strings.Repeat("a", 119) + "ñandú"),
			expReason: strings.Repeat("a", 119),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			got := closeReason(test.err)
			assert.Equal(test.expReason, got)
			assert.True(utf8.ValidString(got))
			assert.LessOrEqual(len(got), maxCloseReason)
		})
	}
}

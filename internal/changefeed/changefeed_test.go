package changefeed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/changefeed"
)

var (
	newTask     = changefeed.Kind{Op: changefeed.OpInsert, Table: changefeed.TableTask}
	newResponse = changefeed.Kind{Op: changefeed.OpInsert, Table: changefeed.TableResponse}
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "newtask", newTask.String())
	assert.Equal(t, "deletedcommand", changefeed.Kind{Op: changefeed.OpDelete, Table: changefeed.TableCommand}.String())
}

func TestHub(t *testing.T) {
	tests := map[string]struct {
		kinds   []changefeed.Kind
		publish func(h *changefeed.Hub)
		expIDs  []int64
	}{
		"A subscription without pending changes should return nothing.": {
			kinds:   []changefeed.Kind{newTask},
			publish: func(h *changefeed.Hub) {},
			expIDs:  nil,
		},

		"A subscription should receive the subscribed kinds in publish order.": {
			kinds: []changefeed.Kind{newTask, newResponse},
			publish: func(h *changefeed.Hub) {
				h.Publish(newTask, 1, nil)
				h.Publish(newResponse, 2, nil)
				h.Publish(newTask, 3, nil)
			},
			expIDs: []int64{1, 2, 3},
		},

		"A subscription should not receive kinds it didn't subscribe to.": {
			kinds: []changefeed.Kind{newResponse},
			publish: func(h *changefeed.Hub) {
				h.Publish(newTask, 1, nil)
				h.Publish(newResponse, 2, nil)
			},
			expIDs: []int64{2},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h := changefeed.NewHub()
			sub := h.Subscribe(test.kinds...)
			defer sub.Close()

			test.publish(h)

			var gotIDs []int64
			for {
				c, ok := sub.TryNext()
				if !ok {
					break
				}
				gotIDs = append(gotIDs, c.ID)
			}
			assert.Equal(t, test.expIDs, gotIDs)
		})
	}
}

func TestHubReadySignal(t *testing.T) {
	h := changefeed.NewHub()
	sub := h.Subscribe(newTask)
	defer sub.Close()

	h.Publish(newTask, 1, nil)
	h.Publish(newTask, 2, nil)

	select {
	case <-sub.Ready():
	default:
		require.Fail(t, "subscription should be ready")
	}
	assert.Equal(t, 2, sub.Pending())
}

func TestHubClose(t *testing.T) {
	h := changefeed.NewHub()
	sub := h.Subscribe(newTask)
	require.Equal(t, 1, h.Subscriptions())

	sub.Close()
	sub.Close()
	h.Publish(newTask, 1, nil)

	assert.Equal(t, 0, h.Subscriptions())
	_, ok := sub.TryNext()
	assert.False(t, ok)
}

func TestHubDeleteCarriesOld(t *testing.T) {
	h := changefeed.NewHub()
	kind := changefeed.Kind{Op: changefeed.OpDelete, Table: changefeed.TableCommand}
	sub := h.Subscribe(kind)
	defer sub.Close()

	h.Publish(kind, 9, map[string]any{"cmd": "shell"})

	c, ok := sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, int64(9), c.ID)
	assert.Equal(t, map[string]any{"cmd": "shell"}, c.Old)
	assert.Equal(t, uint64(1), c.Seq)
}

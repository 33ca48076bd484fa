package infra

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"signaldesk.com/internal/config"
)

type recordingNotifier struct {
	mu     sync.Mutex
	pushed map[string][]interface{}
	panics bool
}

func (n *recordingNotifier) PushToDraft(draftID string, data interface{}) {
	if n.panics {
		panic("boom")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pushed == nil {
		n.pushed = make(map[string][]interface{})
	}
	n.pushed[draftID] = append(n.pushed[draftID], data)
}

func (n *recordingNotifier) count(draftID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pushed[draftID])
}

func TestDraftRelay_PublishReachesSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := NewDraftRelay(rdb, 8, zerolog.Nop())
	require.NoError(t, relay.Start(ctx))

	msg := WsMessage{Type: "draft.updated", DraftID: "abc"}
	require.NoError(t, relay.Publish(ctx, "abc", msg))

	select {
	case got := <-relay.Messages():
		assert.Equal(t, "abc", got.DraftID)
		var decoded WsMessage
		require.NoError(t, json.Unmarshal(got.Payload, &decoded))
		assert.Equal(t, msg, decoded)
	case <-time.After(2 * time.Second):
		t.Fatal("relayed message not received")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-relay.Messages():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPreviewDispatcher_Run(t *testing.T) {
	in := make(chan DraftMessage, 3)
	n := &recordingNotifier{}
	d := NewPreviewDispatcher(n, zerolog.Nop())

	in <- DraftMessage{DraftID: "a", Payload: json.RawMessage(`{}`)}
	in <- DraftMessage{DraftID: "a", Payload: json.RawMessage(`{}`)}
	in <- DraftMessage{DraftID: "b", Payload: json.RawMessage(`{}`)}
	close(in)

	d.Run(in)
	assert.Equal(t, 2, n.count("a"))
	assert.Equal(t, 1, n.count("b"))
}

func TestPreviewDispatcher_RecoversFromPanic(t *testing.T) {
	in := make(chan DraftMessage, 2)
	d := NewPreviewDispatcher(&recordingNotifier{panics: true}, zerolog.Nop())

	in <- DraftMessage{DraftID: "a"}
	in <- DraftMessage{DraftID: "b"}
	close(in)

	assert.NotPanics(t, func() { d.Run(in) })
}

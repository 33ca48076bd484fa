package api

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"signaldesk.com/internal/config"
	"signaldesk.com/internal/constants"
	"signaldesk.com/internal/engine"
	"signaldesk.com/internal/event"
	"signaldesk.com/internal/infra"
	"signaldesk.com/internal/model"
	"signaldesk.com/internal/service"
)

type wsReply struct {
	Type    string
	DraftID string
	Data    json.RawMessage
	Error   string
}

type wsFixture struct {
	addr string
	hub  *infra.PreviewHub
	svc  *service.DraftServiceImpl
}

func startWsServer(t *testing.T) *wsFixture {
	t.Helper()

	bus := event.NewBus(16, zerolog.Nop())
	hub := infra.NewPreviewHub(zerolog.Nop())
	eng := engine.NewEngine(engine.Deps{Bus: bus, Hub: hub, Log: zerolog.Nop()})
	require.NoError(t, eng.Start())

	cfg := &config.Config{}
	cfg.Server.AppName = "signaldesk-test"
	svc := service.NewDraftService(infra.NewMemoryDraftStore(time.Hour), bus, zerolog.Nop())
	app := NewServer(Deps{Config: cfg, DraftSvc: svc, Hub: hub, Log: zerolog.Nop()})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()

	t.Cleanup(func() {
		_ = app.ShutdownWithTimeout(time.Second)
		eng.Stop()
	})
	return &wsFixture{addr: ln.Addr().String(), hub: hub, svc: svc}
}

func (f *wsFixture) dial(t *testing.T, query string) *fws.Conn {
	t.Helper()
	conn, _, err := fws.DefaultDialer.Dial("ws://"+f.addr+"/ws"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readType skips messages until one of type want arrives.
func readType(t *testing.T, conn *fws.Conn, want string) wsReply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg wsReply
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

func previewOf(t *testing.T, msg wsReply) model.Preview {
	t.Helper()
	var p model.Preview
	require.NoError(t, json.Unmarshal(msg.Data, &p))
	return p
}

func TestWebsocket_WatchAndEdit(t *testing.T) {
	f := startWsServer(t)
	created, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	id := created.Draft.ID

	editor := f.dial(t, "?draftID="+id)
	snap := readType(t, editor, wsTypeSnapshot)
	assert.Equal(t, id, snap.DraftID)
	assert.Equal(t, id, previewOf(t, snap).Draft.ID)

	viewer := f.dial(t, "")
	require.NoError(t, viewer.WriteJSON(WsRequest{Action: "watch", DraftID: id}))
	readType(t, viewer, wsTypeSnapshot)
	assert.Equal(t, 2, f.hub.WatcherCount(id))

	symbol, entry, stop := "NQ", 18000.0, 10.0
	require.NoError(t, editor.WriteJSON(WsRequest{
		Action:  "edit",
		DraftID: id,
		Edit:    &model.DraftEdit{Symbol: &symbol, EntryPrice: &entry, StopLoss: &stop},
	}))

	reply := previewOf(t, readType(t, editor, wsTypeSnapshot))
	assert.Equal(t, "NQ", reply.Draft.Symbol)

	pushed := readType(t, viewer, constants.EventDraftUpdated)
	assert.Equal(t, id, pushed.DraftID)
	p := previewOf(t, pushed)
	require.NotNil(t, p.Derived.StopLossPrice)
	assert.InDelta(t, 17950, *p.Derived.StopLossPrice, 1e-9)

	require.NoError(t, viewer.WriteJSON(WsRequest{Action: "unwatch", DraftID: id}))
	require.Eventually(t, func() bool { return f.hub.WatcherCount(id) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocket_EditSubscribesOnlyOnSuccess(t *testing.T) {
	f := startWsServer(t)
	created, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	id := created.Draft.ID

	conn := f.dial(t, "")
	entry := 100.0

	require.NoError(t, conn.WriteJSON(WsRequest{Action: "edit", DraftID: "ghost", Edit: &model.DraftEdit{EntryPrice: &entry}}))
	msg := readType(t, conn, wsTypeError)
	assert.Equal(t, "draft not found", msg.Error)
	assert.Zero(t, f.hub.WatcherCount("ghost"))

	bad := model.Direction("long")
	require.NoError(t, conn.WriteJSON(WsRequest{Action: "edit", DraftID: id, Edit: &model.DraftEdit{Direction: &bad}}))
	msg = readType(t, conn, wsTypeError)
	assert.Contains(t, msg.Error, "unknown direction")
	assert.Zero(t, f.hub.WatcherCount(id))

	require.NoError(t, conn.WriteJSON(WsRequest{Action: "edit", DraftID: id, Edit: &model.DraftEdit{EntryPrice: &entry}}))
	p := previewOf(t, readType(t, conn, wsTypeSnapshot))
	assert.Equal(t, 100.0, p.Draft.EntryPrice)
	assert.Equal(t, 1, f.hub.WatcherCount(id))
}

func TestWebsocket_Errors(t *testing.T) {
	f := startWsServer(t)
	conn := f.dial(t, "?draftID=ghost")

	msg := readType(t, conn, wsTypeError)
	assert.Equal(t, "ghost", msg.DraftID)
	assert.Equal(t, "draft not found", msg.Error)
	assert.Zero(t, f.hub.WatcherCount("ghost"))

	require.NoError(t, conn.WriteJSON(WsRequest{Action: "edit", DraftID: "ghost"}))
	assert.Equal(t, "Missing edit", readType(t, conn, wsTypeError).Error)

	require.NoError(t, conn.WriteJSON(WsRequest{Action: "dance"}))
	assert.Equal(t, "Unknown action", readType(t, conn, wsTypeError).Error)
}

package api

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/infra"
	"signaldesk.com/internal/model"
)

// WsRequest 客户端消息
type WsRequest struct {
	Action  string           `json:"Action"` // watch / unwatch / edit
	DraftID string           `json:"DraftID"`
	Edit    *model.DraftEdit `json:"Edit,omitempty"`
}

// 直接回复给发起方的消息类型
const (
	wsTypeSnapshot = "draft.snapshot"
	wsTypeError    = "error"
)

// InitWebsocket 初始化实时预览 WebSocket
// GET /ws?draftID=
func InitWebsocket(app *fiber.App, hub *infra.PreviewHub, draftSvc domain.DraftService, log zerolog.Logger) {
	log = log.With().Str("component", "ws_handler").Logger()

	// Middleware to force upgrade
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.Register(c)
		defer hub.Unregister(c)

		// 连接时携带 draftID 即自动关注
		if draftID := c.Query("draftID"); draftID != "" {
			watchDraft(hub, draftSvc, c, draftID)
		}

		var msg WsRequest
		for {
			msg = WsRequest{}
			if err := c.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warn().Err(err).Msg("ws read error")
				}
				break
			}

			switch msg.Action {
			case "watch":
				watchDraft(hub, draftSvc, c, msg.DraftID)
			case "unwatch":
				hub.Unwatch(c, msg.DraftID)
			case "edit":
				if msg.Edit == nil {
					hub.Send(c, infra.WsMessage{Type: wsTypeError, DraftID: msg.DraftID, Error: "Missing edit"})
					continue
				}
				// 其他查看者经事件总线收到更新; 编辑方直接收到结果并开始关注
				p, err := draftSvc.Apply(context.Background(), msg.DraftID, *msg.Edit)
				if err != nil {
					hub.Send(c, infra.WsMessage{Type: wsTypeError, DraftID: msg.DraftID, Error: wsErrorMessage(err)})
					continue
				}
				hub.Watch(c, msg.DraftID)
				hub.Send(c, infra.WsMessage{Type: wsTypeSnapshot, DraftID: msg.DraftID, Data: p})
			default:
				log.Debug().Str("action", msg.Action).Msg("Unexpected action")
				hub.Send(c, infra.WsMessage{Type: wsTypeError, DraftID: msg.DraftID, Error: "Unknown action"})
			}
		}
	}))
}

// watchDraft 关注草稿并立即回复当前预览
func watchDraft(hub *infra.PreviewHub, draftSvc domain.DraftService, conn *websocket.Conn, draftID string) {
	p, err := draftSvc.Get(context.Background(), draftID)
	if err != nil {
		hub.Send(conn, infra.WsMessage{Type: wsTypeError, DraftID: draftID, Error: wsErrorMessage(err)})
		return
	}
	hub.Watch(conn, draftID)
	hub.Send(conn, infra.WsMessage{Type: wsTypeSnapshot, DraftID: draftID, Data: p})
}

func wsErrorMessage(err error) string {
	_, msg := domain.ErrorStatus(err)
	return msg
}

package app

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"chat_delivery_service/internal/chat/domain"
	"chat_delivery_service/internal/chat/repository"
	"chat_delivery_service/pkg"
	"chat_delivery_service/pkg/database"
	"chat_delivery_service/pkg/logger"
	"chat_delivery_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// presenceTTL 在線狀態的有效期，pong 回來就續期
const presenceTTL = 15 * time.Minute

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	roomUC     *RoomUseCase
	messageUC  *SendMessageUseCase
	deliveryUC *DeliveryUseCase
	readUC     *ReadUseCase
	inboxUC    *InboxUseCase
	pubsub     repository.PubSub
	presence   database.RedisRepository[domain.Presence]
	roomCtx    context.CancelFunc
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	roomUC *RoomUseCase,
	messageUC *SendMessageUseCase,
	deliveryUC *DeliveryUseCase,
	readUC *ReadUseCase,
	inboxUC *InboxUseCase,
	pubsub repository.PubSub,
	presence database.RedisRepository[domain.Presence],
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		roomUC:     roomUC,
		messageUC:  messageUC,
		deliveryUC: deliveryUC,
		readUC:     readUC,
		inboxUC:    inboxUC,
		pubsub:     pubsub,
		presence:   presence,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenMember := conn.Locals(middlewares.TokenMemberID)
	memberID, ok := tokenMember.(string)
	logger.Log.Info("websocket handle memberID", zap.String("userID", memberID), zap.String("ok", strconv.FormatBool(ok)))

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	// 上線，TTL 到期視同離線
	h.setOnline(ctx, memberID)

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("userID", memberID))
		h.setOffline(ctx, memberID)
		conn.Close()
		cancel()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(appData string) error {
		if err := h.presence.ExtendTTL(ctx, presenceKey(memberID), presenceTTL); err != nil {
			logger.Log.Errorf("extend presence ttl err:", err)
		}
		return nil
	})

	//啟用sub訂閱自己的訊息
	channel := repository.MemberChannel(memberID)
	h.pubsub.Subscribe(ctxClose, channel, func(resp domain.WSResponse) {
		h.sendResponse(conn, resp)
	})

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping message")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				logger.Log.Infof("Ping goroutine cancelled for member:", memberID)
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, conn, memberID, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, conn *websocket.Conn, memberID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, conn, memberID, msg)

	default:
		h.sendError(conn, "unknown action")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, conn *websocket.Conn, memberID string, msg []byte) {

	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {
	//建立聊天室
	case string(domain.CreateRoom):
		members := req.Members
		if !pkg.Contains(members, memberID) {
			members = append(members, memberID)
		}
		roomID, err := h.roomUC.ExecuteRoom(ctx, members)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["room_id"] = roomID
		}

	//刪除聊天室
	case string(domain.DeleteRoom):
		err := h.roomUC.DeleteRoom(ctx, req.RoomID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//進入聊天室，訂閱房間事件
	case string(domain.EnterRoom):
		ctxEnterRoom, cancel := context.WithCancel(context.Background())
		h.roomCtx = cancel

		channel := repository.RoomChannel(req.RoomID)
		h.pubsub.Subscribe(ctxEnterRoom, channel, func(resp domain.WSResponse) {
			h.sendResponse(conn, resp)
		})
		resp.Success = true

	//離開聊天室
	case string(domain.LeaveRoom):
		if h.roomCtx != nil {
			h.roomCtx()
			h.roomCtx = nil
		}
		resp.Success = true
		resp.Payload["leave_room"] = req.RoomID

	//傳送訊息: 寫入 day bucket 並註冊每個成員的收件夾
	case string(domain.SendMessage):
		message, _, day, err := h.messageUC.Execute(ctx, req.RoomID, memberID, req.Content, time.Now().Unix())
		if err != nil {
			resp.Error = err.Error()
			break
		}
		if err := h.deliveryUC.RegisterUndelivered(ctx, req.RoomID, day, message.ID, message.UndeliveredMembers); err != nil {
			resp.Error = err.Error()
			break
		}
		if err := h.readUC.RegisterUnread(ctx, req.RoomID, day, message.ID, message.UnreadMembers); err != nil {
			resp.Error = err.Error()
			break
		}
		resp.Success = true
		resp.Payload["message_id"] = message.ID
		resp.Payload["day"] = day

	//確認送達，可帶一批剛上線的成員
	case string(domain.AckDelivery):
		members := req.Members
		if len(members) == 0 {
			members = []string{memberID}
		}
		undelivered, delivered, err := h.deliveryUC.AcknowledgeDelivery(ctx, req.RoomID, req.Day, req.MessageID, members)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["undelivered_members"] = undelivered
			resp.Payload["message_delivered"] = delivered
		}

	//讀取訊息，將未讀訊息改為已讀
	case string(domain.ReadMessage):
		err := h.readUC.MarkRead(ctx, req.RoomID, req.Day, req.MessageID, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	//搜尋所有未送達訊息
	case string(domain.GetUndelivered):
		refs, err := h.inboxUC.GetUndelivered(ctx, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["undelivered_messages"] = refs
		}

	//搜尋所有未讀訊息
	case string(domain.GetUnread):
		refs, err := h.inboxUC.GetUnread(ctx, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["unread_messages"] = refs
		}

	default:
		h.sendError(conn, "unknown message types ")
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ", zap.String("MemberID", memberID), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	h.sendResponse(conn, resp)
}

func (h *ChatWebsocketHandler) setOnline(ctx context.Context, memberID string) {
	p := domain.Presence{Online: true, LastSeen: time.Now().Unix()}
	if err := h.presence.Set(ctx, presenceKey(memberID), p, presenceTTL); err != nil {
		logger.Log.Errorf("set presence err:", err)
	}
}

func (h *ChatWebsocketHandler) setOffline(ctx context.Context, memberID string) {
	p := domain.Presence{Online: false, LastSeen: time.Now().Unix()}
	if err := h.presence.Set(ctx, presenceKey(memberID), p, 0); err != nil {
		logger.Log.Errorf("set presence err:", err)
	}
}

func presenceKey(memberID string) string {
	return "chat:presence:" + memberID
}

// sendResponse - 發送 JSON 給前端
func (h *ChatWebsocketHandler) sendResponse(conn *websocket.Conn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *ChatWebsocketHandler) sendError(conn *websocket.Conn, errorMsg string) {
	resp := domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	h.sendResponse(conn, resp)
}

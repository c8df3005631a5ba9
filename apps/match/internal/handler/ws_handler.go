package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"MatchServer/apps/match/internal/dto"
	"MatchServer/apps/match/internal/manager"
	"MatchServer/apps/match/internal/service"
	"MatchServer/apps/match/internal/svc"
	"MatchServer/consts"
	"MatchServer/pkg/ctxmeta"
	"MatchServer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// 当前阶段默认放开来源校验，方便本地多端调试。
	// 生产环境建议按域名白名单收紧校验策略。
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WSHandler 负责处理 /ws 接入请求。
// 职责边界：
// - 处理 Gin/HTTP 层参数、升级与错误响应；
// - 调用 svc 完成鉴权与帧解析；
// - 调用 manager 维护连接生命周期；
// - 调用 service 执行会话操作并分发产出的事件。
type WSHandler struct {
	connManager *manager.ConnectionManager
	validator   svc.SessionValidator
	chatSvc     service.IChatService
	dispatcher  service.EventDispatcher
	sender      service.MessageSender
}

// NewWSHandler 创建 WebSocket 入口处理器。
func NewWSHandler(
	connManager *manager.ConnectionManager,
	validator svc.SessionValidator,
	chatSvc service.IChatService,
	dispatcher service.EventDispatcher,
	sender service.MessageSender,
) *WSHandler {
	return &WSHandler{
		connManager: connManager,
		validator:   validator,
		chatSvc:     chatSvc,
		dispatcher:  dispatcher,
		sender:      sender,
	}
}

// ServeWS 处理 WebSocket 握手与接入。
// 执行流程：
// 1. 从 query 中读取 token；
// 2. token 为保留内部对端字面量时走内部通道，否则做会话校验；
// 3. 构建连接级 context（注入 trace/user）；
// 4. 完成协议升级并进入连接处理主循环。
func (h *WSHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")

	if token == consts.InternalPeerToken {
		h.serveInternalPeer(c)
		return
	}

	identity, err := h.validator.Validate(c.Request.Context(), token)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	connCtx := context.Background()
	if traceID := ctxmeta.TraceIDFromGin(c); traceID != "" {
		connCtx = ctxmeta.WithTraceID(connCtx, traceID)
	}
	connCtx = ctxmeta.WithUserID(connCtx, identity.UserID)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(connCtx, "WebSocket 升级失败", logger.ErrorField(err))
		return
	}

	h.handleConnection(connCtx, conn, identity.UserID, token)
}

// handleConnection 承载单个用户连接的完整生命周期。
// 关键语义：
// - 同一用户重复连接时，用新连接替换旧连接；
// - 日志里保留 user_id 便于排障。
func (h *WSHandler) handleConnection(ctx context.Context, conn *websocket.Conn, userID, token string) {
	client := manager.NewClient(conn, userID, token)
	replaced := h.connManager.Register(client)
	if replaced != nil {
		replaced.Close()
	}

	logger.Info(ctx, "WebSocket 连接已建立",
		logger.String("user_id", userID),
		logger.Int("online_count", h.connManager.Count()),
	)

	client.Run(ctx, func(raw []byte) {
		h.handleMessage(ctx, client, raw)
	}, func() {
		h.connManager.Unregister(client)
		logger.Info(ctx, "WebSocket 连接已断开",
			logger.String("user_id", userID),
			logger.Int("online_count", h.connManager.Count()),
		)
	})
}

// handleMessage 处理用户上行帧。
func (h *WSHandler) handleMessage(ctx context.Context, client *manager.Client, raw []byte) {
	envelope, err := svc.ParseEnvelope(raw)
	if err != nil {
		h.sendErrorFrame(ctx, client, consts.CodeBodyError)
		return
	}

	switch envelope.Type {
	case consts.ActionHeartbeat:
		h.reply(ctx, client, consts.EventHeartbeatAck, nil)

	case consts.ActionFetchChats:
		chats, fetchErr := h.chatSvc.ChatsForUser(ctx, client.UserID())
		if fetchErr != nil {
			h.sendErrorFrame(ctx, client, errorCode(fetchErr))
			return
		}
		h.reply(ctx, client, consts.EventFetchChatsResponse, chats)

	case consts.ActionCreateChat:
		var req dto.CreateChatRequest
		if bindErr := json.Unmarshal(envelope.Data, &req); bindErr != nil || req.ChatPartnerID == "" {
			h.sendErrorFrame(ctx, client, consts.CodeParamError)
			return
		}
		_, events, createErr := h.chatSvc.CreateChat(ctx, client.UserID(), req.ChatPartnerID)
		if createErr != nil {
			h.sendErrorFrame(ctx, client, errorCode(createErr))
			return
		}
		h.dispatcher.DispatchAsync(ctx, events)

	case consts.ActionSendMessage:
		var req dto.SendMessageRequest
		if bindErr := json.Unmarshal(envelope.Data, &req); bindErr != nil || req.ChatID == 0 || req.Message == "" {
			h.sendErrorFrame(ctx, client, consts.CodeParamError)
			return
		}
		_, events, sendErr := h.chatSvc.SendMessage(ctx, client.UserID(), req.ChatID, req.Message, req.To)
		if sendErr != nil {
			h.sendErrorFrame(ctx, client, errorCode(sendErr))
			return
		}
		h.dispatcher.DispatchAsync(ctx, events)

	default:
		h.sendErrorFrame(ctx, client, consts.CodeParamError)
	}
}

// serveInternalPeer 处理内部可信对端接入。
// 内部对端不绑定用户身份，接入后立即下发 connected 确认，
// 上行只接受 redirect 帧，将事件转投给指定用户。
func (h *WSHandler) serveInternalPeer(c *gin.Context) {
	connCtx := context.Background()
	if traceID := ctxmeta.TraceIDFromGin(c); traceID != "" {
		connCtx = ctxmeta.WithTraceID(connCtx, traceID)
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(connCtx, "内部对端 WebSocket 升级失败", logger.ErrorField(err))
		return
	}

	client := manager.NewClient(conn, consts.InternalPeerToken, consts.InternalPeerToken)
	replaced := h.connManager.RegisterInternal(client)
	if replaced != nil {
		replaced.Close()
	}

	logger.Info(connCtx, "内部对端连接已建立", logger.String("client_ip", c.ClientIP()))
	h.reply(connCtx, client, consts.EventConnected, dto.ConnectedData{ID: consts.InternalPeerToken})

	client.Run(connCtx, func(raw []byte) {
		h.handleInternalMessage(connCtx, client, raw)
	}, func() {
		h.connManager.Unregister(client)
		logger.Info(connCtx, "内部对端连接已断开")
	})
}

// handleInternalMessage 处理内部对端上行帧。
// 转投走通知网关，和业务事件一样经过会话校验。
func (h *WSHandler) handleInternalMessage(ctx context.Context, client *manager.Client, raw []byte) {
	envelope, err := svc.ParseEnvelope(raw)
	if err != nil {
		h.sendErrorFrame(ctx, client, consts.CodeBodyError)
		return
	}

	switch envelope.Type {
	case consts.ActionHeartbeat:
		h.reply(ctx, client, consts.EventHeartbeatAck, nil)

	case consts.ActionRedirect:
		var req dto.RedirectRequest
		if bindErr := json.Unmarshal(envelope.Data, &req); bindErr != nil || req.To == "" || req.EventName == "" {
			h.sendErrorFrame(ctx, client, consts.CodeParamError)
			return
		}
		h.sender.SendMessageToUser(ctx, req.To, req.EventName, req.Content)

	default:
		h.sendErrorFrame(ctx, client, consts.CodeParamError)
	}
}

// reply 序列化并下发一帧，写队列不可用时关闭连接。
func (h *WSHandler) reply(ctx context.Context, client *manager.Client, eventName string, data any) {
	frame, err := svc.MarshalEnvelope(eventName, data)
	if err != nil {
		logger.Warn(ctx, "下行帧序列化失败",
			logger.String("event", eventName),
			logger.ErrorField(err),
		)
		return
	}
	if !client.Enqueue(frame) {
		client.Close()
	}
}

// sendErrorFrame 发送 ws 协议层错误帧。
// 发送失败通常表示连接不可写，此时主动关闭连接避免资源泄漏。
func (h *WSHandler) sendErrorFrame(ctx context.Context, client *manager.Client, code int32) {
	h.reply(ctx, client, consts.EventError, svc.ErrorData{
		Code:    int(code),
		Message: consts.GetMessage(code),
	})
}

// errorCode 将 service 层业务错误映射为协议错误码。
func errorCode(err error) int32 {
	switch {
	case errors.Is(err, service.ErrInvalidUser), errors.Is(err, service.ErrSelfTarget):
		return consts.CodeParamError
	case errors.Is(err, service.ErrChatNotFound):
		return consts.CodeChatNotFound
	case errors.Is(err, service.ErrDuplicateChat):
		return consts.CodeDuplicateChat
	case errors.Is(err, service.ErrNotChatMember):
		return consts.CodeNotChatMember
	default:
		return consts.CodeInternalError
	}
}

// writeAuthError 将鉴权错误映射为 HTTP 握手阶段错误响应。
// 握手前还未升级为 WebSocket，因此用 HTTP JSON 返回更直观。
func (h *WSHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, svc.ErrTokenRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    consts.CodeParamError,
			"message": err.Error(),
		})
	case errors.Is(err, svc.ErrSessionInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    consts.CodeInvalidToken,
			"message": consts.GetMessage(consts.CodeInvalidToken),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    consts.CodeInternalError,
			"message": consts.GetMessage(consts.CodeInternalError),
		})
	}
}

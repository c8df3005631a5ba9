// Package dto 定义 WebSocket 上行帧与 HTTP 接口的请求/响应结构。
package dto

import "encoding/json"

// CreateChatRequest createChat 上行帧载荷。
type CreateChatRequest struct {
	ChatPartnerID string `json:"chatPartnerId" binding:"required"`
}

// SendMessageRequest sendMessage 上行帧载荷。
// To 是接收 MESSAGE 通知的对端用户 id。
type SendMessageRequest struct {
	ChatID  int64  `json:"chatId" binding:"required"`
	Message string `json:"message" binding:"required"`
	To      string `json:"to"`
}

// RedirectRequest redirect 上行帧载荷（仅内部对端可用）。
// 将 Content 以 EventName 为事件名转投给用户 To。
type RedirectRequest struct {
	To        string          `json:"to" binding:"required"`
	EventName string          `json:"eventName" binding:"required"`
	Content   json.RawMessage `json:"content"`
}

// ConnectedData connected 下行帧载荷。
type ConnectedData struct {
	ID string `json:"id"`
}

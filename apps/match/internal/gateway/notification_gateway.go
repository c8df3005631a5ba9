// Package gateway 实现面向单用户通道的下行投递。
// 投递是尽力而为的：目标离线静默丢弃，会话失效则踢下线，
// 任何失败都不回传给业务调用方。
package gateway

import (
	"context"
	"errors"

	"MatchServer/apps/match/internal/manager"
	"MatchServer/apps/match/internal/metrics"
	"MatchServer/apps/match/internal/svc"
	"MatchServer/pkg/logger"
)

// NotificationGateway 向在线用户的活跃连接投递命名事件。
// 每次投递前重新校验连接携带的会话令牌，已吊销的会话
// 既收不到本条消息，连接本身也会被剔除。
type NotificationGateway struct {
	registry  *manager.ConnectionManager
	validator svc.SessionValidator
}

// NewNotificationGateway 创建通知网关实例。
func NewNotificationGateway(registry *manager.ConnectionManager, validator svc.SessionValidator) *NotificationGateway {
	return &NotificationGateway{
		registry:  registry,
		validator: validator,
	}
}

// SendMessageToUser 实现 service.MessageSender。
// 投递流程：
// 1. 查找目标用户的活跃连接，不存在则静默丢弃；
// 2. 重新校验连接的会话令牌，失效则剔除连接并丢弃；
// 3. 组装下行帧入队，队列满视为投递失败（只记日志）。
func (g *NotificationGateway) SendMessageToUser(ctx context.Context, targetUserID, eventName string, payload any) {
	client := g.registry.Get(targetUserID)
	if client == nil {
		metrics.DeliveryTotal.WithLabelValues("offline").Inc()
		logger.Debug(ctx, "目标用户不在线，丢弃下行事件",
			logger.String("target", targetUserID),
			logger.String("event", eventName),
		)
		return
	}

	if _, err := g.validator.Validate(ctx, client.Token()); err != nil {
		if errors.Is(err, svc.ErrSessionInvalid) || errors.Is(err, svc.ErrTokenRequired) {
			g.registry.EvictClient(client)
			metrics.DeliveryTotal.WithLabelValues("evicted").Inc()
			logger.Info(ctx, "连接会话已失效，剔除并丢弃下行事件",
				logger.String("target", targetUserID),
				logger.String("event", eventName),
			)
			return
		}
		metrics.DeliveryTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "会话校验失败，丢弃下行事件",
			logger.String("target", targetUserID),
			logger.String("event", eventName),
			logger.ErrorField(err),
		)
		return
	}

	frame, err := svc.MarshalEnvelope(eventName, payload)
	if err != nil {
		metrics.DeliveryTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "下行帧序列化失败",
			logger.String("target", targetUserID),
			logger.String("event", eventName),
			logger.ErrorField(err),
		)
		return
	}

	if !client.Enqueue(frame) {
		metrics.DeliveryTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "下行写队列不可用，丢弃事件",
			logger.String("target", targetUserID),
			logger.String("event", eventName),
		)
		return
	}

	metrics.DeliveryTotal.WithLabelValues("delivered").Inc()
}

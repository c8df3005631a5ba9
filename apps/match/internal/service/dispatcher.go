package service

import (
	"context"
	"time"

	"MatchServer/pkg/async"
)

// dispatchTimeout 单批事件投递的兜底超时
const dispatchTimeout = 30 * time.Second

// eventDispatcher 把状态机产出的事件异步交给消息发送方。
// 一批事件在同一个任务里顺序投递，保证同一用户通道上的事件
// 保持状态机产出时的先后关系。
type eventDispatcher struct {
	sender MessageSender
}

// NewEventDispatcher 创建事件分发器
func NewEventDispatcher(sender MessageSender) EventDispatcher {
	return &eventDispatcher{sender: sender}
}

// DispatchAsync 异步投递全部事件，调用立刻返回
func (d *eventDispatcher) DispatchAsync(ctx context.Context, events []Event) {
	if len(events) == 0 {
		return
	}
	async.RunSafe(ctx, func(taskCtx context.Context) {
		for _, ev := range events {
			d.sender.SendMessageToUser(taskCtx, ev.To, ev.Name, ev.Payload)
		}
	}, dispatchTimeout)
}

package service

import (
	"context"

	"MatchServer/apps/match/internal/metrics"
	"MatchServer/apps/match/internal/repository"
	"MatchServer/consts"
	"MatchServer/model"
)

// matchServiceImpl 配对状态机实现。
// flip 的原子性靠两层保证：
//   - 进程内按无向对互斥（pairLocker），串行化同一对的并发 flip；
//   - 存储层可串行化事务（ITxRunner），读-判-写要么全部提交要么全部回滚。
//
// 没有这两层时，两个方向的首次喜欢同时到达会各自读到“对方还没喜欢”，
// 双方都不建立配对（丢失更新）。
type matchServiceImpl struct {
	rel   repository.IRelationRepository
	tx    repository.ITxRunner
	locks *pairLocker
}

// NewMatchService 创建配对服务实例
func NewMatchService(rel repository.IRelationRepository, tx repository.ITxRunner) IMatchService {
	return &matchServiceImpl{
		rel:   rel,
		tx:    tx,
		locks: newPairLocker(),
	}
}

// validatePair 校验一次双用户操作的入参，不合法的请求不触达存储。
func validatePair(actorID, targetID string) error {
	if actorID == "" || targetID == "" {
		return ErrInvalidUser
	}
	if actorID == targetID {
		return ErrSelfTarget
	}
	return nil
}

// FlipLike 翻转 actor 对 target 的喜欢边。
// 状态迁移表：
//   - 无边 + 对方未喜欢   -> 插入边，LIKE 通知 target；
//   - 无边 + 对方已喜欢   -> 插入边，配对（Connection->MATCHED，会话建立/恢复），
//     MATCH 通知双方 + newChat 发双方；
//   - 有边 + 存在配对     -> 删边，解除配对（->UNMATCHED，会话软删除），
//     UNMATCH 通知双方 + deleteChat 发双方（载荷为对方 id）；
//   - 有边 + 不存在配对   -> 删边，UNLIKE 通知 target。
func (s *matchServiceImpl) FlipLike(ctx context.Context, actorID, targetID string) (bool, []Event, error) {
	if err := validatePair(actorID, targetID); err != nil {
		return false, nil, err
	}

	unlock := s.locks.Lock(actorID, targetID)
	defer unlock()

	var (
		liked  bool
		events []Event
	)

	err := s.tx.InTx(ctx, func(rel repository.IRelationRepository, chat repository.IChatRepository) error {
		// 每次重入事务闭包都从干净状态开始（事务可能被重试）
		liked = false
		events = nil

		existing, err := rel.HasLike(ctx, actorID, targetID)
		if err != nil {
			return err
		}

		if existing == nil {
			return s.applyLike(ctx, rel, chat, actorID, targetID, &liked, &events)
		}
		return s.applyUnlike(ctx, rel, chat, existing.Id, actorID, targetID, &events)
	})
	if err != nil {
		return false, nil, err
	}

	metrics.FlipTotal.WithLabelValues(flipOutcome(liked, events)).Inc()
	return liked, events, nil
}

// applyLike 处理“本次是喜欢”分支。
func (s *matchServiceImpl) applyLike(
	ctx context.Context,
	rel repository.IRelationRepository,
	chat repository.IChatRepository,
	actorID, targetID string,
	liked *bool,
	events *[]Event,
) error {
	if err := rel.InsertLike(ctx, actorID, targetID); err != nil {
		return err
	}
	*liked = true

	reciprocal, err := rel.HasLike(ctx, targetID, actorID)
	if err != nil {
		return err
	}
	if reciprocal == nil {
		*events = append(*events, notifyEvent(targetID, consts.NotifyLike, actorID))
		return nil
	}

	// 互相喜欢：配对成立
	if err := rel.UpsertConnectionMatched(ctx, actorID, targetID); err != nil {
		return err
	}
	*events = append(*events,
		notifyEvent(targetID, consts.NotifyMatch, actorID),
		notifyEvent(actorID, consts.NotifyMatch, targetID),
	)

	room, err := chat.ChatByPair(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if room == nil {
		room, err = chat.CreateChat(ctx, actorID, targetID)
		if err != nil {
			return err
		}
	}
	*events = append(*events, chatEventsForPair(actorID, targetID, consts.EventNewChat, *room)...)
	return nil
}

// applyUnlike 处理“本次是取消喜欢”分支。
func (s *matchServiceImpl) applyUnlike(
	ctx context.Context,
	rel repository.IRelationRepository,
	chat repository.IChatRepository,
	likeID int64,
	actorID, targetID string,
	events *[]Event,
) error {
	if err := rel.DeleteLike(ctx, likeID); err != nil {
		return err
	}

	changed, err := rel.SetConnectionStatus(ctx, actorID, targetID, model.ConnectionUnmatched)
	if err != nil {
		return err
	}
	if !changed {
		// 没有处于 MATCHED 的配对，仅是单向边消失
		*events = append(*events, notifyEvent(targetID, consts.NotifyUnlike, actorID))
		return nil
	}

	// 配对解除：会话随之拆除
	if err := chat.DeleteChatBetweenUsers(ctx, actorID, targetID); err != nil {
		return err
	}
	*events = append(*events,
		notifyEvent(targetID, consts.NotifyUnmatch, actorID),
		notifyEvent(actorID, consts.NotifyUnmatch, targetID),
		Event{To: actorID, Name: consts.EventDeleteChat, Payload: DeleteChatPayload{ID: targetID}},
		Event{To: targetID, Name: consts.EventDeleteChat, Payload: DeleteChatPayload{ID: actorID}},
	)
	return nil
}

// MatchStatus 查询两用户的配对状态
func (s *matchServiceImpl) MatchStatus(ctx context.Context, viewerID, otherID string) (*repository.MatchStatus, error) {
	if err := validatePair(viewerID, otherID); err != nil {
		return nil, err
	}
	return s.rel.GetConnectionStatus(ctx, viewerID, otherID)
}

// MatchesFor 返回用户的全部 MATCHED 配对
func (s *matchServiceImpl) MatchesFor(ctx context.Context, userID string) ([]repository.MatchStatus, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return s.rel.MatchesFor(ctx, userID)
}

// LikesBy 返回用户喜欢的全部用户
func (s *matchServiceImpl) LikesBy(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return s.rel.LikesBy(ctx, userID)
}

// LikedBy 返回喜欢该用户的全部用户
func (s *matchServiceImpl) LikedBy(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return s.rel.LikedBy(ctx, userID)
}

// Visit 记录主页访问，只产出通知事件，不落库
func (s *matchServiceImpl) Visit(ctx context.Context, visitorID, targetID string) ([]Event, error) {
	if err := validatePair(visitorID, targetID); err != nil {
		return nil, err
	}
	return []Event{notifyEvent(targetID, consts.NotifyVisit, visitorID)}, nil
}

// flipOutcome 把一次 flip 的结果归类为指标标签。
func flipOutcome(liked bool, events []Event) string {
	for _, ev := range events {
		payload, ok := ev.Payload.(NotificationPayload)
		if !ok {
			continue
		}
		switch payload.Type {
		case consts.NotifyMatch:
			return "match"
		case consts.NotifyUnmatch:
			return "unmatch"
		}
	}
	if liked {
		return "like"
	}
	return "unlike"
}

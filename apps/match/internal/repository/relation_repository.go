package repository

import (
	"context"
	"errors"

	"MatchServer/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// relationRepositoryImpl 喜欢边与配对状态数据访问层实现
type relationRepositoryImpl struct {
	db *gorm.DB
}

// NewRelationRepository 创建关系仓储实例
func NewRelationRepository(db *gorm.DB) IRelationRepository {
	return &relationRepositoryImpl{db: db}
}

// HasLike 查询有向喜欢边
func (r *relationRepositoryImpl) HasLike(ctx context.Context, likerID, likedID string) (*model.Like, error) {
	var like model.Like
	err := r.db.WithContext(ctx).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBErrorf(err, "query like edge")
	}
	return &like, nil
}

// InsertLike 插入有向喜欢边
func (r *relationRepositoryImpl) InsertLike(ctx context.Context, likerID, likedID string) error {
	like := &model.Like{
		LikerId: likerID,
		LikedId: likedID,
	}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		return WrapDBErrorf(err, "insert like edge")
	}
	return nil
}

// DeleteLike 按主键物理删除喜欢边
func (r *relationRepositoryImpl) DeleteLike(ctx context.Context, likeID int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Like{}, likeID)
	if result.Error != nil {
		return WrapDBErrorf(result.Error, "delete like edge")
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpsertConnectionMatched 将无向对的配对状态置为 MATCHED。
// Upsert (INSERT ON DUPLICATE KEY UPDATE) 策略：
//   - 原子性：不存在“查不到然后插入报错”的时间差；
//   - 同一对用户跨多轮 match/unmatch 始终复用同一行。
func (r *relationRepositoryImpl) UpsertConnectionMatched(ctx context.Context, userA, userB string) error {
	low, high := model.CanonicalPair(userA, userB)
	conn := &model.Connection{
		UserLow:  low,
		UserHigh: high,
		Status:   model.ConnectionMatched,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_low"}, {Name: "user_high"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"status": model.ConnectionMatched}),
	}).Create(conn).Error
	if err != nil {
		return WrapDBErrorf(err, "upsert connection matched")
	}
	return nil
}

// SetConnectionStatus 仅当无向对已有记录且状态不同才更新。
// RowsAffected 区分“翻转了状态”与“本来就没有/已是目标状态”。
func (r *relationRepositoryImpl) SetConnectionStatus(ctx context.Context, userA, userB, status string) (bool, error) {
	low, high := model.CanonicalPair(userA, userB)
	result := r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("user_low = ? AND user_high = ? AND status <> ?", low, high, status).
		Update("status", status)
	if result.Error != nil {
		return false, WrapDBErrorf(result.Error, "set connection status")
	}
	return result.RowsAffected > 0, nil
}

// GetConnectionStatus 查询无向对的配对状态，userA 视角呈现
func (r *relationRepositoryImpl) GetConnectionStatus(ctx context.Context, userA, userB string) (*MatchStatus, error) {
	low, high := model.CanonicalPair(userA, userB)
	var conn model.Connection
	err := r.db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", low, high).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBErrorf(err, "query connection status")
	}
	status := toMatchStatus(&conn, userA)
	return &status, nil
}

// LikesBy 返回 userID 喜欢的全部用户
func (r *relationRepositoryImpl) LikesBy(ctx context.Context, userID string) ([]string, error) {
	var liked []string
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("liker_id = ?", userID).
		Pluck("liked_id", &liked).Error
	if err != nil {
		return nil, WrapDBErrorf(err, "query likes by user")
	}
	return liked, nil
}

// LikedBy 返回喜欢 userID 的全部用户
func (r *relationRepositoryImpl) LikedBy(ctx context.Context, userID string) ([]string, error) {
	var likers []string
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("liked_id = ?", userID).
		Pluck("liker_id", &likers).Error
	if err != nil {
		return nil, WrapDBErrorf(err, "query liked by user")
	}
	return likers, nil
}

// MatchesFor 返回 userID 的全部 MATCHED 配对。
// 呈现约定：无论存储方向如何，查询方都是每项的 UserOne。
func (r *relationRepositoryImpl) MatchesFor(ctx context.Context, userID string) ([]MatchStatus, error) {
	var conns []model.Connection
	err := r.db.WithContext(ctx).
		Where("(user_low = ? OR user_high = ?) AND status = ?", userID, userID, model.ConnectionMatched).
		Order("updated_at DESC, id DESC").
		Find(&conns).Error
	if err != nil {
		return nil, WrapDBErrorf(err, "query matches for user")
	}

	matches := make([]MatchStatus, 0, len(conns))
	for i := range conns {
		matches = append(matches, toMatchStatus(&conns[i], userID))
	}
	return matches, nil
}

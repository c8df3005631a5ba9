package svc

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"MatchServer/consts/redisKey"
	"MatchServer/pkg/logger"
	"MatchServer/pkg/util"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

var (
	// ErrTokenRequired 表示握手参数中缺少 token。
	ErrTokenRequired = errors.New("token is required")
	// ErrSessionInvalid 表示 token 非法、已过期或会话已被吊销。
	ErrSessionInvalid = errors.New("session is invalid")
)

// Identity 保存会话校验通过后的身份信息。
type Identity struct {
	UserID string
}

// SessionValidator 校验会话令牌是否仍然有效。
// 网关在建连时和每次特权投递前都会调用；实现必须对吊销敏感，
// 不允许缓存“会话有效”这一结论。
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*Identity, error)
}

// claimsCacheSize 已解析 claims 的 LRU 容量。
// 只缓存 JWT 解析结果（纯 CPU 工作），吊销状态每次都查 Redis。
const claimsCacheSize = 4096

// sessionService 基于 JWT + Redis 的会话校验实现。
// 校验流程：
// 1. 解析 JWT（LRU 缓存解析结果，过期时间单独复核）；
// 2. 查 Redis session:at:{user_id}，比对 md5(token)；
// 3. key 不存在或哈希不匹配视为会话已吊销。
//
// 降级策略（Fail-Open）：
// - Redis 持续故障时熔断器打开，退化为仅 JWT 校验；
// - 这样可提升可用性，但会降低“被踢立即失效”的严格性。
type sessionService struct {
	redisClient *redis.Client
	claims      *lru.Cache[string, *util.Claims]
	breaker     *gobreaker.CircuitBreaker
}

// NewSessionService 创建会话校验服务实例。
func NewSessionService(redisClient *redis.Client) (SessionValidator, error) {
	cache, err := lru.New[string, *util.Claims](claimsCacheSize)
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "session-redis",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &sessionService{
		redisClient: redisClient,
		claims:      cache,
		breaker:     breaker,
	}, nil
}

// Validate 校验 token 并返回身份信息。
func (s *sessionService) Validate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	claims, err := s.parseClaims(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	if err := s.checkRevocation(ctx, claims.UserID, token); err != nil {
		return nil, err
	}

	return &Identity{UserID: claims.UserID}, nil
}

// parseClaims 解析 JWT，命中 LRU 时跳过签名校验但仍复核过期时间。
func (s *sessionService) parseClaims(token string) (*util.Claims, error) {
	if cached, ok := s.claims.Get(token); ok {
		if cached.ExpiresAt != nil && cached.ExpiresAt.Before(time.Now()) {
			s.claims.Remove(token)
			return nil, util.ErrTokenInvalid
		}
		return cached, nil
	}

	claims, err := util.ParseToken(token)
	if err != nil {
		return nil, err
	}
	s.claims.Add(token, claims)
	return claims, nil
}

// checkRevocation 对照 Redis 中的会话哈希判断吊销状态。
// 该检查不走缓存：吊销后的下一次校验必须立刻失败。
func (s *sessionService) checkRevocation(ctx context.Context, userID, token string) error {
	if s.redisClient == nil {
		return nil
	}

	stored, err := s.breaker.Execute(func() (any, error) {
		return s.redisClient.Get(ctx, rediskey.SessionTokenKey(userID)).Result()
	})

	switch {
	case errors.Is(err, redis.Nil):
		return ErrSessionInvalid
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		// 熔断打开，降级为仅 JWT 校验。
		return nil
	case err != nil:
		// Redis 短暂故障时采用 fail-open，优先保证投递链路可用。
		logger.Warn(ctx, "会话校验读取 Redis 失败，降级为仅 JWT 校验",
			logger.String("user_id", userID),
			logger.ErrorField(err),
		)
		return nil
	}

	if hash, _ := stored.(string); hash != md5Hex(token) {
		return ErrSessionInvalid
	}
	return nil
}

// md5Hex 返回字符串的 MD5 十六进制摘要。
// 用于与会话签发方存储的 token 哈希值比较。
func md5Hex(value string) string {
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}

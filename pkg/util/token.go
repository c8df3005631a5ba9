package util

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 会话 token 的自定义载荷。
// 本服务只做校验：user_id 为必填，签发由外部会话服务负责。
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// ErrTokenInvalid 表示 token 非法、签名不匹配或已过期。
var ErrTokenInvalid = errors.New("token is invalid")

// jwtSecret 校验密钥，必须与签发方一致。
// JWT_SECRET 环境变量覆盖；默认值仅供本地开发。
var jwtSecret = func() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("matchserver-dev-secret")
}()

// ParseToken 解析并校验会话 token，返回其中的身份声明。
// 只接受 HMAC 签名算法，防止 alg 混淆攻击。
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// SignToken 用当前密钥签发一个 token。
// 仅用于本地联调与测试，线上签发方是独立的会话服务。
func SignToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

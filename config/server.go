package config

import (
	"os"
	"time"
)

// ServerConfig HTTP/WebSocket 服务的运行参数。
// 超时用于限制异常连接占用资源，避免慢连接拖垮服务。
type ServerConfig struct {
	Addr              string        `json:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	RateLimitPerSec   float64       `json:"rateLimitPerSec" yaml:"rateLimitPerSec"` // 每 IP 每秒放行请求数
	RateLimitBurst    int           `json:"rateLimitBurst" yaml:"rateLimitBurst"`   // 每 IP 突发容量
}

// DefaultServerConfig 返回默认配置。
// 端口优先读取 MATCH_ADDR，未设置时默认监听 :8080。
// 说明：Read/Write 全局超时会杀掉长连接，WebSocket 服务只收紧握手阶段的超时。
func DefaultServerConfig() ServerConfig {
	addr := os.Getenv("MATCH_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return ServerConfig{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		RateLimitPerSec:   20,
		RateLimitBurst:    40,
	}
}

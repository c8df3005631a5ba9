package config

import (
	"os"
	"time"
)

// RedisConfig Redis 连接配置。
type RedisConfig struct {
	Addr         string        `json:"addr" yaml:"addr"`                 // 地址 host:port
	Password     string        `json:"password" yaml:"password"`         // 密码
	DB           int           `json:"db" yaml:"db"`                     // 库编号
	DialTimeout  time.Duration `json:"dialTimeout" yaml:"dialTimeout"`   // 连接超时
	ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout"`   // 读超时
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"` // 写超时
}

// DefaultRedisConfig 返回本地开发的默认配置。
// REDIS_ADDR/REDIS_PASSWORD 环境变量可覆盖。
func DefaultRedisConfig() RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	return RedisConfig{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
}

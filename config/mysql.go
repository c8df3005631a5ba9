package config

import (
	"os"
	"time"
)

// MySQLConfig 数据库连接配置。
type MySQLConfig struct {
	DSN             string        `json:"dsn" yaml:"dsn"`                         // 连接串
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`       // 最大打开连接数
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`       // 最大空闲连接数
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"` // 连接最大存活时间
}

// DefaultMySQLConfig 返回本地开发的默认配置。
// MYSQL_DSN 环境变量可覆盖连接串。
func DefaultMySQLConfig() MySQLConfig {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/matchserver?charset=utf8mb4&parseTime=True&loc=UTC"
	}
	return MySQLConfig{
		DSN:             dsn,
		MaxOpenConns:    64,
		MaxIdleConns:    16,
		ConnMaxLifetime: time.Hour,
	}
}

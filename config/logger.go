package config

import "os"

// LoggerConfig 日志组件配置。
type LoggerConfig struct {
	Level            string   `json:"level" yaml:"level"`                       // 日志级别 debug/info/warn/error
	Encoding         string   `json:"encoding" yaml:"encoding"`                 // 编码方式 json/console
	Development      bool     `json:"development" yaml:"development"`           // 开发模式（error 级别带堆栈）
	EnableColor      bool     `json:"enableColor" yaml:"enableColor"`           // console 模式是否着色
	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths"`           // 普通日志输出路径
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths"` // 错误日志输出路径
}

// DefaultLoggerConfig 返回容器友好的默认配置（stdout/stderr, json）。
// LOG_LEVEL 环境变量可覆盖日志级别。
func DefaultLoggerConfig() LoggerConfig {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return LoggerConfig{
		Level:    level,
		Encoding: "json",
	}
}

// Package metrics 定义服务的 Prometheus 指标，经 promauto 注册到默认 Registry，
// 由 /metrics 端点暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FlipTotal 喜欢翻转计数，outcome 取 like/match/unlike/unmatch。
	FlipTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "match",
		Name:      "flip_total",
		Help:      "Total like flips by state machine outcome.",
	}, []string{"outcome"})

	// OnlineConnections 当前在线 WebSocket 连接数。
	OnlineConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "match",
		Name:      "online_connections",
		Help:      "Number of registered WebSocket connections.",
	})

	// DeliveryTotal 下行事件投递结果计数，result 取 delivered/offline/evicted/error。
	DeliveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "match",
		Name:      "delivery_total",
		Help:      "Total downstream event deliveries by result.",
	}, []string{"result"})
)

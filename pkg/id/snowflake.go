package id

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	initOnce sync.Once
	initErr  error
)

// Init 初始化全局 snowflake 节点（进程启动时调用一次）。
// 节点编号读取 SNOWFLAKE_NODE 环境变量，未设置时为 0；
// 多实例部署时必须为每个实例分配不同编号，否则会产生重复 id。
func Init() error {
	initOnce.Do(func() {
		nodeID := int64(0)
		if raw := os.Getenv("SNOWFLAKE_NODE"); raw != "" {
			if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// Next 生成下一个全局唯一 id。
// 未显式 Init 时懒加载默认节点，保证测试环境可直接使用。
func Next() int64 {
	if node == nil {
		if err := Init(); err != nil {
			panic(err)
		}
	}
	return node.Generate().Int64()
}

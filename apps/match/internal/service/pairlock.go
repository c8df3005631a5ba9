package service

import (
	"sync"

	"MatchServer/model"
)

// pairLocker 按无向用户对串行化 flip。
// 事务隔离之外的显式互斥：同一对用户的两次 flip 绝不并发进入
// 读-判-写序列，不同对之间互不阻塞。条目带引用计数，解锁后无人
// 等待即回收，map 不随用户对数量无界增长。
type pairLocker struct {
	mu    sync.Mutex
	locks map[string]*pairLockEntry
}

type pairLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newPairLocker() *pairLocker {
	return &pairLocker{locks: make(map[string]*pairLockEntry)}
}

// Lock 锁住无向对，返回对应的解锁函数。
func (p *pairLocker) Lock(userA, userB string) func() {
	low, high := model.CanonicalPair(userA, userB)
	key := low + ":" + high

	p.mu.Lock()
	entry, ok := p.locks[key]
	if !ok {
		entry = &pairLockEntry{}
		p.locks[key] = entry
	}
	entry.refs++
	p.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		p.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

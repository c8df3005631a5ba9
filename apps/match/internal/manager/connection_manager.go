package manager

import (
	"sync"

	"MatchServer/apps/match/internal/metrics"
)

// ConnectionManager 管理所有在线 WebSocket 连接。
// 每个用户最多一条活跃连接，新连接注册时替换旧连接；
// 内部对端（服务身份建连）单独占一个槽位，不参与会话校验。
type ConnectionManager struct {
	mu       sync.RWMutex
	byUser   map[string]*Client
	internal *Client
	shutdown bool
}

// NewConnectionManager 创建连接管理器实例。
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		byUser: make(map[string]*Client),
	}
}

// Register 注册一个用户连接。
// 返回值 replaced 表示被新连接替换掉的旧连接（如果存在）。
// 调用方应主动关闭 replaced，确保同一用户最多一个活跃连接。
func (m *ConnectionManager) Register(client *Client) (replaced *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil
	}

	if old, ok := m.byUser[client.UserID()]; ok && old != client {
		replaced = old
	}

	m.byUser[client.UserID()] = client
	metrics.OnlineConnections.Set(float64(len(m.byUser)))
	return replaced
}

// RegisterInternal 注册内部对端连接，返回被替换的旧连接。
func (m *ConnectionManager) RegisterInternal(client *Client) (replaced *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil
	}

	if m.internal != nil && m.internal != client {
		replaced = m.internal
	}
	m.internal = client
	return replaced
}

// Unregister 注销一个连接。
// 只有当 map 中当前连接与入参完全一致时才删除，防止并发替换时误删新连接。
func (m *ConnectionManager) Unregister(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.internal == client {
		m.internal = nil
		return
	}

	current, ok := m.byUser[client.UserID()]
	if !ok || current != client {
		return
	}

	delete(m.byUser, client.UserID())
	metrics.OnlineConnections.Set(float64(len(m.byUser)))
}

// Get 返回用户的活跃连接，不存在时返回 nil。
func (m *ConnectionManager) Get(userID string) *Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byUser[userID]
}

// EvictClient 注销并关闭一个连接（会话失效时调用）。
func (m *ConnectionManager) EvictClient(client *Client) {
	m.Unregister(client)
	client.Close()
}

// Count 返回当前在线用户连接数（不含内部对端）。
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUser)
}

// Shutdown 关闭全部连接并阻止后续注册。
// 用于进程优雅退出阶段，确保不再接收新连接并尽快释放资源。
func (m *ConnectionManager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true

	clients := make([]*Client, 0, len(m.byUser)+1)
	for _, client := range m.byUser {
		clients = append(clients, client)
	}
	if m.internal != nil {
		clients = append(clients, m.internal)
		m.internal = nil
	}
	m.byUser = make(map[string]*Client)
	metrics.OnlineConnections.Set(0)
	m.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}

package manager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"MatchServer/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var managerLoggerOnce sync.Once

func initManagerTestLogger() {
	managerLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// newWSPair 建立一对真实的 WebSocket 连接，返回 (服务端, 客户端)。
func newWSPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	serverCh := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = clientConn.Close() })

	serverConn := <-serverCh
	t.Cleanup(func() { _ = serverConn.Close() })
	return serverConn, clientConn
}

// newTestClient 返回包装好的服务端连接与其对端原始连接。
func newTestClient(t *testing.T, userID, token string) (*Client, *websocket.Conn) {
	t.Helper()
	serverConn, clientConn := newWSPair(t)
	return NewClient(serverConn, userID, token), clientConn
}

func TestManagerRegisterAndGet(t *testing.T) {
	initManagerTestLogger()
	m := NewConnectionManager()

	c1, _ := newTestClient(t, "u1", "t1")
	replaced := m.Register(c1)
	assert.Nil(t, replaced)
	assert.Same(t, c1, m.Get("u1"))
	assert.Equal(t, 1, m.Count())
	assert.Nil(t, m.Get("u2"))
}

func TestManagerReplaceOnReconnect(t *testing.T) {
	initManagerTestLogger()
	m := NewConnectionManager()

	c1, _ := newTestClient(t, "u1", "t1")
	c2, _ := newTestClient(t, "u1", "t2")

	require.Nil(t, m.Register(c1))
	replaced := m.Register(c2)
	assert.Same(t, c1, replaced)
	assert.Same(t, c2, m.Get("u1"))
	assert.Equal(t, 1, m.Count())
}

func TestManagerUnregisterIdentityCompare(t *testing.T) {
	initManagerTestLogger()
	m := NewConnectionManager()

	c1, _ := newTestClient(t, "u1", "t1")
	c2, _ := newTestClient(t, "u1", "t2")
	m.Register(c1)
	m.Register(c2)

	// 旧连接的延迟注销不能误删新连接
	m.Unregister(c1)
	assert.Same(t, c2, m.Get("u1"))

	m.Unregister(c2)
	assert.Nil(t, m.Get("u1"))
	assert.Equal(t, 0, m.Count())
}

func TestManagerEvictClient(t *testing.T) {
	initManagerTestLogger()
	m := NewConnectionManager()

	c1, peer := newTestClient(t, "u1", "t1")
	m.Register(c1)

	m.EvictClient(c1)
	assert.Nil(t, m.Get("u1"))

	// 底层连接已关闭，对端读取报错
	_ = peer.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := peer.ReadMessage()
	assert.Error(t, err)
}

func TestManagerInternalPeerSlot(t *testing.T) {
	initManagerTestLogger()
	m := NewConnectionManager()

	p1, _ := newTestClient(t, "server", "server")
	p2, _ := newTestClient(t, "server", "server")

	require.Nil(t, m.RegisterInternal(p1))
	replaced := m.RegisterInternal(p2)
	assert.Same(t, p1, replaced)

	// 内部对端不计入在线用户数，也不出现在用户索引里
	assert.Equal(t, 0, m.Count())
	assert.Nil(t, m.Get("server"))

	m.Unregister(p2)
	assert.Nil(t, m.RegisterInternal(p2))
}

func TestManagerShutdown(t *testing.T) {
	initManagerTestLogger()
	m := NewConnectionManager()

	c1, _ := newTestClient(t, "u1", "t1")
	c2, _ := newTestClient(t, "u2", "t2")
	m.Register(c1)
	m.Register(c2)

	m.Shutdown()
	assert.Equal(t, 0, m.Count())

	// 停机后拒绝新注册
	c3, _ := newTestClient(t, "u3", "t3")
	assert.Nil(t, m.Register(c3))
	assert.Nil(t, m.Get("u3"))

	// 已有连接全部收到关闭信号
	select {
	case <-c1.Done():
	default:
		t.Fatal("c1 not closed after shutdown")
	}
	select {
	case <-c2.Done():
	default:
		t.Fatal("c2 not closed after shutdown")
	}
}

func TestClientEnqueueAndWrite(t *testing.T) {
	initManagerTestLogger()
	c, peer := newTestClient(t, "u1", "t1")

	go c.Run(context.Background(), nil, nil)

	require.True(t, c.Enqueue([]byte(`{"type":"ping"}`)))

	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := peer.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"ping"}`, string(raw))
}

func TestClientCloseIsIdempotent(t *testing.T) {
	initManagerTestLogger()
	c, _ := newTestClient(t, "u1", "t1")

	c.Close()
	c.Close()

	assert.False(t, c.Enqueue([]byte("x")))
	select {
	case <-c.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

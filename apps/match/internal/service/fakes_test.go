package service

import (
	"context"
	"sync"

	"MatchServer/apps/match/internal/repository"
	"MatchServer/model"
)

// memStore 内存版存储，被 fake 仓储共享。
// 单把互斥锁覆盖全部操作，配合 fakeTxRunner 的事务级互斥，
// 等价于可串行化隔离下的读-判-写序列。
type memStore struct {
	mu     sync.Mutex
	nextID int64
	likes  []likeEdge
	conns  map[string]string
	chats  map[string]*memChat
}

type likeEdge struct {
	id    int64
	liker string
	liked string
}

type memChat struct {
	id      int64
	low     string
	high    string
	deleted bool
	msgs    []repository.Message
}

func newMemStore() *memStore {
	return &memStore{
		conns: make(map[string]string),
		chats: make(map[string]*memChat),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func pairKey(a, b string) string {
	low, high := model.CanonicalPair(a, b)
	return low + ":" + high
}

// activeChat 返回无向对的活跃会话（持锁调用）。
func (s *memStore) activeChat(a, b string) *memChat {
	c, ok := s.chats[pairKey(a, b)]
	if !ok || c.deleted {
		return nil
	}
	return c
}

func (s *memStore) toChat(c *memChat) *repository.Chat {
	msgs := make([]repository.Message, len(c.msgs))
	copy(msgs, c.msgs)
	return &repository.Chat{
		ID:       c.id,
		UserOne:  c.low,
		UserTwo:  c.high,
		Messages: msgs,
	}
}

// ==================== fakeRelationRepo ====================

type fakeRelationRepo struct {
	store *memStore
}

var _ repository.IRelationRepository = (*fakeRelationRepo)(nil)

func (f *fakeRelationRepo) HasLike(_ context.Context, likerID, likedID string) (*model.Like, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, e := range f.store.likes {
		if e.liker == likerID && e.liked == likedID {
			return &model.Like{Id: e.id, LikerId: e.liker, LikedId: e.liked}, nil
		}
	}
	return nil, nil
}

func (f *fakeRelationRepo) InsertLike(_ context.Context, likerID, likedID string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, e := range f.store.likes {
		if e.liker == likerID && e.liked == likedID {
			return repository.ErrDuplicateKey
		}
	}
	f.store.likes = append(f.store.likes, likeEdge{id: f.store.id(), liker: likerID, liked: likedID})
	return nil
}

func (f *fakeRelationRepo) DeleteLike(_ context.Context, likeID int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for i, e := range f.store.likes {
		if e.id == likeID {
			f.store.likes = append(f.store.likes[:i], f.store.likes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRelationRepo) UpsertConnectionMatched(_ context.Context, userA, userB string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.conns[pairKey(userA, userB)] = model.ConnectionMatched
	return nil
}

func (f *fakeRelationRepo) SetConnectionStatus(_ context.Context, userA, userB, status string) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := pairKey(userA, userB)
	current, ok := f.store.conns[key]
	if !ok || current == status {
		return false, nil
	}
	f.store.conns[key] = status
	return true, nil
}

func (f *fakeRelationRepo) GetConnectionStatus(_ context.Context, userA, userB string) (*repository.MatchStatus, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	status, ok := f.store.conns[pairKey(userA, userB)]
	if !ok {
		return nil, nil
	}
	return &repository.MatchStatus{UserOne: userA, UserTwo: userB, Status: status}, nil
}

func (f *fakeRelationRepo) LikesBy(_ context.Context, userID string) ([]string, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []string
	for _, e := range f.store.likes {
		if e.liker == userID {
			out = append(out, e.liked)
		}
	}
	return out, nil
}

func (f *fakeRelationRepo) LikedBy(_ context.Context, userID string) ([]string, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []string
	for _, e := range f.store.likes {
		if e.liked == userID {
			out = append(out, e.liker)
		}
	}
	return out, nil
}

func (f *fakeRelationRepo) MatchesFor(_ context.Context, userID string) ([]repository.MatchStatus, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []repository.MatchStatus
	for key, status := range f.store.conns {
		if status != model.ConnectionMatched {
			continue
		}
		low, high := splitPairKey(key)
		other := model.PairOther(low, high, userID)
		if other == "" {
			continue
		}
		out = append(out, repository.MatchStatus{UserOne: userID, UserTwo: other, Status: status})
	}
	return out, nil
}

func splitPairKey(key string) (low, high string) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

// ==================== fakeChatRepo ====================

type fakeChatRepo struct {
	store *memStore
}

var _ repository.IChatRepository = (*fakeChatRepo)(nil)

func (f *fakeChatRepo) CreateChat(_ context.Context, userA, userB string) (*repository.Chat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := pairKey(userA, userB)
	if c, ok := f.store.chats[key]; ok {
		if !c.deleted {
			return nil, repository.ErrDuplicateKey
		}
		// 历史会话恢复，保留既有消息
		c.deleted = false
		return f.store.toChat(c), nil
	}
	low, high := model.CanonicalPair(userA, userB)
	c := &memChat{id: f.store.id(), low: low, high: high}
	f.store.chats[key] = c
	return f.store.toChat(c), nil
}

func (f *fakeChatRepo) ChatByPair(_ context.Context, userA, userB string) (*repository.Chat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	c := f.store.activeChat(userA, userB)
	if c == nil {
		return nil, nil
	}
	return f.store.toChat(c), nil
}

func (f *fakeChatRepo) ChatByID(_ context.Context, chatID int64) (*repository.Chat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, c := range f.store.chats {
		if c.id == chatID && !c.deleted {
			return f.store.toChat(c), nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) ChatsForUser(_ context.Context, userID string) ([]repository.Chat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []repository.Chat
	for _, c := range f.store.chats {
		if c.deleted {
			continue
		}
		if c.low == userID || c.high == userID {
			out = append(out, *f.store.toChat(c))
		}
	}
	return out, nil
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, chatID int64, senderID, body string) (*repository.Message, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, c := range f.store.chats {
		if c.id == chatID && !c.deleted {
			msg := repository.Message{
				ID:     f.store.id(),
				ChatID: chatID,
				Sender: senderID,
				Body:   body,
			}
			c.msgs = append(c.msgs, msg)
			return &msg, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeChatRepo) DeleteChatBetweenUsers(_ context.Context, userA, userB string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if c := f.store.activeChat(userA, userB); c != nil {
		c.deleted = true
	}
	return nil
}

// ==================== fakeTxRunner ====================

// fakeTxRunner 用一把大锁模拟可串行化事务：同一时刻只有一个事务闭包在执行。
type fakeTxRunner struct {
	txMu  sync.Mutex
	store *memStore
}

var _ repository.ITxRunner = (*fakeTxRunner)(nil)

func (f *fakeTxRunner) InTx(_ context.Context, fn func(rel repository.IRelationRepository, chat repository.IChatRepository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(&fakeRelationRepo{store: f.store}, &fakeChatRepo{store: f.store})
}

// ==================== fakeSender ====================

type sentEvent struct {
	To      string
	Name    string
	Payload any
}

// fakeSender 记录投递调用，供分发器测试断言顺序与内容。
type fakeSender struct {
	mu   sync.Mutex
	sent []sentEvent
}

var _ MessageSender = (*fakeSender)(nil)

func (f *fakeSender) SendMessageToUser(_ context.Context, targetUserID, eventName string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvent{To: targetUserID, Name: eventName, Payload: payload})
}

func (f *fakeSender) snapshot() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentEvent, len(f.sent))
	copy(out, f.sent)
	return out
}

// newTestMatchService 组装跑在内存存储上的配对服务。
func newTestMatchService() (IMatchService, *memStore) {
	store := newMemStore()
	return NewMatchService(&fakeRelationRepo{store: store}, &fakeTxRunner{store: store}), store
}

package server

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ziadkadry99/cyanguide/internal/llm"
)

const (
	defaultMaxSessions = 256
	maxSessionIDLen    = 128
)

var errBadSessionID = errors.New("session id too long")

// conversation is one reader's chat. Only one turn may be in flight.
type conversation struct {
	client *llm.Client
	busy   atomic.Bool
}

func (c *conversation) acquire() bool { return c.busy.CompareAndSwap(false, true) }
func (c *conversation) release()      { c.busy.Store(false) }

// sessionCache maps browser session ids to conversations. Nothing is
// persisted; an evicted reader simply starts over.
type sessionCache struct {
	provider llm.Provider
	cfg      llm.SessionConfig

	mu    sync.Mutex
	cache *lru.Cache[string, *conversation]
}

func newSessionCache(size int, provider llm.Provider, cfg llm.SessionConfig) (*sessionCache, error) {
	if size <= 0 {
		size = defaultMaxSessions
	}
	cache, err := lru.NewWithEvict(size, func(id string, _ *conversation) {
		log.Printf("server: evicted chat session %s", id)
	})
	if err != nil {
		return nil, err
	}
	return &sessionCache{provider: provider, cfg: cfg, cache: cache}, nil
}

// get returns the conversation for id, creating it if needed. An empty id
// gets a fresh uuid.
func (c *sessionCache) get(id string) (string, *conversation, error) {
	if len(id) > maxSessionIDLen {
		return "", nil, errBadSessionID
	}
	if id == "" {
		id = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if conv, ok := c.cache.Get(id); ok {
		return id, conv, nil
	}
	conv := &conversation{client: llm.NewClient(c.provider, c.cfg)}
	c.cache.Add(id, conv)
	return id, conv, nil
}

// remove forgets id. It reports whether the session existed.
func (c *sessionCache) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Remove(id)
}

func (c *sessionCache) len() int {
	return c.cache.Len()
}

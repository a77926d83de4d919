package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"padharo_guide/internal/adapters/observability"
)

// Store is the single source of truth for the current login. The token
// lives in Redis under one key so every running client process sees the
// same session; changes are signaled on a payload-less pub/sub channel
// and subscribers re-read the key rather than trust the message.
type Store struct {
	rdb     *redis.Client
	key     string
	channel string

	mu        sync.Mutex
	listeners []func()

	sub  *redis.PubSub
	done chan struct{}
}

func New(rdb *redis.Client, key, channel string) *Store {
	s := &Store{
		rdb:     rdb,
		key:     key,
		channel: channel,
		done:    make(chan struct{}),
	}
	s.sub = rdb.Subscribe(context.Background(), channel)
	// Wait for the subscription confirmation so a change published right
	// after construction is not lost.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := s.sub.Receive(ctx); err != nil {
		log.Warn().Err(err).Msg("session change subscription not confirmed")
	}
	cancel()
	go s.listen()
	return s
}

// NewFromAddr dials Redis and builds a Store; the common wiring path
// for the CLI mains.
func NewFromAddr(addr, pass string, db int, key, channel string) *Store {
	return New(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), key, channel)
}

// Token reads the current bearer token from storage at call time.
// Another process may have logged in or out since the last read, so the
// value is never cached in memory. Absent key means logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, err := s.rdb.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// UserID returns the user identifier claim from the token payload.
// The signature is deliberately not verified: the value is a display
// hint for UI affordances only, and every authorization decision is
// re-validated server-side. A malformed token degrades to "no user".
func (s *Store) UserID(ctx context.Context) (string, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	return decodeUserID(tok), nil
}

// Save installs an externally issued token and notifies all subscribers,
// including this process's own.
func (s *Store) Save(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, s.key, token, 0).Err(); err != nil {
		return err
	}
	observability.ObserveSession("save")
	return s.publish(ctx)
}

// Logout clears the token and notifies all subscribers. The navigation
// layer decides what to do next (typically return to the login surface).
func (s *Store) Logout(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return err
	}
	observability.ObserveSession("logout")
	return s.publish(ctx)
}

// OnChange registers fn to run on every session change notification,
// whichever process caused it. fn runs on the subscriber goroutine and
// must re-read Token/UserID itself.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Close tears down the subscriber. Pending notifications are dropped.
func (s *Store) Close() error {
	err := s.sub.Close()
	<-s.done
	return err
}

func (s *Store) publish(ctx context.Context) error {
	// No payload: receivers re-read the key.
	return s.rdb.Publish(ctx, s.channel, "").Err()
}

func (s *Store) listen() {
	defer close(s.done)
	for range s.sub.Channel() {
		observability.ObserveSession("notify")
		s.mu.Lock()
		fns := make([]func(), len(s.listeners))
		copy(fns, s.listeners)
		s.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
	log.Debug().Msg("session subscriber stopped")
}

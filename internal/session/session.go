// Package session owns the signed-in state: the session token and the cached user identity.
// Nothing else reads or writes those storage keys.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"taskdeck/internal/model"

	"github.com/charmbracelet/log"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage is the durable key-value backend (store.Store, store.Memory).
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, kv map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	storage Storage
	log     *log.Logger

	mu      sync.Mutex
	subs    map[int]func(model.Session)
	nextSub int
}

func NewService(storage Storage, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		storage: storage,
		log:     logger,
		subs:    map[int]func(model.Session){},
	}
}

// IsAuthenticated reports whether a token is present. Expiry is not checked here;
// a stale token counts until a protected call fails.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	tok, err := s.Token(ctx)
	if err != nil {
		s.log.Warn("read session token", "err", err)
		return false
	}
	return tok != ""
}

// Token returns the stored token, or "" when signed out.
func (s *Service) Token(ctx context.Context) (string, error) {
	v, ok, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyToken, err)
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(v), nil
}

// Current reads both keys. A missing or unreadable user value yields an empty User.
func (s *Service) Current(ctx context.Context) (model.Session, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: tok, User: s.user(ctx)}, nil
}

func (s *Service) user(ctx context.Context) model.User {
	raw, ok, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		s.log.Warn("read cached user", "err", err)
		return model.User{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return model.User{}
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("cached user is malformed; using empty identity", "err", err)
		return model.User{}
	}
	return u
}

func (s *Service) SetSession(ctx context.Context, token string, user model.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session token is empty")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.storage.Put(ctx, map[string]string{
		KeyToken: token,
		KeyUser:  string(raw),
	}); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.log.Info("session established", "user", user.Username)
	s.publish(model.Session{Token: token, User: user})
	return nil
}

func (s *Service) ClearSession(ctx context.Context) error {
	if err := s.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info("session cleared")
	s.publish(model.Session{})
	return nil
}

// Subscribe registers fn to run after every SetSession/ClearSession.
// The returned func removes the subscription.
func (s *Service) Subscribe(fn func(model.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) publish(sess model.Session) {
	s.mu.Lock()
	fns := make([]func(model.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}

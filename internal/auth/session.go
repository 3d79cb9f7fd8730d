package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/infrastructure/store"
)

// Credentials is the single admin account accepted by the login gate.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Session is the persisted admin login state.
type Session struct {
	LoggedIn  bool      `json:"loggedIn"`
	Username  string    `json:"username,omitempty"`
	LoginTime time.Time `json:"loginTime"`
}

// SessionService is a local login gate for the admin pages. It only records
// flags in the store; it does not protect any data.
type SessionService struct {
	kv     store.KV
	creds  Credentials
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionService(kv store.KV, creds Credentials, logger *slog.Logger) *SessionService {
	return &SessionService{
		kv:     kv,
		creds:  creds,
		logger: logger.With("component", "auth"),
		now:    time.Now,
	}
}

// Login checks the credentials and records the session. With remember set,
// the username is kept for prefilling the next login; otherwise it is
// forgotten.
func (s *SessionService) Login(ctx context.Context, username, password string, remember bool) (*Session, error) {
	if username != s.creds.Username || !CheckPassword(password, s.creds.PasswordHash) {
		s.logger.Warn("admin login rejected", "username", username)
		return nil, apperr.ErrInvalidCredentials
	}

	session := &Session{LoggedIn: true, Username: username, LoginTime: s.now().UTC()}
	ops := make([]store.Op, 0, 4)
	for _, entry := range []struct {
		key string
		val any
	}{
		{store.KeyAdminLoggedIn, true},
		{store.KeyAdminUsername, username},
		{store.KeyLoginTime, session.LoginTime},
	} {
		op, err := store.PutJSON(entry.key, entry.val)
		if err != nil {
			return nil, apperr.Storage(err, "encode session")
		}
		ops = append(ops, op)
	}
	if remember {
		op, err := store.PutJSON(store.KeyRememberedUser, username)
		if err != nil {
			return nil, apperr.Storage(err, "encode session")
		}
		ops = append(ops, op)
	} else {
		ops = append(ops, store.Del(store.KeyRememberedUser))
	}

	if err := s.kv.Apply(ctx, ops...); err != nil {
		return nil, apperr.Storage(err, "write session")
	}
	s.logger.Info("admin logged in", "username", username)
	return session, nil
}

// Logout clears the login flag and time. The username and remembered user
// are kept.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.kv.Apply(ctx, store.Del(store.KeyAdminLoggedIn), store.Del(store.KeyLoginTime)); err != nil {
		return apperr.Storage(err, "clear session")
	}
	s.logger.Info("admin logged out")
	return nil
}

// Status reads the current session.
func (s *SessionService) Status(ctx context.Context) (*Session, error) {
	var session Session
	if _, err := store.GetJSON(ctx, s.kv, store.KeyAdminLoggedIn, &session.LoggedIn); err != nil {
		return nil, apperr.Storage(err, "load session")
	}
	if !session.LoggedIn {
		return &Session{}, nil
	}
	if _, err := store.GetJSON(ctx, s.kv, store.KeyAdminUsername, &session.Username); err != nil {
		return nil, apperr.Storage(err, "load session")
	}
	if _, err := store.GetJSON(ctx, s.kv, store.KeyLoginTime, &session.LoginTime); err != nil {
		return nil, apperr.Storage(err, "load session")
	}
	return &session, nil
}

// RememberedUser returns the username saved by a remembered login, or "".
func (s *SessionService) RememberedUser(ctx context.Context) (string, error) {
	var username string
	if _, err := store.GetJSON(ctx, s.kv, store.KeyRememberedUser, &username); err != nil {
		return "", apperr.Storage(err, "load remembered user")
	}
	return username, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ManojKumarVadiithya/Movie-Review/internal/domain/models"
	"github.com/ManojKumarVadiithya/Movie-Review/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

type AuthProvider interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Register(ctx context.Context, email, name, password string) (*models.Session, error)
	Validate(ctx context.Context) error
}

type StateStorage interface {
	SaveSession(ctx context.Context, token string, user string) error
	LoadSession(ctx context.Context) (token string, user string, err error)
	ClearSession(ctx context.Context) error
}

// Store is the process-wide authentication state. Construct one per
// process and hand it to everything that reads or mutates the session.
type Store struct {
	log      *slog.Logger
	provider AuthProvider
	storage  StateStorage

	mu      sync.RWMutex
	session *models.Session
	loading bool
}

func New(log *slog.Logger, provider AuthProvider, stateStorage StateStorage) *Store {
	return &Store{
		log:      log,
		provider: provider,
		storage:  stateStorage,
		loading:  true,
	}
}

// Initialize restores the persisted session, once, at process start.
// A missing pair, an undeserializable user or an already expired token all
// resolve to the unauthenticated state with the stored pair cleared; none
// of them is an error for the caller. Until Initialize returns, Loading
// reports true and consumers must not branch on the auth state.
func (s *Store) Initialize(ctx context.Context) error {
	const op = "session.Store.Initialize"
	log := s.log.With("op", op)
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, rawUser, err := s.storage.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Debug("no persisted session")
			return nil
		}
		log.Error("Error loading persisted session", "errMsg", err.Error())
		return err
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Warn("corrupt persisted user, dropping session", "errMsg", err.Error())
		return s.clear(ctx)
	}
	if tokenExpired(token) {
		log.Info("persisted token expired, dropping session")
		return s.clear(ctx)
	}

	s.mu.Lock()
	s.session = &models.Session{Token: token, User: user}
	s.mu.Unlock()
	log.Info("session restored", "email", user.Email)
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "session.Store.Login"
	log := s.log.With("op", op, "email", email)
	sess, err := s.provider.Login(ctx, email, password)
	if err != nil {
		log.Error("Error calling backend login", "errMsg", err.Error())
		return nil, err
	}
	if err := s.persist(ctx, sess); err != nil {
		log.Error("Error persisting session", "errMsg", err.Error())
		return nil, err
	}
	return sess, nil
}

func (s *Store) Register(ctx context.Context, email, name, password string) (*models.Session, error) {
	const op = "session.Store.Register"
	log := s.log.With("op", op, "email", email)
	sess, err := s.provider.Register(ctx, email, name, password)
	if err != nil {
		log.Error("Error calling backend register", "errMsg", err.Error())
		return nil, err
	}
	if err := s.persist(ctx, sess); err != nil {
		log.Error("Error persisting session", "errMsg", err.Error())
		return nil, err
	}
	return sess, nil
}

// Logout clears the persisted pair and the in-memory state. Calling it
// while already unauthenticated is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	const op = "session.Store.Logout"
	log := s.log.With("op", op)
	if err := s.clear(ctx); err != nil {
		log.Error("Error clearing session", "errMsg", err.Error())
		return err
	}
	log.Info("logged out")
	return nil
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// User returns the authenticated user, or false when there is none.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.User{}, false
	}
	return s.session.User, true
}

// Token implements the rest client's TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *Store) persist(ctx context.Context, sess *models.Session) error {
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	if err := s.storage.SaveSession(ctx, sess.Token, string(rawUser)); err != nil {
		return err
	}
	s.mu.Lock()
	s.session = &models.Session{Token: sess.Token, User: sess.User}
	s.mu.Unlock()
	return nil
}

func (s *Store) clear(ctx context.Context) error {
	if err := s.storage.ClearSession(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	return nil
}

// tokenExpired inspects the exp claim without verifying the signature.
// Tokens that don't parse as JWTs, or carry no exp claim, are kept as-is:
// the token is opaque to this client and the backend is the authority.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

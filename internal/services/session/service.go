package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"primis/internal/api"
	"primis/internal/domain"
)

// DefaultLoginError is shown when a failed login carries no better message.
const DefaultLoginError = "Login failed. Please check your credentials."

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrSessionExpired means the token's exp claim has passed. It wraps
	// ErrNotAuthenticated.
	ErrSessionExpired = fmt.Errorf("%w: session expired", ErrNotAuthenticated)
	// ErrIncompleteSession rejects a SetUser call missing its token or user type.
	ErrIncompleteSession = errors.New("session: token and user type are required")
)

// State is where the store is in its sign-in lifecycle.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LoginError is a rejected login. Message is the text to show the user;
// Err is the underlying failure, usually an *api.APIError.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

func newLoginError(err error) *LoginError {
	msg := api.DetailOf(err)
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = DefaultLoginError
	}
	return &LoginError{Message: msg, Err: err}
}

// Store owns the signed-in identity and keeps it in sync with storage.
//
// Memory is the source of truth while the process runs; the auth-storage
// snapshot and the access_token key mirror it after every change. The store
// never holds its lock across a network call: the API client delivers
// invalidations synchronously from inside those calls.
type Store struct {
	api     domain.AuthAPI
	storage domain.Storage
	log     logrus.FieldLogger

	mu      sync.RWMutex
	session domain.Session
	state   State
	// epoch counts resets, so an in-flight login can tell whether the
	// session it started from was cleared underneath it.
	epoch uint64

	unsubscribe func()
}

// New builds a Store, restores any persisted session and subscribes to the
// client's 401 notifications. A snapshot that cannot be read is logged and
// the store starts anonymous.
func New(authAPI domain.AuthAPI, storage domain.Storage, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		api:     authAPI,
		storage: storage,
		log:     log.WithField("component", "session"),
	}
	if err := s.Rehydrate(); err != nil {
		s.log.WithError(err).Warn("restore session")
	}
	s.unsubscribe = authAPI.OnSessionInvalidated(s.handleInvalidation)
	return s
}

// Close stops listening for invalidations.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Rehydrate replaces the in-memory session with the persisted snapshot.
// It makes no network call; the token is re-checked by the next request.
//
// Steps:
//  1. Read auth-storage; an absent key means anonymous.
//  2. Ignore snapshots that fail to decode or claim authentication without
//     a token, user and userType.
//  3. Adopt the snapshot and write its token back to access_token so the
//     API client sends it.
func (s *Store) Rehydrate() error {
	raw, ok, err := s.storage.Load(domain.SnapshotKey)
	if err != nil {
		s.reset()
		return fmt.Errorf("load %s: %w", domain.SnapshotKey, err)
	}
	if !ok {
		s.reset()
		return nil
	}

	var snap domain.PersistedSession
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.WithError(err).Warn("ignoring unreadable session snapshot")
		s.reset()
		return nil
	}
	if !snap.State.IsAuthenticated {
		s.reset()
		return nil
	}
	if !snap.State.Consistent() {
		s.log.Warn("ignoring inconsistent session snapshot")
		s.reset()
		return nil
	}

	if err := s.storage.Save(domain.TokenKey, []byte(snap.State.Token)); err != nil {
		s.reset()
		return fmt.Errorf("sync %s: %w", domain.TokenKey, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap.State.IsLoading = false
	s.session = snap.State
	s.state = Authenticated
	s.log.WithField("user_type", snap.State.UserType).Debug("session restored")
	return nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether a user is signed in.
func (s *Store) Authenticated() bool { return s.State() == Authenticated }

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if out.User != nil {
		u := out.User.Clone()
		out.User = &u
	}
	return out
}

// Login exchanges credentials for a token and loads the profile.
//
// Steps:
//  1. Mark the store as authenticating and call POST /auth/login.
//  2. On rejection, restore the previous state and return a *LoginError.
//  3. Store the token, then ask /auth/me for the full profile. If that
//     fails the profile is rebuilt from the login answer and the result is
//     flagged ProfileFetchDegraded.
//  4. Commit the session in memory and persist it.
func (s *Store) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	prev, prevState, epoch := s.begin(Authenticating)
	log := s.log.WithField("email", email)

	tok, err := s.api.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		s.abort(prev, prevState, epoch)
		log.WithError(err).Info("login rejected")
		return domain.LoginResult{}, newLoginError(err)
	}
	if tok.AccessToken == "" {
		s.abort(prev, prevState, epoch)
		return domain.LoginResult{}, newLoginError(errors.New("login answer carried no access token"))
	}

	if err := s.storage.Save(domain.TokenKey, []byte(tok.AccessToken)); err != nil {
		s.abort(prev, prevState, epoch)
		return domain.LoginResult{}, fmt.Errorf("store token: %w", err)
	}

	res := domain.LoginResult{Token: tok.AccessToken, UserType: tok.UserType}
	me, err := s.api.CurrentUser(ctx)
	switch {
	case err != nil:
		log.WithError(err).Warn("could not fetch profile, using login answer")
		res.User = tok.FallbackProfile()
		res.ProfileFetchDegraded = true
	case me.User == nil:
		log.Warn("profile answer had no user, using login answer")
		res.User = tok.FallbackProfile()
		res.ProfileFetchDegraded = true
	default:
		res.User = *me.User
	}

	user := res.User.Clone()
	s.mu.Lock()
	s.session = domain.Session{
		User:            &user,
		UserType:        res.UserType,
		Token:           res.Token,
		IsAuthenticated: true,
	}
	s.state = Authenticated
	err = s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return res, err
	}

	log.WithFields(logrus.Fields{
		"user_type": res.UserType,
		"degraded":  res.ProfileFetchDegraded,
	}).Info("logged in")
	return res, nil
}

// Register creates a student account. The session is left as it was.
func (s *Store) Register(ctx context.Context, data domain.RegisterData) (json.RawMessage, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	out, err := s.api.Register(ctx, data)
	if err != nil {
		return nil, err
	}
	s.log.WithField("email", data.Email).Info("registered")
	return out, nil
}

// SetUser installs a session obtained elsewhere. The token's format is not
// checked, but it must be present, as must the user type.
func (s *Store) SetUser(user domain.Profile, userType domain.UserType, token string) error {
	u := user.Clone()
	next := domain.Session{
		User:            &u,
		UserType:        userType,
		Token:           token,
		IsAuthenticated: true,
	}
	if !next.Consistent() {
		return ErrIncompleteSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = next
	s.state = Authenticated
	return s.persistLocked()
}

// Logout tells the backend the token is no longer used, then clears the
// session. Only the local clear can fail the call.
func (s *Store) Logout(ctx context.Context) error {
	if s.Authenticated() {
		if err := s.api.Logout(ctx); err != nil {
			s.log.WithError(err).Warn("backend logout failed")
		}
	}
	if err := s.ClearAuth(); err != nil {
		return err
	}
	s.log.Info("logged out")
	return nil
}

// ClearAuth forgets the session in memory and in storage.
func (s *Store) ClearAuth() error {
	s.reset()
	if err := s.storage.Delete(domain.TokenKey, domain.SnapshotKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) handleInvalidation(ev domain.Invalidation) {
	s.log.WithFields(logrus.Fields{
		"method": ev.Method,
		"path":   ev.Path,
		"status": ev.Status,
	}).Info("session invalidated by backend")
	if err := s.ClearAuth(); err != nil {
		s.log.WithError(err).Error("clear invalidated session")
	}
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	s.state = Anonymous
	s.epoch++
}

func (s *Store) begin(next State) (domain.Session, State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, prevState := s.session, s.state
	s.session.IsLoading = true
	s.state = next
	return prev, prevState, s.epoch
}

// abort undoes begin unless the session was reset in the meantime, in which
// case the store stays anonymous.
func (s *Store) abort(prev domain.Session, prevState State, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.session.IsLoading = false
		s.state = Anonymous
		return
	}
	prev.IsLoading = false
	s.session = prev
	s.state = prevState
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.session.IsLoading = v
	s.mu.Unlock()
}

// persistLocked writes the snapshot and the token key. Callers hold s.mu.
func (s *Store) persistLocked() error {
	b, err := json.Marshal(domain.PersistedSession{State: s.session})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Save(domain.TokenKey, []byte(s.session.Token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.storage.Save(domain.SnapshotKey, b); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

var _ domain.SessionService = (*Store)(nil)

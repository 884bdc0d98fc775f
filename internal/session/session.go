// Package session holds the signed-in user's identity, roles and bearer
// token. A Session is constructed explicitly and injected into the
// transport, view models and commands that need it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"storefront-client/internal/localstore"
	"storefront-client/internal/model"
)

// StorageKey is where a persisted session lives in the local store.
const StorageKey = "session"

// EventKind names a session transition.
type EventKind string

const (
	LoggedIn    EventKind = "logged_in"
	LoggedOut   EventKind = "logged_out"
	RoleChanged EventKind = "role_changed"
)

// Event is delivered to subscribers after every transition.
type Event struct {
	Kind     EventKind
	Previous Snapshot
	Current  Snapshot
}

// Snapshot is an immutable view of the session.
// ActiveRole is always RoleUser or a member of Roles; Roles holds more than
// RoleUser only while UserID is set.
type Snapshot struct {
	UserID             model.ID     `json:"user_id,omitempty"`
	Email              string       `json:"email,omitempty"`
	Roles              []model.Role `json:"roles"`
	ActiveRole         model.Role   `json:"active_role"`
	Department         string       `json:"department,omitempty"`
	Job                string       `json:"job,omitempty"`
	ManagedDepartments []string     `json:"managed_departments,omitempty"`
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool {
	return s.UserID != ""
}

// HasRole reports whether role is granted.
func (s Snapshot) HasRole(role model.Role) bool {
	return slices.Contains(s.Roles, role)
}

func anonymous() Snapshot {
	return Snapshot{Roles: []model.Role{model.RoleUser}, ActiveRole: model.RoleUser}
}

type persisted struct {
	Snapshot
	Token string `json:"token"`
}

// Session is the process-wide authentication state machine:
// Anonymous -> Authenticated(roles, activeRole) -> Anonymous.
type Session struct {
	store  localstore.Store
	logger *slog.Logger

	mu     sync.RWMutex
	snap   Snapshot
	token  string
	subs   map[int]func(Event)
	nextID int
}

// New returns an anonymous session. store may be nil, in which case nothing
// is persisted.
func New(store localstore.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:  store,
		logger: logger,
		snap:   anonymous(),
		subs:   make(map[int]func(Event)),
	}
}

// Restore loads a persisted session, if any. A missing or unreadable entry
// leaves the session anonymous. Subscribers are notified of a restored login.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	raw, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return model.NewLocalStorageError("read", err)
	}

	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil || p.Token == "" || p.UserID == "" {
		s.logger.Warn("discarding unreadable session", "error", err)
		return nil
	}

	snap := normalize(p.Snapshot)
	s.mu.Lock()
	prev := s.snap
	s.snap = snap
	s.token = p.Token
	s.mu.Unlock()

	s.notify(Event{Kind: LoggedIn, Previous: prev, Current: snap})
	return nil
}

// Login moves to Authenticated with roles derived from the user's flags.
// The active role resets to RoleUser. A user without an id or an empty
// token is rejected and the session is left unchanged.
func (s *Session) Login(ctx context.Context, user model.User, token string) error {
	if user.ID == "" {
		return model.NewValidationError("user", "missing id")
	}
	if token == "" {
		return model.NewValidationError("token", "required")
	}

	snap := Snapshot{
		UserID:             user.ID,
		Email:              user.Email,
		Roles:              RolesFor(user),
		ActiveRole:         model.RoleUser,
		Department:         user.Department,
		Job:                user.Job,
		ManagedDepartments: slices.Clone(user.ManagedDepartments),
	}

	s.mu.Lock()
	prev := s.snap
	s.snap = snap
	s.token = token
	s.mu.Unlock()

	s.persist(ctx)
	s.notify(Event{Kind: LoggedIn, Previous: prev, Current: snap})
	return nil
}

// Logout returns to Anonymous and clears the token. Logging out an
// anonymous session is a no-op.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	if !s.snap.Authenticated() && s.token == "" {
		s.mu.Unlock()
		return
	}
	prev := s.snap
	s.snap = anonymous()
	s.token = ""
	cur := s.snap
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(ctx, StorageKey); err != nil {
			s.logger.Warn("clearing persisted session", "error", err)
		}
	}
	s.notify(Event{Kind: LoggedOut, Previous: prev, Current: cur})
}

// SetActiveRole switches the active portal. Roles not granted are ignored
// and it returns false.
func (s *Session) SetActiveRole(ctx context.Context, role model.Role) bool {
	s.mu.Lock()
	if !s.snap.HasRole(role) {
		s.mu.Unlock()
		return false
	}
	if s.snap.ActiveRole == role {
		s.mu.Unlock()
		return true
	}
	prev := s.snap
	s.snap.ActiveRole = role
	cur := s.snap
	s.mu.Unlock()

	s.persist(ctx)
	s.notify(Event{Kind: RoleChanged, Previous: prev, Current: cur})
	return true
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Roles = slices.Clone(s.snap.Roles)
	snap.ManagedDepartments = slices.Clone(s.snap.ManagedDepartments)
	return snap
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Authenticated()
}

func (s *Session) ActiveRole() model.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ActiveRole
}

// Token returns the bearer token, empty when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear tears the session down after the API rejected the token.
func (s *Session) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Logout(ctx)
}

// Subscribe registers fn for every transition and returns an unsubscribe
// func. Subscribers run synchronously in registration order.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify(ev Event) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.mu.RLock()
	p := persisted{Snapshot: s.snap, Token: s.token}
	s.mu.RUnlock()

	raw, err := json.Marshal(p)
	if err != nil {
		s.logger.Error("encoding session", "error", err)
		return
	}
	if err := s.store.Set(ctx, StorageKey, raw); err != nil {
		s.logger.Warn("persisting session", "error", err)
	}
}

// RolesFor derives the granted roles: RoleUser plus one role per flag.
func RolesFor(user model.User) []model.Role {
	roles := []model.Role{model.RoleUser}
	if user.IsEmployee {
		roles = append(roles, model.RoleEmployee)
	}
	if user.IsSeller {
		roles = append(roles, model.RoleSeller)
	}
	if user.IsManager {
		roles = append(roles, model.RoleManager)
	}
	return roles
}

// normalize repairs a persisted snapshot so the role invariants hold.
func normalize(snap Snapshot) Snapshot {
	roles := []model.Role{model.RoleUser}
	for _, r := range snap.Roles {
		if r.Valid() && !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	snap.Roles = roles
	if !slices.Contains(roles, snap.ActiveRole) {
		snap.ActiveRole = model.RoleUser
	}
	return snap
}

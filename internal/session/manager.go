// Package session tracks live connections, their player profiles, and the
// broadcast groups used to fan events out to a room.
package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/protocol"
)

const (
	// DefaultName is shown for players that never sent a name.
	DefaultName = "Oyuncu"
	// DefaultAvatar is shown for players that never sent an avatar.
	DefaultAvatar = "assets/avatars/avatar_1.png"
)

var (
	// ErrAlreadyConnected is returned when a connection id is registered twice.
	ErrAlreadyConnected = errors.New("connection already registered")
	// ErrNotConnected is returned for operations on an unknown connection id.
	ErrNotConnected = errors.New("connection not registered")
	// ErrClosed is returned when pushing to a closed outbox.
	ErrClosed = errors.New("outbox closed")
	// ErrOutboxFull is returned when a connection's outbox has no free slot.
	ErrOutboxFull = errors.New("outbox full")
)

// Profile is the display identity a player supplies when creating or
// joining a room.
type Profile struct {
	Name   string
	Avatar string
	// ExternalID is the client's persistent profile id, forwarded opaquely.
	ExternalID string
}

// NewProfile builds a Profile, substituting defaults for empty fields.
//
// Postcondition: Name and Avatar are non-empty.
func NewProfile(name, avatar, externalID string) Profile {
	if name == "" {
		name = DefaultName
	}
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return Profile{Name: name, Avatar: avatar, ExternalID: externalID}
}

// Session is one live connection.
type Session struct {
	// ID is the server-assigned connection identity.
	ID string
	// Entity is the outbox for pushing events to the connection.
	Entity *BridgeEntity

	profile    Profile
	hasProfile bool
}

// Manager tracks all live connections and broadcast group membership.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	conns      map[string]*Session
	order      []string                   // connection ids in connect order
	groups     map[string]map[string]bool // group name → set of connection ids
	outboxSize int
	logger     *zap.Logger
}

// NewManager creates an empty session Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: outboxSize values below 1 fall back to the BridgeEntity default.
func NewManager(outboxSize int, logger *zap.Logger) *Manager {
	return &Manager{
		conns:      make(map[string]*Session),
		groups:     make(map[string]map[string]bool),
		outboxSize: outboxSize,
		logger:     logger,
	}
}

// Connect registers a new connection.
//
// Precondition: id must be non-empty.
// Postcondition: Returns the created Session, or ErrAlreadyConnected.
func (m *Manager) Connect(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conns[id]; exists {
		return nil, fmt.Errorf("connect %q: %w", id, ErrAlreadyConnected)
	}
	sess := &Session{ID: id, Entity: NewBridgeEntity(id, m.outboxSize)}
	m.conns[id] = sess
	m.order = append(m.order, id)
	return sess, nil
}

// Disconnect unregisters a connection, drops it from every group, and
// closes its outbox.
//
// Postcondition: The connection is removed from all tracking. Returns ErrNotConnected if unknown.
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.conns[id]
	if !exists {
		return fmt.Errorf("disconnect %q: %w", id, ErrNotConnected)
	}
	for name, members := range m.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(m.groups, name)
		}
	}
	_ = sess.Entity.Close()
	delete(m.conns, id)
	for i, cid := range m.order {
		if cid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the session for the given connection id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.conns[id]
	return sess, ok
}

// Count returns the number of live connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// SetProfile records the profile for a connection, replacing any earlier one.
//
// Postcondition: Returns ErrNotConnected if the connection is unknown.
func (m *Manager) SetProfile(id string, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.conns[id]
	if !ok {
		return fmt.Errorf("set profile %q: %w", id, ErrNotConnected)
	}
	sess.profile = p
	sess.hasProfile = true
	return nil
}

// ClearProfile forgets the profile for a connection. Unknown ids are ignored.
func (m *Manager) ClearProfile(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.conns[id]; ok {
		sess.profile = Profile{}
		sess.hasProfile = false
	}
}

// Profile returns the recorded profile for a connection. When none is
// recorded the default profile is returned with ok=false.
func (m *Manager) Profile(id string) (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.conns[id]; ok && sess.hasProfile {
		return sess.profile, true
	}
	return NewProfile("", "", ""), false
}

// FindByExternalID returns the earliest-connected connection whose profile
// carries the given external id.
func (m *Manager) FindByExternalID(externalID string) (string, bool) {
	if externalID == "" {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		sess := m.conns[id]
		if sess.hasProfile && sess.profile.ExternalID == externalID {
			return id, true
		}
	}
	return "", false
}

// JoinGroup adds a connection to a broadcast group. Joining twice is a no-op.
//
// Postcondition: Returns ErrNotConnected if the connection is unknown.
func (m *Manager) JoinGroup(group, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[id]; !ok {
		return fmt.Errorf("join group %q: %w", group, ErrNotConnected)
	}
	if m.groups[group] == nil {
		m.groups[group] = make(map[string]bool)
	}
	m.groups[group][id] = true
	return nil
}

// LeaveGroup removes a connection from a broadcast group.
func (m *Manager) LeaveGroup(group, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.groups[group]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(m.groups, group)
		}
	}
}

// DropGroup removes a broadcast group and all of its memberships.
func (m *Manager) DropGroup(group string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, group)
}

// InGroup reports whether a connection belongs to a broadcast group.
func (m *Manager) InGroup(group, id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups[group][id]
}

// GroupMembers returns the members of a broadcast group in connect order.
//
// Postcondition: Returns a slice of connection ids (may be empty).
func (m *Manager) GroupMembers(group string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.groups[group]
	result := make([]string, 0, len(members))
	for _, id := range m.order {
		if members[id] {
			result = append(result, id)
		}
	}
	return result
}

// Send pushes msg to a single connection. Unknown, closed, or saturated
// connections are skipped with a log entry.
func (m *Manager) Send(id string, msg protocol.Outbound) {
	m.mu.RLock()
	sess, ok := m.conns[id]
	m.mu.RUnlock()
	if !ok {
		m.logger.Debug("send to unknown connection", zap.String("conn_id", id), zap.String("event", msg.Event))
		return
	}
	m.push(sess, msg)
}

// Broadcast pushes msg to every member of a broadcast group.
func (m *Manager) Broadcast(group string, msg protocol.Outbound) {
	for _, sess := range m.sessions(m.GroupMembers(group)) {
		m.push(sess, msg)
	}
}

// BroadcastAll pushes msg to every live connection.
func (m *Manager) BroadcastAll(msg protocol.Outbound) {
	m.mu.RLock()
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	m.mu.RUnlock()

	for _, sess := range m.sessions(ids) {
		m.push(sess, msg)
	}
}

func (m *Manager) sessions(ids []string) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(ids))
	for _, id := range ids {
		if sess, ok := m.conns[id]; ok {
			out = append(out, sess)
		}
	}
	return out
}

func (m *Manager) push(sess *Session, msg protocol.Outbound) {
	if err := sess.Entity.Push(msg); err != nil {
		level := m.logger.Warn
		if errors.Is(err, ErrClosed) {
			level = m.logger.Debug
		}
		level("dropping outbound event",
			zap.String("conn_id", sess.ID),
			zap.String("event", msg.Event),
			zap.Error(err),
		)
	}
}

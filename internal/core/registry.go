package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// room is the per-name membership set. members is keyed by username so a
// username can hold at most one live connection; order preserves insertion
// order for presence snapshots.
type room struct {
	mu      sync.Mutex
	closed  bool
	members map[string]*Member
	order   []string
}

func (r *room) remove(username string) {
	delete(r.members, username)
	for i, u := range r.order {
		if u == username {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Registry owns every room's membership. All mutation goes through
// Join/Leave; nothing else touches the member maps.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomName]*room)}
}

// getOrCreate returns a live room, creating it lazily. A room emptied by a
// concurrent Leave may be marked closed between the map lookup and the room
// lock, so callers that observe closed must retry.
func (reg *Registry) getOrCreate(name domain.RoomName) *room {
	reg.mu.RLock()
	r, ok := reg.rooms[name]
	reg.mu.RUnlock()
	if ok {
		return r
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok = reg.rooms[name]; ok {
		return r
	}
	r = &room{members: make(map[string]*Member)}
	reg.rooms[name] = r
	log.Debug().Str("module", "core.registry").Str("room", string(name)).Msg("room created")
	return r
}

// Join inserts a member, superseding any existing member with the same
// username: the old connection is closed asynchronously with a "replaced"
// status. Returns the new member.
func (reg *Registry) Join(name domain.RoomName, username string, conn Conn) *Member {
	for {
		r := reg.getOrCreate(name)
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			continue
		}
		if old, ok := r.members[username]; ok {
			r.remove(username)
			go old.Conn.Close(CloseReplaced, "replaced by newer connection")
			log.Info().Str("module", "core.registry").
				Str("room", string(name)).Str("username", username).
				Msg("member superseded")
		}
		m := &Member{Username: username, Room: name, Conn: conn}
		r.members[username] = m
		r.order = append(r.order, username)
		r.mu.Unlock()
		log.Info().Str("module", "core.registry").
			Str("room", string(name)).Str("username", username).
			Str("conn", conn.ID()).Msg("member joined")
		return m
	}
}

// Leave removes the member only if the stored connection identity still
// matches conn, so a member already superseded by a newer join is left
// alone. Reports whether a removal actually happened; callers announce the
// departure only on true. Idempotent.
func (reg *Registry) Leave(name domain.RoomName, username string, conn Conn) bool {
	reg.mu.RLock()
	r, ok := reg.rooms[name]
	reg.mu.RUnlock()
	if !ok {
		return false
	}

	r.mu.Lock()
	m, ok := r.members[username]
	if !ok || m.Conn.ID() != conn.ID() {
		r.mu.Unlock()
		return false
	}
	r.remove(username)
	empty := len(r.members) == 0
	r.mu.Unlock()

	log.Info().Str("module", "core.registry").
		Str("room", string(name)).Str("username", username).
		Str("conn", conn.ID()).Msg("member left")

	if empty {
		reg.dropIfEmpty(name, r)
	}
	return true
}

// dropIfEmpty deletes a drained room entry. Lock order is registry then
// room; closed stops a Join that already holds a stale room pointer.
func (reg *Registry) dropIfEmpty(name domain.RoomName, r *room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 || reg.rooms[name] != r {
		return
	}
	r.closed = true
	delete(reg.rooms, name)
	log.Debug().Str("module", "core.registry").Str("room", string(name)).Msg("room removed")
}

// Snapshot returns current membership in insertion order; empty for an
// absent room.
func (reg *Registry) Snapshot(name domain.RoomName) []string {
	reg.mu.RLock()
	r, ok := reg.rooms[name]
	reg.mu.RUnlock()
	if !ok {
		return []string{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// membersOf returns a point-in-time copy of a room's members for fan-out.
// The lock covers only this read, never delivery.
func (reg *Registry) membersOf(name domain.RoomName) []*Member {
	reg.mu.RLock()
	r, ok := reg.rooms[name]
	reg.mu.RUnlock()
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Member, 0, len(r.order))
	for _, u := range r.order {
		out = append(out, r.members[u])
	}
	return out
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

func (reg *Registry) Rooms() []RoomInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]RoomInfo, 0, len(reg.rooms))
	for name, r := range reg.rooms {
		r.mu.Lock()
		n := len(r.members)
		r.mu.Unlock()
		out = append(out, RoomInfo{Name: name, MemberCount: n})
	}
	return out
}

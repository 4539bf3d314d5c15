package core

import "github.com/dkeye/Parley/internal/domain"

// Presence emits the full member-name list of a room on membership change.
// Callers invoke it after a join and after a router-detected leave, never
// from inside a broadcast pass.
type Presence struct {
	reg *Registry
	bc  *Broadcaster
}

func NewPresence(reg *Registry, bc *Broadcaster) *Presence {
	return &Presence{reg: reg, bc: bc}
}

func (p *Presence) Announce(name domain.RoomName) {
	p.bc.Broadcast(name, UserList{Users: p.reg.Snapshot(name)})
}

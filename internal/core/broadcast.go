package core

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// Broadcaster fans an event out to every member of a room. Best effort:
// no retry, no ordering guarantee across members. Per recipient, frames
// are enqueued in call order.
type Broadcaster struct {
	reg *Registry
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// Broadcast delivers the encoded event to a point-in-time snapshot of the
// room's members. Members joining or leaving mid-pass are not included or
// excluded retroactively. A failed send marks the connection dead: the
// member is evicted through the same path as an explicit leave, without a
// synthetic Left event on this path.
func (b *Broadcaster) Broadcast(name domain.RoomName, ev Event) {
	data, err := ev.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "core.broadcast").
			Str("room", string(name)).Msg("encode event")
		return
	}

	members := b.reg.membersOf(name)

	var dead []*Member
	for _, m := range members {
		if err := m.Conn.TrySend(data); err != nil {
			dead = append(dead, m)
		}
	}

	for _, m := range dead {
		if b.reg.Leave(m.Room, m.Username, m.Conn) {
			go m.Conn.Close(CloseNormal, "unreachable")
			log.Warn().Str("module", "core.broadcast").
				Str("room", string(name)).Str("username", m.Username).
				Msg("evicted unreachable member")
		}
	}

	log.Debug().Str("module", "core.broadcast").Str("room", string(name)).
		Int("sent_to", len(members)-len(dead)).Int("dropped", len(dead)).
		Msg("broadcast result")
}

package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/auth"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

// Recorder persists classified chat payloads. Fire-and-forget from the
// router's perspective.
type Recorder interface {
	Record(room, username, content string, ts time.Time) error
}

// ChatController admits websocket connections and runs the per-connection
// frame loop.
type ChatController struct {
	cfg      *config.Config
	gate     *auth.Gate
	reg      *core.Registry
	bc       *core.Broadcaster
	presence *core.Presence
	recorder Recorder
}

func NewChatController(
	cfg *config.Config,
	gate *auth.Gate,
	reg *core.Registry,
	bc *core.Broadcaster,
	presence *core.Presence,
	recorder Recorder,
) *ChatController {
	return &ChatController{
		cfg:      cfg,
		gate:     gate,
		reg:      reg,
		bc:       bc,
		presence: presence,
		recorder: recorder,
	}
}

// Fallbacks for a zero-value config; config.Load applies the same defaults.
const (
	defaultSendBuffer = 64
	defaultPingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	// The REST layer already answers CORS; the browser token never reaches
	// this handler without passing the gate below.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat serves GET /ws/:room/:username?token=...
// The gate runs before any room state is touched; a rejected connection
// sees only a policy-violation close, no message.
func (ctl *ChatController) HandleChat(ctx context.Context, c *gin.Context) {
	roomName := domain.RoomName(c.Param("room"))
	username := c.Param("username")
	token := c.Query("token")

	if err := domain.ValidateUsername(username); err != nil ||
		len(roomName) == 0 || len(roomName) > domain.MaxRoomNameLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room or username"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}

	if _, err := ctl.gate.Admit(username, token); err != nil {
		log.Warn().Err(err).Str("module", "ws").
			Str("room", string(roomName)).Str("username", username).
			Msg("admission rejected")
		msg := websocket.FormatCloseMessage(core.ClosePolicyViolation, "")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}

	ws.SetReadLimit(ctl.cfg.ReadLimit)
	buffer := ctl.cfg.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	pingPeriod := ctl.cfg.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}

	conn := newConn(ws, buffer)
	member := ctl.reg.Join(roomName, username, conn)

	ctx, cancel := context.WithCancel(ctx)
	go conn.writePump(ctx, pingPeriod)

	ctl.bc.Broadcast(roomName, core.Joined{Username: username, Room: roomName})
	ctl.presence.Announce(roomName)

	go ctl.readPump(ctx, cancel, member, conn, token, pingPeriod)
}

// readPump consumes frames until disconnect, then runs the leave/announce
// sequence. The registry's connection-identity guard makes that sequence
// run at most once even when an eviction raced us.
func (ctl *ChatController) readPump(ctx context.Context, cancel context.CancelFunc, member *core.Member, conn *Conn, token string, pingPeriod time.Duration) {
	defer func() {
		cancel()
		conn.Close(core.CloseNormal, "")
		if ctl.reg.Leave(member.Room, member.Username, conn) {
			ctl.bc.Broadcast(member.Room, core.Left{Username: member.Username, Room: member.Room})
			ctl.presence.Announce(member.Room)
		}
	}()

	pongWait := pingPeriod * 10 / 9
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.ws.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "ws").
					Str("conn", conn.ID()).Msg("readPump read error")
				return
			}
			if ctl.cfg.ReverifyFrames {
				if _, err := ctl.gate.Admit(member.Username, token); err != nil {
					conn.Close(core.ClosePolicyViolation, "")
					return
				}
			}
			ctl.route(member, data)
		}
	}
}

// route classifies one inbound frame: a structured typing signal is
// rebroadcast and never persisted; everything else, malformed JSON
// included, degrades to plain chat text.
func (ctl *ChatController) route(member *core.Member, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err == nil {
		switch env.Type {
		case "typing":
			ctl.bc.Broadcast(member.Room, core.Typing{Username: member.Username})
			return
		case "stop_typing":
			ctl.bc.Broadcast(member.Room, core.StopTyping{Username: member.Username})
			return
		}
	}

	// Timestamp at classification, so two quick frames from one sender
	// cannot persist out of order even though Record runs asynchronously.
	text := string(data)
	ts := time.Now()
	go func() {
		if err := ctl.recorder.Record(string(member.Room), member.Username, text, ts); err != nil {
			log.Error().Err(err).Str("module", "ws").
				Str("room", string(member.Room)).Str("username", member.Username).
				Msg("failed to record message")
		}
	}()
	ctl.bc.Broadcast(member.Room, core.Chat{Username: member.Username, Text: text})
}

package core

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/dkeye/Parley/internal/domain"
)

// Event is anything a room can fan out. Structured events encode to a JSON
// object with a "type" discriminator; chat and join/leave notices encode to
// plain strings, matching what clients already render.
type Event interface {
	Encode() (Frame, error)
}

type Chat struct {
	Username string
	Text     string
}

func (e Chat) Encode() (Frame, error) {
	return Frame(fmt.Sprintf("%s: %s", e.Username, e.Text)), nil
}

type Joined struct {
	Username string
	Room     domain.RoomName
}

func (e Joined) Encode() (Frame, error) {
	return Frame(fmt.Sprintf("%s joined room: %s", e.Username, e.Room)), nil
}

type Left struct {
	Username string
	Room     domain.RoomName
}

func (e Left) Encode() (Frame, error) {
	return Frame(fmt.Sprintf("%s left room: %s", e.Username, e.Room)), nil
}

type Typing struct {
	Username string `json:"username"`
}

func (e Typing) Encode() (Frame, error) {
	return marshal(struct {
		Type string `json:"type"`
		Typing
	}{Type: "typing", Typing: e})
}

type StopTyping struct {
	Username string `json:"username"`
}

func (e StopTyping) Encode() (Frame, error) {
	return marshal(struct {
		Type string `json:"type"`
		StopTyping
	}{Type: "stop_typing", StopTyping: e})
}

// UserList is the presence snapshot: the full member-name list of a room,
// in insertion order.
type UserList struct {
	Users []string `json:"users"`
}

func (e UserList) Encode() (Frame, error) {
	return marshal(struct {
		Type string `json:"type"`
		UserList
	}{Type: "user_list", UserList: e})
}

func marshal(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

package domain

// RoomName identifies a room. Rooms have no separate id; the name is the
// identity and the broadcast boundary.
type RoomName string

const MaxRoomNameLen = 64

package domain

import "time"

// Message is a persisted chat line. Ephemeral events (typing, presence)
// are never stored.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Room      string    `gorm:"index;size:64;not null" json:"room"`
	Username  string    `gorm:"size:36;not null" json:"username"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

func (Message) TableName() string { return "messages" }

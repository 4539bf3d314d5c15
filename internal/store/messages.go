package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dkeye/Parley/internal/domain"
)

const DefaultHistoryLimit = 50

// MessageRepo handles chat history persistence.
type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Record stores one chat line. Invoked fire-and-forget from the frame
// router; a failure here never blocks a broadcast.
func (r *MessageRepo) Record(room, username, content string, ts time.Time) error {
	msg := domain.Message{Room: room, Username: username, Content: content, CreatedAt: ts}
	if err := r.db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}

// History returns up to limit messages for a room, oldest first.
func (r *MessageRepo) History(room string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var msgs []domain.Message
	err := r.db.Where("room = ?", room).
		Order("created_at asc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return msgs, nil
}

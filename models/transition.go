package models

import (
	"time"

	"github.com/google/uuid"
)

// Transition ở index 0 không bao giờ được lưu (intro đóng vai trò đó).
type Transition struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EpisodeID   uuid.UUID `gorm:"type:uuid;not null;index" json:"episode_id"`
	Episode     Episode   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Index       int       `gorm:"column:index;not null" json:"index"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Length      float64   `json:"length"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

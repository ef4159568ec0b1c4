package models

import (
	"time"

	"github.com/google/uuid"
)

type Clip struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EpisodeID   uuid.UUID `gorm:"type:uuid;not null;index" json:"episode_id"`
	Episode     Episode   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Index       int       `gorm:"column:index;not null" json:"index"` // vị trí topic trong outline
	URL         string    `gorm:"type:text;not null" json:"url"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Length      float64   `json:"length"`
	VideoID     string    `gorm:"size:50" json:"video_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

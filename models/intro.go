package models

import (
	"time"

	"github.com/google/uuid"
)

type Intro struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EpisodeID   uuid.UUID `gorm:"type:uuid;not null;index" json:"episode_id"`
	Episode     Episode   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Index       int       `gorm:"column:index;default:0" json:"index"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Length      float64   `json:"length"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

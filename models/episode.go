package models

import (
	"time"

	"github.com/google/uuid"
)

type Episode struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Slug        string    `gorm:"size:255;index" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	TotalLength float64   `gorm:"default:0" json:"total_length"` // tổng thời lượng (giây)
	AudioURL    string    `gorm:"type:text" json:"audio_url"`
	Status      string    `gorm:"type:VARCHAR(20);default:'processing'" json:"status"` // processing | completed | failed
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Intro       *Intro       `gorm:"foreignKey:EpisodeID" json:"intro,omitempty"`
	Clips       []Clip       `gorm:"foreignKey:EpisodeID" json:"clips"`
	Transitions []Transition `gorm:"foreignKey:EpisodeID" json:"transitions"`
}

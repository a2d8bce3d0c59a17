package models

import (
	"time"

	"gorm.io/gorm"
)

// MatchRecord is one finished round, persisted for history and the
// leaderboard.
type MatchRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RoomCode   string    `json:"room_code" gorm:"index;not null"`
	Mode       GameMode  `json:"mode" gorm:"not null"`
	Letters    string    `json:"letters" gorm:"not null"`
	EndReason  EndReason `json:"end_reason" gorm:"not null"`
	TotalWords int       `json:"total_words" gorm:"not null"`
	FoundWords int       `json:"found_words" gorm:"not null"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Players []MatchPlayer `json:"players,omitempty" gorm:"foreignKey:MatchRecordID"`
}

// MatchPlayer is one player's result within a finished round.
type MatchPlayer struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	MatchRecordID uint   `json:"match_record_id" gorm:"index;not null"`
	PlayerID      string `json:"player_id" gorm:"not null"`
	Name          string `json:"name" gorm:"not null"`
	Score         int    `json:"score" gorm:"not null;default:0"`
	WordCount     int    `json:"word_count" gorm:"not null;default:0"`
	BestWord      string `json:"best_word"`
	Winner        bool   `json:"winner" gorm:"not null;default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

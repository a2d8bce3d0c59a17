package services

import (
	"github.com/VarnikaKalani/anagram/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// LeaderboardEntry is one aggregated row of the all-time leaderboard.
type LeaderboardEntry struct {
	Name       string `json:"name"`
	Matches    int    `json:"matches"`
	Wins       int    `json:"wins"`
	TotalScore int    `json:"total_score"`
	BestScore  int    `json:"best_score"`
}

// HistoryService records finished matches and serves the leaderboard.
// It is optional: with a nil DB every method is a no-op, so the engine
// runs without Postgres in development and in tests.
type HistoryService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewHistoryService(db *gorm.DB, log zerolog.Logger) *HistoryService {
	return &HistoryService{db: db, log: log.With().Str("component", "history").Logger()}
}

// RecordMatch persists one finished round with its per-player rows.
func (h *HistoryService) RecordMatch(rec *models.MatchRecord) {
	if h == nil || h.db == nil || rec == nil {
		return
	}
	if err := h.db.Create(rec).Error; err != nil {
		h.log.Error().Err(err).Str("code", rec.RoomCode).Msg("failed to record match")
		return
	}
	h.log.Info().Str("code", rec.RoomCode).Uint("match_id", rec.ID).Msg("match recorded")
}

// MatchesByRoom returns the recorded matches for one room code, newest
// first.
func (h *HistoryService) MatchesByRoom(code string, limit int) ([]models.MatchRecord, error) {
	if h == nil || h.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var matches []models.MatchRecord
	err := h.db.Preload("Players").
		Where("room_code = ?", code).
		Order("ended_at DESC").
		Limit(limit).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Leaderboard aggregates match players by display name. Names are the
// only identity that survives across rooms, so the board is by name.
func (h *HistoryService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if h == nil || h.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var entries []LeaderboardEntry
	err := h.db.Model(&models.MatchPlayer{}).
		Select("name, COUNT(*) AS matches, SUM(CASE WHEN winner THEN 1 ELSE 0 END) AS wins, SUM(score) AS total_score, MAX(score) AS best_score").
		Group("name").
		Order("total_score DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

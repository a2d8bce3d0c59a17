package handlers

import (
	"net/http"
	"strconv"

	"github.com/VarnikaKalani/anagram/services"
	"github.com/gin-gonic/gin"
)

// HistoryHandler serves recorded matches and the leaderboard. When the
// history database is disabled both endpoints return empty lists.
type HistoryHandler struct {
	history *services.HistoryService
}

func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.history.Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load leaderboard"})
		return
	}
	if entries == nil {
		entries = []services.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (h *HistoryHandler) GetMatchesByRoom(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	matches, err := h.history.MatchesByRoom(c.Param("code"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load matches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

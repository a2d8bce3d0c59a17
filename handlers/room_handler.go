package handlers

import (
	"net/http"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/VarnikaKalani/anagram/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RoomHandler exposes the room lifecycle over HTTP. Every response body
// is JSON; engine validation failures come back as GameError codes with
// a matching status.
type RoomHandler struct {
	rooms    *services.RoomService
	sessions *services.SessionService
	log      zerolog.Logger
}

func NewRoomHandler(rooms *services.RoomService, sessions *services.SessionService, log zerolog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, sessions: sessions, log: log.With().Str("component", "http").Logger()}
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
	Mode string `json:"mode"`
}

type joinRoomRequest struct {
	Name           string `json:"name"`
	ReconnectToken string `json:"reconnect_token"`
}

type submitWordRequest struct {
	Word string `json:"word" binding:"required"`
}

// joinResponse is the create/join payload: the engine's result plus the
// session token the client presents on later intents.
type joinResponse struct {
	services.JoinResult
	SessionToken string `json:"session_token"`
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithCode(c, models.NewGameError(models.CodeNameRequired, "a player name is required"))
		return
	}

	result, err := h.rooms.CreateRoom(c.Request.Context(), req.Name, req.Mode)
	if err != nil {
		abortWithCode(c, err)
		return
	}

	token, err := h.sessions.IssueToken(result.You.ID, result.Room.Code)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to issue session token")
		abortWithCode(c, models.NewGameError(models.CodeUnknown, "could not create a session"))
		return
	}

	c.JSON(http.StatusCreated, joinResponse{JoinResult: result, SessionToken: token})
}

func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithCode(c, models.NewGameError(models.CodeNameRequired, "a player name is required"))
		return
	}

	result, err := h.rooms.JoinRoom(c.Request.Context(), c.Param("code"), req.Name, req.ReconnectToken)
	if err != nil {
		abortWithCode(c, err)
		return
	}

	token, err := h.sessions.IssueToken(result.You.ID, result.Room.Code)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to issue session token")
		abortWithCode(c, models.NewGameError(models.CodeUnknown, "could not create a session"))
		return
	}

	c.JSON(http.StatusOK, joinResponse{JoinResult: result, SessionToken: token})
}

func (h *RoomHandler) StartGame(c *gin.Context) {
	playerID, ok := h.actingPlayer(c)
	if !ok {
		return
	}

	state, err := h.rooms.StartGame(c.Request.Context(), c.Param("code"), playerID)
	if err != nil {
		abortWithCode(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// SubmitWord returns 200 with the result either way: validation failures
// are in-band outcomes, not transport errors.
func (h *RoomHandler) SubmitWord(c *gin.Context) {
	playerID, ok := h.actingPlayer(c)
	if !ok {
		return
	}

	var req submitWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithCode(c, models.NewGameError(models.CodeTooShort, "a word is required"))
		return
	}

	result, err := h.rooms.SubmitWord(c.Request.Context(), c.Param("code"), playerID, req.Word)
	if err != nil {
		abortWithCode(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	playerID, ok := h.actingPlayer(c)
	if !ok {
		return
	}

	if err := h.rooms.LeaveRoom(c.Request.Context(), c.Param("code"), playerID); err != nil {
		abortWithCode(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left the room"})
}

// GetRoom is public: spectators can poll the redacted snapshot. A valid
// bearer token additionally fills in the caller's own view.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	viewerID := ""
	if header := c.GetHeader("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
		if playerID, _, err := h.sessions.ParseToken(header[7:]); err == nil {
			viewerID = playerID
		}
	}

	state, err := h.rooms.Snapshot(c.Request.Context(), c.Param("code"), viewerID)
	if err != nil {
		abortWithCode(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// actingPlayer reads the identity placed by the auth middleware and
// checks the session is bound to the room being acted on.
func (h *RoomHandler) actingPlayer(c *gin.Context) (string, bool) {
	playerID, exists := c.Get("player_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return "", false
	}
	roomCode, _ := c.Get("room_code")
	if code := c.Param("code"); code != "" && roomCode != code {
		abortWithCode(c, models.NewGameError(models.CodeNotInRoom, "your session belongs to a different room"))
		return "", false
	}
	return playerID.(string), true
}

// abortWithCode maps an engine error onto an HTTP status and a JSON body
// carrying the GameError.
func abortWithCode(c *gin.Context, err error) {
	ge := models.AsGameError(err)
	c.JSON(statusFor(ge.Code), gin.H{"error": ge})
}

func statusFor(code models.ErrorCode) int {
	switch code {
	case models.CodeRoomNotFound:
		return http.StatusNotFound
	case models.CodeNotInRoom, models.CodeHostOnly:
		return http.StatusForbidden
	case models.CodeRoomFull, models.CodeWaitingForPlayers, models.CodeRoundNotActive:
		return http.StatusConflict
	case models.CodeRateLimit:
		return http.StatusTooManyRequests
	case models.CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

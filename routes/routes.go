package routes

import (
	"net/http"

	"github.com/VarnikaKalani/anagram/handlers"
	"github.com/VarnikaKalani/anagram/middleware"
	"github.com/VarnikaKalani/anagram/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	roomHandler *handlers.RoomHandler,
	historyHandler *handlers.HistoryHandler,
	hub *services.Hub,
	rooms *services.RoomService,
	sessions *services.SessionService,
	log zerolog.Logger,
) {
	// API routes
	api := router.Group("/api")
	{
		// Public room routes
		roomsGroup := api.Group("/rooms")
		{
			roomsGroup.POST("", roomHandler.CreateRoom)
			roomsGroup.POST("/:code/join", roomHandler.JoinRoom)
			roomsGroup.GET("/:code", roomHandler.GetRoom)
		}

		// Intents that require an authenticated session
		protected := api.Group("/rooms")
		protected.Use(middleware.SessionAuth(sessions))
		{
			protected.POST("/:code/start", roomHandler.StartGame)
			protected.POST("/:code/submit", roomHandler.SubmitWord)
			protected.POST("/:code/leave", roomHandler.LeaveRoom)
		}

		// Match history
		api.GET("/leaderboard", historyHandler.GetLeaderboard)
		api.GET("/matches/:code", historyHandler.GetMatchesByRoom)
	}

	// WebSocket endpoint for real-time room communication. The session
	// token rides in the query string because browser websocket clients
	// cannot set headers.
	router.GET("/ws/:code", func(c *gin.Context) {
		code := c.Param("code")
		token := c.Query("token")

		playerID, roomCode, err := sessions.ParseToken(token)
		if err != nil || roomCode != code {
			log.Debug().Str("code", code).Msg("websocket rejected: bad session token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		// The player must actually be in the room before we upgrade.
		state, err := rooms.Snapshot(c.Request.Context(), code, playerID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if state.You == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a player in this room"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Str("code", code).Msg("websocket upgrade failed")
			return
		}

		hub.RegisterClient(conn, code, playerID, state.You.Name)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

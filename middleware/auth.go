package middleware

import (
	"net/http"
	"strings"

	"github.com/VarnikaKalani/anagram/services"
	"github.com/gin-gonic/gin"
)

// SessionAuth validates the bearer session token and stores the acting
// identity on the request context. The token binds a player to one room;
// handlers compare the bound code against the :code path parameter.
func SessionAuth(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			c.Abort()
			return
		}

		playerID, roomCode, err := sessions.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			c.Abort()
			return
		}

		c.Set("player_id", playerID)
		c.Set("room_code", roomCode)
		c.Next()
	}
}

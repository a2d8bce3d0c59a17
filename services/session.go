package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionService issues and verifies the two credentials a client holds:
//
//   - a session token: a signed JWT carrying the acting identity (player
//     id + room code) that HTTP intents present as a bearer token;
//   - a reconnect token: a random secret whose bcrypt hash lives on the
//     Player, used to reclaim the identity from a brand-new connection.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a session token binding playerID to roomCode.
func (s *SessionService) IssueToken(playerID, roomCode string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"player_id": playerID,
		"room_code": roomCode,
		"iat":       now.Unix(),
		"exp":       now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// ParseToken validates a session token and returns (playerID, roomCode).
func (s *SessionService) ParseToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid session token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid session claims")
	}
	playerID, _ := claims["player_id"].(string)
	roomCode, _ := claims["room_code"].(string)
	if playerID == "" || roomCode == "" {
		return "", "", errors.New("incomplete session claims")
	}
	return playerID, roomCode, nil
}

// NewReconnectToken returns (plaintext, bcrypt hash). Only the hash is
// kept server-side.
func NewReconnectToken() (string, string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", "", err
	}
	token := hex.EncodeToString(buf[:])
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return token, string(hash), nil
}

// CheckReconnectToken reports whether token matches the stored hash.
func CheckReconnectToken(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

package models

import (
	"context"
	"sync"
	"time"
)

const (
	MaxPlayersPerRoom = 2
	RoundDurationSec  = 60
	MinWordLength     = 3
	MaxWordLength     = 6
	LettersPerRound   = 6
)

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusReady    RoomStatus = "ready"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

type GameMode string

const (
	ModeEasy   GameMode = "easy"
	ModeMedium GameMode = "medium"
	ModeHard   GameMode = "hard"
)

type EndReason string

const (
	EndTimeUp            EndReason = "time_up"
	EndAllWordsFound     EndReason = "all_words_found"
	EndDisconnectTimeout EndReason = "disconnect_timeout"
)

// Room is one two-player match identified by a 6-digit code. All fields
// are owned by the room engine and must only be touched with Mu held; the
// JSON shape is the snapshot persisted to the room store, not the public
// view (see RoomView).
type Room struct {
	Code    string     `json:"code"`
	Status  RoomStatus `json:"status"`
	Mode    GameMode   `json:"mode"`
	HostID  string     `json:"host_id"`
	Players []*Player  `json:"players"`

	// Round state; reset atomically on every start.
	Letters          string          `json:"letters"`
	AllValidWords    map[string]bool `json:"all_valid_words"`
	FoundGlobalWords map[string]bool `json:"found_global_words"`
	StartTime        *time.Time      `json:"start_time,omitempty"`
	DurationSec      int             `json:"duration_sec"`
	LastEndReason    EndReason       `json:"last_end_reason,omitempty"`

	DisconnectGraceEndsAt *time.Time `json:"disconnect_grace_ends_at,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	// RoundToken identifies the current round's timers. A fired timer
	// callback compares its captured token against this before acting, so
	// a stale timer is a no-op rather than a race.
	RoundToken uint64 `json:"round_token"`

	// Concurrency control; one mutation at a time per room.
	Mu sync.Mutex `json:"-"`

	// Round timer plumbing, recreated each start.
	RoundCtx    context.Context    `json:"-"`
	RoundCancel context.CancelFunc `json:"-"`
	GraceTimer  *time.Timer        `json:"-"`
}

// FindPlayer returns the player with the given id, or nil.
func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ConnectedCount reports how many players are currently connected.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Deadline returns the wall-clock end of the current round.
// Only meaningful while a round has a start time.
func (r *Room) Deadline() time.Time {
	if r.StartTime == nil {
		return time.Time{}
	}
	return r.StartTime.Add(time.Duration(r.DurationSec) * time.Second)
}

// ReassignHost moves host rights to the first connected player. When no
// player is connected the host keeps the role; rights only move to
// someone who can exercise them.
func (r *Room) ReassignHost() {
	for _, p := range r.Players {
		if p.Connected {
			r.HostID = p.ID
			return
		}
	}
}

// RecomputeLobbyStatus derives waiting/ready from connectivity. Only valid
// while the room is not mid-round.
func (r *Room) RecomputeLobbyStatus() {
	if r.Status == StatusPlaying || r.Status == StatusFinished {
		return
	}
	if len(r.Players) == MaxPlayersPerRoom && r.ConnectedCount() == MaxPlayersPerRoom {
		r.Status = StatusReady
	} else {
		r.Status = StatusWaiting
	}
}

// RoomView is the public snapshot broadcast to clients. Solution words are
// withheld until the round is finished; per-player secrets never appear.
type RoomView struct {
	Code          string       `json:"code"`
	Status        RoomStatus   `json:"status"`
	Mode          GameMode     `json:"mode"`
	HostID        string       `json:"host_id"`
	Players       []PlayerView `json:"players"`
	Letters       string       `json:"letters"`
	DurationSec   int          `json:"duration_sec"`
	StartTime     *time.Time   `json:"start_time,omitempty"`
	MsRemaining   int64        `json:"ms_remaining"`
	FoundWords    int          `json:"found_words"`
	TotalWords    int          `json:"total_words,omitempty"`
	AllValidWords []string     `json:"all_valid_words,omitempty"`
	LastEndReason EndReason    `json:"last_end_reason,omitempty"`
}

// View builds the redacted public snapshot. Caller must hold r.Mu.
func (r *Room) View(now time.Time) RoomView {
	v := RoomView{
		Code:          r.Code,
		Status:        r.Status,
		Mode:          r.Mode,
		HostID:        r.HostID,
		Letters:       r.Letters,
		DurationSec:   r.DurationSec,
		StartTime:     r.StartTime,
		FoundWords:    len(r.FoundGlobalWords),
		LastEndReason: r.LastEndReason,
	}
	for _, p := range r.Players {
		v.Players = append(v.Players, p.View())
	}
	if r.Status == StatusPlaying && r.StartTime != nil {
		remaining := r.Deadline().Sub(now).Milliseconds()
		if remaining < 0 {
			remaining = 0
		}
		v.MsRemaining = remaining
	}
	// The solution list stays hidden until the round is over.
	if r.Status == StatusFinished {
		v.TotalWords = len(r.AllValidWords)
		v.AllValidWords = SortedWords(r.AllValidWords)
	}
	return v
}

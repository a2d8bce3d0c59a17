package models

import "time"

// NotificationType tags every server-originated message.
type NotificationType string

const (
	NotifyRoomState  NotificationType = "room:state"
	NotifyWordResult NotificationType = "word:result"
	NotifyGameTick   NotificationType = "game:tick"
	NotifyGameEnd    NotificationType = "game:end"
)

// Notification is the wire envelope pushed over the websocket hub.
type Notification struct {
	Type NotificationType `json:"type"`
	Data any              `json:"data"`
}

// RoomStateData is a full room snapshot plus the recipient's own view.
type RoomStateData struct {
	Room      RoomView    `json:"room"`
	You       *PlayerView `json:"you,omitempty"`
	ServerNow time.Time   `json:"server_now"`
	Notice    string      `json:"notice,omitempty"`
}

// WordResultData is the outcome of a single submission.
type WordResultData struct {
	OK        bool      `json:"ok"`
	Word      string    `json:"word"`
	Points    int       `json:"points,omitempty"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	Message   string    `json:"message"`
}

// TickData is the periodic countdown while a round is playing.
type TickData struct {
	ServerNow   time.Time `json:"server_now"`
	MsRemaining int64     `json:"ms_remaining"`
}

// GameEndData is the terminal round snapshot, including the solution list.
type GameEndData struct {
	Room          RoomView  `json:"room"`
	AllValidWords []string  `json:"all_valid_words"`
	Reason        EndReason `json:"reason"`
	ServerNow     time.Time `json:"server_now"`
}

func RoomStateNotification(data RoomStateData) Notification {
	return Notification{Type: NotifyRoomState, Data: data}
}

func WordResultNotification(data WordResultData) Notification {
	return Notification{Type: NotifyWordResult, Data: data}
}

func TickNotification(data TickData) Notification {
	return Notification{Type: NotifyGameTick, Data: data}
}

func GameEndNotification(data GameEndData) Notification {
	return Notification{Type: NotifyGameEnd, Data: data}
}

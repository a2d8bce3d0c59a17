package models

// ErrorCode is the closed set of user-facing error codes. Validation
// failures are values of this type, never panics; anything unexpected is
// mapped to CodeUnknown at the boundary.
type ErrorCode string

const (
	CodeBadCode           ErrorCode = "BAD_CODE"
	CodeNameRequired      ErrorCode = "NAME_REQUIRED"
	CodeRoomNotFound      ErrorCode = "ROOM_NOT_FOUND"
	CodeRoomFull          ErrorCode = "ROOM_FULL"
	CodeNotInRoom         ErrorCode = "NOT_IN_ROOM"
	CodeHostOnly          ErrorCode = "HOST_ONLY"
	CodeWaitingForPlayers ErrorCode = "WAITING_FOR_PLAYERS"
	CodeRoundNotActive    ErrorCode = "ROUND_NOT_ACTIVE"
	CodeTooShort          ErrorCode = "TOO_SHORT"
	CodeLetterMismatch    ErrorCode = "LETTER_MISMATCH"
	CodeInvalidWord       ErrorCode = "INVALID_WORD"
	CodeAlreadyUsed       ErrorCode = "ALREADY_USED"
	CodeRateLimit         ErrorCode = "RATE_LIMIT"
	CodeUnknown           ErrorCode = "UNKNOWN"
)

// GameError carries an error code and a human-readable message across the
// engine boundary as a normal return value.
type GameError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *GameError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewGameError(code ErrorCode, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// AsGameError returns err as a *GameError, wrapping anything else as
// CodeUnknown with a generic message so internals never leak to clients.
func AsGameError(err error) *GameError {
	if err == nil {
		return nil
	}
	if ge, ok := err.(*GameError); ok {
		return ge
	}
	return &GameError{Code: CodeUnknown, Message: "something went wrong, please try again"}
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/VarnikaKalani/anagram/words"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorderNotifier captures notifications for assertions.
type recorderNotifier struct {
	mu       sync.Mutex
	room     []models.Notification
	byPlayer map[string][]models.Notification
}

func newRecorder() *recorderNotifier {
	return &recorderNotifier{byPlayer: make(map[string][]models.Notification)}
}

func (r *recorderNotifier) ToRoom(code string, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room = append(r.room, n)
}

func (r *recorderNotifier) ToPlayer(code, playerID string, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlayer[playerID] = append(r.byPlayer[playerID], n)
}

func (r *recorderNotifier) roomCount(typ models.NotificationType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, msg := range r.room {
		if msg.Type == typ {
			n++
		}
	}
	return n
}

func (r *recorderNotifier) lastEnd() (models.GameEndData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.room) - 1; i >= 0; i-- {
		if r.room[i].Type == models.NotifyGameEnd {
			return r.room[i].Data.(models.GameEndData), true
		}
	}
	return models.GameEndData{}, false
}

func newTestEngine(t *testing.T, opts EngineOptions) (*RoomService, *recorderNotifier) {
	t.Helper()
	require.NoError(t, words.Init())

	lex := NewLexicon(words.Full(), words.Common())
	gen := NewGenerator(lex, 42, zerolog.Nop())
	store := NewMemoryRoomStore()
	reg := NewRegistry(store, zerolog.Nop())

	svc := NewRoomService(reg, store, gen, nil, opts, zerolog.Nop())
	rec := newRecorder()
	svc.SetNotifier(rec)
	return svc, rec
}

func quietOpts() EngineOptions {
	return EngineOptions{
		RoundDuration:   time.Hour,
		TickInterval:    time.Hour,
		GraceWindow:     time.Hour,
		RateLimitMax:    100,
		RateLimitWindow: time.Second,
	}
}

// pairedRoom creates a room with two joined players and returns
// (code, hostID, guestID, guestReconnectToken).
func pairedRoom(t *testing.T, svc *RoomService) (string, string, string, string) {
	t.Helper()
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "alice", "medium")
	require.NoError(t, err)
	joined, err := svc.JoinRoom(ctx, created.Room.Code, "bob", "")
	require.NoError(t, err)
	return created.Room.Code, created.You.ID, joined.You.ID, joined.ReconnectToken
}

// rigRound pins the room's letters and solution set so submissions are
// deterministic regardless of what the generator drew.
func rigRound(t *testing.T, svc *RoomService, code, letters string, solution []string) {
	t.Helper()
	room, err := svc.registry.Get(context.Background(), code)
	require.NoError(t, err)

	room.Mu.Lock()
	room.Letters = letters
	room.AllValidWords = make(map[string]bool, len(solution))
	for _, w := range solution {
		room.AllValidWords[w] = true
	}
	room.FoundGlobalWords = make(map[string]bool)
	room.Mu.Unlock()
}

func roomState(t *testing.T, svc *RoomService, code string) *models.Room {
	t.Helper()
	room, err := svc.registry.Get(context.Background(), code)
	require.NoError(t, err)
	return room
}

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())

	result, err := svc.CreateRoom(context.Background(), "alice", "easy")
	require.NoError(t, err)

	assert.True(t, ValidRoomCode(result.Room.Code))
	assert.Equal(t, models.StatusWaiting, result.Room.Status)
	assert.Equal(t, models.ModeEasy, result.Room.Mode)
	assert.Equal(t, result.You.ID, result.Room.HostID)
	assert.NotEmpty(t, result.ReconnectToken)
	assert.True(t, result.You.Connected)
}

func TestCreateRoomRequiresName(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())

	_, err := svc.CreateRoom(context.Background(), "   ", "medium")
	require.Error(t, err)
	assert.Equal(t, models.CodeNameRequired, models.AsGameError(err).Code)
}

func TestJoinRoomBecomesReady(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "alice", "medium")
	require.NoError(t, err)

	joined, err := svc.JoinRoom(ctx, created.Room.Code, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, joined.Room.Status)
	assert.Len(t, joined.Room.Players, 2)
	assert.NotEmpty(t, joined.ReconnectToken)
}

func TestJoinRoomErrors(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()

	_, err := svc.JoinRoom(ctx, "nope", "bob", "")
	assert.Equal(t, models.CodeBadCode, models.AsGameError(err).Code)

	_, err = svc.JoinRoom(ctx, "000000", "bob", "")
	assert.Equal(t, models.CodeRoomNotFound, models.AsGameError(err).Code)

	code, _, _, _ := pairedRoom(t, svc)
	_, err = svc.JoinRoom(ctx, code, "carol", "")
	assert.Equal(t, models.CodeRoomFull, models.AsGameError(err).Code)
}

func TestStartGameRules(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, "alice", "medium")
	require.NoError(t, err)
	code, hostID := created.Room.Code, created.You.ID

	// One player is not enough.
	_, err = svc.StartGame(ctx, code, hostID)
	assert.Equal(t, models.CodeWaitingForPlayers, models.AsGameError(err).Code)

	joined, err := svc.JoinRoom(ctx, code, "bob", "")
	require.NoError(t, err)

	// Only the host can start.
	_, err = svc.StartGame(ctx, code, joined.You.ID)
	assert.Equal(t, models.CodeHostOnly, models.AsGameError(err).Code)

	state, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlaying, state.Room.Status)
	assert.Len(t, state.Room.Letters, models.LettersPerRound)
	assert.Positive(t, state.Room.MsRemaining)

	// The solution set must not leak while the round is live.
	assert.Empty(t, state.Room.AllValidWords)
	assert.Zero(t, state.Room.TotalWords)

	// A second start mid-round is rejected.
	_, err = svc.StartGame(ctx, code, hostID)
	assert.Equal(t, models.CodeWaitingForPlayers, models.AsGameError(err).Code)
}

func TestSubmitBeforeStart(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	code, hostID, _, _ := pairedRoom(t, svc)

	result, err := svc.SubmitWord(context.Background(), code, hostID, "team")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, models.CodeRoundNotActive, result.ErrorCode)
}

func TestSubmitPipeline(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	rigRound(t, svc, code, "aemrst", []string{"team", "meat", "steam", "stream", "mat"})

	// Input is normalized before every other check.
	result, err := svc.SubmitWord(ctx, code, hostID, "  TeAm ")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "team", result.Word)
	assert.Equal(t, 2, result.Points)

	// Same player cannot reuse a word.
	result, _ = svc.SubmitWord(ctx, code, hostID, "team")
	assert.False(t, result.OK)
	assert.Equal(t, models.CodeAlreadyUsed, result.ErrorCode)

	// The other player scores the same word independently.
	result, _ = svc.SubmitWord(ctx, code, guestID, "team")
	assert.True(t, result.OK)

	result, _ = svc.SubmitWord(ctx, code, hostID, "at")
	assert.Equal(t, models.CodeTooShort, result.ErrorCode)

	result, _ = svc.SubmitWord(ctx, code, hostID, "zest")
	assert.Equal(t, models.CodeLetterMismatch, result.ErrorCode)

	// Buildable from the bank but not in the solution set.
	result, _ = svc.SubmitWord(ctx, code, hostID, "mast")
	assert.Equal(t, models.CodeInvalidWord, result.ErrorCode)

	// Longer words score more.
	result, _ = svc.SubmitWord(ctx, code, hostID, "stream")
	assert.True(t, result.OK)
	assert.Equal(t, 7, result.Points)

	state, err := svc.Snapshot(ctx, code, hostID)
	require.NoError(t, err)
	require.NotNil(t, state.You)
	assert.Equal(t, 9, state.You.Score)
	assert.Equal(t, "stream", state.You.LongestWord)
}

func TestSubmitToUnknownPlayer(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	code, hostID, _, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(context.Background(), code, hostID)
	require.NoError(t, err)

	_, err = svc.SubmitWord(context.Background(), code, "stranger", "team")
	assert.Equal(t, models.CodeNotInRoom, models.AsGameError(err).Code)
}

func TestRateLimitCountsFailedAttempts(t *testing.T) {
	opts := quietOpts()
	opts.RateLimitMax = 3
	opts.RateLimitWindow = time.Hour
	svc, _ := newTestEngine(t, opts)
	ctx := context.Background()
	code, hostID, _, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	rigRound(t, svc, code, "aemrst", []string{"team", "meat"})

	// Two rejected submissions still consume window slots.
	for i := 0; i < 2; i++ {
		result, _ := svc.SubmitWord(ctx, code, hostID, "mast")
		assert.Equal(t, models.CodeInvalidWord, result.ErrorCode)
	}
	result, _ := svc.SubmitWord(ctx, code, hostID, "team")
	assert.True(t, result.OK)

	result, _ = svc.SubmitWord(ctx, code, hostID, "meat")
	assert.Equal(t, models.CodeRateLimit, result.ErrorCode)

	// A rejected attempt must not consume a slot itself, and the other
	// player has an independent window.
	other, _ := svc.SubmitWord(ctx, code, hostID, "meat")
	assert.Equal(t, models.CodeRateLimit, other.ErrorCode)

	guestState, err := svc.Snapshot(ctx, code, hostID)
	require.NoError(t, err)
	guestID := otherPlayer(guestState.Room, hostID)
	result, _ = svc.SubmitWord(ctx, code, guestID, "meat")
	assert.True(t, result.OK)
}

func otherPlayer(room models.RoomView, notID string) string {
	for _, p := range room.Players {
		if p.ID != notID {
			return p.ID
		}
	}
	return ""
}

func TestAllWordsFoundEndsRoundEarly(t *testing.T) {
	svc, rec := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	rigRound(t, svc, code, "aemrst", []string{"team", "meat"})

	result, _ := svc.SubmitWord(ctx, code, hostID, "team")
	assert.True(t, result.OK)

	result, _ = svc.SubmitWord(ctx, code, guestID, "meat")
	assert.True(t, result.OK)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	status, reason := room.Status, room.LastEndReason
	room.Mu.Unlock()
	assert.Equal(t, models.StatusFinished, status)
	assert.Equal(t, models.EndAllWordsFound, reason)

	end, ok := rec.lastEnd()
	require.True(t, ok)
	assert.Equal(t, models.EndAllWordsFound, end.Reason)
	assert.ElementsMatch(t, []string{"meat", "team"}, end.AllValidWords)

	// The round is over; further submissions bounce.
	result, _ = svc.SubmitWord(ctx, code, hostID, "meat")
	assert.Equal(t, models.CodeRoundNotActive, result.ErrorCode)
}

func TestLazyExpiryOnSnapshot(t *testing.T) {
	svc, rec := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, hostID, _, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)

	// Backdate the round past its deadline; the timer goroutine is armed
	// for an hour away, so only the lazy check can end it.
	room := roomState(t, svc, code)
	room.Mu.Lock()
	past := time.Now().Add(-2 * time.Hour)
	room.StartTime = &past
	room.Mu.Unlock()

	state, err := svc.Snapshot(ctx, code, hostID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, state.Room.Status)
	assert.Equal(t, models.EndTimeUp, state.Room.LastEndReason)
	assert.NotEmpty(t, state.Room.AllValidWords)
	assert.Equal(t, len(state.Room.AllValidWords), state.Room.TotalWords)

	end, ok := rec.lastEnd()
	require.True(t, ok)
	assert.Equal(t, models.EndTimeUp, end.Reason)
}

func TestRoundExpiryTimer(t *testing.T) {
	opts := quietOpts()
	opts.RoundDuration = time.Second
	opts.TickInterval = 50 * time.Millisecond
	svc, rec := newTestEngine(t, opts)
	code, hostID, _, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(context.Background(), code, hostID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		end, ok := rec.lastEnd()
		return ok && end.Reason == models.EndTimeUp
	}, 3*time.Second, 20*time.Millisecond)

	assert.Greater(t, rec.roomCount(models.NotifyGameTick), 0)
}

func TestDisconnectGraceTimeout(t *testing.T) {
	opts := quietOpts()
	opts.GraceWindow = 40 * time.Millisecond
	svc, rec := newTestEngine(t, opts)
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(context.Background(), code, hostID)
	require.NoError(t, err)

	svc.Disconnect(code, guestID)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	assert.Equal(t, models.StatusPlaying, room.Status)
	assert.NotNil(t, room.DisconnectGraceEndsAt)
	room.Mu.Unlock()

	require.Eventually(t, func() bool {
		end, ok := rec.lastEnd()
		return ok && end.Reason == models.EndDisconnectTimeout
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectCancelsGrace(t *testing.T) {
	opts := quietOpts()
	opts.GraceWindow = 60 * time.Millisecond
	svc, _ := newTestEngine(t, opts)
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(context.Background(), code, hostID)
	require.NoError(t, err)

	svc.Disconnect(code, guestID)
	_, err = svc.MarkConnected(code, guestID)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	status := room.Status
	grace := room.DisconnectGraceEndsAt
	room.Mu.Unlock()
	assert.Equal(t, models.StatusPlaying, status)
	assert.Nil(t, grace)
}

func TestHostReassignedOnDisconnect(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(context.Background(), code, hostID)
	require.NoError(t, err)

	svc.Disconnect(code, hostID)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	newHost := room.HostID
	room.Mu.Unlock()
	assert.Equal(t, guestID, newHost)
}

func TestLobbyReconnectByToken(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, _, guestID, guestToken := pairedRoom(t, svc)

	svc.Disconnect(code, guestID)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	assert.Equal(t, models.StatusWaiting, room.Status)
	room.Mu.Unlock()

	rejoined, err := svc.JoinRoom(ctx, code, "", guestToken)
	require.NoError(t, err)
	assert.Equal(t, guestID, rejoined.You.ID)
	assert.Equal(t, models.StatusReady, rejoined.Room.Status)
	assert.Len(t, rejoined.Room.Players, 2)
	assert.Empty(t, rejoined.ReconnectToken)
}

func TestRematchKeepsPlayersResetsRound(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	rigRound(t, svc, code, "aemrst", []string{"team", "meat"})

	result, _ := svc.SubmitWord(ctx, code, hostID, "team")
	require.True(t, result.OK)
	result, _ = svc.SubmitWord(ctx, code, guestID, "meat")
	require.True(t, result.OK)

	// Round ended by finding everything; host starts a rematch.
	state, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlaying, state.Room.Status)
	for _, p := range state.Room.Players {
		assert.Zero(t, p.Score)
		assert.Empty(t, p.Words)
	}
	assert.Zero(t, state.Room.FoundWords)
}

func TestLeaveRoomRequiresMembership(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	code, hostID, _, _ := pairedRoom(t, svc)

	err := svc.LeaveRoom(context.Background(), code, "stranger")
	assert.Equal(t, models.CodeNotInRoom, models.AsGameError(err).Code)

	require.NoError(t, svc.LeaveRoom(context.Background(), code, hostID))
	room := roomState(t, svc, code)
	room.Mu.Lock()
	host := room.FindPlayer(hostID)
	room.Mu.Unlock()
	require.NotNil(t, host)
	assert.False(t, host.Connected)
}

func TestMidRoundReconnectPreservesState(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, hostID, guestID, guestToken := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	rigRound(t, svc, code, "aemrst", []string{"team", "meat", "steam"})

	result, _ := svc.SubmitWord(ctx, code, guestID, "meat")
	require.True(t, result.OK)

	svc.Disconnect(code, guestID)

	rejoined, err := svc.JoinRoom(ctx, code, "", guestToken)
	require.NoError(t, err)
	assert.Equal(t, guestID, rejoined.You.ID)
	assert.True(t, rejoined.You.Connected)
	assert.Equal(t, 2, rejoined.You.Score)
	require.Len(t, rejoined.You.Words, 1)
	assert.Equal(t, "meat", rejoined.You.Words[0].Text)
	assert.Equal(t, "meat", rejoined.You.LongestWord)
	assert.Equal(t, models.StatusPlaying, rejoined.Room.Status)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	grace := room.DisconnectGraceEndsAt
	room.Mu.Unlock()
	assert.Nil(t, grace)

	// The reclaimed identity keeps playing where it left off.
	result, _ = svc.SubmitWord(ctx, code, guestID, "meat")
	assert.Equal(t, models.CodeAlreadyUsed, result.ErrorCode)
	result, _ = svc.SubmitWord(ctx, code, guestID, "team")
	assert.True(t, result.OK)
}

func TestStaleGraceFireDoesNotStealFreshWindow(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	token := room.RoundToken
	room.Mu.Unlock()

	// First window: guest drops and comes back before the deadline.
	svc.Disconnect(code, guestID)
	_, err = svc.MarkConnected(code, guestID)
	require.NoError(t, err)

	// Second window in the same round: now the host drops.
	svc.Disconnect(code, hostID)

	// A fire from the first window's timer that lost the race with Stop
	// carries a matching round token but must not end the round while the
	// second window's deadline is still ahead.
	svc.handleGraceExpiry(code, token)

	room.Mu.Lock()
	status := room.Status
	grace := room.DisconnectGraceEndsAt
	room.Mu.Unlock()
	assert.Equal(t, models.StatusPlaying, status)
	require.NotNil(t, grace)
	assert.True(t, grace.After(time.Now()))
}

func TestHostKeptWhenNoPlayerConnected(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	code, hostID, guestID, _ := pairedRoom(t, svc)

	svc.Disconnect(code, guestID)
	svc.Disconnect(code, hostID)

	// With nobody connected, host rights stay put rather than landing on
	// the other disconnected player.
	room := roomState(t, svc, code)
	room.Mu.Lock()
	host := room.HostID
	room.Mu.Unlock()
	assert.Equal(t, hostID, host)
}

func TestMatchRecordWinner(t *testing.T) {
	svc, _ := newTestEngine(t, quietOpts())
	ctx := context.Background()
	code, hostID, guestID, _ := pairedRoom(t, svc)

	_, err := svc.StartGame(ctx, code, hostID)
	require.NoError(t, err)
	rigRound(t, svc, code, "aemrst", []string{"team", "meat", "stream"})

	result, _ := svc.SubmitWord(ctx, code, hostID, "stream")
	require.True(t, result.OK)
	result, _ = svc.SubmitWord(ctx, code, guestID, "meat")
	require.True(t, result.OK)

	room := roomState(t, svc, code)
	room.Mu.Lock()
	rec := buildMatchRecord(room, time.Now())
	room.Mu.Unlock()

	require.Len(t, rec.Players, 2)
	for _, p := range rec.Players {
		switch p.PlayerID {
		case hostID:
			assert.True(t, p.Winner)
			assert.Equal(t, "stream", p.BestWord)
		case guestID:
			assert.False(t, p.Winner)
		}
	}
	assert.Equal(t, 3, rec.TotalWords)
	assert.Equal(t, 2, rec.FoundWords)
}

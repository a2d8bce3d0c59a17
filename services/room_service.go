package services

import (
	"context"
	"strings"
	"time"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxPlayerNameLen = 24

// Notifier delivers server-originated notifications to connected clients.
// The websocket hub implements it; tests substitute a recorder.
type Notifier interface {
	ToRoom(code string, n models.Notification)
	ToPlayer(code, playerID string, n models.Notification)
}

// EngineOptions are the room engine's timing and rate-limit tunables.
// Tests shrink them; production uses the defaults.
type EngineOptions struct {
	RoundDuration   time.Duration
	TickInterval    time.Duration
	GraceWindow     time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		RoundDuration:   models.RoundDurationSec * time.Second,
		TickInterval:    time.Second,
		GraceWindow:     15 * time.Second,
		RateLimitMax:    5,
		RateLimitWindow: 2 * time.Second,
	}
}

// RoomService is the authoritative room state machine. Every intent and
// timer callback that touches a room serializes on that room's mutex;
// rooms are otherwise independent.
type RoomService struct {
	registry *Registry
	store    RoomStore
	gen      *Generator
	history  *HistoryService
	notifier Notifier
	opts     EngineOptions
	log      zerolog.Logger
}

func NewRoomService(registry *Registry, store RoomStore, gen *Generator, history *HistoryService, opts EngineOptions, log zerolog.Logger) *RoomService {
	if opts.RoundDuration <= 0 {
		opts = DefaultEngineOptions()
	}
	return &RoomService{
		registry: registry,
		store:    store,
		gen:      gen,
		history:  history,
		opts:     opts,
		log:      log.With().Str("component", "rooms").Logger(),
	}
}

// SetNotifier wires the outbound transport. Must be called before clients
// connect; the engine tolerates a nil notifier for tests.
func (s *RoomService) SetNotifier(n Notifier) { s.notifier = n }

// JoinResult is returned from create/join: the room view, the caller's
// identity, and the one-time reconnect secret (empty on reconnects).
type JoinResult struct {
	Room           models.RoomView   `json:"room"`
	You            models.PlayerView `json:"you"`
	ReconnectToken string            `json:"reconnect_token,omitempty"`
}

// CreateRoom makes a new room with the caller as host and sole player.
func (s *RoomService) CreateRoom(ctx context.Context, name, mode string) (JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return JoinResult{}, models.NewGameError(models.CodeNameRequired, "a player name is required")
	}
	if len(name) > maxPlayerNameLen {
		name = name[:maxPlayerNameLen]
	}

	code, err := s.registry.NewCode(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("room code generation failed")
		return JoinResult{}, models.AsGameError(err)
	}

	token, hash, err := NewReconnectToken()
	if err != nil {
		return JoinResult{}, models.AsGameError(err)
	}

	now := time.Now()
	player := &models.Player{
		ID:            uuid.NewString(),
		Name:          name,
		Connected:     true,
		UsedWords:     make(map[string]bool),
		ReconnectHash: hash,
		JoinedAt:      now,
	}
	room := &models.Room{
		Code:             code,
		Status:           models.StatusWaiting,
		Mode:             parseMode(mode),
		HostID:           player.ID,
		Players:          []*models.Player{player},
		AllValidWords:    make(map[string]bool),
		FoundGlobalWords: make(map[string]bool),
		DurationSec:      int(s.opts.RoundDuration / time.Second),
		CreatedAt:        now,
		LastActiveAt:     now,
	}

	s.registry.Put(room)

	room.Mu.Lock()
	s.persistLocked(ctx, room)
	view := room.View(now)
	you := player.View()
	room.Mu.Unlock()

	s.log.Info().Str("code", code).Str("mode", string(room.Mode)).Str("host", player.ID).Msg("room created")
	return JoinResult{Room: view, You: you, ReconnectToken: token}, nil
}

// JoinRoom adds a fresh player to the room. Given a valid reconnect
// token it instead rebinds the existing identity to the new connection.
func (s *RoomService) JoinRoom(ctx context.Context, code, name, reconnectToken string) (JoinResult, error) {
	room, err := s.lookup(ctx, code)
	if err != nil {
		return JoinResult{}, err
	}

	now := time.Now()
	room.Mu.Lock()
	ended := s.refreshExpiryLocked(ctx, room, now)

	// Reconnect path: reclaim an existing identity by token.
	if reconnectToken != "" {
		for _, p := range room.Players {
			if p.ReconnectHash != "" && CheckReconnectToken(p.ReconnectHash, reconnectToken) {
				p.Connected = true
				s.cancelGraceIfSettledLocked(room)
				room.RecomputeLobbyStatus()
				room.LastActiveAt = now
				s.persistLocked(ctx, room)
				state := s.stateLocked(room, now, p.Name+" reconnected")
				view, you := room.View(now), p.View()
				room.Mu.Unlock()

				s.emitEnd(code, ended)
				s.notifyRoom(code, models.RoomStateNotification(state))
				s.log.Info().Str("code", code).Str("player", p.ID).Msg("player reconnected")
				return JoinResult{Room: view, You: you}, nil
			}
		}
		// Unknown token: fall through and treat as a fresh join.
	}

	name = strings.TrimSpace(name)
	if name == "" {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return JoinResult{}, models.NewGameError(models.CodeNameRequired, "a player name is required")
	}
	if len(name) > maxPlayerNameLen {
		name = name[:maxPlayerNameLen]
	}
	if len(room.Players) >= models.MaxPlayersPerRoom {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return JoinResult{}, models.NewGameError(models.CodeRoomFull, "this room already has two players")
	}

	token, hash, err := NewReconnectToken()
	if err != nil {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return JoinResult{}, models.AsGameError(err)
	}

	player := &models.Player{
		ID:            uuid.NewString(),
		Name:          name,
		Connected:     true,
		UsedWords:     make(map[string]bool),
		ReconnectHash: hash,
		JoinedAt:      now,
	}
	room.Players = append(room.Players, player)
	room.RecomputeLobbyStatus()
	room.LastActiveAt = now
	s.persistLocked(ctx, room)
	state := s.stateLocked(room, now, name+" joined the room")
	view, you := room.View(now), player.View()
	room.Mu.Unlock()

	s.emitEnd(code, ended)
	s.notifyRoom(code, models.RoomStateNotification(state))
	s.log.Info().Str("code", code).Str("player", player.ID).Msg("player joined")
	return JoinResult{Room: view, You: you, ReconnectToken: token}, nil
}

// StartGame begins a round (or a rematch). Host only; requires two
// connected players.
func (s *RoomService) StartGame(ctx context.Context, code, actorID string) (models.RoomStateData, error) {
	room, err := s.lookup(ctx, code)
	if err != nil {
		return models.RoomStateData{}, err
	}

	now := time.Now()
	room.Mu.Lock()
	ended := s.refreshExpiryLocked(ctx, room, now)

	actor := room.FindPlayer(actorID)
	if actor == nil {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return models.RoomStateData{}, models.NewGameError(models.CodeNotInRoom, "you are not in this room")
	}
	if room.HostID != actorID {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return models.RoomStateData{}, models.NewGameError(models.CodeHostOnly, "only the host can start a round")
	}
	if room.Status == models.StatusPlaying {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return models.RoomStateData{}, models.NewGameError(models.CodeWaitingForPlayers, "a round is already in progress")
	}
	if len(room.Players) != models.MaxPlayersPerRoom || room.ConnectedCount() != models.MaxPlayersPerRoom {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return models.RoomStateData{}, models.NewGameError(models.CodeWaitingForPlayers, "both players must be connected to start")
	}

	// Tear down the previous round's timers before arming new ones.
	s.stopTimersLocked(room)

	round := s.gen.Generate(room.Mode)

	for _, p := range room.Players {
		p.ResetRound()
	}
	room.Letters = round.Letters
	room.AllValidWords = round.ValidWords
	room.FoundGlobalWords = make(map[string]bool)
	start := now
	room.StartTime = &start
	room.DurationSec = int(s.opts.RoundDuration / time.Second)
	room.LastEndReason = ""
	room.DisconnectGraceEndsAt = nil
	room.Status = models.StatusPlaying
	room.RoundToken++
	room.LastActiveAt = now

	roundCtx, cancel := context.WithCancel(context.Background())
	room.RoundCtx = roundCtx
	room.RoundCancel = cancel

	token := room.RoundToken
	deadline := room.Deadline()
	s.persistLocked(ctx, room)
	state := s.stateLocked(room, now, "round started")
	room.Mu.Unlock()

	s.runRoundTimers(code, token, deadline, roundCtx)

	s.emitEnd(code, ended)
	s.notifyRoom(code, models.RoomStateNotification(state))
	s.log.Info().Str("code", code).Str("letters", round.Letters).
		Int("valid_words", len(round.ValidWords)).Bool("fallback", round.Fallback).Msg("round started")
	return state, nil
}

// SubmitWord runs the anti-cheat pipeline for one submission. Validation
// failures come back inside the result, not as errors; only room-level
// problems (unknown room, not a member) surface as errors.
func (s *RoomService) SubmitWord(ctx context.Context, code, actorID, word string) (models.WordResultData, error) {
	room, err := s.lookup(ctx, code)
	if err != nil {
		return models.WordResultData{}, err
	}

	now := time.Now()
	room.Mu.Lock()
	ended := s.refreshExpiryLocked(ctx, room, now)

	player := room.FindPlayer(actorID)
	if player == nil {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return models.WordResultData{}, models.NewGameError(models.CodeNotInRoom, "you are not in this room")
	}

	result, completed := s.applySubmissionLocked(room, player, word, now)
	var state *models.RoomStateData
	if result.OK {
		room.LastActiveAt = now
		s.persistLocked(ctx, room)
		snap := s.stateLocked(room, now, "")
		state = &snap
	}
	room.Mu.Unlock()

	s.emitEnd(code, ended)
	s.notifyPlayer(code, actorID, models.WordResultNotification(result))
	if state != nil {
		s.notifyRoom(code, models.RoomStateNotification(*state))
	}
	s.emitEnd(code, completed)
	return result, nil
}

// applySubmissionLocked is the ordered pipeline from the anti-cheat
// design; it short-circuits on the first failing check. Caller holds the
// room lock. The second return value is non-nil when this submission
// finished the round by finding the last word.
func (s *RoomService) applySubmissionLocked(room *models.Room, player *models.Player, word string, now time.Time) (models.WordResultData, *roundEnd) {
	fail := func(code models.ErrorCode, msg string) models.WordResultData {
		return models.WordResultData{OK: false, Word: word, ErrorCode: code, Message: msg}
	}

	// 1. Round must be active.
	if room.Status != models.StatusPlaying {
		return fail(models.CodeRoundNotActive, "no round is in progress"), nil
	}

	// 2. Rate limit. A rejected attempt does not consume a slot, but every
	// attempt that proceeds is logged even if a later check fails.
	kept, allowed := PruneRateWindow(player.SubmitTimestamps, now, s.opts.RateLimitWindow, s.opts.RateLimitMax)
	player.SubmitTimestamps = kept
	if !allowed {
		return fail(models.CodeRateLimit, "too many submissions, slow down"), nil
	}
	player.SubmitTimestamps = append(player.SubmitTimestamps, now)

	// 3. Normalize and length-check.
	normalized := NormalizeWord(word)
	if len(normalized) < models.MinWordLength {
		return fail(models.CodeTooShort, "words need at least 3 letters"), nil
	}

	// 4. Letter-bank containment.
	if !CanBuildWord(normalized, room.Letters) {
		return fail(models.CodeLetterMismatch, "that word cannot be built from these letters"), nil
	}

	// 5. Dictionary membership against the round's solution set. This also
	// enforces the maximum length.
	if !room.AllValidWords[normalized] {
		return fail(models.CodeInvalidWord, "not a valid word for this round"), nil
	}

	// 6. Duplicate check against the player's own words.
	if player.UsedWords[normalized] {
		return fail(models.CodeAlreadyUsed, "you already found that word"), nil
	}

	// 7. Score it.
	points := WordPoints(len(normalized))
	player.RecordWord(normalized, points, now)
	room.FoundGlobalWords[normalized] = true

	result := models.WordResultData{OK: true, Word: normalized, Points: points, Message: "accepted"}

	// Finding the last missing word ends the round on the spot.
	if len(room.AllValidWords) > 0 && len(room.FoundGlobalWords) == len(room.AllValidWords) {
		return result, s.finishRoundLocked(context.Background(), room, models.EndAllWordsFound, now)
	}
	return result, nil
}

// LeaveRoom treats leave as an immediate disconnect of the acting player.
func (s *RoomService) LeaveRoom(ctx context.Context, code, actorID string) error {
	room, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}
	room.Mu.Lock()
	player := room.FindPlayer(actorID)
	room.Mu.Unlock()
	if player == nil {
		return models.NewGameError(models.CodeNotInRoom, "you are not in this room")
	}
	s.Disconnect(code, actorID)
	return nil
}

// Disconnect marks a player disconnected and, mid-round, arms the grace
// timer. Called by the hub when a connection drops and by LeaveRoom.
func (s *RoomService) Disconnect(code, playerID string) {
	ctx := context.Background()
	room, err := s.lookup(ctx, code)
	if err != nil {
		return
	}

	now := time.Now()
	room.Mu.Lock()
	ended := s.refreshExpiryLocked(ctx, room, now)
	player := room.FindPlayer(playerID)
	if player == nil || !player.Connected {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return
	}
	player.Connected = false
	room.LastActiveAt = now

	if room.Status == models.StatusPlaying {
		if room.HostID == playerID {
			room.ReassignHost()
		}
		// Keep the earliest deadline when a grace window is already open.
		if room.GraceTimer == nil {
			graceEnd := now.Add(s.opts.GraceWindow)
			room.DisconnectGraceEndsAt = &graceEnd
			token := room.RoundToken
			room.GraceTimer = time.AfterFunc(s.opts.GraceWindow, func() {
				s.handleGraceExpiry(code, token)
			})
		}
	} else {
		if room.HostID == playerID {
			room.ReassignHost()
		}
		room.RecomputeLobbyStatus()
	}

	s.persistLocked(ctx, room)
	state := s.stateLocked(room, now, player.Name+" disconnected")
	room.Mu.Unlock()

	s.emitEnd(code, ended)
	s.notifyRoom(code, models.RoomStateNotification(state))
	s.log.Info().Str("code", code).Str("player", playerID).Msg("player disconnected")
}

// MarkConnected records a live transport binding for the player, e.g.
// when their websocket attaches, and cancels a pending grace window once
// everyone is back.
func (s *RoomService) MarkConnected(code, playerID string) (models.RoomStateData, error) {
	ctx := context.Background()
	room, err := s.lookup(ctx, code)
	if err != nil {
		return models.RoomStateData{}, err
	}

	now := time.Now()
	room.Mu.Lock()
	ended := s.refreshExpiryLocked(ctx, room, now)
	player := room.FindPlayer(playerID)
	if player == nil {
		room.Mu.Unlock()
		s.emitEnd(code, ended)
		return models.RoomStateData{}, models.NewGameError(models.CodeNotInRoom, "you are not in this room")
	}

	player.Connected = true
	s.cancelGraceIfSettledLocked(room)
	room.RecomputeLobbyStatus()
	room.LastActiveAt = now
	s.persistLocked(ctx, room)
	state := s.stateLocked(room, now, "")
	state.You = viewPtr(player.View())
	room.Mu.Unlock()

	s.emitEnd(code, ended)
	s.notifyRoom(code, models.RoomStateNotification(models.RoomStateData{Room: state.Room, ServerNow: state.ServerNow}))
	return state, nil
}

// Snapshot returns the viewer's redacted room state, lazily forcing the
// time_up transition if the round's deadline has passed. This keeps state
// correct for poll-based consumers that never see a timer push.
func (s *RoomService) Snapshot(ctx context.Context, code, viewerID string) (models.RoomStateData, error) {
	room, err := s.lookup(ctx, code)
	if err != nil {
		return models.RoomStateData{}, err
	}

	now := time.Now()
	room.Mu.Lock()
	ended := s.refreshExpiryLocked(ctx, room, now)
	state := s.stateLocked(room, now, "")
	if viewer := room.FindPlayer(viewerID); viewer != nil {
		state.You = viewPtr(viewer.View())
	}
	room.Mu.Unlock()

	s.emitEnd(code, ended)
	return state, nil
}

// --- round lifecycle internals ---

// roundEnd bundles everything a finished round needs to announce and
// record after the room lock is released.
type roundEnd struct {
	data   models.GameEndData
	record *models.MatchRecord
}

// refreshExpiryLocked forces the time_up transition when the wall-clock
// deadline has passed while the room still thinks it is playing.
func (s *RoomService) refreshExpiryLocked(ctx context.Context, room *models.Room, now time.Time) *roundEnd {
	if room.Status != models.StatusPlaying || room.StartTime == nil {
		return nil
	}
	if now.Before(room.Deadline()) {
		return nil
	}
	return s.finishRoundLocked(ctx, room, models.EndTimeUp, now)
}

// finishRoundLocked performs the terminal transition: cancels timers,
// freezes the round, records the end reason, and persists. Caller holds
// the room lock and must pass the returned roundEnd to emitEnd after
// unlocking.
func (s *RoomService) finishRoundLocked(ctx context.Context, room *models.Room, reason models.EndReason, now time.Time) *roundEnd {
	room.Status = models.StatusFinished
	room.LastEndReason = reason
	room.DisconnectGraceEndsAt = nil
	room.RoundToken++
	s.stopTimersLocked(room)
	room.LastActiveAt = now

	s.persistLocked(ctx, room)

	view := room.View(now)
	end := &roundEnd{
		data: models.GameEndData{
			Room:          view,
			AllValidWords: view.AllValidWords,
			Reason:        reason,
			ServerNow:     now,
		},
		record: buildMatchRecord(room, now),
	}
	s.log.Info().Str("code", room.Code).Str("reason", string(reason)).
		Int("found", len(room.FoundGlobalWords)).Int("total", len(room.AllValidWords)).Msg("round finished")
	return end
}

// stopTimersLocked invalidates the current round's timer plumbing. Token
// bumps happen at the call sites; a timer that already fired will see the
// mismatch and no-op.
func (s *RoomService) stopTimersLocked(room *models.Room) {
	if room.RoundCancel != nil {
		room.RoundCancel()
		room.RoundCancel = nil
	}
	if room.GraceTimer != nil {
		room.GraceTimer.Stop()
		room.GraceTimer = nil
	}
}

// cancelGraceIfSettledLocked drops the grace window once no player is
// disconnected anymore.
func (s *RoomService) cancelGraceIfSettledLocked(room *models.Room) {
	if room.ConnectedCount() != len(room.Players) {
		return
	}
	if room.GraceTimer != nil {
		room.GraceTimer.Stop()
		room.GraceTimer = nil
	}
	room.DisconnectGraceEndsAt = nil
}

// runRoundTimers drives the periodic tick and the round-expiry deadline
// for one round. The generation token shields against stale fires; the
// context ends the goroutine as soon as the round is over.
func (s *RoomService) runRoundTimers(code string, token uint64, deadline time.Time, ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()
		expiry := time.NewTimer(time.Until(deadline))
		defer expiry.Stop()

		for {
			select {
			case <-ticker.C:
				s.broadcastTick(code, token)
			case <-expiry.C:
				s.handleRoundExpiry(code, token)
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *RoomService) broadcastTick(code string, token uint64) {
	room, err := s.lookup(context.Background(), code)
	if err != nil {
		return
	}
	now := time.Now()
	room.Mu.Lock()
	if room.RoundToken != token || room.Status != models.StatusPlaying {
		room.Mu.Unlock()
		return
	}
	remaining := room.Deadline().Sub(now).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}
	room.Mu.Unlock()

	s.notifyRoom(code, models.TickNotification(models.TickData{ServerNow: now, MsRemaining: remaining}))
}

func (s *RoomService) handleRoundExpiry(code string, token uint64) {
	ctx := context.Background()
	room, err := s.lookup(ctx, code)
	if err != nil {
		return
	}
	now := time.Now()
	room.Mu.Lock()
	if room.RoundToken != token || room.Status != models.StatusPlaying {
		// The round already ended some other way; stale fire, no-op.
		room.Mu.Unlock()
		return
	}
	ended := s.finishRoundLocked(ctx, room, models.EndTimeUp, now)
	room.Mu.Unlock()
	s.emitEnd(code, ended)
}

func (s *RoomService) handleGraceExpiry(code string, token uint64) {
	ctx := context.Background()
	room, err := s.lookup(ctx, code)
	if err != nil {
		return
	}
	now := time.Now()
	room.Mu.Lock()
	if room.RoundToken != token || room.Status != models.StatusPlaying {
		room.Mu.Unlock()
		return
	}
	// The round token outlives individual grace windows, so it cannot tell
	// this fire from a stale one that lost a race with Stop. The live
	// window's deadline can: a cleared or still-future deadline means the
	// window this callback was armed for no longer exists.
	if room.DisconnectGraceEndsAt == nil || now.Before(*room.DisconnectGraceEndsAt) {
		room.Mu.Unlock()
		return
	}
	room.GraceTimer = nil
	if room.ConnectedCount() == len(room.Players) {
		// Everyone reconnected before the timer was stopped; no-op.
		room.DisconnectGraceEndsAt = nil
		room.Mu.Unlock()
		return
	}
	ended := s.finishRoundLocked(ctx, room, models.EndDisconnectTimeout, now)
	room.Mu.Unlock()
	s.emitEnd(code, ended)
}

// --- helpers ---

func (s *RoomService) lookup(ctx context.Context, code string) (*models.Room, error) {
	if !ValidRoomCode(code) {
		return nil, models.NewGameError(models.CodeBadCode, "room codes are 6 digits")
	}
	room, err := s.registry.Get(ctx, code)
	if err == ErrRoomNotFound {
		return nil, models.NewGameError(models.CodeRoomNotFound, "no room with that code")
	}
	if err != nil {
		s.log.Error().Err(err).Str("code", code).Msg("room lookup failed")
		return nil, models.AsGameError(err)
	}
	return room, nil
}

// persistLocked write-throughs the room snapshot. Storage failures are
// logged, never surfaced: the in-memory room stays authoritative.
func (s *RoomService) persistLocked(ctx context.Context, room *models.Room) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, room); err != nil {
		s.log.Error().Err(err).Str("code", room.Code).Msg("failed to persist room")
	}
}

func (s *RoomService) stateLocked(room *models.Room, now time.Time, notice string) models.RoomStateData {
	return models.RoomStateData{Room: room.View(now), ServerNow: now, Notice: notice}
}

func (s *RoomService) emitEnd(code string, end *roundEnd) {
	if end == nil {
		return
	}
	s.notifyRoom(code, models.GameEndNotification(end.data))
	if s.history != nil && end.record != nil {
		go s.history.RecordMatch(end.record)
	}
}

func (s *RoomService) notifyRoom(code string, n models.Notification) {
	if s.notifier != nil {
		s.notifier.ToRoom(code, n)
	}
}

func (s *RoomService) notifyPlayer(code, playerID string, n models.Notification) {
	if s.notifier != nil {
		s.notifier.ToPlayer(code, playerID, n)
	}
}

func buildMatchRecord(room *models.Room, now time.Time) *models.MatchRecord {
	rec := &models.MatchRecord{
		RoomCode:   room.Code,
		Mode:       room.Mode,
		Letters:    room.Letters,
		EndReason:  room.LastEndReason,
		TotalWords: len(room.AllValidWords),
		FoundWords: len(room.FoundGlobalWords),
		EndedAt:    now,
	}
	if room.StartTime != nil {
		rec.StartedAt = *room.StartTime
	}
	best := -1
	for _, p := range room.Players {
		if p.Score > best {
			best = p.Score
		}
	}
	for _, p := range room.Players {
		rec.Players = append(rec.Players, models.MatchPlayer{
			PlayerID:  p.ID,
			Name:      p.Name,
			Score:     p.Score,
			WordCount: len(p.Words),
			BestWord:  p.LongestWord,
			Winner:    p.Score == best && p.Score > 0 && !isTied(room.Players, best),
		})
	}
	return rec
}

func isTied(players []*models.Player, best int) bool {
	n := 0
	for _, p := range players {
		if p.Score == best {
			n++
		}
	}
	return n > 1
}

func parseMode(mode string) models.GameMode {
	switch models.GameMode(strings.ToLower(strings.TrimSpace(mode))) {
	case models.ModeEasy:
		return models.ModeEasy
	case models.ModeHard:
		return models.ModeHard
	default:
		return models.ModeMedium
	}
}

func viewPtr(v models.PlayerView) *models.PlayerView { return &v }

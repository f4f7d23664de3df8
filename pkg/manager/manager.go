// Package manager hosts the running games: it serializes access to each
// game, enforces the response and idle timeouts, and fans the games'
// notifications out to the transport layer.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/game"
	"github.com/vigarblock/texas-holdem-poker-server/pkg/history"
)

// ErrGameNotFound is returned when a game ID is unknown
var ErrGameNotFound = game.UserError("game not found")

// event keys
const (
	EventKeyPlayerState      = "playerStateUpdated"
	EventKeyCommunityUpdated = "communityUpdated"
	EventKeyHandCompleted    = "handCompleted"
	EventKeyGameWon          = "gameWon"
	EventKeyGameEnded        = "gameEnded"
)

// Event is an outbound notification. A blank ConnectionID means the event is
// for every connection in the game.
type Event struct {
	GameID       string
	ConnectionID string
	Key          string
	Data         interface{}
}

// GameEndedData explains why a game was torn down
type GameEndedData struct {
	Reason string `json:"reason"`
}

// Config configures a Manager
type Config struct {
	// PlayerTimeout is how long the active player has to act before a fold
	// is forced on their behalf
	PlayerTimeout time.Duration

	// IdleTimeout is how long a game may go without any activity before it
	// is torn down
	IdleTimeout time.Duration

	// HandStartDelay is the pause between a hand ending and the next hand
	// being dealt. Zero deals the next hand immediately.
	HandStartDelay time.Duration

	// Game holds the per-game options
	Game game.Options

	// Clock drives the timers. Defaults to the real clock.
	Clock quartz.Clock

	// Recorder persists game lifecycle events. Defaults to a no-op.
	Recorder history.Recorder
}

type gameEntry struct {
	mu     sync.Mutex
	id     string
	game   *game.Game
	closed bool

	responseTimer  *quartz.Timer
	idleTimer      *quartz.Timer
	handStartTimer *quartz.Timer
}

// Manager is the registry of running games
type Manager struct {
	mu    sync.RWMutex
	games map[string]*gameEntry

	cfg      Config
	clock    quartz.Clock
	recorder history.Recorder
	events   chan Event
	log      logrus.FieldLogger
}

// New returns a new Manager
func New(cfg Config, logger logrus.FieldLogger) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	if cfg.Recorder == nil {
		cfg.Recorder = history.NopRecorder{}
	}

	if cfg.PlayerTimeout <= 0 {
		cfg.PlayerTimeout = 30 * time.Second
	}

	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}

	return &Manager{
		games:    make(map[string]*gameEntry),
		cfg:      cfg,
		clock:    cfg.Clock,
		recorder: cfg.Recorder,
		events:   make(chan Event, 256),
		log:      logger,
	}
}

// Events returns the outbound notification stream
func (m *Manager) Events() <-chan Event {
	return m.events
}

// CreateGame registers a new game and returns its ID
func (m *Manager) CreateGame(ctx context.Context) (string, error) {
	id := uuid.New().String()

	entry := &gameEntry{id: id}
	entry.game = game.NewGame(id, m.cfg.Game, &gameObserver{manager: m}, m.log)

	m.mu.Lock()
	m.games[id] = entry
	m.mu.Unlock()

	entry.mu.Lock()
	m.resetIdleTimer(entry)
	entry.mu.Unlock()

	if err := m.recorder.Record(ctx, id, history.EventCreated, ""); err != nil {
		m.log.WithError(err).WithField("game", id).Error("could not record game creation")
	}

	m.log.WithField("game", id).Info("game created")
	return id, nil
}

// HasGame returns true if the game is registered
func (m *Manager) HasGame(gameID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.games[gameID]
	return ok
}

// Game returns the underlying game. Callers must not mutate it.
func (m *Manager) Game(gameID string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}

	return entry.game, nil
}

// GameCount returns the number of registered games
func (m *Manager) GameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.games)
}

// JoinGame seats a player in a game, or re-binds a reconnecting player
func (m *Manager) JoinGame(gameID, playerID, name, connectionID string) error {
	return m.withGame(gameID, func(g *game.Game) error {
		return g.AddPlayer(playerID, name, connectionID)
	})
}

// StartGame initializes a game and schedules the first hand
func (m *Manager) StartGame(gameID string) error {
	err := m.withGame(gameID, func(g *game.Game) error {
		return g.InitializeGame()
	})
	if err != nil {
		return err
	}

	if err := m.recorder.Record(context.Background(), gameID, history.EventStarted, ""); err != nil {
		m.log.WithError(err).WithField("game", gameID).Error("could not record game start")
	}

	return nil
}

// PlayerAction applies a betting action from a player
func (m *Manager) PlayerAction(gameID, playerID, actionName string, amount int) error {
	action, err := game.ActionFromString(actionName)
	if err != nil {
		return game.UserError(err.Error())
	}

	return m.withGame(gameID, func(g *game.Game) error {
		return g.PlayerAction(playerID, action, amount)
	})
}

// ExitGame removes a player from a game
func (m *Manager) ExitGame(gameID, playerID string) error {
	return m.withGame(gameID, func(g *game.Game) error {
		return g.RemovePlayer(playerID)
	})
}

// Close tears down every game
func (m *Manager) Close() {
	m.mu.Lock()
	entries := make([]*gameEntry, 0, len(m.games))
	for _, entry := range m.games {
		entries = append(entries, entry)
	}
	m.mu.Unlock()

	for _, entry := range entries {
		entry.mu.Lock()
		m.teardown(entry, "server shutting down")
		entry.mu.Unlock()
	}
}

// withGame runs fn with the game's entry locked, then re-arms the timers and
// handles the resulting state. A panic in the engine tears the game down
// rather than taking the server with it.
func (m *Manager) withGame(gameID string, fn func(g *game.Game) error) error {
	m.mu.RLock()
	entry, ok := m.games[gameID]
	m.mu.RUnlock()

	if !ok {
		return ErrGameNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.log.WithFields(logrus.Fields{
				"game":  gameID,
				"panic": r,
			}).Error("game panicked")
			m.teardown(entry, "internal error")
		}
	}()

	err := fn(entry.game)
	m.postProcess(entry)
	return err
}

// postProcess runs after every mutation with the entry locked
func (m *Manager) postProcess(entry *gameEntry) {
	if entry.closed {
		return
	}

	remaining := 0
	for _, player := range entry.game.AllPlayers() {
		if !player.HasLeft {
			remaining++
		}
	}

	if remaining == 0 {
		m.teardown(entry, "all players left")
		return
	}

	if entry.game.State() == game.StateGameOver {
		winner := entry.game.Winner()
		m.teardown(entry, fmt.Sprintf("game won by %s", winner.Name))
		return
	}

	if entry.game.State() == game.StateStarted || entry.game.State() == game.StateHandEnded {
		m.scheduleHandStart(entry)
	}

	m.armResponseTimer(entry)
	m.resetIdleTimer(entry)
}

// scheduleHandStart arms the next deal, or deals immediately when no delay
// is configured
func (m *Manager) scheduleHandStart(entry *gameEntry) {
	if entry.handStartTimer != nil {
		return
	}

	if m.cfg.HandStartDelay <= 0 {
		if err := entry.game.StartHand(); err != nil {
			m.log.WithError(err).WithField("game", entry.id).Error("could not start hand")
		}
		return
	}

	gameID := entry.id
	entry.handStartTimer = m.clock.AfterFunc(m.cfg.HandStartDelay, func() {
		_ = m.withGame(gameID, func(g *game.Game) error {
			entry.handStartTimer = nil
			if g.State() != game.StateStarted && g.State() != game.StateHandEnded {
				return nil
			}

			if err := g.StartHand(); err != nil {
				m.log.WithError(err).WithField("game", gameID).Error("could not start hand")
			}

			return nil
		})
	})
}

// armResponseTimer puts the active player on the clock. When the timer fires
// a fold is applied on their behalf.
func (m *Manager) armResponseTimer(entry *gameEntry) {
	if entry.responseTimer != nil {
		entry.responseTimer.Stop()
		entry.responseTimer = nil
	}

	if entry.game.State() != game.StateHandInProgress {
		return
	}

	activePlayerID := entry.game.ActivePlayerID()
	if activePlayerID == "" {
		return
	}

	gameID := entry.id
	entry.responseTimer = m.clock.AfterFunc(m.cfg.PlayerTimeout, func() {
		_ = m.withGame(gameID, func(g *game.Game) error {
			// the player may have acted while the timer was firing
			if g.State() != game.StateHandInProgress || g.ActivePlayerID() != activePlayerID {
				return nil
			}

			m.log.WithFields(logrus.Fields{
				"game":   gameID,
				"player": activePlayerID,
			}).Warn("player timed out, folding")

			return g.PlayerAction(activePlayerID, game.ActionFold, 0)
		})
	})
}

// resetIdleTimer pushes the idle teardown out after activity
func (m *Manager) resetIdleTimer(entry *gameEntry) {
	if entry.idleTimer != nil {
		entry.idleTimer.Stop()
	}

	gameID := entry.id
	entry.idleTimer = m.clock.AfterFunc(m.cfg.IdleTimeout, func() {
		m.mu.RLock()
		e, ok := m.games[gameID]
		m.mu.RUnlock()
		if !ok {
			return
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		m.teardown(e, "closed due to inactivity")
	})
}

// teardown unregisters the game and notifies its players. Callers hold the
// entry lock.
func (m *Manager) teardown(entry *gameEntry, reason string) {
	if entry.closed {
		return
	}

	entry.closed = true

	if entry.responseTimer != nil {
		entry.responseTimer.Stop()
	}

	if entry.idleTimer != nil {
		entry.idleTimer.Stop()
	}

	if entry.handStartTimer != nil {
		entry.handStartTimer.Stop()
	}

	m.mu.Lock()
	delete(m.games, entry.id)
	m.mu.Unlock()

	if err := m.recorder.Record(context.Background(), entry.id, history.EventEnded, reason); err != nil {
		m.log.WithError(err).WithField("game", entry.id).Error("could not record game end")
	}

	m.publish(Event{
		GameID: entry.id,
		Key:    EventKeyGameEnded,
		Data:   GameEndedData{Reason: reason},
	})

	m.log.WithFields(logrus.Fields{
		"game":   entry.id,
		"reason": reason,
	}).Info("game torn down")
}

// publish hands an event to the transport layer. Events are dropped rather
// than blocking the game loop if the consumer falls behind.
func (m *Manager) publish(e Event) {
	select {
	case m.events <- e:
	default:
		m.log.WithFields(logrus.Fields{
			"game": e.GameID,
			"key":  e.Key,
		}).Warn("dropping event, consumer is not keeping up")
	}
}

// gameObserver adapts a game's notifications onto the event stream
type gameObserver struct {
	manager *Manager
}

func (o *gameObserver) HandCompleted(e *game.HandCompletedEvent) {
	o.manager.publish(Event{GameID: e.GameID, Key: EventKeyHandCompleted, Data: e})
}

func (o *gameObserver) GameWon(e *game.GameWonEvent) {
	o.manager.publish(Event{GameID: e.GameID, Key: EventKeyGameWon, Data: e})
}

func (o *gameObserver) CommunityUpdated(e *game.CommunityUpdatedEvent) {
	o.manager.publish(Event{GameID: e.GameID, Key: EventKeyCommunityUpdated, Data: e})
}

func (o *gameObserver) PlayerStateUpdated(e *game.PlayerStateEvent) {
	o.manager.publish(Event{
		GameID:       e.GameID,
		ConnectionID: e.ConnectionID,
		Key:          EventKeyPlayerState,
		Data:         e,
	})
}

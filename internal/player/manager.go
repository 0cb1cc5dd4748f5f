package player

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/driftwood-mud/driftwood/internal/commands"
	"github.com/driftwood-mud/driftwood/internal/game"
	"github.com/driftwood-mud/driftwood/internal/messaging"
	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/google/uuid"
)

// Subscriber provides the ability to subscribe to message subjects
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// PlayerManager owns the active sessions. It enforces one session per
// character name; concurrent logins for different names are independent.
type PlayerManager struct {
	world      *game.World
	cmdHandler *commands.Handler
	subscriber Subscriber
	store      *persist.FileStore

	blueprint string
	startRoom string

	mu       sync.Mutex
	sessions map[string]*Player
}

func NewPlayerManager(world *game.World, cmdHandler *commands.Handler, sub Subscriber, store *persist.FileStore, blueprint, startRoom string) *PlayerManager {
	return &PlayerManager{
		world:      world,
		cmdHandler: cmdHandler,
		subscriber: sub,
		store:      store,
		blueprint:  blueprint,
		startRoom:  startRoom,
		sessions:   map[string]*Player{},
	}
}

func (m *PlayerManager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// RunSession drives one connection from login to disconnect.
func (m *PlayerManager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	flow := &loginFlow{store: m.store}
	res, err := flow.Run(conn)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	key := strings.ToLower(res.save.Name)

	// Serialize login per name: a second concurrent session would
	// double-clone the character.
	m.mu.Lock()
	if _, exists := m.sessions[key]; exists {
		m.mu.Unlock()
		conn.Write([]byte("That character is already playing.\n"))
		return game.ErrPlayerExists
	}
	m.sessions[key] = nil // reserve the slot while we materialize
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.sessions, key)
		m.mu.Unlock()
	}()

	char, err := m.materialize(ctx, res)
	if err != nil {
		return err
	}
	defer m.world.Registry().Remove(char)

	p := &Player{
		sessionId: uuid.NewString(),
		conn:      conn,
		char:      char,
		save:      res.save,
		handler:   m.cmdHandler,
		mgr:       m,
		msgs:      make(chan []byte, 16),
	}

	m.mu.Lock()
	m.sessions[key] = p
	m.mu.Unlock()

	unsub, err := m.subscribe(p)
	if err != nil {
		return fmt.Errorf("subscribing player channels: %w", err)
	}
	defer unsub()

	slog.InfoContext(ctx, "player session started", "player", res.save.Name, "session", p.sessionId, "new", res.isNew)

	playErr := p.Play(ctx)

	// Whatever ended the session, persist the character's final state.
	if err := m.savePlayer(ctx, p); err != nil {
		slog.WarnContext(ctx, "saving player on disconnect", "player", res.save.Name, "error", err)
	}

	slog.InfoContext(ctx, "player session ended", "player", res.save.Name, "session", p.sessionId)
	return playErr
}

func (m *PlayerManager) materialize(ctx context.Context, res *loginResult) (*game.Character, error) {
	loader := m.world.Loader()

	var obj persist.Object
	var err error
	if res.isNew {
		obj, err = loader.CreatePlayer(ctx, res.save.Name, m.blueprint, m.startRoom)
	} else {
		obj, err = loader.LoadPlayer(ctx, res.save.Name, m.blueprint)
		if err == nil && obj == nil {
			// Save file disappeared between login and load; treat as new.
			obj, err = loader.CreatePlayer(ctx, res.save.Name, m.blueprint, m.startRoom)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("materializing player %q: %w", res.save.Name, err)
	}

	char, ok := obj.(*game.Character)
	if !ok {
		return nil, fmt.Errorf("player blueprint %q is not a character", m.blueprint)
	}
	return char, nil
}

func (m *PlayerManager) subscribe(p *Player) (func(), error) {
	var unsubs []func()
	unsubAll := func() {
		for _, u := range unsubs {
			u()
		}
	}

	for _, subject := range []string{messaging.PlayerSubject(p.save.Name), game.AnnounceSubject} {
		unsub, err := m.subscriber.Subscribe(subject, func(data []byte) {
			select {
			case p.msgs <- data:
			default:
				// Slow reader; drop rather than block the delivery path.
			}
		})
		if err != nil {
			unsubAll()
			return nil, err
		}
		unsubs = append(unsubs, unsub)
	}

	return unsubAll, nil
}

func (m *PlayerManager) savePlayer(ctx context.Context, p *Player) error {
	return m.world.Loader().SavePlayer(ctx, p.save, p.char)
}

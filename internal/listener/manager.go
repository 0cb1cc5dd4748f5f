package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/driftwood-mud/driftwood/internal/player"
)

// ConnectionManager hands accepted connections off to the player manager.
// It is transport-agnostic; telnet and ssh listeners both feed it.
type ConnectionManager struct {
	pm *player.PlayerManager
}

func NewConnectionManager(pm *player.PlayerManager) *ConnectionManager {
	return &ConnectionManager{
		pm: pm,
	}
}

// AcceptConnection runs a player session on conn. It blocks until the
// session ends, so listeners should call it from a per-connection goroutine.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	slog.DebugContext(ctx, "accepted connection")
	if err := m.pm.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session ended", "error", err)
	}
}

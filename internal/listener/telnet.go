package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

type TelnetListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// Sessions get their own context so a listener shutdown can cancel
	// them all at once, independent of the accept loop's lifetime.
	sessCtx, cancelSessions := context.WithCancel(context.Background())

	handler := &telnetHandler{
		accept:         l.cm.AcceptConnection,
		sessCtx:        sessCtx,
		cancelSessions: cancelSessions,
	}

	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), handler)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.Stop()
		case <-done:
			// ListenAndServe already returned, nothing to tear down.
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "port", l.port)

	err := svr.ListenAndServe()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}

	return nil
}

type telnetHandler struct {
	wg             sync.WaitGroup
	accept         func(context.Context, io.ReadWriter)
	sessCtx        context.Context
	cancelSessions context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Warn("closing telnet connection", "error", err)
		}
	}()

	h.accept(h.sessCtx, newCRLFReadWriter(conn))
}

// Stop cancels all in-flight sessions and waits for them to drain.
func (h *telnetHandler) Stop() {
	h.cancelSessions()
	h.wg.Wait()
}

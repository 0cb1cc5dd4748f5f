package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/driftwood-mud/driftwood/internal/commands"
	"github.com/driftwood-mud/driftwood/internal/game"
	"github.com/driftwood-mud/driftwood/internal/persist"
)

// Player is one live session: a connection bound to a freshly-cloned
// character.
type Player struct {
	sessionId string
	conn      io.ReadWriter
	char      *game.Character
	save      *persist.PlayerSaveData
	handler   *commands.Handler
	mgr       *PlayerManager

	msgs chan []byte
}

func (p *Player) Play(ctx context.Context) error {
	// Start goroutine to read input lines into a channel
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(p.conn)
		for scanner.Scan() {
			inputChan <- scanner.Text()
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	// Show the player their current room on login
	if err := p.exec(ctx, "look"); err != nil {
		return fmt.Errorf("initial look failed: %w", err)
	}
	if err := p.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-p.msgs:
			if err := p.writeLine("\n" + string(msg)); err != nil {
				return err
			}
			if err := p.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				// Input channel closed (connection lost).
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line == "" {
				if err := p.prompt(); err != nil {
					return err
				}
				continue
			}

			quit, err := p.execLine(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

			if err := p.prompt(); err != nil {
				return err
			}
		}
	}
}

// execLine runs one command, reporting whether the player asked to quit.
func (p *Player) execLine(ctx context.Context, line string) (bool, error) {
	res, err := p.handler.Exec(ctx, p.char, line)
	if err != nil {
		var userErr *commands.UserError
		if errors.As(err, &userErr) {
			return false, p.writeLine(userErr.Message)
		}
		// System error - log and disconnect
		return false, fmt.Errorf("command execution failed: %w", err)
	}

	if res.Output != "" {
		if err := p.writeLine(res.Output); err != nil {
			return false, err
		}
	}

	if res.Save {
		if err := p.mgr.savePlayer(ctx, p); err != nil {
			slog.WarnContext(ctx, "saving player", "player", p.save.Name, "error", err)
			if err := p.writeLine("Save failed."); err != nil {
				return false, err
			}
		}
	}

	return res.Quit, nil
}

func (p *Player) exec(ctx context.Context, line string) error {
	_, err := p.execLine(ctx, line)
	return err
}

func (p *Player) prompt() error {
	cur, max := p.char.Health()
	_, err := p.conn.Write([]byte(fmt.Sprintf("[%d/%dHP] > ", cur, max)))
	return err
}

func (p *Player) writeLine(msg string) error {
	_, err := p.conn.Write([]byte(msg + "\n"))
	return err
}

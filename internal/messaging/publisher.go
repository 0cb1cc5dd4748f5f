package messaging

import (
	"fmt"
	"strings"
)

// PlayerSubject returns the NATS subject a player's session listens on.
// Player names are case-insensitive, so the subject uses the lowered form.
func PlayerSubject(name string) string {
	return fmt.Sprintf("player-%s", strings.ToLower(name))
}

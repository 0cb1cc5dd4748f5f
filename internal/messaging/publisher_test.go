package messaging

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestPlayerSubject(t *testing.T) {
	tests := map[string]struct {
		name string
		exp  string
	}{
		"lowercase":  {name: "alice", exp: "player-alice"},
		"mixed case": {name: "Alice", exp: "player-alice"},
		"uppercase":  {name: "ALICE", exp: "player-alice"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "subject", PlayerSubject(tt.name), tt.exp)
		})
	}
}

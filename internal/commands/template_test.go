package commands

import (
	"testing"
)

func TestExpandTemplate(t *testing.T) {
	tests := map[string]struct {
		tmplStr string
		data    any
		exp     string
		expErr  bool
	}{
		"plain string no expansion": {
			tmplStr: "hello world",
			data:    struct{}{},
			exp:     "hello world",
		},
		"expand field": {
			tmplStr: "Welcome, {{ .Name }}!",
			data:    struct{ Name string }{"Alice"},
			exp:     "Welcome, Alice!",
		},
		"sprig join": {
			tmplStr: `{{ .Exits | join ", " }}`,
			data:    struct{ Exits []string }{[]string{"north", "south"}},
			exp:     "north, south",
		},
		"range over list": {
			tmplStr: "{{ range .Items }}[{{ . }}]{{ end }}",
			data:    struct{ Items []string }{[]string{"a", "b"}},
			exp:     "[a][b]",
		},
		"invalid template syntax": {
			tmplStr: "{{ .Invalid",
			data:    struct{}{},
			expErr:  true,
		},
		"missing field": {
			tmplStr: "{{ .Nonexistent }}",
			data:    struct{}{},
			expErr:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ExpandTemplate(tt.tmplStr, tt.data)

			if tt.expErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if got != tt.exp {
				t.Errorf("got %q, expected %q", got, tt.exp)
			}
		})
	}
}

func TestLookTemplate(t *testing.T) {
	out, err := ExpandTemplate(lookTemplate, struct {
		Name        string
		Description string
		Exits       []string
		Contents    []string
	}{
		Name:        "The Temple",
		Description: "A quiet stone sanctuary.",
		Exits:       []string{"north", "south"},
		Contents:    []string{"A rusty sword is here."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := "The Temple\nA quiet stone sanctuary.\nExits: north, south\n  A rusty sword is here."
	if out != exp {
		t.Errorf("got %q, expected %q", out, exp)
	}
}

func TestLookTemplate_NoExits(t *testing.T) {
	out, err := ExpandTemplate(lookTemplate, struct {
		Name        string
		Description string
		Exits       []string
		Contents    []string
	}{
		Name:        "The Void",
		Description: "A featureless gray expanse.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := "The Void\nA featureless gray expanse."
	if out != exp {
		t.Errorf("got %q, expected %q", out, exp)
	}
}

package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/driftwood-mud/driftwood/internal/display"
	"github.com/driftwood-mud/driftwood/internal/game"
	"github.com/driftwood-mud/driftwood/internal/messaging"
)

// Publisher provides the ability to publish messages to subjects
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Result is what a command execution hands back to the session layer.
// Persistence stays out of this package: the session acts on the flags.
type Result struct {
	Output string

	// Quit signals the player wants to disconnect.
	Quit bool

	// Save signals the session should write the player's save file.
	Save bool
}

var directions = map[string]string{
	"north": "north", "n": "north",
	"south": "south", "s": "south",
	"east": "east", "e": "east",
	"west": "west", "w": "west",
	"up": "up", "u": "up",
	"down": "down", "d": "down",
}

// Handler executes in-world commands for a player character.
type Handler struct {
	world *game.World
	pub   Publisher
}

func NewHandler(world *game.World, pub Publisher) *Handler {
	return &Handler{
		world: world,
		pub:   pub,
	}
}

// Exec parses and runs one command line. Invalid input comes back as a
// *UserError; anything else is a system failure.
func (h *Handler) Exec(ctx context.Context, actor *game.Character, line string) (*Result, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return &Result{}, nil
	}
	verb := strings.ToLower(parts[0])
	args := parts[1:]

	if dir, ok := directions[verb]; ok {
		return h.move(ctx, actor, dir)
	}

	switch verb {
	case "look", "l":
		return h.look(actor)
	case "go":
		if len(args) == 0 {
			return nil, NewUserError("Go where?")
		}
		dir, ok := directions[strings.ToLower(args[0])]
		if !ok {
			return nil, NewUserError("That's not a direction.")
		}
		return h.move(ctx, actor, dir)
	case "get", "take":
		return h.get(actor, args)
	case "drop":
		return h.drop(actor, args)
	case "inventory", "i":
		return h.inventory(actor)
	case "score":
		return h.score(actor)
	case "say":
		return h.say(actor, args)
	case "save":
		return &Result{Output: "Saved.", Save: true}, nil
	case "quit":
		return &Result{Output: "Goodbye!", Quit: true, Save: true}, nil
	default:
		return nil, NewUserError(fmt.Sprintf("Unknown command: %s", verb))
	}
}

func (h *Handler) look(actor *game.Character) (*Result, error) {
	room, ok := game.Env(actor).(*game.Room)
	if !ok {
		return &Result{Output: "You float in a formless void."}, nil
	}

	exits := make([]string, 0, len(room.Exits()))
	for dir := range room.Exits() {
		exits = append(exits, dir)
	}
	sort.Strings(exits)

	var contents []string
	for _, obj := range room.Contents() {
		if obj == game.Object(actor) {
			continue
		}
		contents = append(contents, display.Capitalize(obj.Short())+" is here.")
	}

	out, err := ExpandTemplate(lookTemplate, struct {
		Name        string
		Description string
		Exits       []string
		Contents    []string
	}{room.Name(), room.Description(), exits, contents})
	if err != nil {
		return nil, fmt.Errorf("rendering room: %w", err)
	}

	return &Result{Output: display.Wrap(out)}, nil
}

func (h *Handler) move(ctx context.Context, actor *game.Character, dir string) (*Result, error) {
	room, ok := game.Env(actor).(*game.Room)
	if !ok {
		return nil, NewUserError("There's nowhere to go from here.")
	}

	destPath := room.Exit(dir)
	if destPath == "" {
		return nil, NewUserError("You can't go that way.")
	}

	dest := h.world.EnsureRoom(ctx, destPath)
	if dest == nil {
		return nil, NewUserError("You can't go that way.")
	}

	if err := actor.MoveTo(dest); err != nil {
		return nil, fmt.Errorf("moving %s %s: %w", actor.ID(), dir, err)
	}

	h.broadcast(room, actor, fmt.Sprintf("%s leaves %s.", actor.Name(), dir))
	h.broadcast(dest, actor, fmt.Sprintf("%s arrives.", actor.Name()))

	return h.look(actor)
}

func (h *Handler) get(actor *game.Character, args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, NewUserError("Get what?")
	}

	room := game.Env(actor)
	if room == nil {
		return nil, NewUserError("There's nothing here to take.")
	}

	item := findItem(room.Contents(), args[0])
	if item == nil {
		return nil, NewUserError("You don't see that here.")
	}

	if err := item.MoveTo(actor); err != nil {
		return nil, fmt.Errorf("taking %s: %w", item.ID(), err)
	}

	h.broadcast(room, actor, fmt.Sprintf("%s picks up %s.", actor.Name(), item.Short()))
	return &Result{Output: fmt.Sprintf("You take %s.", item.Short())}, nil
}

func (h *Handler) drop(actor *game.Character, args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, NewUserError("Drop what?")
	}

	room := game.Env(actor)
	if room == nil {
		return nil, NewUserError("There's nowhere to drop that.")
	}

	item := findItem(actor.Contents(), args[0])
	if item == nil {
		return nil, NewUserError("You aren't carrying that.")
	}

	if err := item.MoveTo(room); err != nil {
		return nil, fmt.Errorf("dropping %s: %w", item.ID(), err)
	}

	h.broadcast(room, actor, fmt.Sprintf("%s drops %s.", actor.Name(), item.Short()))
	return &Result{Output: fmt.Sprintf("You drop %s.", item.Short())}, nil
}

func (h *Handler) inventory(actor *game.Character) (*Result, error) {
	var items []string
	for _, obj := range actor.Contents() {
		items = append(items, obj.Short())
	}

	out, err := ExpandTemplate(inventoryTemplate, struct{ Items []string }{items})
	if err != nil {
		return nil, fmt.Errorf("rendering inventory: %w", err)
	}
	return &Result{Output: out}, nil
}

func (h *Handler) score(actor *game.Character) (*Result, error) {
	cur, max := actor.Health()
	out, err := ExpandTemplate(scoreTemplate, struct {
		Name, Title                   string
		Health, MaxHealth, Experience int
	}{actor.Name(), actor.Title(), cur, max, actor.Experience()})
	if err != nil {
		return nil, fmt.Errorf("rendering score: %w", err)
	}
	return &Result{Output: out}, nil
}

func (h *Handler) say(actor *game.Character, args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, NewUserError("Say what?")
	}

	msg := strings.Join(args, " ")
	room := game.Env(actor)
	if room != nil {
		h.broadcast(room, actor, fmt.Sprintf("%s says: %s", actor.Name(), msg))
	}
	return &Result{Output: fmt.Sprintf("You say: %s", msg)}, nil
}

// broadcast delivers a message to every player in the room except the actor.
func (h *Handler) broadcast(room game.Object, actor *game.Character, msg string) {
	if h.pub == nil || room == nil {
		return
	}
	for _, obj := range room.Contents() {
		ch, ok := obj.(*game.Character)
		if !ok || ch == actor {
			continue
		}
		if err := h.pub.Publish(messaging.PlayerSubject(ch.Name()), []byte(msg)); err != nil {
			// Delivery is best-effort; the world state already changed.
			continue
		}
	}
}

func findItem(objs []game.Object, word string) *game.Item {
	for _, obj := range objs {
		item, ok := obj.(*game.Item)
		if !ok {
			continue
		}
		if item.Matches(word) {
			return item
		}
	}
	return nil
}

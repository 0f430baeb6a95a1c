package projects

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrConflict is returned when creating a project whose name collides
	// (case-insensitively) with an existing one.
	ErrConflict = errors.New("project already exists")
	// ErrNotFound is returned when a referenced project does not exist.
	ErrNotFound = errors.New("project not found")
)

// Project is a named shopping project: an ordered room list and a cart.
// Names are unique case-insensitively across the store.
type Project struct {
	Name  string     `json:"name"`
	Rooms []string   `json:"rooms"`
	Cart  []CartLine `json:"cart"`
}

// CartLine is one product line in a project cart.
// Room is expected to be one of the owning project's rooms, but this is
// not enforced at write time.
type CartLine struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Room        string  `json:"room"`
	Quantity    int     `json:"quantity"`
	Supplier    string  `json:"supplier,omitempty"`
	Link        string  `json:"link,omitempty"`
}

// Store defines the interface for project persistence.
// Both backends (local bbolt file, SQLite table) satisfy the same contract.
type Store interface {
	// LoadAll returns every project; an empty store returns an empty slice.
	LoadAll(ctx context.Context) ([]Project, error)
	// Create adds a project with an empty cart and the given room list.
	// Returns ErrConflict if a case-insensitively matching name exists.
	Create(ctx context.Context, name string, rooms []string) (*Project, error)
	// Get returns the project with the exact given name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Project, error)
	// ReplaceCart overwrites the whole cart of the named project.
	// Returns ErrNotFound if the project does not exist.
	ReplaceCart(ctx context.Context, name string, cart []CartLine) error
}

// Total returns price × quantity for one line.
func (l CartLine) Total() float64 {
	return l.Price * float64(l.Quantity)
}

// GrandTotal sums the totals of all lines.
func GrandTotal(cart []CartLine) float64 {
	var sum float64
	for _, line := range cart {
		sum += line.Total()
	}
	return sum
}

// RoomTotal is the summed cart value for one room.
type RoomTotal struct {
	Room  string  `json:"room"`
	Total float64 `json:"total"`
}

// TotalsByRoom groups line totals by room, ordered by first appearance of
// each room in the cart so the grouping is deterministic for a given cart.
func TotalsByRoom(cart []CartLine) []RoomTotal {
	index := make(map[string]int)
	totals := make([]RoomTotal, 0)
	for _, line := range cart {
		i, ok := index[line.Room]
		if !ok {
			i = len(totals)
			index[line.Room] = i
			totals = append(totals, RoomTotal{Room: line.Room})
		}
		totals[i].Total += line.Total()
	}
	return totals
}

// RoomSelection is one room label selected for a new project, with a count.
// A count above one expands into numbered labels: "Bedroom", "Bedroom 2", ...
type RoomSelection struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ExpandRooms builds the ordered room list for a new project: the counted
// selections expanded in order, followed by free-text custom rooms.
func ExpandRooms(selected []RoomSelection, custom []string) []string {
	rooms := make([]string, 0, len(selected)+len(custom))
	for _, sel := range selected {
		name := strings.TrimSpace(sel.Name)
		if name == "" {
			continue
		}
		count := sel.Count
		if count < 1 {
			count = 1
		}
		rooms = append(rooms, name)
		for i := 2; i <= count; i++ {
			rooms = append(rooms, fmt.Sprintf("%s %d", name, i))
		}
	}
	for _, name := range custom {
		name = strings.TrimSpace(name)
		if name != "" {
			rooms = append(rooms, name)
		}
	}
	return rooms
}

// SupplierWhatsAppLink builds a wa.me deep link for suppliers whose contact
// field is a phone number in international format. Returns "" otherwise.
func SupplierWhatsAppLink(productName, supplier string) string {
	if !strings.HasPrefix(supplier, "+") {
		return ""
	}
	msg := fmt.Sprintf("Hi, I'm interested in your product: %s from the Materia app.", productName)
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		strings.TrimPrefix(supplier, "+"), url.QueryEscape(msg))
}

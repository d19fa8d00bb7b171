package game

import (
	"sync"

	"github.com/aaronzipp/wargame-turns/internal/models"
)

// ElementBoard is an in-memory ElementSource. The authority server and the
// hot-seat CLI use it in place of a real map.
type ElementBoard struct {
	mu       sync.RWMutex
	elements map[string][]models.Element
}

// NewElementBoard returns an empty board.
func NewElementBoard() *ElementBoard {
	return &ElementBoard{elements: make(map[string][]models.Element)}
}

// Add places an element. The owner field decides whose it is.
func (b *ElementBoard) Add(e models.Element) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elements[e.Owner] = append(b.elements[e.Owner], e)
}

// Replace swaps a participant's full element list. Elements declared for
// another owner are dropped; unlabeled ones are kept so validation can
// reject them.
func (b *ElementBoard) Replace(owner string, elements []models.Element) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]models.Element, 0, len(elements))
	for _, e := range elements {
		if e.Owner == owner || e.Owner == "" {
			cp = append(cp, e)
		}
	}
	b.elements[owner] = cp
}

// ElementsOwnedBy implements ElementSource.
func (b *ElementBoard) ElementsOwnedBy(participantID string) []models.Element {
	b.mu.RLock()
	defer b.mu.RUnlock()
	src := b.elements[participantID]
	out := make([]models.Element, len(src))
	copy(out, src)
	return out
}

// Package slots holds the user-edited mapping from fixed slot ids to game
// window titles.
package slots

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	rerrors "github.com/mj1618/rotator/internal/errors"
)

// Slot is one fixed position in the roster. An empty Title means unassigned.
type Slot struct {
	ID      int    `yaml:"id"                json:"id"`
	Title   string `yaml:"title"             json:"title"`
	Resized bool   `yaml:"resized,omitempty" json:"resized,omitempty"`
}

// Assigned reports whether the slot holds a window title.
func (s Slot) Assigned() bool { return s.Title != "" }

// Registry is a fixed-size, concurrency-safe set of slots numbered 1..N.
// No two slots ever hold the same non-empty title.
type Registry struct {
	mu    sync.RWMutex
	slots []Slot
}

// NewRegistry creates n unassigned slots.
func NewRegistry(n int) *Registry {
	r := &Registry{slots: make([]Slot, n)}
	for i := range r.slots {
		r.slots[i].ID = i + 1
	}
	return r
}

// Len returns the number of slots.
func (r *Registry) Len() int { return len(r.slots) }

func (r *Registry) index(id int) (int, error) {
	if id < 1 || id > len(r.slots) {
		return 0, rerrors.NewInvalidRequest(fmt.Sprintf("slot %d out of range 1..%d", id, len(r.slots)))
	}
	return id - 1, nil
}

// holderLocked returns the id of the slot holding title, or 0.
func (r *Registry) holderLocked(title string) int {
	for _, s := range r.slots {
		if s.Title == title {
			return s.ID
		}
	}
	return 0
}

// Assign sets the title of slot id. Assigning a title held by another slot
// is a CONFLICT; re-assigning a slot its own title is a no-op. An empty
// title, or one of only whitespace, unassigns the slot. Other titles are
// stored exactly as given.
func (r *Registry) Assign(id int, title string) error {
	if strings.TrimSpace(title) == "" {
		title = ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.index(id)
	if err != nil {
		return err
	}
	if title == "" {
		r.slots[i].Title = ""
		r.slots[i].Resized = false
		return nil
	}
	if holder := r.holderLocked(title); holder != 0 && holder != id {
		return rerrors.NewConflict(title, holder, id)
	}
	if r.slots[i].Title != title {
		r.slots[i].Title = title
		r.slots[i].Resized = false
	}
	return nil
}

// Clear unassigns slot id.
func (r *Registry) Clear(id int) error {
	return r.Assign(id, "")
}

// Refresh unassigns every slot whose title is not in live and returns the
// cleared slot ids. Titles still present stay assigned even if they no
// longer match the discovery filter. Calling Refresh twice with the same
// list clears nothing the second time.
func (r *Registry) Refresh(live []string) []int {
	present := make(map[string]bool, len(live))
	for _, t := range live {
		present[t] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared []int
	for i, s := range r.slots {
		if s.Title != "" && !present[s.Title] {
			r.slots[i].Title = ""
			r.slots[i].Resized = false
			cleared = append(cleared, s.ID)
		}
	}
	return cleared
}

// Snapshot returns a copy of all slots ordered by id.
func (r *Registry) Snapshot() []Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.slots)
}

// Assigned returns the slots holding a title, ordered by id.
func (r *Registry) Assigned() []Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Slot
	for _, s := range r.slots {
		if s.Assigned() {
			out = append(out, s)
		}
	}
	return out
}

// Title returns the title of slot id; ok is false when it is unassigned or out of range.
func (r *Registry) Title(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, err := r.index(id)
	if err != nil || r.slots[i].Title == "" {
		return "", false
	}
	return r.slots[i].Title, true
}

// SetResized records whether slot id was repositioned in the current cycle.
func (r *Registry) SetResized(id int, resized bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, err := r.index(id); err == nil {
		r.slots[i].Resized = resized
	}
}

// ResetResized clears the resized flag on every slot.
func (r *Registry) ResetResized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		r.slots[i].Resized = false
	}
}

// Replace assigns titles by slot id in one step, unassigning every slot
// not present. When the same title appears twice the lower slot id keeps it.
// Ids outside the registry are ignored.
func (r *Registry) Replace(titles map[int]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	held := make(map[string]bool, len(titles))
	for i := range r.slots {
		title := titles[r.slots[i].ID]
		if strings.TrimSpace(title) == "" {
			title = ""
		}
		if title != "" && held[title] {
			title = ""
		}
		if title != "" {
			held[title] = true
		}
		if r.slots[i].Title != title {
			r.slots[i].Resized = false
		}
		r.slots[i].Title = title
	}
}

// Candidates returns the live titles that contain filter and search
// (both case-insensitive, empty matches all) and are not held by a slot
// other than forSlot. Pass forSlot 0 to exclude every assigned title.
func (r *Registry) Candidates(live []string, filter, search string, forSlot int) []string {
	filter = strings.ToLower(filter)
	search = strings.ToLower(strings.TrimSpace(search))
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, t := range live {
		lt := strings.ToLower(t)
		if !strings.Contains(lt, filter) || !strings.Contains(lt, search) {
			continue
		}
		if holder := r.holderLocked(t); holder != 0 && holder != forSlot {
			continue
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

package slots

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mj1618/rotator/internal/logfields"
)

// KeyPrefix prefixes the slot id in the persisted document.
const KeyPrefix = "Character_"

// Key returns the document key for slot id.
func Key(id int) string { return KeyPrefix + strconv.Itoa(id) }

// Save writes every slot of r to path as an indented JSON object keyed by
// Key(id). Unassigned slots are written as "".
func Save(path string, r *Registry) error {
	doc := make(map[string]string, r.Len())
	for _, s := range r.Snapshot() {
		doc[Key(s.ID)] = s.Title
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode slot document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create slot document dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write slot document: %w", err)
	}
	slog.Info("Slot data saved", logfields.Path(path))
	return nil
}

// Load replaces the assignments in r with the document at path.
//
// A missing file is created as "{}" and leaves every slot unassigned. A
// malformed document is logged and also leaves every slot unassigned.
// Unknown keys, non-string values and out-of-range ids are ignored.
// Only I/O failures are returned.
func Load(path string, r *Registry) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create slot document dir: %w", err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return fmt.Errorf("create slot document: %w", err)
		}
		r.Replace(nil)
		slog.Info("Created empty slot document", logfields.Path(path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read slot document: %w", err)
	}

	titles, err := Decode(data)
	if err != nil {
		slog.Warn("Slot document is malformed, all slots unassigned", logfields.Path(path), logfields.Error(err))
		r.Replace(nil)
		return nil
	}
	r.Replace(titles)
	slog.Info("Slot data loaded", logfields.Path(path), slog.Int("assigned", len(r.Assigned())))
	return nil
}

// Decode parses a slot document into titles by slot id.
func Decode(data []byte) (map[int]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	titles := make(map[int]string, len(raw))
	for key, val := range raw {
		idStr, ok := strings.CutPrefix(key, KeyPrefix)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(idStr)
		if err != nil || id < 1 {
			continue
		}
		var title string
		if err := json.Unmarshal(val, &title); err != nil {
			continue
		}
		titles[id] = title
	}
	return titles, nil
}

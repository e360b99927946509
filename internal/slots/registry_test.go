package slots

import (
	"reflect"
	"testing"

	rerrors "github.com/mj1618/rotator/internal/errors"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(18)
	snap := r.Snapshot()
	if len(snap) != 18 {
		t.Fatalf("len = %d, want 18", len(snap))
	}
	for i, s := range snap {
		if s.ID != i+1 || s.Assigned() {
			t.Errorf("slot %d = %+v", i, s)
		}
	}
	if len(r.Assigned()) != 0 {
		t.Error("new registry should have no assigned slots")
	}
}

func TestAssign(t *testing.T) {
	r := NewRegistry(3)
	if err := r.Assign(1, "Lineage2M A"); err != nil {
		t.Fatal(err)
	}
	if err := r.Assign(1, "Lineage2M A"); err != nil {
		t.Errorf("re-assigning the same title should be idempotent, got %v", err)
	}

	err := r.Assign(2, "Lineage2M A")
	if !rerrors.Is(err, rerrors.ErrConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if _, ok := r.Title(2); ok {
		t.Error("conflicting assign must not change slot 2")
	}

	if err := r.Assign(4, "X"); !rerrors.Is(err, rerrors.ErrInvalidRequest) {
		t.Errorf("out of range slot should be INVALID_REQUEST, got %v", err)
	}

	if err := r.Assign(1, ""); err != nil {
		t.Fatal(err)
	}
	if err := r.Assign(2, "Lineage2M A"); err != nil {
		t.Errorf("title released by slot 1 should be assignable, got %v", err)
	}
}

func TestAssign_NeverDuplicates(t *testing.T) {
	r := NewRegistry(5)
	titles := []string{"a", "b", "a", "c", "b"}
	for i, title := range titles {
		_ = r.Assign(i+1, title)
	}
	seen := map[string]int{}
	for _, s := range r.Assigned() {
		seen[s.Title]++
		if seen[s.Title] > 1 {
			t.Errorf("title %q held by more than one slot", s.Title)
		}
	}
}

func TestRefresh(t *testing.T) {
	r := NewRegistry(4)
	_ = r.Assign(1, "A")
	_ = r.Assign(2, "B")
	_ = r.Assign(4, "Notepad")

	cleared := r.Refresh([]string{"A", "Notepad", "C"})
	if !reflect.DeepEqual(cleared, []int{2}) {
		t.Errorf("Refresh() cleared = %v, want [2]", cleared)
	}
	if title, _ := r.Title(4); title != "Notepad" {
		t.Error("live title outside the discovery filter must stay assigned")
	}

	before := r.Snapshot()
	if cleared := r.Refresh([]string{"A", "Notepad", "C"}); len(cleared) != 0 {
		t.Errorf("second Refresh() cleared %v", cleared)
	}
	if !reflect.DeepEqual(before, r.Snapshot()) {
		t.Error("Refresh should be idempotent")
	}

	r.Refresh(nil)
	if len(r.Assigned()) != 0 {
		t.Error("Refresh(nil) should clear every slot")
	}
}

func TestResizedFlag(t *testing.T) {
	r := NewRegistry(2)
	_ = r.Assign(1, "A")
	r.SetResized(1, true)
	if !r.Snapshot()[0].Resized {
		t.Fatal("SetResized did not stick")
	}
	r.ResetResized()
	if r.Snapshot()[0].Resized {
		t.Error("ResetResized did not clear the flag")
	}
	r.SetResized(1, true)
	_ = r.Assign(1, "B")
	if r.Snapshot()[0].Resized {
		t.Error("reassigning a slot should clear its resized flag")
	}
}

func TestReplace_FirstSlotWins(t *testing.T) {
	r := NewRegistry(3)
	_ = r.Assign(3, "old")
	r.Replace(map[int]string{1: "A", 2: "A", 3: "B", 7: "C"})
	got := []string{}
	for _, s := range r.Snapshot() {
		got = append(got, s.Title)
	}
	if !reflect.DeepEqual(got, []string{"A", "", "B"}) {
		t.Errorf("titles = %v", got)
	}
}

func TestCandidates(t *testing.T) {
	r := NewRegistry(3)
	_ = r.Assign(1, "Lineage2M Alpha")
	live := []string{"Lineage2M Alpha", "Lineage2M Beta", "LINEAGE2M gamma", "Notepad", "Lineage2M Beta"}

	tests := []struct {
		name    string
		filter  string
		search  string
		forSlot int
		want    []string
	}{
		{"filter excludes assigned", "2m", "", 0, []string{"Lineage2M Beta", "LINEAGE2M gamma"}},
		{"own title is offered back", "2m", "", 1, []string{"Lineage2M Alpha", "Lineage2M Beta", "LINEAGE2M gamma"}},
		{"search narrows", "2m", "GAM", 2, []string{"LINEAGE2M gamma"}},
		{"empty filter matches all", "", "", 0, []string{"Lineage2M Beta", "LINEAGE2M gamma", "Notepad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Candidates(live, tt.filter, tt.search, tt.forSlot)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssign_KeepsTitleExactly(t *testing.T) {
	r := NewRegistry(3)
	const padded = " Lineage2M - A "
	if err := r.Assign(1, padded); err != nil {
		t.Fatal(err)
	}
	if title, _ := r.Title(1); title != padded {
		t.Errorf("Title(1) = %q, want %q", title, padded)
	}
	if cleared := r.Refresh([]string{padded}); len(cleared) != 0 {
		t.Errorf("Refresh cleared %v for a live title", cleared)
	}

	if err := r.Assign(2, "   "); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Title(2); ok {
		t.Error("whitespace-only title should unassign")
	}

	r.Replace(map[int]string{3: padded + "x", 2: " "})
	if title, _ := r.Title(3); title != padded+"x" {
		t.Errorf("Replace stored %q", title)
	}
	if _, ok := r.Title(2); ok {
		t.Error("Replace with whitespace should unassign")
	}
}

package repository

import (
	"errors"
	"testing"
)

func TestFinalPosition(t *testing.T) {
	wants := []int{100, 200, 300}
	for i, want := range wants {
		if got := FinalPosition(i); got != want {
			t.Errorf("FinalPosition(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestPlanPositions_ReorderScenario(t *testing.T) {
	// Playlist holds [A, B, C] as ids 1, 2, 3; a reorder to [C, A, B] must
	// read back as C@100, A@200, B@300.
	plan := planPositions([]int64{3, 1, 2})

	wantFinals := []struct {
		id    int64
		final int
	}{{3, 100}, {1, 200}, {2, 300}}
	for i, want := range wantFinals {
		if plan[i].ID != want.id || plan[i].Final != want.final {
			t.Errorf("plan[%d] = %d@%d, want %d@%d", i, plan[i].ID, plan[i].Final, want.id, want.final)
		}
	}

	// Staged values are distinct and disjoint from every final value, so the
	// unique (playlist_id, position) constraint can't trip mid-rewrite.
	seen := make(map[int]bool)
	for _, m := range plan {
		if m.Staged < reorderTempOffset {
			t.Errorf("staged position %d below temporary range", m.Staged)
		}
		if seen[m.Staged] {
			t.Errorf("staged position %d assigned twice", m.Staged)
		}
		seen[m.Staged] = true
		if m.Final >= reorderTempOffset {
			t.Errorf("final position %d overlaps temporary range", m.Final)
		}
	}
}

func TestPlanPositions_CompactionAfterRemove(t *testing.T) {
	// Featured set [X, Y], remove X, compact the survivor: Y reads back at
	// position 100.
	plan := planPositions([]int64{2})
	if len(plan) != 1 || plan[0].ID != 2 || plan[0].Final != 100 {
		t.Errorf("compaction plan = %+v, want [2@100]", plan)
	}
}

func TestSlotIndex(t *testing.T) {
	tests := []struct {
		position, size, want int
	}{
		{100, 3, 0}, // the first slot's value means "become first"
		{200, 3, 1},
		{300, 3, 2},
		{150, 3, 1}, // between slots: after the lower neighbor
		{400, 3, 3}, // one past the end appends
		{999, 3, 3}, // far out of range clamps
		{0, 3, 0},
		{-100, 3, 0},
		{100, 0, 0}, // empty collection
	}
	for _, tt := range tests {
		if got := slotIndex(tt.position, tt.size); got != tt.want {
			t.Errorf("slotIndex(%d, %d) = %d, want %d", tt.position, tt.size, got, tt.want)
		}
	}
}

func TestSpliceMember(t *testing.T) {
	tests := []struct {
		name    string
		members []int64
		idx     int
		want    []int64
	}{
		{"front", []int64{1, 2, 3}, 0, []int64{9, 1, 2, 3}},
		{"middle", []int64{1, 2, 3}, 1, []int64{1, 9, 2, 3}},
		{"end", []int64{1, 2, 3}, 3, []int64{1, 2, 3, 9}},
		{"empty", []int64{}, 0, []int64{9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spliceMember(tt.members, 9, tt.idx)
			if len(got) != len(tt.want) {
				t.Fatalf("spliced length %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("spliced[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMemberInsertError(t *testing.T) {
	dup := errors.New("Error 1062 (23000): Duplicate entry '7-3' for key 'uq_pt_member'")
	if got := memberInsertError(dup, 7); !errors.Is(got, ErrDuplicateTrack) {
		t.Errorf("duplicate-entry insert mapped to %v, want ErrDuplicateTrack", got)
	}

	down := errors.New("connection refused")
	got := memberInsertError(down, 7)
	if errors.Is(got, ErrDuplicateTrack) {
		t.Error("unrelated insert error mapped to ErrDuplicateTrack")
	}
	if !errors.Is(got, down) {
		t.Error("unrelated insert error lost its cause")
	}
}

func TestSameIDSet(t *testing.T) {
	tests := []struct {
		name    string
		current []int64
		request []int64
		want    bool
	}{
		{"identity", []int64{1, 2, 3}, []int64{1, 2, 3}, true},
		{"permutation", []int64{1, 2, 3}, []int64{3, 1, 2}, true},
		{"subset rejected", []int64{1, 2, 3}, []int64{1, 2}, false},
		{"superset rejected", []int64{1, 2}, []int64{1, 2, 3}, false},
		{"swap rejected", []int64{1, 2, 3}, []int64{1, 2, 4}, false},
		{"duplicate id rejected", []int64{1, 2, 3}, []int64{1, 2, 2}, false},
		{"both empty", []int64{}, []int64{}, true},
		{"empty against members", []int64{1}, []int64{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameIDSet(tt.current, tt.request); got != tt.want {
				t.Errorf("sameIDSet(%v, %v) = %v, want %v", tt.current, tt.request, got, tt.want)
			}
		})
	}
}

func TestPositionGapSpacing(t *testing.T) {
	// The temporary range used during a reorder must stay disjoint from any
	// realistic final position so the unique constraint can't trip.
	const members = 500
	if FinalPosition(members-1) >= reorderTempOffset {
		t.Fatalf("final position %d overlaps temporary range starting at %d",
			FinalPosition(members-1), reorderTempOffset)
	}
}

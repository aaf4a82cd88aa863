package model

import "testing"

func TestNormalizeRepeatMode(t *testing.T) {
	tests := []struct {
		in   string
		want RepeatMode
	}{
		{"off", RepeatOff},
		{"queue", RepeatQueue},
		{"track", RepeatTrack},
		{"", RepeatOff},
		{"all", RepeatOff},
		{"TRACK", RepeatOff},
	}
	for _, tt := range tests {
		if got := NormalizeRepeatMode(tt.in); got != tt.want {
			t.Errorf("NormalizeRepeatMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseQueue_TaggedEntries(t *testing.T) {
	entries, err := ParseQueue([]byte(`[{"id":1,"kind":"user"},{"id":2,"kind":"featured"}]`))
	if err != nil {
		t.Fatalf("ParseQueue failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0] != (QueueEntry{TrackID: 1, Kind: QueueKindUser}) {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1] != (QueueEntry{TrackID: 2, Kind: QueueKindFeatured}) {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestParseQueue_LegacyFlatIDs(t *testing.T) {
	entries, err := ParseQueue([]byte(`[10, 20, 30]`))
	if err != nil {
		t.Fatalf("ParseQueue failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, id := range []int64{10, 20, 30} {
		if entries[i].TrackID != id {
			t.Errorf("entry %d track id = %d, want %d", i, entries[i].TrackID, id)
		}
		if entries[i].Kind != QueueKindUser {
			t.Errorf("entry %d kind = %q, want %q (legacy ids default to user)", i, entries[i].Kind, QueueKindUser)
		}
	}
}

func TestParseQueue_WrappedObject(t *testing.T) {
	entries, err := ParseQueue([]byte(`{"queue":[{"id":7,"kind":"featured"},3],"repeatMode":"queue"}`))
	if err != nil {
		t.Fatalf("ParseQueue failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0] != (QueueEntry{TrackID: 7, Kind: QueueKindFeatured}) {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1] != (QueueEntry{TrackID: 3, Kind: QueueKindUser}) {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestParseQueue_UnknownKindDefaultsToUser(t *testing.T) {
	entries, err := ParseQueue([]byte(`[{"id":5,"kind":"netease"}]`))
	if err != nil {
		t.Fatalf("ParseQueue failed: %v", err)
	}
	if entries[0].Kind != QueueKindUser {
		t.Errorf("unknown kind normalized to %q, want %q", entries[0].Kind, QueueKindUser)
	}
}

func TestParseQueue_WrapperWithoutQueue(t *testing.T) {
	entries, err := ParseQueue([]byte(`{"repeatMode":"track"}`))
	if err != nil {
		t.Fatalf("ParseQueue failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestParseQueue_Malformed(t *testing.T) {
	if _, err := ParseQueue([]byte(`"not a queue"`)); err == nil {
		t.Error("expected error for non-queue payload")
	}
	if _, err := ParseQueue([]byte(`[true]`)); err == nil {
		t.Error("expected error for boolean queue entry")
	}
}

func TestQueueRoundTrip(t *testing.T) {
	state := &PlaybackState{UserID: 1}
	in := []QueueEntry{{TrackID: 1, Kind: QueueKindUser}, {TrackID: 2, Kind: QueueKindFeatured}}
	if err := state.SetQueue(in); err != nil {
		t.Fatalf("SetQueue failed: %v", err)
	}
	out, err := state.Queue()
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d entries, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("entry %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestQueueEmptyColumn(t *testing.T) {
	state := &PlaybackState{UserID: 1}
	out, err := state.Queue()
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d entries, want 0", len(out))
	}
}

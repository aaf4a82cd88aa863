package repository

import (
	"database/sql"
	"fmt"
	"strings"
)

// Gap-based positioning over playlist_tracks rows. Positions are spaced
// PositionGap apart so appends never renumber existing rows; renumbering only
// happens on an explicit full reorder or compaction, which bounds write
// amplification.
const (
	// PositionGap is the spacing between consecutive positions.
	PositionGap = 100

	// reorderTempOffset moves rows into a disjoint range during phase one of
	// a reorder so final assignments can't collide with the unique
	// (playlist_id, position) constraint while positions swap.
	reorderTempOffset = 100000
)

// AppendMember inserts trackID at the end of the collection: max(position)+GAP,
// or GAP for an empty collection.
func AppendMember(tx *sql.Tx, playlistID, trackID int64) (int, error) {
	var maxPos sql.NullInt64
	err := tx.QueryRow(`SELECT MAX(position) FROM playlist_tracks WHERE playlist_id = ?`, playlistID).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to query max position for playlist %d: %w", playlistID, err)
	}

	position := PositionGap
	if maxPos.Valid {
		position = int(maxPos.Int64) + PositionGap
	}

	_, err = tx.Exec(`INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)`,
		playlistID, trackID, position)
	if err != nil {
		return 0, memberInsertError(err, playlistID)
	}
	return position, nil
}

// InsertMemberAt inserts trackID so it ends up holding the slot named by the
// given position value: GAP is the first slot, 2*GAP the second, and a value
// between two slots lands between the neighbors. The new row enters through
// the temporary range and the whole collection is renumbered, so the unique
// position constraint holds throughout.
func InsertMemberAt(tx *sql.Tx, playlistID, trackID int64, position int) error {
	members, err := ListMemberIDs(tx, playlistID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)`,
		playlistID, trackID, reorderTempOffset+len(members))
	if err != nil {
		return memberInsertError(err, playlistID)
	}

	return renumber(tx, playlistID, spliceMember(members, trackID, slotIndex(position, len(members))))
}

// slotIndex converts a target slot value into its splice index: the member
// holding final position (i+1)*GAP occupies slot index i, so position GAP
// means "become first". In-between values land after the lower neighbor and
// out-of-range values clamp to the ends.
func slotIndex(position, size int) int {
	idx := (position - 1) / PositionGap
	if idx < 0 {
		idx = 0
	}
	if idx > size {
		idx = size
	}
	return idx
}

// spliceMember returns members with trackID inserted at idx.
func spliceMember(members []int64, trackID int64, idx int) []int64 {
	out := make([]int64, 0, len(members)+1)
	out = append(out, members[:idx]...)
	out = append(out, trackID)
	out = append(out, members[idx:]...)
	return out
}

// memberInsertError maps the unique-membership constraint onto
// ErrDuplicateTrack; a concurrent duplicate add can slip past any pre-check
// and must not surface as an internal error.
func memberInsertError(err error, playlistID int64) error {
	if strings.Contains(err.Error(), "Duplicate entry") {
		return ErrDuplicateTrack
	}
	return fmt.Errorf("failed to insert member into playlist %d: %w", playlistID, err)
}

// RemoveMember deletes the membership row. Remaining rows are intentionally
// not renumbered; sparse positions are fine until the next full reorder.
func RemoveMember(tx *sql.Tx, playlistID, trackID int64) error {
	res, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`, playlistID, trackID)
	if err != nil {
		return fmt.Errorf("failed to remove member %d from playlist %d: %w", trackID, playlistID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMemberIDs returns the collection's track ids in position order, with
// row id as the tie-break should two rows ever share a position.
func ListMemberIDs(tx *sql.Tx, playlistID int64) ([]int64, error) {
	rows, err := tx.Query(`SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC, id ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during member iteration: %w", err)
	}
	return ids, nil
}

// ReorderMembers assigns final positions (index+1)*GAP following orderedIDs.
// The request must list exactly the current member set; subsets and supersets
// are rejected with ErrReorderMismatch before any write. The write itself is
// two-phase: every row moves to the disjoint temporary range first, then to
// its final position, all inside the caller's transaction.
func ReorderMembers(tx *sql.Tx, playlistID int64, orderedIDs []int64) error {
	current, err := ListMemberIDs(tx, playlistID)
	if err != nil {
		return err
	}

	if !sameIDSet(current, orderedIDs) {
		return ErrReorderMismatch
	}

	return renumber(tx, playlistID, orderedIDs)
}

// CompactMembers renumbers the collection to (index+1)*GAP in its current
// order, keeping position values bounded over long lifetimes.
func CompactMembers(tx *sql.Tx, playlistID int64) error {
	current, err := ListMemberIDs(tx, playlistID)
	if err != nil {
		return err
	}
	return renumber(tx, playlistID, current)
}

// memberPlan is one row's two-phase position assignment.
type memberPlan struct {
	ID     int64
	Staged int
	Final  int
}

// planPositions computes the two-phase assignments for orderedIDs: staged
// values in the disjoint temporary range, finals at (index+1)*GAP. The SQL in
// renumber applies this plan verbatim, so reading the rows back in ascending
// position yields exactly orderedIDs.
func planPositions(orderedIDs []int64) []memberPlan {
	plan := make([]memberPlan, len(orderedIDs))
	for i, id := range orderedIDs {
		plan[i] = memberPlan{ID: id, Staged: reorderTempOffset + i, Final: FinalPosition(i)}
	}
	return plan
}

// renumber performs the two-phase positional rewrite.
func renumber(tx *sql.Tx, playlistID int64, orderedIDs []int64) error {
	plan := planPositions(orderedIDs)
	for _, m := range plan {
		_, err := tx.Exec(`UPDATE playlist_tracks SET position = ? WHERE playlist_id = ? AND track_id = ?`,
			m.Staged, playlistID, m.ID)
		if err != nil {
			return fmt.Errorf("failed to stage position for track %d: %w", m.ID, err)
		}
	}
	for _, m := range plan {
		_, err := tx.Exec(`UPDATE playlist_tracks SET position = ? WHERE playlist_id = ? AND track_id = ?`,
			m.Final, playlistID, m.ID)
		if err != nil {
			return fmt.Errorf("failed to assign position for track %d: %w", m.ID, err)
		}
	}
	return nil
}

// FinalPosition is the position a member at the given index receives after a
// reorder or compaction.
func FinalPosition(index int) int {
	return (index + 1) * PositionGap
}

// sameIDSet reports whether a and b contain exactly the same ids. Duplicates
// in b are rejected too: each current member must appear exactly once.
func sameIDSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

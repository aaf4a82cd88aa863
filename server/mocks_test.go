package server

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"

	"TuneVault/config"
	"TuneVault/model"
	"TuneVault/repository"
)

// In-memory repository fakes. Handler tests exercise request parsing, access
// rules and error mapping against these; the SQL implementations are covered
// by their own package.

type mockTrackRepo struct {
	tracks map[int64]*model.Track
	nextID int64
}

func newMockTrackRepo(tracks ...*model.Track) *mockTrackRepo {
	m := &mockTrackRepo{tracks: make(map[int64]*model.Track), nextID: 1}
	for _, t := range tracks {
		m.tracks[t.ID] = t
		if t.ID >= m.nextID {
			m.nextID = t.ID + 1
		}
	}
	return m
}

func (m *mockTrackRepo) CreateTrack(track *model.Track) (int64, error) {
	track.ID = m.nextID
	m.nextID++
	m.tracks[track.ID] = track
	return track.ID, nil
}

func (m *mockTrackRepo) GetTrackByID(id int64) (*model.Track, error) {
	track, ok := m.tracks[id]
	if !ok {
		return nil, nil
	}
	return track, nil
}

func (m *mockTrackRepo) GetTracksByOwner(ownerID int64) ([]*model.Track, error) {
	out := make([]*model.Track, 0)
	for _, t := range m.tracks {
		if t.OwnerID.Valid && t.OwnerID.Int64 == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTrackRepo) UpdateTrackMetadata(track *model.Track) error {
	if _, ok := m.tracks[track.ID]; !ok {
		return repository.ErrNotFound
	}
	m.tracks[track.ID] = track
	return nil
}

func (m *mockTrackRepo) DeleteTrack(trackID int64) error {
	if _, ok := m.tracks[trackID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tracks, trackID)
	return nil
}

type mockPlaybackRepo struct {
	states  map[int64]*model.PlaybackState
	saveErr error
}

func (m *mockPlaybackRepo) Save(state *model.PlaybackState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.states == nil {
		m.states = make(map[int64]*model.PlaybackState)
	}
	cp := *state
	m.states[state.UserID] = &cp
	return nil
}

func (m *mockPlaybackRepo) Get(userID int64) (*model.PlaybackState, error) {
	state, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	cp := *state
	return &cp, nil
}

type mockFeaturedRepo struct {
	members    []*repository.PlaylistTrackView
	removed    []int64
	listErr    error
	addErr     error
	removeErr  error
	reorderErr error
}

func (m *mockFeaturedRepo) List() ([]*repository.PlaylistTrackView, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.members, nil
}

func (m *mockFeaturedRepo) Add(trackID int64, position *int) (*repository.PlaylistTrackView, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	for _, v := range m.members {
		if v.ID == trackID {
			return v, nil
		}
	}
	v := &repository.PlaylistTrackView{
		Track:    model.Track{ID: trackID, IsFeatured: true},
		Position: (len(m.members) + 1) * repository.PositionGap,
	}
	m.members = append(m.members, v)
	return v, nil
}

func (m *mockFeaturedRepo) Remove(trackID int64) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, trackID)
	return nil
}

func (m *mockFeaturedRepo) Reorder(orderedTrackIDs []int64) error {
	return m.reorderErr
}

func (m *mockFeaturedRepo) PlaylistID() (int64, error) {
	return 1, nil
}

type mockPlaylistRepo struct {
	playlists  map[int64]*model.Playlist
	tracks     map[int64][]*repository.PlaylistTrackView
	nextID     int64
	addErr     error
	reorderErr error
}

func newMockPlaylistRepo(playlists ...*model.Playlist) *mockPlaylistRepo {
	m := &mockPlaylistRepo{
		playlists: make(map[int64]*model.Playlist),
		tracks:    make(map[int64][]*repository.PlaylistTrackView),
		nextID:    1,
	}
	for _, p := range playlists {
		m.playlists[p.ID] = p
		if p.ID >= m.nextID {
			m.nextID = p.ID + 1
		}
	}
	return m
}

func (m *mockPlaylistRepo) checkOwnership(ownerID, playlistID int64) error {
	p, ok := m.playlists[playlistID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.OwnerID != ownerID {
		return repository.ErrForbidden
	}
	return nil
}

func (m *mockPlaylistRepo) CreatePlaylist(ownerID int64, name string) (*model.Playlist, error) {
	p := &model.Playlist{ID: m.nextID, OwnerID: ownerID, Name: name}
	m.nextID++
	m.playlists[p.ID] = p
	return p, nil
}

func (m *mockPlaylistRepo) DeletePlaylist(ownerID, playlistID int64) error {
	if err := m.checkOwnership(ownerID, playlistID); err != nil {
		return err
	}
	delete(m.playlists, playlistID)
	delete(m.tracks, playlistID)
	return nil
}

func (m *mockPlaylistRepo) GetPlaylistByID(playlistID int64) (*model.Playlist, error) {
	p, ok := m.playlists[playlistID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (m *mockPlaylistRepo) GetPlaylistsByOwner(ownerID int64) ([]*model.Playlist, error) {
	out := make([]*model.Playlist, 0)
	for _, p := range m.playlists {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlaylistRepo) AddTrack(ownerID, playlistID, trackID int64) (int, error) {
	if err := m.checkOwnership(ownerID, playlistID); err != nil {
		return 0, err
	}
	if m.addErr != nil {
		return 0, m.addErr
	}
	position := (len(m.tracks[playlistID]) + 1) * repository.PositionGap
	m.tracks[playlistID] = append(m.tracks[playlistID], &repository.PlaylistTrackView{
		Track:    model.Track{ID: trackID},
		Position: position,
	})
	return position, nil
}

func (m *mockPlaylistRepo) RemoveTrack(ownerID, playlistID, trackID int64) error {
	if err := m.checkOwnership(ownerID, playlistID); err != nil {
		return err
	}
	kept := m.tracks[playlistID][:0]
	for _, v := range m.tracks[playlistID] {
		if v.ID != trackID {
			kept = append(kept, v)
		}
	}
	m.tracks[playlistID] = kept
	return nil
}

func (m *mockPlaylistRepo) Reorder(ownerID, playlistID int64, orderedTrackIDs []int64) error {
	if err := m.checkOwnership(ownerID, playlistID); err != nil {
		return err
	}
	return m.reorderErr
}

func (m *mockPlaylistRepo) ListTracks(playlistID int64) ([]*repository.PlaylistTrackView, error) {
	return m.tracks[playlistID], nil
}

// newTestHandler wires an APIHandler with fresh mocks for anything not
// supplied. The cache is disabled and object storage is unused in these tests.
func newTestHandler(tracks *mockTrackRepo, playlists *mockPlaylistRepo, featured *mockFeaturedRepo, playback *mockPlaybackRepo) *APIHandler {
	if tracks == nil {
		tracks = newMockTrackRepo()
	}
	if playlists == nil {
		playlists = newMockPlaylistRepo()
	}
	if featured == nil {
		featured = &mockFeaturedRepo{}
	}
	if playback == nil {
		playback = &mockPlaybackRepo{}
	}
	return NewAPIHandler(nil, tracks, playlists, featured, playback, nil, nil, &config.Config{})
}

// authedRequest builds a request carrying the identity the auth middleware
// would have installed.
func authedRequest(method, target string, body []byte, userID int64, isAdmin bool) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), "userID", userID)
	ctx = context.WithValue(ctx, "username", "tester")
	ctx = context.WithValue(ctx, "isAdmin", isAdmin)
	return r.WithContext(ctx)
}

func ownedTrack(id, ownerID int64, title string) *model.Track {
	return &model.Track{
		ID:      id,
		OwnerID: nullInt64(ownerID),
		Title:   title,
		Artist:  nullString("Test Artist"),
	}
}

func featuredTrack(id int64, title string) *model.Track {
	return &model.Track{ID: id, Title: title, IsFeatured: true}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

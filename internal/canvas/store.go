// Package canvas holds the client-side state for drawing, listing and
// selecting polygons. It replaces an ambient global store with an explicit
// container: callers construct a Store with the API it should talk to and
// observe it through Subscribe.
package canvas

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"polygon-service/internal/geometry"
	"polygon-service/internal/model"
)

const (
	tooFewPointsMessage = "A polygon must have at least 3 points."
	fetchFailedMessage  = "Failed to fetch polygons"
)

var ErrTooFewPoints = errors.New(tooFewPointsMessage)

// PolygonAPI is the subset of the polygon service the store needs.
type PolygonAPI interface {
	List(ctx context.Context) ([]model.Polygon, error)
	Create(ctx context.Context, name string, points []geometry.Point) (model.Polygon, error)
	Delete(ctx context.Context, id int64) error
}

// State is an immutable snapshot. Slices and pointers in a snapshot are
// never shared with the store or with other snapshots.
type State struct {
	Polygons          []model.Polygon
	IsLoading         bool
	IsAddingPolygon   bool
	IsRemovingPolygon bool
	Error             string
	IsDrawing         bool
	CurrentPoints     []geometry.Point
	SelectedPolygonID *int64
}

func (s State) clone() State {
	out := s
	out.Polygons = make([]model.Polygon, len(s.Polygons))
	for i, p := range s.Polygons {
		p.Points = slices.Clone(p.Points)
		out.Polygons[i] = p
	}
	out.CurrentPoints = slices.Clone(s.CurrentPoints)
	if s.SelectedPolygonID != nil {
		id := *s.SelectedPolygonID
		out.SelectedPolygonID = &id
	}
	return out
}

// SelectedPolygon returns the selected polygon if it is still in the list.
func (s State) SelectedPolygon() (model.Polygon, bool) {
	if s.SelectedPolygonID == nil {
		return model.Polygon{}, false
	}
	for _, p := range s.Polygons {
		if p.ID == *s.SelectedPolygonID {
			return p, true
		}
	}
	return model.Polygon{}, false
}

type Listener func(State)

// Store serializes mutations and publishes a fresh snapshot after each one.
// Listeners run synchronously, in mutation order, and must not mutate the
// store from inside the callback.
type Store struct {
	api PolygonAPI
	log zerolog.Logger

	publishMu sync.Mutex
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

func NewStore(api PolygonAPI, log zerolog.Logger) *Store {
	return &Store{
		api:       api,
		log:       log.With().Str("component", "canvas").Logger(),
		state:     State{Polygons: []model.Polygon{}, CurrentPoints: []geometry.Point{}},
		listeners: make(map[int]Listener),
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) set(mutate func(*State)) State {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, id := range sortedKeys(s.listeners) {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.clone())
	}
	return snapshot
}

func sortedKeys(m map[int]Listener) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FetchPolygons replaces the list with the server's. On failure the list is
// kept and Error carries the reason.
func (s *Store) FetchPolygons(ctx context.Context) error {
	s.set(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})

	polygons, err := s.api.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch polygons")
		msg := err.Error()
		if msg == "" {
			msg = fetchFailedMessage
		}
		s.set(func(st *State) {
			st.Error = msg
			st.IsLoading = false
		})
		return err
	}

	s.set(func(st *State) {
		st.Polygons = polygons
		st.IsLoading = false
	})
	return nil
}

// AddPolygon creates the polygon on the server and appends the stored copy.
func (s *Store) AddPolygon(ctx context.Context, name string, points []geometry.Point) error {
	s.set(func(st *State) {
		st.IsLoading = true
		st.IsAddingPolygon = true
	})

	created, err := s.api.Create(ctx, name, points)
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("failed to add polygon")
		s.set(func(st *State) {
			st.IsLoading = false
			st.IsAddingPolygon = false
		})
		return err
	}

	s.set(func(st *State) {
		st.Polygons = append(slices.Clip(st.Polygons), created)
		st.IsLoading = false
		st.IsAddingPolygon = false
	})
	return nil
}

// RemovePolygon deletes the polygon on the server and drops it locally,
// clearing the selection if it pointed at it.
func (s *Store) RemovePolygon(ctx context.Context, id int64) error {
	s.set(func(st *State) {
		st.IsLoading = true
		st.IsRemovingPolygon = true
	})

	if err := s.api.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to remove polygon")
		s.set(func(st *State) {
			st.IsLoading = false
			st.IsRemovingPolygon = false
		})
		return err
	}

	s.set(func(st *State) {
		st.Polygons = slices.DeleteFunc(slices.Clone(st.Polygons), func(p model.Polygon) bool {
			return p.ID == id
		})
		if st.SelectedPolygonID != nil && *st.SelectedPolygonID == id {
			st.SelectedPolygonID = nil
		}
		st.IsLoading = false
		st.IsRemovingPolygon = false
	})
	return nil
}

func (s *Store) StartDrawing() State {
	return s.set(func(st *State) {
		st.IsDrawing = true
		st.CurrentPoints = []geometry.Point{}
		st.Error = ""
	})
}

// AddPoint appends a vertex to the drawing in progress. Outside draw mode
// it only returns the current state.
func (s *Store) AddPoint(p geometry.Point) State {
	return s.set(func(st *State) {
		if !st.IsDrawing {
			return
		}
		st.CurrentPoints = append(slices.Clip(st.CurrentPoints), p)
	})
}

// FinishDrawing leaves draw mode and saves the drawn points under name.
// With fewer than three points the drawing stays open and ErrTooFewPoints
// is returned.
func (s *Store) FinishDrawing(ctx context.Context, name string) error {
	var points []geometry.Point
	var tooFew bool
	s.set(func(st *State) {
		if !geometry.HasMinimumVertices(st.CurrentPoints) {
			tooFew = true
			st.Error = tooFewPointsMessage
			return
		}
		points = slices.Clone(st.CurrentPoints)
		st.IsDrawing = false
		st.CurrentPoints = []geometry.Point{}
		st.Error = ""
	})
	if tooFew {
		return ErrTooFewPoints
	}

	return s.AddPolygon(ctx, name, points)
}

func (s *Store) CancelDrawing() State {
	return s.set(func(st *State) {
		st.IsDrawing = false
		st.CurrentPoints = []geometry.Point{}
	})
}

// SetSelectedPolygonID selects a polygon by id; nil clears the selection.
func (s *Store) SetSelectedPolygonID(id *int64) State {
	return s.set(func(st *State) {
		if id == nil {
			st.SelectedPolygonID = nil
			return
		}
		v := *id
		st.SelectedPolygonID = &v
	})
}

// Click handles a canvas click at p. In draw mode it adds a vertex;
// otherwise it selects the first polygon in list order that contains p, or
// clears the selection when none does.
func (s *Store) Click(p geometry.Point) State {
	return s.set(func(st *State) {
		if st.IsDrawing {
			st.CurrentPoints = append(slices.Clip(st.CurrentPoints), p)
			return
		}

		shapes := make([][]geometry.Point, len(st.Polygons))
		for i, polygon := range st.Polygons {
			shapes[i] = polygon.Vertices()
		}
		if idx := geometry.Hit(p, shapes); idx >= 0 {
			id := st.Polygons[idx].ID
			st.SelectedPolygonID = &id
			return
		}
		st.SelectedPolygonID = nil
	})
}

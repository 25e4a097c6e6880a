package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"polygon-service/internal/geometry"
	"polygon-service/internal/model"
)

// fakeStore keeps polygons in memory and fails every call once err is set.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]model.Polygon
	err     error
	updates int
	clock   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:  make(map[int64]model.Polygon),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) Create(_ context.Context, polygon *model.Polygon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	polygon.ID = f.nextID
	polygon.CreatedAt = f.clock
	f.rows[polygon.ID] = *polygon
	return nil
}

func (f *fakeStore) FindAll(_ context.Context) ([]model.Polygon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Polygon, 0, len(f.rows))
	for _, p := range f.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*model.Polygon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, patch model.PolygonPatch) (*model.Polygon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if patch.IsEmpty() {
		return nil, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	f.updates++
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	if patch.Has(model.PolygonFieldName) {
		p.Name = patch.Name
	}
	if patch.Has(model.PolygonFieldPoints) {
		p.Points = datatypes.JSONSlice[geometry.Point](patch.Points)
	}
	f.rows[id] = p
	return &p, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

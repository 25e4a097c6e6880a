package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"polygon-service/internal/model"
)

type PolygonRepository struct {
	db *gorm.DB
}

func NewPolygonRepository(db *gorm.DB) *PolygonRepository {
	return &PolygonRepository{db: db}
}

func (r *PolygonRepository) Create(ctx context.Context, polygon *model.Polygon) error {
	return wrapStorage("create", r.db.WithContext(ctx).Create(polygon).Error)
}

func (r *PolygonRepository) FindAll(ctx context.Context) ([]model.Polygon, error) {
	var polygons []model.Polygon
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&polygons).Error
	if err != nil {
		return nil, wrapStorage("find_all", err)
	}
	if polygons == nil {
		polygons = []model.Polygon{}
	}
	return polygons, nil
}

// FindByID returns (nil, nil) when no row matches.
func (r *PolygonRepository) FindByID(ctx context.Context, id int64) (*model.Polygon, error) {
	var polygon model.Polygon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&polygon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage("find_by_id", err)
	}
	return &polygon, nil
}

// Update writes the flagged columns in one UPDATE ... RETURNING statement.
// An empty patch and a missing id both yield (nil, nil).
func (r *PolygonRepository) Update(ctx context.Context, id int64, patch model.PolygonPatch) (*model.Polygon, error) {
	if patch.IsEmpty() {
		return nil, nil
	}

	var polygon model.Polygon
	result := r.db.WithContext(ctx).
		Model(&polygon).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(patch.Columns())
	if result.Error != nil {
		return nil, wrapStorage("update", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &polygon, nil
}

// Delete reports whether a row was removed.
func (r *PolygonRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Polygon{})
	if result.Error != nil {
		return false, wrapStorage("delete", result.Error)
	}
	return result.RowsAffected > 0, nil
}

package model

import (
	"time"

	"gorm.io/datatypes"

	"polygon-service/internal/geometry"
)

// Polygon is a stored shape. ID and CreatedAt are assigned by the database
// on insert and read back in the same statement.
type Polygon struct {
	ID        int64                               `gorm:"primaryKey;autoIncrement" json:"id,omitzero"`
	Name      string                              `gorm:"type:varchar(255);not null" json:"name,omitzero"`
	Points    datatypes.JSONSlice[geometry.Point] `gorm:"not null" json:"points,omitzero"`
	CreatedAt time.Time                           `gorm:"autoCreateTime:false;default:CURRENT_TIMESTAMP;<-:create" json:"created_at,omitzero"`
}

func (Polygon) TableName() string {
	return "polygons"
}

// Vertices returns the point list as a plain slice for geometry helpers.
func (p Polygon) Vertices() []geometry.Point {
	return []geometry.Point(p.Points)
}

// PolygonField selects the columns an update touches.
type PolygonField uint8

const (
	PolygonFieldName PolygonField = 1 << iota
	PolygonFieldPoints
)

// PolygonPatch is a partial update. Only the fields flagged in Fields are
// written; Name and Points are ignored otherwise.
type PolygonPatch struct {
	Fields PolygonField
	Name   string
	Points []geometry.Point
}

func (p PolygonPatch) Has(field PolygonField) bool {
	return p.Fields&field != 0
}

func (p PolygonPatch) IsEmpty() bool {
	return p.Fields == 0
}

// Columns maps the flagged fields to column assignments. Values are bound as
// statement parameters by the caller.
func (p PolygonPatch) Columns() map[string]any {
	columns := make(map[string]any, 2)
	if p.Has(PolygonFieldName) {
		columns["name"] = p.Name
	}
	if p.Has(PolygonFieldPoints) {
		columns["points"] = datatypes.JSONSlice[geometry.Point](p.Points)
	}
	return columns
}

package service

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polygon-service/internal/geometry"
	"polygon-service/internal/model"
)

func strPtr(s string) *string { return &s }

func pt(x, y float64) PointInput { return PointInput{X: &x, Y: &y} }

func TestValidateCreateAccepts(t *testing.T) {
	polygon, err := ValidateCreate(CreatePolygonInput{
		Name:   strPtr("field"),
		Points: []PointInput{pt(0, 0), pt(-1.5, 2.25), pt(0, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "field", polygon.Name)
	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: -1.5, Y: 2.25}, {X: 0, Y: 1}}, polygon.Vertices())
	assert.Zero(t, polygon.ID)
}

func TestValidateCreateMinimumVertices(t *testing.T) {
	for n := 0; n < 6; n++ {
		pts := make([]PointInput, n)
		for i := range pts {
			pts[i] = pt(float64(i), float64(i*i))
		}
		_, err := ValidateCreate(CreatePolygonInput{Name: strPtr("p"), Points: pts})
		if n >= geometry.MinVertices {
			assert.NoError(t, err, "n=%d", n)
			continue
		}
		require.Error(t, err, "n=%d", n)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestValidateCreateRejects(t *testing.T) {
	three := []PointInput{pt(0, 0), pt(1, 0), pt(0, 1)}

	cases := []struct {
		name  string
		input CreatePolygonInput
		issue string
	}{
		{"missing name", CreatePolygonInput{Points: three}, "name: is required"},
		{"empty name", CreatePolygonInput{Name: strPtr(""), Points: three}, "name: must be at least 1 characters"},
		{"long name", CreatePolygonInput{Name: strPtr(strings.Repeat("a", 256)), Points: three}, "name: must be at most 255 characters"},
		{"missing points", CreatePolygonInput{Name: strPtr("p")}, "points: is required"},
		{"two points", CreatePolygonInput{Name: strPtr("p"), Points: three[:2]}, "points: must contain at least 3 items"},
		{"missing y", CreatePolygonInput{Name: strPtr("p"), Points: []PointInput{pt(0, 0), pt(1, 0), {X: three[0].X}}}, "points[2].y: is required"},
		{"nan", CreatePolygonInput{Name: strPtr("p"), Points: []PointInput{pt(0, 0), pt(math.NaN(), 0), pt(0, 1)}}, "points[1].x: must be a finite number"},
		{"inf", CreatePolygonInput{Name: strPtr("p"), Points: []PointInput{pt(0, 0), pt(1, 0), pt(0, math.Inf(-1))}}, "points[2].y: must be a finite number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCreate(tc.input)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Issues, tc.issue)
		})
	}
}

func TestValidateCreateComposesIssues(t *testing.T) {
	_, err := ValidateCreate(CreatePolygonInput{Name: strPtr(""), Points: []PointInput{pt(0, 0)}})
	require.Error(t, err)
	assert.Equal(t, "name: must be at least 1 characters; points: must contain at least 3 items", err.Error())
}

func TestValidateCreateAllowsLongUnicodeName(t *testing.T) {
	_, err := ValidateCreate(CreatePolygonInput{
		Name:   strPtr(strings.Repeat("é", 255)),
		Points: []PointInput{pt(0, 0), pt(1, 0), pt(0, 1)},
	})
	assert.NoError(t, err)
}

func TestValidateUpdate(t *testing.T) {
	patch, err := ValidateUpdate(UpdatePolygonInput{})
	require.NoError(t, err)
	assert.True(t, patch.IsEmpty())

	patch, err = ValidateUpdate(UpdatePolygonInput{Name: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, model.PolygonFieldName, patch.Fields)
	assert.Equal(t, "renamed", patch.Name)

	patch, err = ValidateUpdate(UpdatePolygonInput{Points: []PointInput{pt(1, 2), pt(3, 4), pt(5, 6)}})
	require.NoError(t, err)
	assert.Equal(t, model.PolygonFieldPoints, patch.Fields)
	assert.Equal(t, []geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}, patch.Points)
}

// Partial updates check each point but not the vertex count.
func TestValidateUpdateAllowsFewerThanThreePoints(t *testing.T) {
	patch, err := ValidateUpdate(UpdatePolygonInput{Points: []PointInput{pt(1, 2)}})
	require.NoError(t, err)
	assert.True(t, patch.Has(model.PolygonFieldPoints))
	assert.Len(t, patch.Points, 1)

	patch, err = ValidateUpdate(UpdatePolygonInput{Points: []PointInput{}})
	require.NoError(t, err)
	assert.True(t, patch.Has(model.PolygonFieldPoints))
	assert.NotNil(t, patch.Points)
}

func TestValidateUpdateRejects(t *testing.T) {
	_, err := ValidateUpdate(UpdatePolygonInput{Name: strPtr("")})
	require.Error(t, err)
	assert.Equal(t, "name: must be at least 1 characters", err.Error())

	_, err = ValidateUpdate(UpdatePolygonInput{Points: []PointInput{{}}})
	require.Error(t, err)
	assert.Equal(t, "points[0].x: is required; points[0].y: is required", err.Error())
}

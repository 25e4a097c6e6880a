package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"polygon-service/internal/geometry"
	"polygon-service/internal/model"
)

type PointInput struct {
	X *float64 `json:"x" validate:"required,finite"`
	Y *float64 `json:"y" validate:"required,finite"`
}

type CreatePolygonInput struct {
	Name   *string      `json:"name" validate:"required,min=1,max=255"`
	Points []PointInput `json:"points" validate:"required,min=3,dive"`
}

// UpdatePolygonInput leaves both fields optional. A provided point list is
// checked point by point but carries no minimum vertex count.
type UpdatePolygonInput struct {
	Name   *string      `json:"name" validate:"omitempty,min=1,max=255"`
	Points []PointInput `json:"points" validate:"omitempty,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("finite", isFinite); err != nil {
		panic(err)
	}
	return v
}

func isFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return false
		}
		field = field.Elem()
	}
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return false
}

// ValidateCreate checks a create payload and returns the polygon to insert.
func ValidateCreate(input CreatePolygonInput) (model.Polygon, error) {
	if err := check(input); err != nil {
		return model.Polygon{}, err
	}
	return model.Polygon{
		Name:   *input.Name,
		Points: toPoints(input.Points),
	}, nil
}

// ValidateUpdate checks an update payload and returns the patch to apply.
// A payload with neither field set yields an empty patch, not an error.
func ValidateUpdate(input UpdatePolygonInput) (model.PolygonPatch, error) {
	if err := check(input); err != nil {
		return model.PolygonPatch{}, err
	}

	var patch model.PolygonPatch
	if input.Name != nil {
		patch.Fields |= model.PolygonFieldName
		patch.Name = *input.Name
	}
	if input.Points != nil {
		patch.Fields |= model.PolygonFieldPoints
		patch.Points = toPoints(input.Points)
	}
	return patch, nil
}

func check(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Issues: []string{err.Error()}}
	}

	issues := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, describe(fe))
	}
	return &ValidationError{Issues: issues}
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "finite":
		return field + ": must be a finite number"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s: must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s: must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s: must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}

func toPoints(in []PointInput) []geometry.Point {
	out := make([]geometry.Point, len(in))
	for i, p := range in {
		out[i] = geometry.Point{X: *p.X, Y: *p.Y}
	}
	return out
}

package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/lib/validate"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{"validation", fmt.Errorf("op: %w: price must be non-negative", errs.ErrValidation), http.StatusUnprocessableEntity, "validation failed", "price must be non-negative"},
		{"invalid id", fmt.Errorf("op: %w", errs.ErrInvalidIdentifier), http.StatusBadRequest, "invalid id", "identifier has invalid format"},
		{"no fields", errs.ErrNoFieldsProvided, http.StatusBadRequest, "no valid fields provided for update", ""},
		{"invalid query", fmt.Errorf("a: %w: minPrice exceeds maxPrice", errs.ErrInvalidQuery), http.StatusBadRequest, "invalid query", "minPrice exceeds maxPrice"},
		{"not found", fmt.Errorf("a: b: %w", errs.ErrNotFound), http.StatusNotFound, "product not found", ""},
		{"duplicate", errs.ErrAlreadyExists, http.StatusConflict, "user already exists", ""},
		{"conflict", errs.ErrVersionConflict, http.StatusConflict, "conflict", "product was modified concurrently, retry the request"},
		{"credentials", errs.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials", ""},
		{"expired", errs.ErrTokenExpired, http.StatusUnauthorized, "Token expired", "Please authenticate again"},
		{"bad token", errs.ErrUnauthenticated, http.StatusUnauthorized, "Invalid token", "Authentication failed"},
		{"forbidden", errs.ErrForbidden, http.StatusForbidden, "Forbidden", "User account not found or inactive"},
		{"storage", fmt.Errorf("op: %w: %w", errs.ErrStorage, errors.New("dial tcp: refused")), http.StatusInternalServerError, "internal error", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantDetails, resp.Details)
		})
	}
}

func TestFromError_DoesNotLeakStorageDetails(t *testing.T) {
	_, resp := FromError(fmt.Errorf("op: %w: %w", errs.ErrStorage, errors.New("password=secret")))
	assert.NotContains(t, resp.Error+resp.Details, "secret")
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name  string   `json:"name" validate:"required,min=3"`
		Price *float64 `json:"price" validate:"required,gte=0"`
		Title string   `json:"title" validate:"max=2"`
	}
	v := validate.New()

	neg := -1.0
	err := v.Struct(payload{Name: "ab", Price: &neg, Title: "long"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	resp := ValidationError(verrs)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Details, "field name must be at least 3 characters long")
	assert.Contains(t, resp.Details, "field price must be greater than or equal to 0")
	assert.Contains(t, resp.Details, "field title must be at most 2 characters long")

	err = v.Struct(payload{})
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, ValidationError(verrs).Details, "field name is a required field")
}

func TestDecodeError(t *testing.T) {
	var target struct {
		Price float64 `json:"price"`
	}
	err := json.Unmarshal([]byte(`{"price":"cheap"}`), &target)
	status, resp := DecodeError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "field price must be a number", resp.Details)

	err = json.Unmarshal([]byte(`{"price":`), &target)
	status, resp = DecodeError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "failed to decode request", resp.Error)
}

package validate

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/product-catalog/internal/models"
)

func ptr[T any](v T) *T { return &v }

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	out := map[string]string{}
	for _, e := range verrs {
		out[e.Field()] = e.ActualTag()
	}
	return out
}

func TestCreateProductRequest(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(models.CreateProductRequest{Name: "Lamp", Description: "Desk lamp", Price: ptr(0.0)}))

	err := v.Struct(models.CreateProductRequest{Name: "La", Description: "Desk", Price: ptr(-1.0)})
	assert.Equal(t, map[string]string{"name": "min", "description": "min", "price": "gte"}, fields(t, err))

	err = v.Struct(models.CreateProductRequest{})
	assert.Equal(t, map[string]string{"name": "required", "description": "required", "price": "required"}, fields(t, err))
}

func TestUpdateProductRequest(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(models.UpdateProductRequest{}))
	require.NoError(t, v.Struct(models.UpdateProductRequest{Price: ptr(0.0)}))

	err := v.Struct(models.UpdateProductRequest{Name: ptr("ab"), Price: ptr(-5.0)})
	assert.Equal(t, map[string]string{"name": "min", "price": "gte"}, fields(t, err))
}

func TestAuthRequests(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(models.RegisterRequest{Username: "alice01", Password: "password1"}))
	err := v.Struct(models.RegisterRequest{Username: "bob", Password: "short"})
	assert.Equal(t, map[string]string{"username": "min", "password": "min"}, fields(t, err))

	require.NoError(t, v.Struct(models.LoginRequest{Username: "alice01", Password: "x"}))
}

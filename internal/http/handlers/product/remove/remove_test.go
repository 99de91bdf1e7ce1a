package remove

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, actor, id string) (uuid.UUID, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	id := uuid.New()

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			id:   id.String(),
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "", id.String()).Return(id, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"` + id.String() + `","message":"Product deleted successfully"`,
		},
		{
			name: "некорректный id",
			id:   "abc",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "", "abc").Return(uuid.Nil, errs.ErrInvalidIdentifier)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid id"`,
		},
		{
			name: "товар не найден",
			id:   id.String(),
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "", id.String()).Return(uuid.Nil, errs.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"product not found"}`,
		},
		{
			name: "ошибка сервиса",
			id:   id.String(),
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "", id.String()).Return(uuid.Nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodDelete, "/products/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

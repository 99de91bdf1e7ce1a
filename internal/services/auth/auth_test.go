package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	customjwt "github.com/magabrotheeeer/product-catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/product-catalog/internal/lib/password"
	"github.com/magabrotheeeer/product-catalog/internal/models"
	services "github.com/magabrotheeeer/product-catalog/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

const secret = "test-secret"

func newService(repo *UserRepoMock) (*services.AuthService, *customjwt.MakerImpl) {
	maker := customjwt.NewJWTMaker(secret, time.Hour)
	return services.NewAuthService(repo, maker, maker.TTL()), maker
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *UserRepoMock, id uuid.UUID)
		wantErr    error
	}{
		{
			name: "successful registration",
			setupMocks: func(r *UserRepoMock, id uuid.UUID) {
				r.On("CreateUser", mock.Anything, "alice01", mock.MatchedBy(func(hash string) bool {
					return hash != "" && hash != "password123" && password.CompareHash(hash, "password123") == nil
				})).Return(&models.User{ID: id, Username: "alice01", IsActive: true}, nil).Once()
			},
		},
		{
			name: "duplicate username",
			setupMocks: func(r *UserRepoMock, _ uuid.UUID) {
				r.On("CreateUser", mock.Anything, "alice01", mock.Anything).
					Return(nil, errs.ErrAlreadyExists).Once()
			},
			wantErr: errs.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc, maker := newService(repo)
			id := uuid.New()
			tt.setupMocks(repo, id)

			got, err := svc.Register(context.Background(), "alice01", "password123")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, got.User.ID)
				assert.Equal(t, "alice01", got.User.Username)

				claims, err := maker.ParseToken(got.Token)
				require.NoError(t, err)
				assert.Equal(t, id.String(), claims.Subject)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("correctpassword")
	require.NoError(t, err)
	id := uuid.New()

	tests := []struct {
		name     string
		password string
		user     *models.User
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful login",
			password: "correctpassword",
			user:     &models.User{ID: id, Username: "alice01", PasswordHash: hash, IsActive: true},
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			user:     &models.User{ID: id, Username: "alice01", PasswordHash: hash, IsActive: true},
			wantErr:  errs.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			password: "correctpassword",
			repoErr:  errs.ErrNotFound,
			wantErr:  errs.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			password: "correctpassword",
			user:     &models.User{ID: id, Username: "alice01", PasswordHash: hash, IsActive: false},
			wantErr:  errs.ErrInvalidCredentials,
		},
		{
			name:     "storage failure",
			password: "correctpassword",
			repoErr:  errs.ErrStorage,
			wantErr:  errs.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc, _ := newService(repo)
			if tt.user != nil {
				repo.On("GetUserByUsername", mock.Anything, "alice01").Return(tt.user, nil).Once()
			} else {
				repo.On("GetUserByUsername", mock.Anything, "alice01").Return(nil, tt.repoErr).Once()
			}

			got, err := svc.Login(context.Background(), "alice01", tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, got.User.ID)
			assert.NotEmpty(t, got.Token)
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	id := uuid.New()
	active := &models.User{ID: id, Username: "alice01", IsActive: true}

	issued := func(m *customjwt.MakerImpl) string {
		tok, _ := m.GenerateToken(id, "alice01")
		return tok
	}
	lookup := func(user *models.User, err error) func(r *UserRepoMock) {
		return func(r *UserRepoMock) {
			r.On("GetUserByID", mock.Anything, id).Return(user, err).Once()
		}
	}

	tests := []struct {
		name    string
		token   func(m *customjwt.MakerImpl) string
		setup   func(r *UserRepoMock)
		wantErr error
	}{
		{
			name:  "valid token",
			token: issued,
			setup: lookup(active, nil),
		},
		{
			name:    "garbage token",
			token:   func(*customjwt.MakerImpl) string { return "not-a-jwt" },
			setup:   func(*UserRepoMock) {},
			wantErr: errs.ErrUnauthenticated,
		},
		{
			name: "foreign signature",
			token: func(*customjwt.MakerImpl) string {
				tok, _ := customjwt.NewJWTMaker("other-secret", time.Hour).GenerateToken(id, "alice01")
				return tok
			},
			setup:   func(*UserRepoMock) {},
			wantErr: errs.ErrUnauthenticated,
		},
		{
			name: "expired token",
			token: func(*customjwt.MakerImpl) string {
				tok, _ := customjwt.NewJWTMaker(secret, -time.Minute).GenerateToken(id, "alice01")
				return tok
			},
			setup:   func(*UserRepoMock) {},
			wantErr: errs.ErrTokenExpired,
		},
		{
			name:    "user deleted",
			token:   issued,
			setup:   lookup(nil, errs.ErrNotFound),
			wantErr: errs.ErrForbidden,
		},
		{
			name:    "user inactive",
			token:   issued,
			setup:   lookup(&models.User{ID: id, Username: "alice01"}, nil),
			wantErr: errs.ErrForbidden,
		},
		{
			name:    "lookup failure",
			token:   issued,
			setup:   lookup(nil, errors.New("conn reset")),
			wantErr: errs.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc, maker := newService(repo)
			tt.setup(repo)

			identity, err := svc.Authenticate(context.Background(), tt.token(maker))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, identity)
			} else {
				require.NoError(t, err)
				assert.Equal(t, &models.Identity{ID: id, Username: "alice01"}, identity)
			}
			repo.AssertExpectations(t)
		})
	}
}

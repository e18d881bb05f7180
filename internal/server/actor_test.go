package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gymplan/internal/user"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) VerifyEmail(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *MockUserService) Login(ctx context.Context, req user.LoginRequest) (*user.User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*user.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) RefreshToken(ctx context.Context, refreshToken string) (string, *user.User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	args := m.Called(ctx, email, code, newPassword)
	return args.Error(0)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) MaterializeRole(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) ChangeRole(ctx context.Context, email string, role user.Role) error {
	args := m.Called(ctx, email, role)
	return args.Error(0)
}

func (m *MockUserService) Deactivate(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUserService) BootstrapAdmin(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// identityMiddleware stands in for the token middleware in these tests.
func identityMiddleware(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_email", email)
		c.Next()
	}
}

func actorRouter(svc user.Service, email string, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{identityMiddleware(email), ActorMiddleware(svc)}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := user.ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": actor.Email})
	})
	r.GET("/probe", handlers...)
	return r
}

func TestActorMiddleware_LoadsLiveUser(t *testing.T) {
	svc := new(MockUserService)
	svc.On("MaterializeRole", mock.Anything, "ana@example.com").Return(false, nil)
	svc.On("GetByEmail", mock.Anything, "ana@example.com").
		Return(&user.User{Email: "ana@example.com", Role: user.RoleBasic, IsActive: true}, nil)

	router := actorRouter(svc, "ana@example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@example.com")
	svc.AssertExpectations(t)
}

func TestActorMiddleware_DisabledAccountRejected(t *testing.T) {
	svc := new(MockUserService)
	svc.On("MaterializeRole", mock.Anything, "ana@example.com").Return(false, nil)
	svc.On("GetByEmail", mock.Anything, "ana@example.com").
		Return(&user.User{Email: "ana@example.com", Role: user.RolePremium, IsActive: false}, nil)

	router := actorRouter(svc, "ana@example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertExpectations(t)
}

func TestActorMiddleware_MaterializeFailureTolerated(t *testing.T) {
	svc := new(MockUserService)
	svc.On("MaterializeRole", mock.Anything, "ana@example.com").Return(false, assert.AnError)
	svc.On("GetByEmail", mock.Anything, "ana@example.com").
		Return(&user.User{Email: "ana@example.com", Role: user.RoleBasic, IsActive: true}, nil)

	router := actorRouter(svc, "ana@example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestActorMiddleware_UnknownAccountRejected(t *testing.T) {
	svc := new(MockUserService)
	svc.On("MaterializeRole", mock.Anything, "ghost@example.com").Return(false, nil)
	svc.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, user.ErrUserNotFound)

	router := actorRouter(svc, "ghost@example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertExpectations(t)
}

func TestRequireEffectiveRole(t *testing.T) {
	live := time.Now().AddDate(0, 1, 0)
	expired := time.Now().AddDate(0, 0, -1)

	tests := []struct {
		name       string
		stored     *user.User
		min        user.Role
		wantStatus int
	}{
		{
			name:       "live gym owner passes owner gate",
			stored:     &user.User{Email: "owner@example.com", Role: user.RoleGymOwner, SubscriptionEnd: &live, IsActive: true},
			min:        user.RoleGymOwner,
			wantStatus: http.StatusOK,
		},
		{
			name:       "expired gym owner fails owner gate",
			stored:     &user.User{Email: "owner@example.com", Role: user.RoleGymOwner, SubscriptionEnd: &expired, IsActive: true},
			min:        user.RoleGymOwner,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin passes every gate without a subscription",
			stored:     &user.User{Email: "root@example.com", Role: user.RoleAdmin, IsActive: true},
			min:        user.RoleAdmin,
			wantStatus: http.StatusOK,
		},
		{
			name:       "premium fails admin gate",
			stored:     &user.User{Email: "ana@example.com", Role: user.RolePremium, SubscriptionEnd: &live, IsActive: true},
			min:        user.RoleAdmin,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			svc.On("MaterializeRole", mock.Anything, tt.stored.Email).Return(false, nil)
			svc.On("GetByEmail", mock.Anything, tt.stored.Email).Return(tt.stored, nil)

			router := actorRouter(svc, tt.stored.Email, RequireEffectiveRole(tt.min))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestRequireEffectiveRole_NoActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", RequireEffectiveRole(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

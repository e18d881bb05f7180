package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gymplan/internal/auth"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, passwordHash string, role Role, verificationCode string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role, verificationCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockRepository) SetVerificationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

func (m *MockRepository) UpdateRole(ctx context.Context, email string, role Role) error {
	args := m.Called(ctx, email, role)
	return args.Error(0)
}

func (m *MockRepository) MaterializeRole(ctx context.Context, email string, today time.Time) (bool, error) {
	args := m.Called(ctx, email, today)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) Deactivate(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type MockCodeSender struct {
	mock.Mock
}

func (m *MockCodeSender) SendVerificationCode(ctx context.Context, email, name, code string) error {
	args := m.Called(ctx, email, name, code)
	return args.Error(0)
}

func (m *MockCodeSender) SendPasswordResetCode(ctx context.Context, email, name, code string) error {
	args := m.Called(ctx, email, name, code)
	return args.Error(0)
}

const testSecret = "test-secret"

func strPtr(s string) *string {
	return &s
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name      string
		req       RegisterRequest
		setupMock func(*MockRepository, *MockCodeSender)
		wantErr   error
	}{
		{
			name: "creates unverified basic account",
			req:  RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "password123"},
			setupMock: func(repo *MockRepository, sender *MockCodeSender) {
				repo.On("EmailExists", mock.Anything, "ana@example.com").Return(false, nil)
				repo.On("Create", mock.Anything, "Ana", "ana@example.com", mock.AnythingOfType("string"), RoleBasic, mock.AnythingOfType("string")).
					Return(&User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: RoleBasic}, nil)
				sender.On("SendVerificationCode", mock.Anything, "ana@example.com", "Ana", mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name: "rejects duplicate email",
			req:  RegisterRequest{Name: "Ana", Email: "taken@example.com", Password: "password123"},
			setupMock: func(repo *MockRepository, sender *MockCodeSender) {
				repo.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)
			},
			wantErr: ErrEmailExists,
		},
		{
			name: "delivery failure does not abort registration",
			req:  RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "password123"},
			setupMock: func(repo *MockRepository, sender *MockCodeSender) {
				repo.On("EmailExists", mock.Anything, "ana@example.com").Return(false, nil)
				repo.On("Create", mock.Anything, "Ana", "ana@example.com", mock.AnythingOfType("string"), RoleBasic, mock.AnythingOfType("string")).
					Return(&User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: RoleBasic}, nil)
				sender.On("SendVerificationCode", mock.Anything, "ana@example.com", "Ana", mock.AnythingOfType("string")).
					Return(assert.AnError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			sender := new(MockCodeSender)
			tt.setupMock(repo, sender)

			svc := NewService(repo, sender, testSecret)
			u, err := svc.Register(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.req.Email, u.Email)
				assert.Equal(t, RoleBasic, u.Role)
			}
			repo.AssertExpectations(t)
			sender.AssertExpectations(t)
		})
	}
}

func TestService_VerifyEmail(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		code      string
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name:  "correct code verifies account",
			email: "ana@example.com",
			code:  "123456",
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", VerificationCode: strPtr("123456")}, nil)
				repo.On("MarkVerified", mock.Anything, "ana@example.com").Return(nil)
			},
		},
		{
			name:  "wrong code rejected",
			email: "ana@example.com",
			code:  "000000",
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", VerificationCode: strPtr("123456")}, nil)
			},
			wantErr: ErrInvalidCode,
		},
		{
			name:  "consumed code cannot verify twice",
			email: "ana@example.com",
			code:  "123456",
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", IsVerified: true}, nil)
			},
			wantErr: ErrAlreadyVerified,
		},
		{
			name:  "unknown account",
			email: "ghost@example.com",
			code:  "123456",
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			svc := NewService(repo, nil, testSecret)
			err := svc.VerifyEmail(context.Background(), tt.email, tt.code)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	assert.NoError(t, err)

	tomorrow := time.Now().AddDate(0, 0, 1)

	tests := []struct {
		name      string
		req       LoginRequest
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name: "verified active account logs in",
			req:  LoginRequest{Email: "ana@example.com", Password: "password123"},
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{ID: 1, Email: "ana@example.com", PasswordHash: hash, Role: RolePremium, SubscriptionEnd: &tomorrow, IsVerified: true, IsActive: true}, nil)
			},
		},
		{
			name: "wrong password",
			req:  LoginRequest{Email: "ana@example.com", Password: "wrong"},
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", PasswordHash: hash, IsVerified: true, IsActive: true}, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "unknown email maps to invalid credentials",
			req:  LoginRequest{Email: "ghost@example.com", Password: "password123"},
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "unverified account cannot log in",
			req:  LoginRequest{Email: "ana@example.com", Password: "password123"},
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", PasswordHash: hash, IsVerified: false, IsActive: true}, nil)
			},
			wantErr: ErrNotVerified,
		},
		{
			name: "disabled account cannot log in",
			req:  LoginRequest{Email: "ana@example.com", Password: "password123"},
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", PasswordHash: hash, IsVerified: true, IsActive: false}, nil)
			},
			wantErr: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			svc := NewService(repo, nil, testSecret)
			u, access, refresh, err := svc.Login(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, access)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, access)
			assert.NotEmpty(t, refresh)
			assert.Equal(t, tt.req.Email, u.Email)

			claims, err := auth.ValidateToken(access, testSecret)
			assert.NoError(t, err)
			assert.Equal(t, int(RolePremium), claims.Role)
		})
	}
}

func TestService_Login_TokenCarriesEffectiveRole(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	assert.NoError(t, err)

	yesterday := time.Now().AddDate(0, 0, -1)
	repo := new(MockRepository)
	repo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(&User{ID: 1, Email: "ana@example.com", PasswordHash: hash, Role: RolePremium, SubscriptionEnd: &yesterday, IsVerified: true, IsActive: true}, nil)

	svc := NewService(repo, nil, testSecret)
	_, access, _, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "password123"})
	assert.NoError(t, err)

	claims, err := auth.ValidateToken(access, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, int(RoleBasic), claims.Role)
}

func TestService_ResetPassword(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name: "valid code updates password",
			code: "654321",
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", VerificationCode: strPtr("654321")}, nil)
				repo.On("UpdatePassword", mock.Anything, "ana@example.com", mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name: "stale code rejected after reissue",
			code: "111111",
			setupMock: func(repo *MockRepository) {
				// A later request overwrote the code on the row.
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", VerificationCode: strPtr("222222")}, nil)
			},
			wantErr: ErrInvalidCode,
		},
		{
			name: "consumed code rejected",
			code: "654321",
			setupMock: func(repo *MockRepository) {
				repo.On("FindByEmail", mock.Anything, "ana@example.com").
					Return(&User{Email: "ana@example.com", VerificationCode: nil}, nil)
			},
			wantErr: ErrInvalidCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			svc := NewService(repo, nil, testSecret)
			err := svc.ResetPassword(context.Background(), "ana@example.com", tt.code, "newpassword1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_RequestPasswordReset(t *testing.T) {
	repo := new(MockRepository)
	sender := new(MockCodeSender)
	repo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(&User{Email: "ana@example.com", Name: "Ana"}, nil)
	repo.On("SetVerificationCode", mock.Anything, "ana@example.com", mock.MatchedBy(func(code string) bool {
		return len(code) == 6
	})).Return(nil)
	sender.On("SendPasswordResetCode", mock.Anything, "ana@example.com", "Ana", mock.AnythingOfType("string")).Return(nil)

	svc := NewService(repo, sender, testSecret)
	err := svc.RequestPasswordReset(context.Background(), "ana@example.com")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestService_MaterializeRole(t *testing.T) {
	repo := new(MockRepository)
	repo.On("MaterializeRole", mock.Anything, "ana@example.com", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	repo.On("MaterializeRole", mock.Anything, "ana@example.com", mock.AnythingOfType("time.Time")).
		Return(false, nil).Once()

	svc := NewService(repo, nil, testSecret)

	downgraded, err := svc.MaterializeRole(context.Background(), "ana@example.com")
	assert.NoError(t, err)
	assert.True(t, downgraded)

	// Second call finds nothing to change.
	downgraded, err = svc.MaterializeRole(context.Background(), "ana@example.com")
	assert.NoError(t, err)
	assert.False(t, downgraded)
	repo.AssertExpectations(t)
}

func TestService_ChangeRole(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpdateRole", mock.Anything, "ana@example.com", RoleGymOwner).Return(nil)

	svc := NewService(repo, nil, testSecret)
	assert.NoError(t, svc.ChangeRole(context.Background(), "ana@example.com", RoleGymOwner))
	assert.ErrorIs(t, svc.ChangeRole(context.Background(), "ana@example.com", Role(7)), ErrInvalidRole)
	repo.AssertExpectations(t)
}

func TestService_BootstrapAdmin(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		setupMock    func(*MockRepository)
		wantPromoted bool
	}{
		{
			name:  "promotes when no admin exists",
			email: "root@example.com",
			setupMock: func(repo *MockRepository) {
				repo.On("CountAdmins", mock.Anything).Return(0, nil)
				repo.On("UpdateRole", mock.Anything, "root@example.com", RoleAdmin).Return(nil)
			},
			wantPromoted: true,
		},
		{
			name:  "no-op when an admin already exists",
			email: "root@example.com",
			setupMock: func(repo *MockRepository) {
				repo.On("CountAdmins", mock.Anything).Return(1, nil)
			},
		},
		{
			name:  "no-op when account not registered yet",
			email: "root@example.com",
			setupMock: func(repo *MockRepository) {
				repo.On("CountAdmins", mock.Anything).Return(0, nil)
				repo.On("UpdateRole", mock.Anything, "root@example.com", RoleAdmin).Return(ErrUserNotFound)
			},
		},
		{
			name:      "no-op without configured email",
			email:     "",
			setupMock: func(repo *MockRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			svc := NewService(repo, nil, testSecret)
			promoted, err := svc.BootstrapAdmin(context.Background(), tt.email)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantPromoted, promoted)
			repo.AssertExpectations(t)
		})
	}
}

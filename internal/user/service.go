package user

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gymplan/internal/auth"
	"gymplan/internal/logger"
	"gymplan/internal/metrics"
)

// CodeSender delivers one-time codes out of band. Delivery is best-effort:
// a failure never aborts the state transition that issued the code.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, name, code string) error
	SendPasswordResetCode(ctx context.Context, email, name, code string) error
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	VerifyEmail(ctx context.Context, email, code string) error
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	GetByEmail(ctx context.Context, email string) (*User, error)
	MaterializeRole(ctx context.Context, email string) (bool, error)
	ChangeRole(ctx context.Context, email string, role Role) error
	Deactivate(ctx context.Context, email string) error
	BootstrapAdmin(ctx context.Context, email string) (bool, error)
}

type service struct {
	repo      Repository
	sender    CodeSender
	jwtSecret string
}

func NewService(repo Repository, sender CodeSender, jwtSecret string) Service {
	return &service{
		repo:      repo,
		sender:    sender,
		jwtSecret: jwtSecret,
	}
}

// Register creates an unverified basic account and issues a verification
// code. Sessions are only obtainable after VerifyEmail.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, RoleBasic, code)
	if err != nil {
		return nil, err
	}

	metrics.RecordRegistration()

	if s.sender != nil {
		if err := s.sender.SendVerificationCode(ctx, u.Email, u.Name, code); err != nil {
			// The code stays on the row and can be reissued, so a
			// delivery failure is only informational.
			logger.Error("verification code delivery failed", "email", u.Email, "error", err)
		}
	}

	return u, nil
}

func (s *service) VerifyEmail(ctx context.Context, email, code string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if u.IsVerified {
		return ErrAlreadyVerified
	}

	if u.VerificationCode == nil || *u.VerificationCode != code {
		return ErrInvalidCode
	}

	if err := s.repo.MarkVerified(ctx, email); err != nil {
		return err
	}

	metrics.RecordVerification()
	return nil
}

// Login authenticates by email and password. Unverified or disabled
// accounts cannot obtain tokens even with correct credentials.
func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		metrics.RecordLogin("failure")
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		metrics.RecordLogin("failure")
		return nil, "", "", ErrInvalidCredentials
	}

	if !u.IsVerified {
		metrics.RecordLogin("unverified")
		return nil, "", "", ErrNotVerified
	}

	if !u.IsActive {
		metrics.RecordLogin("disabled")
		return nil, "", "", ErrAccountDisabled
	}

	effective := EffectiveRole(u, time.Now())
	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		int(effective),
		u.IsActive,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	metrics.RecordLogin("success")
	return u, accessToken, refreshToken, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	claims, err := auth.ValidateRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	if !u.IsActive {
		return "", nil, ErrAccountDisabled
	}

	effective := EffectiveRole(u, time.Now())
	newAccessToken, err := auth.GenerateAccessToken(u.ID, u.Email, int(effective), u.IsActive, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, u, nil
}

// RequestPasswordReset issues a fresh single-use code. Reissuing
// overwrites and thereby invalidates any earlier code.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.repo.SetVerificationCode(ctx, email, code); err != nil {
		return err
	}

	if s.sender != nil {
		if err := s.sender.SendPasswordResetCode(ctx, u.Email, u.Name, code); err != nil {
			logger.Error("password reset code delivery failed", "email", u.Email, "error", err)
		}
	}

	return nil
}

func (s *service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if u.VerificationCode == nil || *u.VerificationCode != code {
		return ErrInvalidCode
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// UpdatePassword clears the code, consuming it.
	return s.repo.UpdatePassword(ctx, email, passwordHash)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// MaterializeRole persists the expiry downgrade for one user in its own
// short statement. Idempotent; safe to call on every authenticated request.
func (s *service) MaterializeRole(ctx context.Context, email string) (bool, error) {
	downgraded, err := s.repo.MaterializeRole(ctx, email, time.Now())
	if err != nil {
		return false, err
	}
	if downgraded {
		metrics.RecordRoleDowngrade()
		logger.Info("subscription expired, role downgraded", "email", email)
	}
	return downgraded, nil
}

func (s *service) ChangeRole(ctx context.Context, email string, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	err := s.repo.UpdateRole(ctx, email, role)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func (s *service) Deactivate(ctx context.Context, email string) error {
	return s.repo.Deactivate(ctx, email)
}

// BootstrapAdmin promotes the configured account to admin when the system
// has none. Called explicitly at startup; registration never promotes.
func (s *service) BootstrapAdmin(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}

	admins, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}

	if err := s.repo.UpdateRole(ctx, email, RoleAdmin); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Info("admin bootstrap skipped, account not registered yet", "email", email)
			return false, nil
		}
		return false, err
	}

	logger.Info("admin bootstrap: account promoted", "email", email)
	return true, nil
}

// generateCode returns a 6-digit numeric one-time code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

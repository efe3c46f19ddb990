// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"beedab-service/internal/domain/auth"
	xerrors "beedab-service/internal/pkg/errors"
	"beedab-service/internal/pkg/jwt"
	"beedab-service/internal/pkg/session"
)

// UserStore is implemented by postgres.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type Service struct {
	users    UserStore
	tokens   *jwt.Manager
	sessions *session.Manager
	logger   *zap.Logger
}

func NewService(users UserStore, tokens *jwt.Manager, sessions *session.Manager, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// Register creates a new account with the default user role and logs
// it in.
func (s *Service) Register(ctx context.Context, req *auth.RegisterRequest, ip, userAgent string) (*auth.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", xerrors.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &auth.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     sql.NullString{String: req.FullName, Valid: req.FullName != ""},
		Phone:        sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		Role:         auth.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", email))
	return s.issueTokens(ctx, user, ip, userAgent)
}

// Login verifies credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, req *auth.LoginRequest, ip, userAgent string) (*auth.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized)
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return s.issueTokens(ctx, user, ip, userAgent)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*auth.AuthResponse, error) {
	claims, err := s.tokens.Verifier.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrUnauthorized, err)
	}

	user, err := s.users.FindByID(ctx, claims.IdentityID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", xerrors.ErrUnauthorized)
		}
		return nil, err
	}

	return s.issueTokens(ctx, user, ip, userAgent)
}

// Logout revokes the session behind one access token.
func (s *Service) Logout(ctx context.Context, identityID int64, jti string) error {
	return s.sessions.RevokeSession(ctx, identityID, jti)
}

// LogoutAll revokes every session of the identity.
func (s *Service) LogoutAll(ctx context.Context, identityID int64) error {
	return s.sessions.RevokeAllSessions(ctx, identityID)
}

// ValidateAccessToken verifies the token signature and confirms its
// session is still live in Redis.
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrUnauthorized, err)
	}

	if _, err := s.sessions.GetSession(ctx, claims.IdentityID, claims.ID); err != nil {
		return nil, fmt.Errorf("%w: session revoked", xerrors.ErrUnauthorized)
	}
	return claims, nil
}

func (s *Service) issueTokens(ctx context.Context, user *auth.User, ip, userAgent string) (*auth.AuthResponse, error) {
	access, jti, err := s.tokens.Generator.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, _, err := s.tokens.Generator.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	claims, err := s.tokens.Verifier.Verify(access)
	if err != nil {
		return nil, fmt.Errorf("failed to read back issued token: %w", err)
	}

	sess := &session.SessionData{
		JTI:        jti,
		IdentityID: user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		IPAddress:  ip,
		UserAgent:  userAgent,
		LoginAt:    time.Now(),
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &auth.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

// EnsureSuperAdminExists bootstraps the admin account from
// SUPER_ADMIN_EMAIL / SUPER_ADMIN_PASSWORD on startup. A no-op when
// the variables are unset or the account already exists.
func (s *Service) EnsureSuperAdminExists(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("SUPER_ADMIN_EMAIL")))
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" || password == "" {
		s.logger.Warn("super admin bootstrap skipped, SUPER_ADMIN_EMAIL/SUPER_ADMIN_PASSWORD not set")
		return nil
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	admin := &auth.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     sql.NullString{String: "Super Admin", Valid: true},
		Role:         auth.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	s.logger.Info("super admin created", zap.Int64("user_id", admin.ID), zap.String("email", email))
	return nil
}

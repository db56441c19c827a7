// Package security handles accounts, passwords, and session tokens.
package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"covtrack/internal/domain"
	"covtrack/internal/service/histutil"
)

// Service provides authentication and account management.
type Service struct {
	users    domain.UserRepository
	history  domain.HistoryRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new security Service. secret signs session JWTs.
func NewService(users domain.UserRepository, history domain.HistoryRepository,
	secret []byte, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{users: users, history: history, secret: secret, tokenTTL: tokenTTL}
}

// Login verifies the credentials and returns a signed HS256 session token.
// Wrong username and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (token string, user *domain.User, err error) {
	const denied = "invalid username or password"

	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, domain.ErrAccessDenied(denied)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrAccessDenied(denied)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.Username,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// CreateUser registers a new account with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, username, email, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrValidation("username is required")
	}
	if len(password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if role == "" {
		role = domain.RoleViewer
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrValidation("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	histutil.Log(ctx, s.history, "create", "users", username, nil)
	return u, nil
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account. A principal cannot delete itself, and the
// last admin cannot be removed.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p, ok := domain.PrincipalFromContext(ctx); ok && p.Name == u.Username {
		return domain.ErrValidation("you cannot delete your own account")
	}
	if u.Role == domain.RoleAdmin {
		admins, err := s.users.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrValidation("cannot delete the last admin")
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "delete", "users", u.Username, nil)
	return nil
}

// SetRole changes an account's role. A principal cannot demote itself, and
// the last admin cannot be demoted.
func (s *Service) SetRole(ctx context.Context, id int64, role string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		if p, ok := domain.PrincipalFromContext(ctx); ok && p.Name == u.Username {
			return domain.ErrValidation("you cannot demote your own account")
		}
		admins, err := s.users.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrValidation("cannot demote the last admin")
		}
	}
	if err := s.users.SetRole(ctx, id, role); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "set_role", "users", u.Username, &role)
	return nil
}

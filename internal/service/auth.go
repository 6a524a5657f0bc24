package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/hash"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/tokens"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

const minPasswordLen = 6

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Notifier  notify.Notifier
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email required", ErrValidation)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// newUser validates the input and builds an unsaved user with a hashed password.
func newUser(ctx context.Context, r *repo.GormRepo, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	taken, err := r.EmailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		LastActivity: time.Now().UTC(),
	}, nil
}

func createUser(ctx context.Context, r *repo.GormRepo, user *models.User) error {
	if err := r.CreateUser(ctx, user); err != nil {
		if taken, terr := r.EmailTaken(ctx, user.Email, uuid.Nil); terr == nil && taken {
			return fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return err
	}
	return nil
}

// applyProfile applies the non-nil fields to user.
func applyProfile(ctx context.Context, r *repo.GormRepo, user *models.User, name, email, password *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return fmt.Errorf("%w: name required", ErrValidation)
		}
		user.Name = n
	}
	if email != nil {
		e := normalizeEmail(*email)
		if err := validateEmail(e); err != nil {
			return err
		}
		if e != user.Email {
			taken, err := r.EmailTaken(ctx, e, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: email already registered", ErrConflict)
			}
			user.Email = e
		}
	}
	if password != nil {
		if err := validatePassword(*password); err != nil {
			return err
		}
		hashed, err := hash.HashPassword(*password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*transport.AuthResponse, error) {
	exp := time.Now().Add(s.TokenTTL).UTC()
	token, err := tokens.CreateAccessToken(s.JWTSecret, user.ID.String(), string(user.Role), exp)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &transport.AuthResponse{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	user, err := newUser(ctx, s.Repo, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := createUser(ctx, s.Repo, user); err != nil {
		return nil, err
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.Notifier.UserRegistered(ctx, *user)
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	user.LastActivity = time.Now().UTC()
	if err := s.Repo.TouchUser(ctx, user.ID, user.LastActivity); err != nil {
		return nil, err
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.Notifier.UserLoggedIn(ctx, *user)
	return resp, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(ctx, s.Repo, user, req.Name, req.Email, req.Password); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Touch records an activity ping.
func (s *AuthService) Touch(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.TouchUser(ctx, userID, time.Now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return err
	}
	s.Notifier.UserActive(ctx, userID)
	return nil
}

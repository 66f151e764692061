package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, req *RegisterRequest) (*model.User, error)
	ResetPassword(ctx context.Context, username, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*jwt.Claims, error)
	SeedAdmin(ctx context.Context, username, password string) error
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,notblank"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	logger   *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	// 1. Find user by username
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, persistence("find user", err)
	}

	// 2. Verify password
	if !user.CheckPassword(password) {
		s.logger.Warn("login rejected", "username", user.Username)
		return nil, ErrInvalidCredentials
	}

	// 3. Sign token
	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.FullName, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return nil, invalid("username", "username %q is already taken", req.Username)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, persistence("find user", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	user := &model.User{Username: req.Username, FullName: req.FullName, Role: role}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, persistence("create user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

func (s *authService) ResetPassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "user", Key: username}
		}
		return persistence("find user", err)
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < 6 {
		return invalid("new_password", "must be at least 6 characters")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return persistence("update user", err)
	}
	return nil
}

// ValidateToken checks the signature and expiry, then that the user still exists.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, jwt.ErrInvalidToken
		}
		return nil, persistence("find user", err)
	}
	return claims, nil
}

// SeedAdmin creates the first admin account when the user store is empty.
func (s *authService) SeedAdmin(ctx context.Context, username, password string) error {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return persistence("count users", err)
	}
	if n > 0 {
		return nil
	}

	admin := &model.User{Username: username, FullName: "Administrator", Role: model.RoleAdmin}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return persistence("create admin", err)
	}
	s.logger.Info("admin user created", "username", username)
	return nil
}

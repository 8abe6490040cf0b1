package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pos-api/dtos"
	"pos-api/models"
	"pos-api/repositories"
	"pos-api/utils"
)

type Principal struct {
	UserID uint
	Role   string
}

// Authenticator verifies a bearer credential.
type Authenticator interface {
	Authenticate(token string) (*Principal, error)
}

type AuthService struct {
	users  *repositories.UserRepository
	tokens *utils.TokenManager
}

func NewAuthService(users *repositories.UserRepository, tokens *utils.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login checks the credentials and issues a token. Unknown users and wrong
// passwords both fail with ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, input dtos.LoginInput) (*dtos.AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, persistence("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &dtos.AuthResponse{
		Message: "Login successful",
		Token:   token,
		Role:    user.Role,
	}, nil
}

func (s *AuthService) Authenticate(token string) (*Principal, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil || claims.UserID == 0 {
		return nil, ErrUnauthorized
	}
	return &Principal{UserID: claims.UserID, Role: claims.Role}, nil
}

// Register creates a user account. Only admins may register users; the role
// defaults to cashier.
func (s *AuthService) Register(ctx context.Context, actor *Actor, input dtos.RegisterInput) (*models.User, error) {
	if err := authorize(actor, adminOnly...); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if len(username) < 3 {
		return nil, invalid("username", "must be at least 3 characters")
	}
	if len(input.Password) < 6 {
		return nil, invalid("password", "must be at least 6 characters")
	}
	role := input.Role
	if role == "" {
		role = models.RoleCashier
	}
	if role != models.RoleAdmin && role != models.RoleCashier {
		return nil, invalid("role", "must be admin or cashier")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Password: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, persistence("create user", err)
	}
	return user, nil
}

// CurrentUser loads the account behind the authenticated actor.
func (s *AuthService) CurrentUser(ctx context.Context, actor *Actor) (*models.User, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, persistence("find user", err)
	}
	return user, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

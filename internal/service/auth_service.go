package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/config"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// dummyHash is compared against when no active user matches, so unknown
// usernames cost the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("pos-only-no-such-user"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return h
})

// Identity is the verified caller of a request. Role is read from storage on
// every verification, so role changes apply to tokens already issued.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Name     string
	Role     rbac.Role
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Verify(ctx context.Context, token string) (*Identity, error)
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	errInvalidCredentials = apierror.Unauthenticated("invalid credentials")
	errInvalidToken       = apierror.Unauthenticated("invalid or expired token")
)

type authService struct {
	users   repository.UserRepository
	cfg     *config.Config
	now     func() time.Time
	compare func(hash, password []byte) error
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{users: users, cfg: cfg, now: time.Now, compare: bcrypt.CompareHashAndPassword}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindActiveByUsername(ctx, req.Username)
	if err != nil {
		if repository.IsNotFound(err) {
			_ = s.compare(dummyHash(), []byte(req.Password))
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := s.sign(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: s.cfg.JWTExpirationHours * 3600,
		User:      toUserResponse(user),
	}, nil
}

func (s *authService) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, errInvalidToken
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errInvalidToken
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errInvalidToken
		}
		return nil, fmt.Errorf("resolve token user: %w", err)
	}
	if !user.Active {
		return nil, errInvalidToken
	}

	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     rbac.Role(user.Role.Name),
	}, nil
}

func (s *authService) sign(user *model.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: user.ID.String(),
		Role:   user.Role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role.Name,
		Active:   u.Active,
	}
}

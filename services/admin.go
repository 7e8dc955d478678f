package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength       = 8
	GeneratedPasswordLength = 16
	DefaultTokenTTL         = 15 * time.Minute
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWeakPassword     = fmt.Errorf("password must have at least %d characters", MinPasswordLength)
	ErrJWTSecretMissing = errors.New("JWT_SECRET is not configured")
)

// UserStore is the slice of the repository the admin tools need
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
}

type AdminService struct {
	users     UserStore
	jwtSecret []byte
	cost      int
}

// TokenClaims mirror the claims the backend puts in its access cookie
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewAdminService(users UserStore, jwtSecret string) *AdminService {
	return &AdminService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		cost:      bcrypt.DefaultCost,
	}
}

type ResetPasswordRequest struct {
	Email    string
	Password string // generated when empty
	// Create makes a new user when none matches Email
	Create    bool
	Name      string
	Role      string
	CompanyID string
}

type ResetPasswordResult struct {
	User      *models.User
	Password  string
	Generated bool
	Created   bool
}

// ResetPassword sets a new bcrypt password on a user, creating it when asked
func (s *AdminService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResetPasswordResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	result := &ResetPasswordResult{Password: req.Password}
	if result.Password == "" {
		generated, err := generatePassword(GeneratedPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		result.Password = generated
		result.Generated = true
	}
	if len(result.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(result.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		if !req.Create {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		role := req.Role
		if role == "" {
			role = models.RoleAdmin
		}
		user = &models.User{
			ID:       uuid.New().String(),
			Email:    email,
			Password: string(hashedPassword),
			Name:     req.Name,
			Role:     role,
		}
		if req.CompanyID != "" {
			companyID := req.CompanyID
			user.CompanyID = &companyID
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		result.User = user
		result.Created = true
		slog.Info("Admin user created", "user_id", user.ID, "email", user.Email, "role", user.Role)
		return result, nil
	}

	if err := s.users.UpdateUserPassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	user.Password = string(hashedPassword)
	result.User = user

	slog.Info("Password reset", "user_id", user.ID, "email", user.Email, "generated", result.Generated)
	return result, nil
}

// MintToken issues an HS256 access token for a user, for manual API calls
func (s *AdminService) MintToken(ctx context.Context, email string, ttl time.Duration) (string, *models.User, error) {
	if len(s.jwtSecret) == 0 {
		return "", nil, ErrJWTSecretMissing
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}

	now := time.Now()
	claims := &TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("Access token minted", "user_id", user.ID, "ttl", ttl)
	return token, user, nil
}

// VerifyToken parses a token signed with the configured secret
func (s *AdminService) VerifyToken(token string) (*TokenClaims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrJWTSecretMissing
	}

	claims := &TokenClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#%*"

func generatePassword(n int) (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordAlphabet[idx.Int64()]
	}
	return string(b), nil
}

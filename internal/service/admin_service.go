package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mini-mart/internal/domain"
	"mini-mart/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for admin password hashes
	BcryptCost = 10

	defaultSessionTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAdminDisabled      = errors.New("admin account is disabled")
	ErrInvalidAdmin       = errors.New("invalid admin")
)

// AdminService defines the interface for admin accounts and sessions
type AdminService interface {
	Login(ctx context.Context, email, password string) (token string, admin *domain.Admin, err error)
	Authenticate(ctx context.Context, token string) (*domain.Admin, error)
	ValidateToken(tokenString string) (*Claims, error)
	ListAdmins(ctx context.Context) ([]*domain.Admin, error)
	CreateAdmin(ctx context.Context, email, name, password string) (*domain.Admin, error)
	UpdateAdmin(ctx context.Context, id int64, update AdminUpdate) (*domain.Admin, error)
	DisableAdmin(ctx context.Context, id int64) error
	EnsureDefaultAdmin(ctx context.Context, email, password string) (created bool, err error)
}

// AdminUpdate lists the fields to change; nil leaves a field untouched.
type AdminUpdate struct {
	Name     *string
	Password *string
	Active   *bool
}

// Claims represents the admin session JWT claims
type Claims struct {
	AdminID int64  `json:"aid"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type adminService struct {
	admins     repository.AdminRepository
	jwtSecret  string
	sessionTTL time.Duration
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(admins repository.AdminRepository, jwtSecret string, sessionTTL time.Duration) AdminService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &adminService{admins: admins, jwtSecret: jwtSecret, sessionTTL: sessionTTL}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials and issues a session token
func (s *adminService) Login(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !admin.Active {
		return "", nil, ErrAdminDisabled
	}

	token, err := s.generateToken(admin)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, admin, nil
}

// Authenticate resolves a session token to an active admin
func (s *adminService) Authenticate(ctx context.Context, token string) (*domain.Admin, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	admin, err := s.admins.FindByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	if !admin.Active {
		return nil, ErrAdminDisabled
	}
	return admin, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *adminService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *adminService) ListAdmins(ctx context.Context) ([]*domain.Admin, error) {
	return s.admins.List(ctx)
}

// CreateAdmin adds an active admin with a bcrypt-hashed password
func (s *adminService) CreateAdmin(ctx context.Context, email, name, password string) (*domain.Admin, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return nil, ErrInvalidAdmin
	}
	if name == "" {
		name = email
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.Admin{Email: email, Name: name, PasswordHash: hash, Active: true}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, id int64, update AdminUpdate) (*domain.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			admin.Name = name
		}
	}
	if update.Password != nil && *update.Password != "" {
		hash, err := hashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		admin.PasswordHash = hash
	}
	if update.Active != nil {
		admin.Active = *update.Active
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// DisableAdmin soft-deletes an admin
func (s *adminService) DisableAdmin(ctx context.Context, id int64) error {
	return s.admins.Disable(ctx, id)
}

// EnsureDefaultAdmin creates the bootstrap admin when credentials are configured and the email is unknown
func (s *adminService) EnsureDefaultAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrAdminNotFound) {
		return false, fmt.Errorf("failed to look up default admin: %w", err)
	}

	if _, err := s.CreateAdmin(ctx, email, "Owner", password); err != nil {
		if errors.Is(err, repository.ErrAdminAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *adminService) generateToken(admin *domain.Admin) (string, error) {
	now := time.Now()
	claims := &Claims{
		AdminID: admin.ID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storeapp/internal/apperr"
	"storeapp/internal/models"
	"storeapp/internal/repositories"
)

// AuthService handles signup, login, token issuance/validation, and
// account self-service. It is the only component that sees plaintext
// passwords, and only long enough to hash or verify them.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// Signup registers a public account. The role is always user; elevated
// roles are created by admins only.
func (s *AuthService) Signup(name, email, password, address string) (*models.User, error) {
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "user already exists with email %s", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to check existing user")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Address:  address,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.KindConflict, "user already exists with email %s", email)
		}
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to register user")
	}
	return user, nil
}

// Login authenticates by email and password and returns a signed token
// plus the account. Bad email and bad password produce the same error,
// so callers cannot probe which accounts exist.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", nil, apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}

	user.Role = models.NormalizeRole(string(user.Role))

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.tokenDurat).Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.StoreID != nil {
		claims["store_id"] = *user.StoreID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, user, nil
}

// ValidateToken parses and verifies a token and constructs the session
// identity. Role normalization happens here, once; nothing downstream
// re-parses role strings.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionIdentity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
	}

	ident := &models.SessionIdentity{
		Role: models.NormalizeRole(claimString(claims, "role")),
	}
	ident.UserID = claimString(claims, "user_id")
	ident.Email = claimString(claims, "email")
	ident.StoreID = claimString(claims, "store_id")
	if ident.UserID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	return ident, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// Profile returns the account for the given user, sans password hash.
func (s *AuthService) Profile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch profile")
	}
	user.Password = ""
	return user, nil
}

// ChangePassword verifies the current password and stores a hash of the
// new one.
func (s *AuthService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Wrap(err, apperr.KindFatalStorage, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return apperr.New(apperr.KindValidation, "incorrect current password")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, string(newHash)); err != nil {
		return apperr.Wrap(err, apperr.KindFatalStorage, "failed to update password")
	}
	return nil
}

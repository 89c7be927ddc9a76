package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleViewOnly   = "VIEW_ONLY"
)

var (
	// ErrInvalidCredentials is returned when no account matches a login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for malformed, expired, or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Account is an admin login. Password may be plain text or a bcrypt hash.
type Account struct {
	Username string
	Password string
	Role     string
}

// Claims are carried in admin tokens.
type Claims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service checks admin credentials and mints/verifies signed tokens.
type Service struct {
	accounts []Account
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewService(secret string, ttl time.Duration, accounts ...Account) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	usable := make([]Account, 0, len(accounts))
	for _, acc := range accounts {
		if acc.Username == "" || acc.Password == "" {
			continue
		}
		usable = append(usable, acc)
	}
	return &Service{accounts: usable, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Login returns a signed token and the role of the matching account.
func (s *Service) Login(username, password string) (string, string, error) {
	for _, acc := range s.accounts {
		if acc.Username != username || !passwordMatches(acc.Password, password) {
			continue
		}
		token, err := s.issue(acc)
		if err != nil {
			return "", "", err
		}
		return token, acc.Role, nil
	}
	return "", "", ErrInvalidCredentials
}

func (s *Service) issue(acc Account) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:     acc.Role,
		Username: acc.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

// Verify parses a token and returns its claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

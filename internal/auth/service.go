package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned when a session token is missing or invalid.
	ErrUnauthenticated = errors.New("not signed in")
)

// User is the signed-in administrator.
type User struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service checks credentials and issues and verifies session tokens.
type Service struct {
	dir    Directory
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

// NewService creates a new auth Service.
func NewService(dir Directory, jwtSecret string, ttl time.Duration, logger *log.Logger) *Service {
	return &Service{
		dir:    dir,
		secret: []byte(jwtSecret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.WithPrefix("auth"),
	}
}

// Login exchanges credentials for a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	acct, err := s.dir.Lookup(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		s.logger.Warn("login rejected", "email", email)
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("lookup account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login rejected", "email", email)
		return "", nil, ErrInvalidCredentials
	}

	u := &User{Email: acct.Email, ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second)}
	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("admin signed in", "email", u.Email)
	return token, u, nil
}

// CurrentUser verifies a session token and returns its user.
func (s *Service) CurrentUser(token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, ErrUnauthenticated
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrUnauthenticated
	}
	return &User{Email: email, ExpiresAt: exp.Time}, nil
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(u *User) (string, error) {
	claims := jwt.MapClaims{
		"sub": u.Email,
		"iat": s.now().Unix(),
		"exp": u.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

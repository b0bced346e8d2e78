package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type tokenIssuer interface {
	GenerateToken(email, role string) (string, error)
}

// Service authenticates the shared staff account used by the launch
// field crew for check-in.
type Service struct {
	jwt          tokenIssuer
	staffEmail   string
	passwordHash string
}

func NewService(jwt tokenIssuer, staffEmail, passwordHash string) *Service {
	return &Service{jwt: jwt, staffEmail: strings.ToLower(staffEmail), passwordHash: passwordHash}
}

func (s *Service) Login(email, password string) (string, error) {
	if s.staffEmail == "" || s.passwordHash == "" {
		return "", ErrInvalidCredentials
	}
	if strings.ToLower(strings.TrimSpace(email)) != s.staffEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.jwt.GenerateToken(s.staffEmail, "staff")
}

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nomenalista/guestlist-backend/config"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidToken = errors.New("invalid token")
)

type Service interface {
	// StartSession upserts the self-asserted identity and issues tokens.
	// There is no credential check: possession of the resulting token is the
	// session, nothing more.
	StartSession(in SessionRequest) (*TokenPair, *User, error)
	Refresh(refreshToken string) (string, error)
	GetUserByID(id string) (User, error)

	// CreateUser registers an identity on someone's behalf (owner adding a
	// promoter who has never opened the app).
	CreateUser(name, email, phone, role string) (*User, error)
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(r Repository, cfg *config.Config) Service {
	return &service{
		repo:          r,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
	}
}

func (s *service) StartSession(in SessionRequest) (*TokenPair, *User, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !ValidRole(role) {
		return nil, nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.repo.GetByEmail(email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		user = User{
			ID:    uuid.NewString(),
			Name:  in.Name,
			Email: email,
			Phone: in.Phone,
			Role:  role,
		}
		if err := s.repo.Create(&user); err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	default:
		// Identity is ephemeral and self-asserted; whatever the caller
		// claims this session wins.
		user.Name = in.Name
		user.Phone = in.Phone
		user.Role = role
		if err := s.repo.Save(&user); err != nil {
			return nil, nil, err
		}
	}

	access, err := s.generateAccessToken(&user)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.generateRefreshToken(&user)
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, &user, nil
}

func (s *service) CreateUser(name, email, phone, role string) (*User, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	email = strings.ToLower(strings.TrimSpace(email))

	if existing, err := s.repo.GetByEmail(email); err == nil {
		return &existing, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Phone: phone,
		Role:  role,
	}
	if err := s.repo.Create(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *service) GetUserByID(id string) (User, error) {
	return s.repo.GetByID(id)
}

func (s *service) generateAccessToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.accessSecret))
}

func (s *service) generateRefreshToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"typ":     "refresh",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(s.refreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.refreshSecret))
}

func (s *service) Refresh(refreshToken string) (string, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", ErrInvalidToken
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		return "", err
	}
	return s.generateAccessToken(&user)
}

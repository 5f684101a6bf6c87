package service

import (
	"errors"
	"time"

	"quizboard/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles host and player authentication
type AuthService struct {
	hostUsername string
	hostPassword string
	jwtSecret    []byte
	roomTokenTTL time.Duration
}

// NewAuthService creates a new auth service. Room-scoped tokens live as long
// as the room does.
func NewAuthService(username, password, secret string, roomTokenTTL time.Duration) *AuthService {
	return &AuthService{
		hostUsername: username,
		hostPassword: password,
		jwtSecret:    []byte(secret),
		roomTokenTTL: roomTokenTTL,
	}
}

// Login validates operator credentials and returns a permanent token that
// may create quizzes and rooms.
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.hostUsername || password != s.hostPassword {
		return nil, ErrInvalidCredentials
	}

	hostID := "host_" + uuid.New().String()[:8]

	claims := &model.HostClaims{
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	tokenString, err := s.sign(claims)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:  tokenString,
		HostID: hostID,
	}, nil
}

// GenerateRoomHostToken creates the token that drives one room.
func (s *AuthService) GenerateRoomHostToken(roomCode, hostID string) (string, error) {
	if hostID == "" {
		hostID = "host_" + uuid.New().String()[:8]
	}
	now := time.Now()
	claims := &model.HostClaims{
		HostID:   hostID,
		RoomCode: roomCode,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.roomTokenTTL)),
		},
	}
	return s.sign(claims)
}

// ValidateHostToken validates a host JWT and returns claims
func (s *AuthService) ValidateHostToken(tokenString string) (*model.HostClaims, error) {
	claims := &model.HostClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.HostID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GeneratePlayerToken creates a room-scoped token for a player
func (s *AuthService) GeneratePlayerToken(roomCode, playerID string) (string, error) {
	now := time.Now()
	claims := &model.PlayerClaims{
		RoomCode: roomCode,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.roomTokenTTL)),
		},
	}
	return s.sign(claims)
}

// ValidatePlayerToken validates a player JWT and returns claims
func (s *AuthService) ValidatePlayerToken(tokenString string) (*model.PlayerClaims, error) {
	claims := &model.PlayerClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.PlayerID == "" || claims.RoomCode == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

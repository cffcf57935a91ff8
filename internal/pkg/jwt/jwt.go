package jwt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("wrong token type")
)

type Service struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwtlib.RegisteredClaims
}

// Pair is an access token and the refresh token that can rotate it.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func New(secret string, ttl, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		ttl:        ttl,
		refreshTTL: refreshTTL,
	}
}

func (s *Service) GenerateToken(userID int64, role string) (string, error) {
	return s.sign(userID, role, TypeAccess, s.ttl)
}

func (s *Service) GeneratePair(userID int64, role string) (Pair, error) {
	access, err := s.sign(userID, role, TypeAccess, s.ttl)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.sign(userID, role, TypeRefresh, s.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (s *Service) sign(userID int64, role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken accepts access tokens only.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, TypeAccess)
}

// ValidateRefresh accepts refresh tokens only.
func (s *Service) ValidateRefresh(tokenStr string) (*Claims, error) {
	return s.validate(tokenStr, TypeRefresh)
}

func (s *Service) validate(tokenStr, typ string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, ErrWrongType
	}

	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Ошибки валидации токенов.
var (
	ErrTokenInvalid   = errors.New("token is invalid or expired")
	ErrTokenWrongType = errors.New("unexpected token type")
)

// Claims — полезная нагрузка наших токенов. TokenType различает
// access и refresh, чтобы refresh-токен нельзя было отдать в Authorization.
type Claims struct {
	TokenType string `json:"token_type"` // "access" | "refresh"
	jwt.RegisteredClaims
}

// TokenPair — то, что получает клиент после логина.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager выпускает и проверяет HS256-токены.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair выпускает пару access+refresh для пользователя.
func (m *TokenManager) IssuePair(userID uint) (TokenPair, error) {
	access, err := m.issue(userID, "access", m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.issue(userID, "refresh", m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess выпускает только access-токен (для /api/token/refresh/).
func (m *TokenManager) IssueAccess(userID uint) (string, error) {
	return m.issue(userID, "access", m.accessTTL)
}

func (m *TokenManager) issue(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "dunetube-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse проверяет подпись, срок и тип токена и возвращает ID пользователя.
func (m *TokenManager) Parse(tokenString, wantType string) (uint, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return 0, ErrTokenWrongType
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrTokenInvalid
	}
	return uint(id), nil
}

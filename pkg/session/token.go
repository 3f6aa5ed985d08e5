package session

import (
	"fmt"
	"strings"
	"time"

	"VidHub.com/pkg/errno"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims 访问令牌声明
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager HS256 令牌签发与校验
type TokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer}
}

// Enabled 未配置密钥时所有请求视为匿名
func (m *TokenManager) Enabled() bool {
	return m != nil && len(m.secret) > 0
}

// Issue 为用户签发令牌
func (m *TokenManager) Issue(s Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: s.Username,
		Role:     s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 校验令牌并还原会话
func (m *TokenManager) Parse(tokenString string) (Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Anonymous, errors.WithStack(errno.UnauthorizedErr.WithMessage("invalid token"))
	}
	if claims.Subject == "" {
		return Anonymous, errors.WithStack(errno.UnauthorizedErr.WithMessage("token without subject"))
	}
	return Session{UserID: claims.Subject, Username: claims.Username, Role: claims.Role}, nil
}

// BearerToken 从 Authorization 头中取出令牌
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

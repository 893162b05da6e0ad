package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrServiceTokenInvalid 服务令牌无效
var ErrServiceTokenInvalid = errors.New("服务令牌无效")

// ServiceTokenClaims 服务令牌声明
type ServiceTokenClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// SignServiceToken 为内部调用方签发 HS256 服务令牌
func SignServiceToken(secret, serviceName string, ttl time.Duration) (string, error) {
	serviceName = strings.ToLower(strings.TrimSpace(serviceName))
	if secret == "" || serviceName == "" {
		return "", ErrServiceTokenInvalid
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := time.Now()
	claims := ServiceTokenClaims{
		Service: serviceName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   serviceName,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseServiceToken 解析并校验服务令牌
func ParseServiceToken(secret, tokenString string) (*ServiceTokenClaims, error) {
	if secret == "" || strings.TrimSpace(tokenString) == "" {
		return nil, ErrServiceTokenInvalid
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &ServiceTokenClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrServiceTokenInvalid
	}
	claims.Service = strings.ToLower(strings.TrimSpace(claims.Service))
	if claims.Service == "" {
		return nil, ErrServiceTokenInvalid
	}
	return claims, nil
}

// Package jwt 提供凭证服务：签发和校验绑定用户身份的 JWT
package jwt

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ErrInvalidToken 统一的校验失败信号
// 过期、签名错误、格式错误、空 Token 都映射到它，不区分原因
var ErrInvalidToken = errors.New("invalid token")

// Claims 自定义 JWT 声明，Subject 存用户名
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager 凭证管理器
// 签名密钥在进程启动时确定，之后只读，可安全并发使用
type TokenManager struct {
	key    []byte
	expiry time.Duration
}

// NewTokenManager 创建凭证管理器
// secret 非空时使用配置的固定密钥，Token 在进程重启后仍然有效；
// secret 为空时生成随机的进程级密钥，重启会使所有已签发的 Token 失效
func NewTokenManager(secret string, expiryMinutes int) *TokenManager {
	if expiryMinutes <= 0 {
		expiryMinutes = 60
	}
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// crypto/rand 不可用时无法安全签发 Token
			zap.L().Fatal("generate signing key failed", zap.Error(err))
		}
		zap.L().Warn("jwt secret 未配置，使用随机进程级密钥，重启后已签发的 Token 将全部失效")
	}
	return &TokenManager{
		key:    key,
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

// Issue 为指定用户签发 Token
// Subject 为用户名，有效期为固定策略（默认 1 小时）
func (tm *TokenManager) Issue(username string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat_relay_server",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.key)
}

// Validate 校验 Token 并返回绑定的用户名
// 任何失败（过期、签名无效、格式错误、空串）都返回 ErrInvalidToken，不会 panic
func (tm *TokenManager) Validate(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.key, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

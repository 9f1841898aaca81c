// Package jwtauth 签发与校验 HS256 令牌，载荷携带 userId 与 username。
package jwtauth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenType 表示 Access Token 类型
	AccessTokenType = "access"
	// RefreshTokenType 表示 Refresh Token 类型
	RefreshTokenType = "refresh"

	DefaultExpiration        = "24h"
	DefaultRefreshExpiration = "7d"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrNotRefreshToken  = errors.New("not a refresh token")
	ErrEmptySigningKey  = errors.New("jwt signing key is empty")
	errEmptyDurationStr = errors.New("empty duration string")
)

// Claims 定义 JWT 载荷结构
type Claims struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`
	Type     string `json:"type"` // token类型：access/refresh
	jwt.RegisteredClaims
}

// TokenPair 包含 Access Token 和 Refresh Token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// JWT 令牌管理器
type JWT struct {
	signingKey             []byte
	issuer                 string
	tokenExpiration        time.Duration
	refreshTokenExpiration time.Duration
	now                    func() time.Time
}

// NewJWT 创建令牌管理器，有效期为空时使用默认值
func NewJWT(signingKey, tokenExp, refreshTokenExp string) (*JWT, error) {
	if signingKey == "" {
		return nil, ErrEmptySigningKey
	}
	if tokenExp == "" {
		tokenExp = DefaultExpiration
	}
	if refreshTokenExp == "" {
		refreshTokenExp = DefaultRefreshExpiration
	}

	tokenExpDur, err := parseDuration(tokenExp)
	if err != nil {
		return nil, fmt.Errorf("invalid token expiration: %w", err)
	}
	refreshTokenExpDur, err := parseDuration(refreshTokenExp)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token expiration: %w", err)
	}

	return &JWT{
		signingKey:             []byte(signingKey),
		issuer:                 "gsms",
		tokenExpiration:        tokenExpDur,
		refreshTokenExpiration: refreshTokenExpDur,
		now:                    time.Now,
	}, nil
}

// Expiration Access Token 有效期
func (j *JWT) Expiration() time.Duration {
	return j.tokenExpiration
}

// parseDuration 解析 30s / 5m / 24h / 7d / 2w 形式的时间
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, errEmptyDurationStr
	}

	units := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": time.Hour * 24,
		"w": time.Hour * 24 * 7,
	}

	idx := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if idx <= 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}
	numStr, unit := s[:idx], s[idx:]

	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in duration: %s", s)
	}
	dur, ok := units[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown unit in duration: %s", unit)
	}
	return time.Duration(num * float64(dur)), nil
}

func (j *JWT) sign(userID uint64, username, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token failed: %w", tokenType, err)
	}
	return token, expiresAt, nil
}

// GenerateToken 生成 Access Token 与 Refresh Token
func (j *JWT) GenerateToken(userID uint64, username string) (*TokenPair, error) {
	access, expiresAt, err := j.sign(userID, username, AccessTokenType, j.tokenExpiration)
	if err != nil {
		return nil, err
	}
	refresh, _, err := j.sign(userID, username, RefreshTokenType, j.refreshTokenExpiration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt.Unix()}, nil
}

// ParseToken 校验签名与有效期，过期返回 ErrTokenExpired，其余失败返回 ErrTokenInvalid
func (j *JWT) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.signingKey, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseAccessToken 只接受 access 类型
func (j *JWT) ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := j.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != AccessTokenType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// RefreshToken 使用 refresh token 换取新的令牌对
func (j *JWT) RefreshToken(refreshTokenStr string) (*TokenPair, error) {
	claims, err := j.ParseToken(refreshTokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != RefreshTokenType {
		return nil, ErrNotRefreshToken
	}
	return j.GenerateToken(claims.UserID, claims.Username)
}

// ExtractBearer 从 Authorization 头中取出令牌
func ExtractBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

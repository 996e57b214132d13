package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// Manager JWT管理器
// 设计说明：
// 1. 使用双Token机制：Access Token（短期）+ Refresh Token（长期）
// 2. Access Token的Subject是账户邮箱，下游只把它当作不透明的身份标识
// 3. Role随Token下发，用于管理员接口的鉴权
type Manager struct {
	secret             string
	issuer             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
	now                func() time.Time
}

// NewManager 创建JWT管理器
func NewManager(secret, issuer string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	if issuer == "" {
		issuer = "bigbooks"
	}
	return &Manager{
		secret:             secret,
		issuer:             issuer,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
		now:                time.Now,
	}
}

// Claims 自定义JWT Claims
// 嵌入jwt.RegisteredClaims获取标准字段（sub、exp、iat、jti等）
type Claims struct {
	AccountID uint   `json:"account_id"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity 调用方身份（即Subject，账户邮箱）
func (c *Claims) Identity() string {
	return c.Subject
}

// TokenPair Token对（Access + Refresh）
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"` // Access Token过期时间（秒）
	ExpiresAt    time.Time `json:"expires_at"`
}

// GenerateToken 生成Token对
func (m *Manager) GenerateToken(accountID uint, email, name, role string) (*TokenPair, error) {
	now := m.now()

	accessClaims := Claims{
		AccountID:        accountID,
		Name:             name,
		Role:             role,
		RegisteredClaims: m.registered(email, now, m.accessTokenExpire),
	}
	accessTokenString, err := m.sign(accessClaims)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	// Refresh Token不携带角色，刷新时重新签发
	refreshClaims := Claims{
		AccountID:        accountID,
		RegisteredClaims: m.registered(email, now, m.refreshTokenExpire),
	}
	refreshTokenString, err := m.sign(refreshClaims)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
		ExpiresAt:    now.Add(m.accessTokenExpire),
	}, nil
}

// ParseToken 解析并验证Token
// 学习要点：
// 1. 验证签名（防止伪造）
// 2. 验证过期时间（exp）
// 3. 验证生效时间（nbf）
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}

// RefreshAccessToken 使用Refresh Token换取新的Access Token
// role由调用方重新查询后传入（角色可能已被管理员修改）
func (m *Manager) RefreshAccessToken(refreshToken, name, role string) (string, error) {
	claims, err := m.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}

	newClaims := Claims{
		AccountID:        claims.AccountID,
		Name:             name,
		Role:             role,
		RegisteredClaims: m.registered(claims.Subject, m.now(), m.accessTokenExpire),
	}
	tokenString, err := m.sign(newClaims)
	if err != nil {
		return "", apperrors.Wrap(err, "刷新Token失败")
	}
	return tokenString, nil
}

// AccessTokenTTL Access Token有效期（登出时作为黑名单过期时间）
func (m *Manager) AccessTokenTTL() time.Duration {
	return m.accessTokenExpire
}

func (m *Manager) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    m.issuer,
		Subject:   subject,
	}
}

func (m *Manager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
}

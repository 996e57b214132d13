package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
	"github.com/xiebiao/bigbooks/pkg/jwt"
)

type revokedSet map[string]bool

func (s revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s[jti], nil
}

func serve(t *testing.T, r *gin.Engine, token string) (int, http.Header) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code, w.Header()
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := jwt.NewManager("secret", "bigbooks", time.Hour, 24*time.Hour)
	pair, err := manager.GenerateToken(7, "clark@demo.com", "Clark", "Customer")
	require.NoError(t, err)
	claims, err := manager.ParseToken(pair.AccessToken)
	require.NoError(t, err)

	revoked := revokedSet{}
	r := gin.New()
	r.GET("/x", NewAuthMiddleware(manager, revoked).RequireAuth(), func(c *gin.Context) {
		assert.Equal(t, uint(7), GetAccountID(c))
		assert.Equal(t, "clark@demo.com", GetIdentity(c))
		assert.Equal(t, "Customer", GetRole(c))
		assert.Equal(t, claims.ID, GetTokenID(c))
		assert.False(t, GetTokenExpiry(c).IsZero())
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	t.Run("有效Token", func(t *testing.T) {
		code, _ := serve(t, r, "Bearer "+pair.AccessToken)
		assert.Equal(t, 0, code)
	})

	t.Run("缺少Header", func(t *testing.T) {
		code, _ := serve(t, r, "")
		assert.Equal(t, apperrors.ErrCodeUnauthorized, code)
	})

	t.Run("格式错误", func(t *testing.T) {
		code, _ := serve(t, r, "Token "+pair.AccessToken)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, code)
	})

	t.Run("已登出", func(t *testing.T) {
		revoked[claims.ID] = true
		code, _ := serve(t, r, "Bearer "+pair.AccessToken)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, code)
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	build := func(role string) *gin.Engine {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) { c.Set(ContextRole, role) }, RequireRole(account.RoleAdmin), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"code": 0})
		})
		return r
	}

	code, _ := serve(t, build("Admin"), "")
	assert.Equal(t, 0, code)

	code, _ = serve(t, build("Customer"), "")
	assert.Equal(t, apperrors.ErrCodeForbidden, code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "桶已空")
	assert.True(t, l.Allow("b"), "按key独立计数")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"), "1秒后补充一个令牌")

	// 长时间未访问的key被清理
	now = now.Add(time.Hour)
	l.Allow("c")
	l.mu.Lock()
	_, ok := l.limiters["b"]
	l.mu.Unlock()
	assert.False(t, ok)
}

func TestRateLimiter_KeepsBucketForSameKey(t *testing.T) {
	l := NewRateLimiter(0.001, 1)

	allowed := 0
	for i := 0; i < 50; i++ {
		if l.Allow("same-key") {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed, "同一key只能用完一个桶")

	l.mu.Lock()
	size := len(l.limiters)
	l.mu.Unlock()
	assert.Equal(t, 1, size, "新key插入后不能被立即清理")
}

func TestRequestIDAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()), Logger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		assert.Equal(t, "req-1", c.GetString(ContextRequestID))
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/panic", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":50000`)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

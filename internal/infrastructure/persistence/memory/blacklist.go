package memory

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist 进程内Token黑名单,未启用Redis时使用
// 多实例部署时各实例互不可见,只适合单进程
type TokenBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time // jti → 过期时间
	now     func() time.Time
}

// NewTokenBlacklist 创建黑名单
func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke 拉黑Token直到ttl到期
func (b *TokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	// 顺便清理已过期的记录
	for k, exp := range b.revoked {
		if !exp.After(now) {
			delete(b.revoked, k)
		}
	}
	b.revoked[jti] = now.Add(ttl)
	return nil
}

// IsRevoked Token是否已被拉黑
func (b *TokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.revoked[jti]
	return ok && exp.After(b.now()), nil
}

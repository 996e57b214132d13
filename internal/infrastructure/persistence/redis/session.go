package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// SessionStore 会话存储
// 设计说明：
// 1. 记录账户最近一次登录信息（登录时间、IP）
// 2. JWT黑名单：登出后Token立即失效
// 3. Key设计：session:{account_id}、blacklist:{jti}
//    黑名单按jti而不是整个Token存储，Key更短
type SessionStore struct {
	client redis.Cmdable
}

// NewSessionStore 创建会话存储
func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(accountID uint) string {
	return fmt.Sprintf("session:%d", accountID)
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

// SaveSession 保存会话，过期时间与Refresh Token一致
func (s *SessionStore) SaveSession(ctx context.Context, accountID uint, data map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(accountID)

	// Pipeline：HSET和EXPIRE一次网络往返
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	return nil
}

// GetSession 获取会话,不存在时返回空map
func (s *SessionStore) GetSession(ctx context.Context, accountID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(accountID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "获取会话失败")
	}
	return result, nil
}

// DeleteSession 删除会话（登出）
func (s *SessionStore) DeleteSession(ctx context.Context, accountID uint) error {
	if err := s.client.Del(ctx, sessionKey(accountID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// Revoke 将Token加入黑名单
// ttl取Token剩余有效期，过期后自动删除，无需手动清理
func (s *SessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 已过期的Token无需拉黑
	}
	if err := s.client.Set(ctx, blacklistKey(jti), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsRevoked 检查Token是否在黑名单中
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return exists > 0, nil
}

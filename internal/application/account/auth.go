package account

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
	"github.com/xiebiao/bigbooks/pkg/jwt"
)

// TokenBlacklist Token黑名单
// Redis实现:redis.SessionStore;未启用Redis时使用memory.TokenBlacklist
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionStore 登录会话记录(可选,未启用Redis时为nil)
// GetSession返回空map表示会话不存在
type SessionStore interface {
	SaveSession(ctx context.Context, accountID uint, data map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, accountID uint) (map[string]string, error)
	DeleteSession(ctx context.Context, accountID uint) error
}

// LoginUseCase 登录用例
// 设计说明:
// 1. 验证邮箱密码
// 2. 生成JWT Token对(sub=邮箱,下游把它当作调用方身份)
// 3. 记录会话(失败不影响登录)
// 停用账户可以登录,但不能购买、充值或评论
type LoginUseCase struct {
	accounts   account.Service
	jwtManager *jwt.Manager
	sessions   SessionStore
	sessionTTL time.Duration
	log        *zap.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	accounts account.Service,
	jwtManager *jwt.Manager,
	sessions SessionStore,
	sessionTTL time.Duration,
	log *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		accounts:   accounts,
		jwtManager: jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Account      AccountInfo
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	a, err := uc.accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(a.ID, a.Email, a.Name, string(a.Role))
	if err != nil {
		return nil, err
	}

	if uc.sessions != nil {
		data := map[string]interface{}{
			"email":    a.Email,
			"role":     string(a.Role),
			"login_at": time.Now().Unix(),
			"ip":       req.ClientIP,
		}
		if err := uc.sessions.SaveSession(ctx, a.ID, data, uc.sessionTTL); err != nil {
			uc.log.Warn("保存会话失败", zap.Uint("account_id", a.ID), zap.Error(err))
		}
	}

	uc.log.Info("登录成功", zap.Uint("account_id", a.ID), zap.String("ip", req.ClientIP))
	return &LoginResponse{
		Account:      toInfo(a),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LogoutUseCase 登出用例
type LogoutUseCase struct {
	blacklist TokenBlacklist
	sessions  SessionStore
	log       *zap.Logger
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(blacklist TokenBlacklist, sessions SessionStore, log *zap.Logger) *LogoutUseCase {
	return &LogoutUseCase{blacklist: blacklist, sessions: sessions, log: log}
}

// LogoutRequest 登出请求(来自已验证的Access Token)
type LogoutRequest struct {
	AccountID uint
	TokenID   string // jti
	ExpiresAt time.Time
}

// Execute 执行登出
// Access Token在剩余有效期内加入黑名单
func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) error {
	if req.TokenID == "" {
		return apperrors.ErrInvalidToken
	}
	if err := uc.blacklist.Revoke(ctx, req.TokenID, time.Until(req.ExpiresAt)); err != nil {
		return err
	}
	if uc.sessions != nil {
		if err := uc.sessions.DeleteSession(ctx, req.AccountID); err != nil {
			uc.log.Warn("删除会话失败", zap.Uint("account_id", req.AccountID), zap.Error(err))
		}
	}
	return nil
}

// RefreshUseCase 刷新Access Token
// 记录会话时,登出会删除会话,此后该账户的Refresh Token都不能再用
type RefreshUseCase struct {
	accounts   account.Service
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
	sessions   SessionStore
}

// NewRefreshUseCase 创建刷新用例
func NewRefreshUseCase(accounts account.Service, jwtManager *jwt.Manager, blacklist TokenBlacklist, sessions SessionStore) *RefreshUseCase {
	return &RefreshUseCase{accounts: accounts, jwtManager: jwtManager, blacklist: blacklist, sessions: sessions}
}

// RefreshRequest 刷新请求
type RefreshRequest struct {
	RefreshToken string
}

// RefreshResponse 新的Access Token
type RefreshResponse struct {
	AccessToken string
	ExpiresIn   int64
}

// Execute 执行刷新
// 角色和姓名重新查询,管理员修改过的角色在刷新后生效
func (uc *RefreshUseCase) Execute(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	revoked, err := uc.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken
	}

	id, err := uc.accounts.ResolveAccountKey(ctx, claims.Identity())
	if err != nil {
		if errors.Is(err, account.ErrInvalidUser) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if uc.sessions != nil {
		session, err := uc.sessions.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(session) == 0 {
			return nil, apperrors.ErrInvalidToken
		}
	}
	a, err := uc.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	token, err := uc.jwtManager.RefreshAccessToken(req.RefreshToken, a.Name, string(a.Role))
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: token,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

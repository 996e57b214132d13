package account

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/domain/account"
)

// CreateAccountUseCase 开户用例(管理员)
type CreateAccountUseCase struct {
	accounts account.Service
	log      *zap.Logger
}

// NewCreateAccountUseCase 创建开户用例
func NewCreateAccountUseCase(accounts account.Service, log *zap.Logger) *CreateAccountUseCase {
	return &CreateAccountUseCase{accounts: accounts, log: log}
}

// CreateAccountRequest 开户请求
type CreateAccountRequest struct {
	Email    string
	Name     string
	Role     string
	Password string
	Wallet   decimal.Decimal
}

// Execute 执行开户
func (uc *CreateAccountUseCase) Execute(ctx context.Context, req CreateAccountRequest) (*AccountInfo, error) {
	role, err := account.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	a, err := uc.accounts.CreateAccount(ctx, account.CreateParams{
		Email:    req.Email,
		Name:     req.Name,
		Role:     role,
		Password: req.Password,
		Wallet:   req.Wallet,
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("账户已创建",
		zap.Uint("account_id", a.ID),
		zap.String("role", string(a.Role)),
		zap.String("wallet", a.Wallet.StringFixed(2)),
	)
	info := toInfo(a)
	return &info, nil
}

// UpdateAccountUseCase 修改账户资料(管理员)
// 余额不能在这里修改:余额只随购买和充值变化,并且每次变化都有流水
type UpdateAccountUseCase struct {
	accounts account.Service
	log      *zap.Logger
}

// NewUpdateAccountUseCase 创建修改用例
func NewUpdateAccountUseCase(accounts account.Service, log *zap.Logger) *UpdateAccountUseCase {
	return &UpdateAccountUseCase{accounts: accounts, log: log}
}

// UpdateAccountRequest 修改请求,nil字段不修改
type UpdateAccountRequest struct {
	AccountID uint
	Email     *string
	Name      *string
	Role      *string
	Password  *string
	Active    *bool
}

// Execute 执行修改
func (uc *UpdateAccountUseCase) Execute(ctx context.Context, req UpdateAccountRequest) (*AccountInfo, error) {
	p := account.UpdateParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Active:   req.Active,
	}
	if req.Role != nil {
		role, err := account.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		p.Role = &role
	}

	a, err := uc.accounts.UpdateAccount(ctx, req.AccountID, p)
	if err != nil {
		return nil, err
	}

	uc.log.Info("账户已修改", zap.Uint("account_id", a.ID), zap.Bool("active", a.Active))
	info := toInfo(a)
	return &info, nil
}

// BootstrapAdminUseCase 启动时确保管理员账户存在
type BootstrapAdminUseCase struct {
	accounts account.Service
	log      *zap.Logger
}

// NewBootstrapAdminUseCase 创建初始化用例
func NewBootstrapAdminUseCase(accounts account.Service, log *zap.Logger) *BootstrapAdminUseCase {
	return &BootstrapAdminUseCase{accounts: accounts, log: log}
}

// BootstrapAdminRequest 管理员配置
type BootstrapAdminRequest struct {
	Email    string
	Name     string
	Password string
	Wallet   decimal.Decimal
}

// Execute 邮箱为空时跳过;账户已存在时不做任何修改
func (uc *BootstrapAdminUseCase) Execute(ctx context.Context, req BootstrapAdminRequest) error {
	if req.Email == "" {
		uc.log.Debug("未配置初始管理员,跳过")
		return nil
	}

	name := req.Name
	if name == "" {
		name = "Administrator"
	}
	a, created, err := uc.accounts.EnsureAdmin(ctx, account.CreateParams{
		Email:    req.Email,
		Name:     name,
		Password: req.Password,
		Wallet:   req.Wallet,
	})
	if err != nil {
		return err
	}

	if created {
		uc.log.Info("初始管理员已创建", zap.Uint("account_id", a.ID), zap.String("email", a.Email))
	} else if !a.IsAdmin() {
		uc.log.Warn("初始管理员邮箱已被普通账户使用", zap.String("email", a.Email))
	}
	return nil
}

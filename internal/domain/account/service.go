package account

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

var (
	minSeedWallet = decimal.NewFromInt(1)
	maxSeedWallet = decimal.NewFromInt(5000)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// CreateParams 开户参数
type CreateParams struct {
	Email    string
	Name     string
	Role     Role
	Password string
	Wallet   decimal.Decimal
}

// UpdateParams 资料修改参数（nil表示不修改）
// 余额不在此列：余额只能通过购买/充值变化
type UpdateParams struct {
	Email    *string
	Name     *string
	Role     *Role
	Password *string
	Active   *bool
}

// Service 账户领域服务
// 设计说明：
// 1. 负责开户、认证、资料修改，以及把外部身份解析为账户ID
// 2. 不涉及余额变动（余额变动在ledger用例的事务中完成）
type Service interface {
	CreateAccount(ctx context.Context, p CreateParams) (*Account, error)

	// Authenticate 校验邮箱密码
	Authenticate(ctx context.Context, email, password string) (*Account, error)

	// ResolveAccountKey 身份解析：把调用方身份（Token的sub，即邮箱）解析为账户ID
	// 无法解析时返回ErrInvalidUser
	ResolveAccountKey(ctx context.Context, identity string) (uint, error)

	GetAccount(ctx context.Context, id uint) (*Account, error)
	ListAccounts(ctx context.Context, active *bool) ([]*Account, error)
	UpdateAccount(ctx context.Context, id uint, p UpdateParams) (*Account, error)

	// EnsureAdmin 邮箱不存在时创建管理员账户，返回是否新建
	EnsureAdmin(ctx context.Context, p CreateParams) (*Account, bool, error)
}

type service struct {
	repo     Repository
	hashCost int
}

// Option 服务选项
type Option func(*service)

// WithHashCost 设置bcrypt cost（测试中使用bcrypt.MinCost加速）
func WithHashCost(cost int) Option {
	return func(s *service) { s.hashCost = cost }
}

// NewService 创建账户服务
func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo, hashCost: 12}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount 开户
// 业务规则：
// 1. 邮箱格式合法，且（忽略大小写）唯一
// 2. 密码长度4-20
// 3. 初始余额1-5000
func (s *service) CreateAccount(ctx context.Context, p CreateParams) (*Account, error) {
	if err := validateEmail(p.Email); err != nil {
		return nil, err
	}
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	if p.Role != RoleAdmin && p.Role != RoleCustomer {
		return nil, ErrInvalidRole
	}
	if err := validatePassword(p.Password); err != nil {
		return nil, err
	}
	if p.Wallet.LessThan(minSeedWallet) || p.Wallet.GreaterThan(maxSeedWallet) {
		return nil, ErrInvalidWallet
	}

	// 先查一次给出友好错误，并发下由唯一索引兜底
	if _, err := s.repo.FindByEmail(ctx, p.Email); err == nil {
		return nil, ErrEmailDuplicate
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	hashed, err := s.hash(p.Password)
	if err != nil {
		return nil, err
	}

	a := NewAccount(p.Email, p.Name, p.Role, hashed, p.Wallet.Round(2))
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate 登录认证
// 邮箱不存在与密码错误返回同一个错误，避免枚举账户
func (s *service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}
	return a, nil
}

func (s *service) ResolveAccountKey(ctx context.Context, identity string) (uint, error) {
	if strings.TrimSpace(identity) == "" {
		return 0, ErrInvalidUser
	}
	a, err := s.repo.FindByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return 0, ErrInvalidUser
		}
		return 0, err
	}
	return a.ID, nil
}

func (s *service) GetAccount(ctx context.Context, id uint) (*Account, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListAccounts(ctx context.Context, active *bool) ([]*Account, error) {
	return s.repo.List(ctx, active)
}

// UpdateAccount 修改账户资料
func (s *service) UpdateAccount(ctx context.Context, id uint, p UpdateParams) (*Account, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Email != nil && NormalizeEmail(*p.Email) != a.Email {
		if err := validateEmail(*p.Email); err != nil {
			return nil, err
		}
		if _, err := s.repo.FindByEmail(ctx, *p.Email); err == nil {
			return nil, ErrEmailDuplicate
		} else if !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		a.Email = NormalizeEmail(*p.Email)
	}
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return nil, err
		}
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Role != nil {
		if *p.Role != RoleAdmin && *p.Role != RoleCustomer {
			return nil, ErrInvalidRole
		}
		a.Role = *p.Role
	}
	if p.Password != nil {
		if err := validatePassword(*p.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hash(*p.Password)
		if err != nil {
			return nil, err
		}
		a.Password = hashed
	}
	if p.Active != nil {
		a.Active = *p.Active
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) EnsureAdmin(ctx context.Context, p CreateParams) (*Account, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, p.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, false, err
	}

	p.Role = RoleAdmin
	a, err := s.CreateAccount(ctx, p)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func (s *service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

func validateName(name string) error {
	n := len([]rune(strings.TrimSpace(name)))
	if n < 1 || n > 100 {
		return ErrInvalidName
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 4 || len(password) > 20 {
		return ErrInvalidPassword
	}
	return nil
}

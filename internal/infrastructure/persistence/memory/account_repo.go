package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bigbooks/internal/domain/account"
)

type accountRepository struct {
	s *Store
}

// NewAccountRepository 创建账户仓储
func NewAccountRepository(s *Store) account.Repository {
	return &accountRepository{s: s}
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	return r.s.write(ctx, func() error {
		email := account.NormalizeEmail(a.Email)
		if _, ok := r.s.emails[email]; ok {
			return account.ErrEmailDuplicate
		}
		r.s.nextAccountID++
		a.ID = r.s.nextAccountID
		a.Email = email
		now := time.Now()
		a.CreatedAt, a.UpdatedAt = now, now

		cp := *a
		r.s.accounts[a.ID] = &cp
		r.s.emails[email] = a.ID
		return nil
	})
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*account.Account, error) {
	var found *account.Account
	r.s.read(ctx, func() {
		if a, ok := r.s.accounts[id]; ok {
			cp := *a
			found = &cp
		}
	})
	if found == nil {
		return nil, account.ErrAccountNotFound
	}
	return found, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	var found *account.Account
	r.s.read(ctx, func() {
		if id, ok := r.s.emails[account.NormalizeEmail(email)]; ok {
			cp := *r.s.accounts[id]
			found = &cp
		}
	})
	if found == nil {
		return nil, account.ErrAccountNotFound
	}
	return found, nil
}

// LockByID 事务内已持有全局写锁,等同于FindByID
func (r *accountRepository) LockByID(ctx context.Context, id uint) (*account.Account, error) {
	return r.FindByID(ctx, id)
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	return r.s.write(ctx, func() error {
		cur, ok := r.s.accounts[a.ID]
		if !ok {
			return account.ErrAccountNotFound
		}
		email := account.NormalizeEmail(a.Email)
		if owner, ok := r.s.emails[email]; ok && owner != a.ID {
			return account.ErrEmailDuplicate
		}

		delete(r.s.emails, cur.Email)
		r.s.emails[email] = a.ID

		cur.Email = email
		cur.Name = a.Name
		cur.Role = a.Role
		cur.Password = a.Password
		cur.Active = a.Active
		cur.UpdatedAt = time.Now()
		return nil
	})
}

func (r *accountRepository) UpdateWallet(ctx context.Context, id uint, wallet decimal.Decimal) error {
	return r.s.write(ctx, func() error {
		cur, ok := r.s.accounts[id]
		if !ok {
			return account.ErrAccountNotFound
		}
		cur.Wallet = wallet
		cur.UpdatedAt = time.Now()
		return nil
	})
}

func (r *accountRepository) List(ctx context.Context, active *bool) ([]*account.Account, error) {
	var list []*account.Account
	r.s.read(ctx, func() {
		for _, a := range r.s.accounts {
			if active != nil && a.Active != *active {
				continue
			}
			cp := *a
			list = append(list, &cp)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

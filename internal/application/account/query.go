package account

import (
	"context"

	ledgerapp "github.com/xiebiao/bigbooks/internal/application/ledger"
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
)

// GetAccountDetailsUseCase 查询账户详情
type GetAccountDetailsUseCase struct {
	accounts account.Service
	entries  ledger.Repository
}

// NewGetAccountDetailsUseCase 创建详情用例
func NewGetAccountDetailsUseCase(accounts account.Service, entries ledger.Repository) *GetAccountDetailsUseCase {
	return &GetAccountDetailsUseCase{accounts: accounts, entries: entries}
}

// GetAccountDetailsRequest AccountID为0时按Identity解析(查询本人)
type GetAccountDetailsRequest struct {
	AccountID uint
	Identity  string
}

// Execute 账户信息 + 对账单(时间倒序)
func (uc *GetAccountDetailsUseCase) Execute(ctx context.Context, req GetAccountDetailsRequest) (*AccountDetails, error) {
	id := req.AccountID
	if id == 0 {
		var err error
		if id, err = uc.accounts.ResolveAccountKey(ctx, req.Identity); err != nil {
			return nil, err
		}
	}

	a, err := uc.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entries.ListByAccount(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	ledger.SortStatement(entries)

	return &AccountDetails{
		AccountInfo:  toInfo(a),
		SeedBalance:  a.SeedBalance,
		CreatedAt:    a.CreatedAt,
		Transactions: ledgerapp.ToLines(entries),
	}, nil
}

// ListAccountsUseCase 账户列表(管理员)
type ListAccountsUseCase struct {
	accounts account.Service
	entries  ledger.Repository
}

// NewListAccountsUseCase 创建列表用例
func NewListAccountsUseCase(accounts account.Service, entries ledger.Repository) *ListAccountsUseCase {
	return &ListAccountsUseCase{accounts: accounts, entries: entries}
}

// ListAccountsRequest Active为nil返回全部
type ListAccountsRequest struct {
	Active *bool
}

// Execute 查询列表,BookCount一次批量统计
func (uc *ListAccountsUseCase) Execute(ctx context.Context, req ListAccountsRequest) ([]AccountOverview, error) {
	list, err := uc.accounts.ListAccounts(ctx, req.Active)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	counts, err := uc.entries.CountDistinctBooks(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]AccountOverview, 0, len(list))
	for _, a := range list {
		result = append(result, AccountOverview{AccountInfo: toInfo(a), BookCount: counts[a.ID]})
	}
	return result, nil
}

package ledger_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	ledgerapp "github.com/xiebiao/bigbooks/internal/application/ledger"
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/internal/infrastructure/persistence/memory"
)

// recordingPublisher 记录已发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []ledger.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev ledger.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type env struct {
	store     *memory.Store
	accounts  account.Repository
	books     book.Repository
	entries   ledger.Repository
	publisher *recordingPublisher
	purchase  *ledgerapp.PurchaseUseCase
	deposit   *ledgerapp.DepositUseCase
	statement *ledgerapp.StatementUseCase
	reconcile *ledgerapp.ReconcileUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.NewStore()
	tx := memory.NewTxManager(s)
	e := &env{
		store:     s,
		accounts:  memory.NewAccountRepository(s),
		books:     memory.NewBookRepository(s),
		entries:   memory.NewLedgerRepository(s),
		publisher: &recordingPublisher{},
	}
	identity := account.NewService(e.accounts, account.WithHashCost(bcrypt.MinCost))
	log := zap.NewNop()
	e.purchase = ledgerapp.NewPurchaseUseCase(tx, e.accounts, e.books, e.entries, identity, e.publisher, log)
	e.deposit = ledgerapp.NewDepositUseCase(tx, e.accounts, e.entries, identity, e.publisher, log)
	e.statement = ledgerapp.NewStatementUseCase(e.accounts, e.entries)
	e.reconcile = ledgerapp.NewReconcileUseCase(tx, e.accounts, e.entries)
	return e
}

func (e *env) addAccount(t *testing.T, email, wallet string) *account.Account {
	t.Helper()
	a := account.NewAccount(email, "Test", account.RoleCustomer, "x", decimal.RequireFromString(wallet))
	require.NoError(t, e.accounts.Create(context.Background(), a))
	return a
}

func (e *env) addBook(t *testing.T, price string, stock int) *book.Book {
	t.Helper()
	b := book.NewBook("Dune", "Frank Herbert", uuid.NewString(), "", book.GenreFantasy, decimal.RequireFromString(price), stock)
	require.NoError(t, e.books.Create(context.Background(), b))
	return b
}

func (e *env) wallet(t *testing.T, id uint) string {
	t.Helper()
	a, err := e.accounts.FindByID(context.Background(), id)
	require.NoError(t, err)
	return a.Wallet.StringFixed(2)
}

func (e *env) stock(t *testing.T, id uint) int {
	t.Helper()
	b, err := e.books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.Stock
}

func (e *env) entryCount(t *testing.T, accountID uint) int {
	t.Helper()
	list, err := e.entries.ListByAccount(context.Background(), accountID)
	require.NoError(t, err)
	return len(list)
}

func (e *env) assertConsistent(t *testing.T, accountID uint) {
	t.Helper()
	r, err := e.reconcile.Execute(context.Background(), ledgerapp.ReconcileRequest{AccountID: accountID})
	require.NoError(t, err)
	assert.True(t, r.Consistent, "余额应等于初始余额加流水合计: seed=%s sum=%s wallet=%s", r.Seed, r.Sum, r.Wallet)
}

func TestPurchase_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("余额100购买11.19的书", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "100.00")
		b := e.addBook(t, "11.19", 10)

		resp, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "Clark@Demo.com", BookID: b.ID, Quantity: 1, Confirmation: uuid.NewString(),
		})
		require.NoError(t, err)
		assert.Equal(t, a.ID, resp.AccountID)
		assert.False(t, resp.Replayed)
		assert.Equal(t, "88.81", resp.Wallet.StringFixed(2))

		assert.Equal(t, "88.81", e.wallet(t, a.ID))
		assert.Equal(t, 9, e.stock(t, b.ID))

		list, _ := e.entries.ListByAccount(ctx, a.ID)
		require.Len(t, list, 1)
		assert.Equal(t, "-11.19", list[0].Amount.StringFixed(2))
		assert.Equal(t, ledger.TypePurchase, list[0].Type())
		assert.Equal(t, b.ID, *list[0].BookID)
		assert.Equal(t, 1, *list[0].Quantity)

		assert.Equal(t, 1, e.publisher.count(), "提交后发布事件")
		e.assertConsistent(t, a.ID)
	})

	t.Run("余额不足", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "bruce@demo.com", "40.00")
		b := e.addBook(t, "17.11", 10)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "bruce@demo.com", BookID: b.ID, Quantity: 3, Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, account.ErrInsufficientFunds)
		assert.Equal(t, "40.00", e.wallet(t, a.ID), "余额不变")
		assert.Equal(t, 10, e.stock(t, b.ID), "库存不变")
		assert.Equal(t, 0, e.entryCount(t, a.ID))
		assert.Equal(t, 0, e.publisher.count(), "拒绝时不发布事件")
	})

	t.Run("停用账户", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "diana@demo.com", "100.00")
		a.Active = false
		require.NoError(t, e.accounts.Update(ctx, a))
		b := e.addBook(t, "11.19", 10)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "diana@demo.com", BookID: b.ID, Quantity: 1, Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, account.ErrAccountDeactivated)
		assert.Equal(t, "100.00", e.wallet(t, a.ID))
		assert.Equal(t, 10, e.stock(t, b.ID))
		assert.Equal(t, 0, e.entryCount(t, a.ID))
	})

	t.Run("未知用户", func(t *testing.T) {
		e := newEnv(t)
		b := e.addBook(t, "11.19", 10)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "nobody@demo.com", BookID: b.ID, Quantity: 1, Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, account.ErrInvalidUser)
	})

	t.Run("无效图书", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "100.00")

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "clark@demo.com", BookID: 404, Quantity: 1, Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		assert.Equal(t, "100.00", e.wallet(t, a.ID))
	})

	t.Run("参数校验", func(t *testing.T) {
		e := newEnv(t)
		e.addAccount(t, "clark@demo.com", "100.00")
		b := e.addBook(t, "11.19", 10)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "clark@demo.com", BookID: b.ID, Quantity: 0, Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)

		_, err = e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: "not-a-guid",
		})
		assert.ErrorIs(t, err, ledger.ErrInvalidConfirmation)
	})
}

func TestPurchase_Boundaries(t *testing.T) {
	ctx := context.Background()

	t.Run("恰好买完库存", func(t *testing.T) {
		e := newEnv(t)
		e.addAccount(t, "clark@demo.com", "1000.00")
		b := e.addBook(t, "10.00", 3)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "clark@demo.com", BookID: b.ID, Quantity: 3, Confirmation: uuid.NewString(),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, e.stock(t, b.ID))
	})

	t.Run("多买一本", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "1000.00")
		b := e.addBook(t, "10.00", 3)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "clark@demo.com", BookID: b.ID, Quantity: 4, Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
		assert.Equal(t, 3, e.stock(t, b.ID))
		assert.Equal(t, "1000.00", e.wallet(t, a.ID), "库存不足时余额不变")
		assert.Equal(t, 0, e.entryCount(t, a.ID))
	})

	t.Run("余额恰好等于总价", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "51.33")
		b := e.addBook(t, "17.11", 10)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "clark@demo.com", BookID: b.ID, Quantity: 3, Confirmation: uuid.NewString(),
		})
		require.NoError(t, err)
		assert.Equal(t, "0.00", e.wallet(t, a.ID))
		e.assertConsistent(t, a.ID)
	})

	t.Run("差一分钱", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "51.32")
		b := e.addBook(t, "17.11", 10)

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
			Identity: "clark@demo.com", BookID: b.ID, Quantity: 3, Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, account.ErrInsufficientFunds)
		assert.Equal(t, "51.32", e.wallet(t, a.ID))
		assert.Equal(t, 10, e.stock(t, b.ID))
	})
}

func TestPurchase_NoOversell(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b := e.addBook(t, "10.00", 5)

	const buyers = 20
	ids := make([]uint, buyers)
	for i := 0; i < buyers; i++ {
		ids[i] = e.addAccount(t, uuid.NewString()+"@demo.com", "100.00").ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			a, _ := e.accounts.FindByID(ctx, id)
			_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
				Identity: a.Email, BookID: b.ID, Quantity: 1, Confirmation: uuid.NewString(),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, book.ErrInsufficientStock) {
				rejected++
			}
		}(ids[i])
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded, "库存5最多卖出5本")
	assert.Equal(t, buyers-5, rejected, "其余请求因库存不足被拒绝")
	assert.Equal(t, 0, e.stock(t, b.ID))
	for _, id := range ids {
		e.assertConsistent(t, id)
	}
}

func TestLedger_SameAccountConcurrency(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.addAccount(t, "clark@demo.com", "50.00")
	b := e.addBook(t, "10.00", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
				Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: uuid.NewString(),
			})
		}()
		go func() {
			defer wg.Done()
			_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{
				Identity: "clark@demo.com", Amount: decimal.NewFromInt(10), Confirmation: uuid.NewString(),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	acc, err := e.accounts.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, acc.Wallet.IsNegative(), "余额不能为负")
	e.assertConsistent(t, a.ID)

	// 售出数量与库存变化一致
	list, _ := e.entries.ListByAccount(ctx, a.ID)
	sold := 0
	for _, entry := range list {
		if entry.IsPurchase() {
			sold += *entry.Quantity
		}
	}
	assert.Equal(t, 1000-sold, e.stock(t, b.ID))
}

func TestPurchase_CommitFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.addAccount(t, "clark@demo.com", "100.00")
	b := e.addBook(t, "11.19", 10)
	token := uuid.NewString()

	e.store.FailNextCommit(errors.New("disk full"))
	_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
		Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: token,
	})
	assert.ErrorIs(t, err, ledger.ErrCommitFailed)
	assert.Equal(t, "100.00", e.wallet(t, a.ID), "提交失败后余额回滚")
	assert.Equal(t, 10, e.stock(t, b.ID), "提交失败后库存回滚")
	assert.Equal(t, 0, e.entryCount(t, a.ID))
	assert.Equal(t, 0, e.publisher.count())

	// 使用同一确认号重试
	resp, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{
		Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: token,
	})
	require.NoError(t, err)
	assert.False(t, resp.Replayed)
	assert.Equal(t, "88.81", e.wallet(t, a.ID))
}

func TestConfirmationToken(t *testing.T) {
	ctx := context.Background()

	t.Run("重复提交只扣一次", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "100.00")
		b := e.addBook(t, "11.19", 10)
		req := ledgerapp.PurchaseRequest{Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: uuid.NewString()}

		_, err := e.purchase.Execute(ctx, req)
		require.NoError(t, err)
		resp, err := e.purchase.Execute(ctx, req)
		require.NoError(t, err)

		assert.True(t, resp.Replayed)
		assert.Equal(t, a.ID, resp.AccountID)
		assert.Equal(t, "88.81", e.wallet(t, a.ID))
		assert.Equal(t, 9, e.stock(t, b.ID))
		assert.Equal(t, 1, e.entryCount(t, a.ID))
		assert.Equal(t, 1, e.publisher.count(), "重放不再发布事件")
	})

	t.Run("确认号大小写不同视为同一个", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "40.00")
		token := uuid.NewString()

		_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "clark@demo.com", Amount: decimal.NewFromInt(75), Confirmation: token})
		require.NoError(t, err)
		resp, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "clark@demo.com", Amount: decimal.NewFromInt(75), Confirmation: strings.ToUpper(token)})
		require.NoError(t, err)
		assert.True(t, resp.Replayed)
		assert.Equal(t, "115.00", e.wallet(t, a.ID))
	})

	t.Run("其他账户使用同一确认号", func(t *testing.T) {
		e := newEnv(t)
		e.addAccount(t, "clark@demo.com", "100.00")
		other := e.addAccount(t, "bruce@demo.com", "100.00")
		token := uuid.NewString()

		_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "clark@demo.com", Amount: decimal.NewFromInt(10), Confirmation: token})
		require.NoError(t, err)
		_, err = e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "bruce@demo.com", Amount: decimal.NewFromInt(10), Confirmation: token})
		assert.ErrorIs(t, err, ledger.ErrConfirmationConflict)
		assert.Equal(t, "100.00", e.wallet(t, other.ID))
	})

	t.Run("同一确认号换了图书或数量", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "100.00")
		b := e.addBook(t, "11.19", 10)
		other := e.addBook(t, "5.00", 10)
		token := uuid.NewString()

		_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: token})
		require.NoError(t, err)

		_, err = e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{Identity: "clark@demo.com", BookID: other.ID, Quantity: 1, Confirmation: token})
		assert.ErrorIs(t, err, ledger.ErrConfirmationConflict)
		_, err = e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{Identity: "clark@demo.com", BookID: b.ID, Quantity: 2, Confirmation: token})
		assert.ErrorIs(t, err, ledger.ErrConfirmationConflict)

		assert.Equal(t, "88.81", e.wallet(t, a.ID))
		assert.Equal(t, 9, e.stock(t, b.ID))
		assert.Equal(t, 10, e.stock(t, other.ID))
		assert.Equal(t, 1, e.entryCount(t, a.ID))
	})

	t.Run("同一确认号换了充值金额", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "40.00")
		token := uuid.NewString()

		_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "clark@demo.com", Amount: decimal.NewFromInt(75), Confirmation: token})
		require.NoError(t, err)
		_, err = e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "clark@demo.com", Amount: decimal.NewFromInt(80), Confirmation: token})
		assert.ErrorIs(t, err, ledger.ErrConfirmationConflict)
		assert.Equal(t, "115.00", e.wallet(t, a.ID))
	})

	t.Run("充值确认号用于购买", func(t *testing.T) {
		e := newEnv(t)
		e.addAccount(t, "clark@demo.com", "100.00")
		b := e.addBook(t, "11.19", 10)
		token := uuid.NewString()

		_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "clark@demo.com", Amount: decimal.NewFromInt(10), Confirmation: token})
		require.NoError(t, err)
		_, err = e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: token})
		assert.ErrorIs(t, err, ledger.ErrConfirmationConflict)
		assert.Equal(t, 10, e.stock(t, b.ID))
	})
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("余额40充值75", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "40.00")

		resp, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{
			Identity: "clark@demo.com", Amount: decimal.RequireFromString("75.00"), Confirmation: uuid.NewString(),
		})
		require.NoError(t, err)
		assert.Equal(t, "115.00", resp.Wallet.StringFixed(2))
		assert.Equal(t, "115.00", e.wallet(t, a.ID))

		list, _ := e.entries.ListByAccount(ctx, a.ID)
		require.Len(t, list, 1)
		assert.Equal(t, "75.00", list[0].Amount.StringFixed(2))
		assert.Equal(t, ledger.TypeDeposit, list[0].Type())
		assert.Nil(t, list[0].BookID)
		assert.Nil(t, list[0].Quantity)
		e.assertConsistent(t, a.ID)
	})

	t.Run("金额范围", func(t *testing.T) {
		e := newEnv(t)
		e.addAccount(t, "clark@demo.com", "40.00")

		for _, amount := range []string{"9.99", "10000.01", "-10", "10.001"} {
			_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{
				Identity: "clark@demo.com", Amount: decimal.RequireFromString(amount), Confirmation: uuid.NewString(),
			})
			assert.ErrorIs(t, err, ledger.ErrInvalidAmount, amount)
		}
		for _, amount := range []string{"10", "10000"} {
			_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{
				Identity: "clark@demo.com", Amount: decimal.RequireFromString(amount), Confirmation: uuid.NewString(),
			})
			assert.NoError(t, err, amount)
		}
	})

	t.Run("停用账户", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "40.00")
		a.Active = false
		require.NoError(t, e.accounts.Update(ctx, a))

		_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{
			Identity: "clark@demo.com", Amount: decimal.NewFromInt(75), Confirmation: uuid.NewString(),
		})
		assert.ErrorIs(t, err, account.ErrAccountDeactivated)
		assert.Equal(t, "40.00", e.wallet(t, a.ID))
	})

	t.Run("事件发布失败不影响提交", func(t *testing.T) {
		e := newEnv(t)
		a := e.addAccount(t, "clark@demo.com", "40.00")
		e.publisher.err = errors.New("broker down")

		_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{
			Identity: "clark@demo.com", Amount: decimal.NewFromInt(75), Confirmation: uuid.NewString(),
		})
		require.NoError(t, err)
		assert.Equal(t, "115.00", e.wallet(t, a.ID))
	})
}

func TestStatement(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.addAccount(t, "clark@demo.com", "100.00")
	b := e.addBook(t, "11.19", 10)

	_, err := e.deposit.Execute(ctx, ledgerapp.DepositRequest{Identity: "clark@demo.com", Amount: decimal.NewFromInt(75), Confirmation: uuid.NewString()})
	require.NoError(t, err)
	_, err = e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{Identity: "clark@demo.com", BookID: b.ID, Quantity: 2, Confirmation: uuid.NewString()})
	require.NoError(t, err)

	resp, err := e.statement.Execute(ctx, ledgerapp.StatementRequest{AccountID: a.ID})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 2)

	// 最近的在前
	assert.Equal(t, ledger.TypePurchase, resp.Lines[0].Type)
	assert.Equal(t, "-22.38", resp.Lines[0].Amount.StringFixed(2))
	assert.Equal(t, ledger.TypeDeposit, resp.Lines[1].Type)
	assert.Greater(t, resp.Lines[0].ID, resp.Lines[1].ID)

	_, err = e.statement.Execute(ctx, ledgerapp.StatementRequest{AccountID: 404})
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestAudit(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.addAccount(t, "clark@demo.com", "100.00")
	b := e.addBook(t, "11.19", 10)

	core, logs := observer.New(zap.DebugLevel)
	audit := ledgerapp.NewAuditUseCase(e.reconcile, zap.New(core))

	_, err := e.purchase.Execute(ctx, ledgerapp.PurchaseRequest{Identity: "clark@demo.com", BookID: b.ID, Quantity: 1, Confirmation: uuid.NewString()})
	require.NoError(t, err)
	require.Equal(t, 1, e.publisher.count())

	t.Run("一致", func(t *testing.T) {
		r, err := audit.Execute(ctx, e.publisher.events[0])
		require.NoError(t, err)
		assert.True(t, r.Consistent)
		assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
	})

	t.Run("余额被绕过流水修改", func(t *testing.T) {
		err := memory.NewTxManager(e.store).Transaction(ctx, func(ctx context.Context) error {
			return e.accounts.UpdateWallet(ctx, a.ID, decimal.NewFromInt(500))
		})
		require.NoError(t, err)

		r, err := audit.Execute(ctx, e.publisher.events[0])
		require.NoError(t, err)
		assert.False(t, r.Consistent)
		assert.Equal(t, 1, logs.FilterMessage("账户余额与流水不一致").Len())
	})

	t.Run("账户不存在", func(t *testing.T) {
		r, err := audit.Execute(ctx, ledger.Event{AccountID: 404, Type: ledger.TypeDeposit})
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}

package account

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccount_Debit(t *testing.T) {
	t.Run("正常扣款", func(t *testing.T) {
		a := NewAccount("Clark.Kent@demo.com", "Clark", RoleCustomer, "x", decimal.RequireFromString("100.00"))
		assert.NoError(t, a.Debit(decimal.RequireFromString("11.19")))
		assert.Equal(t, "88.81", a.Wallet.StringFixed(2))
		assert.Equal(t, "100.00", a.SeedBalance.StringFixed(2), "初始余额不随扣款变化")
	})

	t.Run("余额恰好等于金额", func(t *testing.T) {
		a := NewAccount("a@demo.com", "A", RoleCustomer, "x", decimal.RequireFromString("51.33"))
		assert.NoError(t, a.Debit(decimal.RequireFromString("51.33")))
		assert.True(t, a.Wallet.IsZero())
	})

	t.Run("差一分钱", func(t *testing.T) {
		a := NewAccount("a@demo.com", "A", RoleCustomer, "x", decimal.RequireFromString("51.32"))
		assert.ErrorIs(t, a.Debit(decimal.RequireFromString("51.33")), ErrInsufficientFunds)
		assert.Equal(t, "51.32", a.Wallet.StringFixed(2), "失败时余额不变")
	})

	t.Run("非正金额", func(t *testing.T) {
		a := NewAccount("a@demo.com", "A", RoleCustomer, "x", decimal.NewFromInt(10))
		assert.ErrorIs(t, a.Debit(decimal.Zero), ErrInvalidAmount)
	})
}

func TestAccount_Credit(t *testing.T) {
	a := NewAccount("a@demo.com", "A", RoleCustomer, "x", decimal.RequireFromString("40.00"))
	assert.NoError(t, a.Credit(decimal.RequireFromString("75.00")))
	assert.Equal(t, "115.00", a.Wallet.StringFixed(2))
	assert.ErrorIs(t, a.Credit(decimal.NewFromInt(-1)), ErrInvalidAmount)
}

func TestAccount_EnsureActive(t *testing.T) {
	a := NewAccount("a@demo.com", "A", RoleCustomer, "x", decimal.NewFromInt(10))
	assert.NoError(t, a.EnsureActive())

	a.Active = false
	assert.ErrorIs(t, a.EnsureActive(), ErrAccountDeactivated)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "clark.kent@demo.com", NormalizeEmail("  Clark.Kent@Demo.com "))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

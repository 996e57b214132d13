package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Type(t *testing.T) {
	p := NewPurchase(1, 2, 3, decimal.RequireFromString("51.33"), "token-1")
	assert.Equal(t, TypePurchase, p.Type())
	assert.Equal(t, "-51.33", p.Amount.StringFixed(2))
	require.NotNil(t, p.BookID)
	assert.Equal(t, uint(2), *p.BookID)
	assert.Equal(t, 3, *p.Quantity)

	d := NewDeposit(1, decimal.RequireFromString("75.00"), "token-2")
	assert.Equal(t, TypeDeposit, d.Type())
	assert.Nil(t, d.BookID, "充值流水不关联图书")
	assert.Nil(t, d.Quantity)
}

func TestEntry_Matches(t *testing.T) {
	p := NewPurchase(1, 2, 3, decimal.RequireFromString("33.57"), "token-1")
	assert.True(t, p.MatchesPurchase(2, 3))
	assert.False(t, p.MatchesPurchase(5, 3), "不同图书")
	assert.False(t, p.MatchesPurchase(2, 1), "不同数量")
	assert.False(t, p.MatchesDeposit(decimal.RequireFromString("33.57")), "购买流水不能当作充值")

	d := NewDeposit(1, decimal.RequireFromString("75.00"), "token-2")
	assert.True(t, d.MatchesDeposit(decimal.NewFromInt(75)))
	assert.False(t, d.MatchesDeposit(decimal.NewFromInt(80)), "不同金额")
	assert.False(t, d.MatchesPurchase(2, 3))
}

func TestSortStatement(t *testing.T) {
	base := time.Date(2024, 5, 18, 10, 0, 0, 0, time.UTC)
	entries := []*Entry{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(time.Hour)},
		{ID: 3, CreatedAt: base},
		{ID: 4, CreatedAt: base.Add(-time.Hour)},
	}

	SortStatement(entries)

	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []uint{2, 3, 1, 4}, ids, "时间倒序,同一时间ID大的在前")
}

func TestReconcile(t *testing.T) {
	seed := decimal.RequireFromString("100.00")

	ok := Reconcile(1, seed, decimal.RequireFromString("-11.19"), decimal.RequireFromString("88.81"))
	assert.True(t, ok.Consistent)

	bad := Reconcile(1, seed, decimal.RequireFromString("-11.19"), decimal.RequireFromString("90.00"))
	assert.False(t, bad.Consistent)
}

func TestEvent_RoutingKey(t *testing.T) {
	p := NewEvent(NewPurchase(1, 2, 1, decimal.NewFromInt(5), "c1"))
	assert.Equal(t, RoutingKeyPurchase, p.RoutingKey())

	d := NewEvent(NewDeposit(1, decimal.NewFromInt(50), "c2"))
	assert.Equal(t, RoutingKeyDeposit, d.RoutingKey())
}

package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRating(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   string
	}{
		{"两条评论", []int{3, 4}, "3.50"},
		{"截断而不是四舍五入", []int{6, 7, 7}, "6.66"},
		{"20/3", []int{10, 10, 0}, "6.66"},
		{"单条评论", []int{10}, "10.00"},
		{"全部为0", []int{0, 0}, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRating(tt.scores)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}

	t.Run("没有评论返回nil", func(t *testing.T) {
		assert.Nil(t, ComputeRating(nil))
		assert.Nil(t, ComputeRating([]int{}))
	})
}

func TestNewReview(t *testing.T) {
	t.Run("实名评论", func(t *testing.T) {
		r, err := NewReview(1, 7, 8, " 好书 ", false)
		require.NoError(t, err)
		require.NotNil(t, r.AccountID)
		assert.Equal(t, uint(7), *r.AccountID)
		assert.Equal(t, uint(7), r.ReviewerKey)
		assert.Equal(t, "好书", r.Description)
		assert.False(t, r.IsAnonymous())
	})

	t.Run("匿名评论仍保留指纹", func(t *testing.T) {
		r, err := NewReview(1, 7, 5, "", true)
		require.NoError(t, err)
		assert.Nil(t, r.AccountID)
		assert.Equal(t, uint(7), r.ReviewerKey)
		assert.True(t, r.IsAnonymous())
	})

	t.Run("评分越界", func(t *testing.T) {
		_, err := NewReview(1, 7, 11, "", false)
		assert.ErrorIs(t, err, ErrInvalidScore)

		_, err = NewReview(1, 7, -1, "", false)
		assert.ErrorIs(t, err, ErrInvalidScore)
	})

	t.Run("描述过长", func(t *testing.T) {
		_, err := NewReview(1, 7, 5, strings.Repeat("书", 501), false)
		assert.ErrorIs(t, err, ErrInvalidDescription)
	})
}

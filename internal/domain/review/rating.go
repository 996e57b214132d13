package review

import (
	"github.com/shopspring/decimal"
)

// ComputeRating 计算平均评分
// 没有评论时返回nil;否则为算术平均值截断(不是四舍五入)到两位小数,例如6.667 → 6.66
func ComputeRating(scores []int) *decimal.Decimal {
	if len(scores) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(decimal.NewFromInt(int64(s)))
	}
	// Div默认保留16位小数,再截断到2位
	rating := sum.Div(decimal.NewFromInt(int64(len(scores)))).Truncate(2)
	return &rating
}

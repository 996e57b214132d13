package book

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 价格使用decimal定点数(避免price*quantity出现浮点误差)
// 2. ISBN在本系统中是GUID格式的业务唯一标识(数据库层保证唯一性)
// 3. 库存只能通过Repository.Reserve扣减(购买),或由管理员整体修改(补货)
type Book struct {
	ID          uint
	Title       string
	Author      string
	ISBN        string
	Description string
	Genre       Genre
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// 调用方需先通过Validate校验字段
func NewBook(title, author, isbn, description string, genre Genre, price decimal.Decimal, stock int) *Book {
	now := time.Now()
	return &Book{
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		ISBN:        NormalizeISBN(isbn),
		Description: description,
		Genre:       genre,
		Price:       price,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// InStock 是否有货
func (b *Book) InStock() bool {
	return b.Stock > 0
}

// TotalCost 计算购买总价(定点数乘法,无舍入)
func (b *Book) TotalCost(quantity int) decimal.Decimal {
	return b.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// CanReserve 当前库存是否足够
func (b *Book) CanReserve(quantity int) bool {
	return quantity > 0 && b.Stock >= quantity
}

// Validate 校验图书字段
// 业务规则:
// - 标题、作者必填
// - ISBN为合法GUID
// - 价格0.01-1000,最多两位小数
// - 库存0-1000
func (b *Book) Validate() error {
	if b.Title == "" || len([]rune(b.Title)) > 200 {
		return ErrInvalidTitle
	}
	if b.Author == "" || len([]rune(b.Author)) > 100 {
		return ErrInvalidAuthor
	}
	if !IsValidISBN(b.ISBN) {
		return ErrInvalidISBN
	}
	if !b.Genre.IsValid() {
		return ErrInvalidGenre
	}
	if b.Price.LessThan(minPrice) || b.Price.GreaterThan(maxPrice) || !b.Price.Equal(b.Price.Round(2)) {
		return ErrInvalidPrice
	}
	if b.Stock < 0 || b.Stock > maxStock {
		return ErrInvalidStock
	}
	return nil
}

var (
	minPrice = decimal.RequireFromString("0.01")
	maxPrice = decimal.NewFromInt(1000)
)

const maxStock = 1000

// IsValidISBN ISBN必须是非空GUID
func IsValidISBN(isbn string) bool {
	id, err := uuid.Parse(isbn)
	return err == nil && id != uuid.Nil
}

// NormalizeISBN 统一为大写的标准GUID格式
func NormalizeISBN(isbn string) string {
	id, err := uuid.Parse(strings.TrimSpace(isbn))
	if err != nil {
		return strings.TrimSpace(isbn)
	}
	return strings.ToUpper(id.String())
}

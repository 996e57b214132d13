package dto

import (
	"github.com/shopspring/decimal"

	appbook "github.com/xiebiao/bigbooks/internal/application/book"
	"github.com/xiebiao/bigbooks/internal/domain/book"
)

// AddBookRequest HTTP上架请求
// validator tag说明:
// - guid: ISBN必须是GUID(pkg/validator注册)
// - genre: 已知的分类名(pkg/validator注册)
// 价格范围0.01-1000由领域层校验
type AddBookRequest struct {
	Title       string          `json:"title" binding:"required,max=200" example:"Dune"`
	Author      string          `json:"author" binding:"required,max=100" example:"Frank Herbert"`
	ISBN        string          `json:"isbn" binding:"required,guid" example:"0b1d6c7e-8a9f-4e2d-b3c4-5d6e7f8a9b0c"`
	Description string          `json:"description" binding:"max=2000" example:"沙丘"`
	Genre       string          `json:"genre" binding:"required,genre" example:"Fantasy"`
	Price       decimal.Decimal `json:"price" swaggertype:"number" example:"11.19"`
	Stock       int             `json:"stock" binding:"min=0,max=1000" example:"10"`
}

// UpdateBookRequest 修改图书请求,省略的字段不修改
type UpdateBookRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=200"`
	Author      *string          `json:"author" binding:"omitempty,max=100"`
	ISBN        *string          `json:"isbn" binding:"omitempty,guid"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Genre       *string          `json:"genre" binding:"omitempty,genre"`
	Price       *decimal.Decimal `json:"price" swaggertype:"number"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0,max=1000"`
}

// GenreQuery 按分类查询
type GenreQuery struct {
	Name string `form:"name" binding:"required"`
}

// AuthorQuery 按作者查询,name为空返回全部
type AuthorQuery struct {
	Name string `form:"name" binding:"max=100"`
}

// BookResponse 图书详情
type BookResponse struct {
	ID          uint    `json:"id" example:"1"`
	Title       string  `json:"title" example:"Dune"`
	Author      string  `json:"author" example:"Frank Herbert"`
	ISBN        string  `json:"isbn" example:"0B1D6C7E-8A9F-4E2D-B3C4-5D6E7F8A9B0C"`
	Description string  `json:"description"`
	Genre       string  `json:"genre" example:"Fantasy"`
	Price       string  `json:"price" example:"11.19"`
	Stock       int     `json:"stock" example:"10"`
	InStock     bool    `json:"in_stock" example:"true"`
	Rating      *string `json:"rating" example:"3.50"` // 没有评论时为null
	CreatedAt   string  `json:"created_at" example:"2024-01-15 10:30:00"`
}

// BookListItem 图书列表项
// 列表查询不返回Description字段(减少数据传输量)
type BookListItem struct {
	ID      uint    `json:"id" example:"1"`
	Title   string  `json:"title" example:"Dune"`
	Author  string  `json:"author" example:"Frank Herbert"`
	Genre   string  `json:"genre" example:"Fantasy"`
	Price   string  `json:"price" example:"11.19"`
	InStock bool    `json:"in_stock" example:"true"`
	Rating  *string `json:"rating" example:"3.50"`
}

// AuthorItem 作者及图书数量
type AuthorItem struct {
	Author string `json:"author" example:"Frank Herbert"`
	Books  int    `json:"books" example:"3"`
}

// NewBookResponse 应用层DTO → HTTP DTO
func NewBookResponse(d *appbook.BookDetails) *BookResponse {
	return &BookResponse{
		ID:          d.ID,
		Title:       d.Title,
		Author:      d.Author,
		ISBN:        d.ISBN,
		Description: d.Description,
		Genre:       d.Genre,
		Price:       d.Price.StringFixed(2),
		Stock:       d.Stock,
		InStock:     d.InStock,
		Rating:      FormatRating(d.Rating),
		CreatedAt:   d.CreatedAt,
	}
}

// NewBookList 列表
func NewBookList(list []appbook.BookOverview) []BookListItem {
	items := make([]BookListItem, 0, len(list))
	for _, b := range list {
		items = append(items, BookListItem{
			ID:      b.ID,
			Title:   b.Title,
			Author:  b.Author,
			Genre:   b.Genre,
			Price:   b.Price.StringFixed(2),
			InStock: b.InStock,
			Rating:  FormatRating(b.Rating),
		})
	}
	return items
}

// NewAuthorList 作者列表
func NewAuthorList(list []book.AuthorCount) []AuthorItem {
	items := make([]AuthorItem, 0, len(list))
	for _, a := range list {
		items = append(items, AuthorItem{Author: a.Author, Books: a.Count})
	}
	return items
}

// FormatRating 评分保留两位小数,nil表示没有评论
func FormatRating(r *decimal.Decimal) *string {
	if r == nil {
		return nil
	}
	s := r.StringFixed(2)
	return &s
}

package book

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bigbooks/internal/domain/book"
)

// RatingProvider 评分查询(review.RatingAggregator实现)
type RatingProvider interface {
	Rating(ctx context.Context, bookID uint) (*decimal.Decimal, error)
	Ratings(ctx context.Context, bookIDs []uint) (map[uint]*decimal.Decimal, error)
}

// BookDetails 图书详情DTO
type BookDetails struct {
	ID          uint
	Title       string
	Author      string
	ISBN        string
	Description string
	Genre       string
	Price       decimal.Decimal
	Stock       int
	InStock     bool
	Rating      *decimal.Decimal // 没有评论时为nil
	CreatedAt   string
}

// BookOverview 列表项DTO(不含描述和库存数量)
type BookOverview struct {
	ID      uint
	Title   string
	Author  string
	Genre   string
	Price   decimal.Decimal
	InStock bool
	Rating  *decimal.Decimal
}

func toDetails(b *book.Book, rating *decimal.Decimal) *BookDetails {
	return &BookDetails{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Description: b.Description,
		Genre:       b.Genre.String(),
		Price:       b.Price,
		Stock:       b.Stock,
		InStock:     b.InStock(),
		Rating:      rating,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// toOverviews 按评分降序排列,没有评分的排在最后,评分相同按ID升序
func toOverviews(books []*book.Book, ratings map[uint]*decimal.Decimal) []BookOverview {
	list := make([]BookOverview, 0, len(books))
	for _, b := range books {
		list = append(list, BookOverview{
			ID:      b.ID,
			Title:   b.Title,
			Author:  b.Author,
			Genre:   b.Genre.String(),
			Price:   b.Price,
			InStock: b.InStock(),
			Rating:  ratings[b.ID],
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := list[i].Rating, list[j].Rating
		switch {
		case ri == nil && rj == nil:
			return list[i].ID < list[j].ID
		case ri == nil:
			return false
		case rj == nil:
			return true
		case !ri.Equal(*rj):
			return ri.GreaterThan(*rj)
		default:
			return list[i].ID < list[j].ID
		}
	})
	return list
}

package book

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/application"
	"github.com/xiebiao/bigbooks/internal/domain/book"
)

// AddBookUseCase 图书上架用例(管理员)
// 字段校验和ISBN去重由领域服务负责,应用层只做编排
type AddBookUseCase struct {
	bookService book.Service
	log         *zap.Logger
}

// NewAddBookUseCase 创建上架用例
func NewAddBookUseCase(bookService book.Service, log *zap.Logger) *AddBookUseCase {
	return &AddBookUseCase{bookService: bookService, log: log}
}

// AddBookRequest 上架请求DTO
type AddBookRequest struct {
	Title       string
	Author      string
	ISBN        string // GUID
	Description string
	Genre       string // 分类名,忽略大小写
	Price       decimal.Decimal
	Stock       int
}

// Execute 执行上架
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*BookDetails, error) {
	genre, err := book.ParseGenre(req.Genre)
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.AddBook(ctx, book.AddParams{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Genre:       genre,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("图书已上架", zap.Uint("book_id", b.ID), zap.String("isbn", b.ISBN))
	return toDetails(b, nil), nil
}

// UpdateBookUseCase 修改图书(管理员)
// 修改库存是整体补货,与购买扣减共用图书行锁
type UpdateBookUseCase struct {
	tx          application.Transactor
	books       book.Repository
	bookService book.Service
	ratings     RatingProvider
	log         *zap.Logger
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(
	tx application.Transactor,
	books book.Repository,
	bookService book.Service,
	ratings RatingProvider,
	log *zap.Logger,
) *UpdateBookUseCase {
	return &UpdateBookUseCase{tx: tx, books: books, bookService: bookService, ratings: ratings, log: log}
}

// UpdateBookRequest 修改请求,nil字段不修改
type UpdateBookRequest struct {
	BookID      uint
	Title       *string
	Author      *string
	ISBN        *string
	Description *string
	Genre       *string
	Price       *decimal.Decimal
	Stock       *int
}

// Execute 执行修改
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDetails, error) {
	p := book.UpdateParams{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if req.Genre != nil {
		g, err := book.ParseGenre(*req.Genre)
		if err != nil {
			return nil, err
		}
		p.Genre = &g
	}

	var updated *book.Book
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := uc.books.LockByID(ctx, req.BookID)
		if err != nil {
			return err
		}
		if p.ISBN != nil {
			if err := uc.bookService.EnsureISBNAvailable(ctx, *p.ISBN, b.ID); err != nil {
				return err
			}
		}
		if err := b.Apply(p); err != nil {
			return err
		}
		if err := uc.books.Update(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("图书已修改", zap.Uint("book_id", updated.ID), zap.Int("stock", updated.Stock))

	rating, err := uc.ratings.Rating(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	return toDetails(updated, rating), nil
}

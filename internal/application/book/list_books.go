package book

import (
	"context"

	"github.com/xiebiao/bigbooks/internal/domain/book"
)

// GetBookUseCase 图书详情(含评分和是否有货)
type GetBookUseCase struct {
	bookService book.Service
	ratings     RatingProvider
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service, ratings RatingProvider) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, ratings: ratings}
}

// GetBookRequest 详情请求
type GetBookRequest struct {
	BookID uint
}

// Execute 查询详情
func (uc *GetBookUseCase) Execute(ctx context.Context, req GetBookRequest) (*BookDetails, error) {
	b, err := uc.bookService.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	rating, err := uc.ratings.Rating(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return toDetails(b, rating), nil
}

// ListBooksUseCase 图书列表(按分类或作者)
// 设计说明:
// 1. 列表不返回描述字段(减少数据传输量)
// 2. 评分批量计算,避免N+1查询
// 3. 按评分降序排列,没有评分的排在最后
type ListBooksUseCase struct {
	bookService book.Service
	ratings     RatingProvider
}

// NewListBooksUseCase 创建列表用例
func NewListBooksUseCase(bookService book.Service, ratings RatingProvider) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService, ratings: ratings}
}

// ListBooksRequest 二选一:Genre非空按分类查询,否则按作者(为空返回全部)
type ListBooksRequest struct {
	Genre  string
	Author string
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) ([]BookOverview, error) {
	var (
		books []*book.Book
		err   error
	)
	if req.Genre != "" {
		books, err = uc.bookService.ListByGenre(ctx, req.Genre)
	} else {
		books, err = uc.bookService.ListByAuthor(ctx, req.Author)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	ratings, err := uc.ratings.Ratings(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toOverviews(books, ratings), nil
}

// ListAuthorsUseCase 作者列表
type ListAuthorsUseCase struct {
	bookService book.Service
}

// NewListAuthorsUseCase 创建作者列表用例
func NewListAuthorsUseCase(bookService book.Service) *ListAuthorsUseCase {
	return &ListAuthorsUseCase{bookService: bookService}
}

// Execute 按图书数量降序、作者名升序
func (uc *ListAuthorsUseCase) Execute(ctx context.Context) ([]book.AuthorCount, error) {
	return uc.bookService.ListAuthors(ctx)
}

package book_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookapp "github.com/xiebiao/bigbooks/internal/application/book"
	reviewapp "github.com/xiebiao/bigbooks/internal/application/review"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/review"
	"github.com/xiebiao/bigbooks/internal/infrastructure/persistence/memory"
)

type env struct {
	books   book.Repository
	reviews review.Repository
	add     *bookapp.AddBookUseCase
	update  *bookapp.UpdateBookUseCase
	get     *bookapp.GetBookUseCase
	list    *bookapp.ListBooksUseCase
	authors *bookapp.ListAuthorsUseCase
}

func newEnv() *env {
	s := memory.NewStore()
	books := memory.NewBookRepository(s)
	reviews := memory.NewReviewRepository(s)
	service := book.NewService(books)
	ratings := reviewapp.NewRatingAggregator(reviews, reviewapp.NopRatingCache{}, zap.NewNop())
	return &env{
		books:   books,
		reviews: reviews,
		add:     bookapp.NewAddBookUseCase(service, zap.NewNop()),
		update:  bookapp.NewUpdateBookUseCase(memory.NewTxManager(s), books, service, ratings, zap.NewNop()),
		get:     bookapp.NewGetBookUseCase(service, ratings),
		list:    bookapp.NewListBooksUseCase(service, ratings),
		authors: bookapp.NewListAuthorsUseCase(service),
	}
}

func (e *env) addBook(t *testing.T, title, author, genre string, stock int) *bookapp.BookDetails {
	t.Helper()
	d, err := e.add.Execute(context.Background(), bookapp.AddBookRequest{
		Title: title, Author: author, ISBN: uuid.NewString(), Genre: genre,
		Price: decimal.RequireFromString("11.19"), Stock: stock,
	})
	require.NoError(t, err)
	return d
}

func (e *env) review(t *testing.T, bookID, reviewer uint, score int) {
	t.Helper()
	r, err := review.NewReview(bookID, reviewer, score, "", false)
	require.NoError(t, err)
	require.NoError(t, e.reviews.Create(context.Background(), r))
}

func TestAddBook(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	isbn := uuid.NewString()

	d, err := e.add.Execute(ctx, bookapp.AddBookRequest{
		Title: "Dune", Author: "Frank Herbert", ISBN: isbn, Genre: "fantasy",
		Price: decimal.RequireFromString("17.11"), Stock: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", d.Genre)
	assert.False(t, d.InStock)
	assert.Nil(t, d.Rating)

	t.Run("ISBN重复(大小写不同)", func(t *testing.T) {
		_, err := e.add.Execute(ctx, bookapp.AddBookRequest{
			Title: "Dune 2", Author: "Frank Herbert", ISBN: isbn, Genre: "Fantasy",
			Price: decimal.NewFromInt(1), Stock: 1,
		})
		assert.ErrorIs(t, err, book.ErrISBNDuplicate)
	})

	t.Run("未知分类", func(t *testing.T) {
		_, err := e.add.Execute(ctx, bookapp.AddBookRequest{
			Title: "X", Author: "Y", ISBN: uuid.NewString(), Genre: "Poetry",
			Price: decimal.NewFromInt(1), Stock: 1,
		})
		assert.ErrorIs(t, err, book.ErrInvalidGenre)
	})

	t.Run("价格超出范围", func(t *testing.T) {
		_, err := e.add.Execute(ctx, bookapp.AddBookRequest{
			Title: "X", Author: "Y", ISBN: uuid.NewString(), Genre: "Fiction",
			Price: decimal.RequireFromString("1000.01"), Stock: 1,
		})
		assert.ErrorIs(t, err, book.ErrInvalidPrice)
	})
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	dune := e.addBook(t, "Dune", "Frank Herbert", "Fantasy", 0)
	other := e.addBook(t, "Emma", "Jane Austen", "Romance", 1)

	t.Run("补货", func(t *testing.T) {
		stock := 50
		d, err := e.update.Execute(ctx, bookapp.UpdateBookRequest{BookID: dune.ID, Stock: &stock})
		require.NoError(t, err)
		assert.Equal(t, 50, d.Stock)
		assert.True(t, d.InStock)
		assert.Equal(t, "Dune", d.Title, "未修改字段保持不变")
	})

	t.Run("ISBN被其他图书占用", func(t *testing.T) {
		isbn := other.ISBN
		_, err := e.update.Execute(ctx, bookapp.UpdateBookRequest{BookID: dune.ID, ISBN: &isbn})
		assert.ErrorIs(t, err, book.ErrISBNDuplicate)
	})

	t.Run("保留自己的ISBN", func(t *testing.T) {
		isbn := dune.ISBN
		_, err := e.update.Execute(ctx, bookapp.UpdateBookRequest{BookID: dune.ID, ISBN: &isbn})
		assert.NoError(t, err)
	})

	t.Run("校验失败不修改", func(t *testing.T) {
		stock := 1001
		_, err := e.update.Execute(ctx, bookapp.UpdateBookRequest{BookID: dune.ID, Stock: &stock})
		assert.ErrorIs(t, err, book.ErrInvalidStock)

		b, _ := e.books.FindByID(ctx, dune.ID)
		assert.Equal(t, 50, b.Stock)
	})

	t.Run("图书不存在", func(t *testing.T) {
		title := "x"
		_, err := e.update.Execute(ctx, bookapp.UpdateBookRequest{BookID: 404, Title: &title})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestGetBook(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	d := e.addBook(t, "Dune", "Frank Herbert", "Fantasy", 3)
	e.review(t, d.ID, 1, 3)
	e.review(t, d.ID, 2, 4)

	got, err := e.get.Execute(ctx, bookapp.GetBookRequest{BookID: d.ID})
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, "3.50", got.Rating.StringFixed(2))
	assert.True(t, got.InStock)

	_, err = e.get.Execute(ctx, bookapp.GetBookRequest{BookID: 404})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	unrated := e.addBook(t, "A", "Frank Herbert", "Fantasy", 1)
	low := e.addBook(t, "B", "Frank Herbert", "Fantasy", 1)
	high := e.addBook(t, "C", "Brian Herbert", "Fantasy", 1)
	tie := e.addBook(t, "D", "Agatha Christie", "Fantasy", 1)
	e.addBook(t, "E", "Agatha Christie", "Mystery", 1)

	e.review(t, low.ID, 1, 2)
	e.review(t, high.ID, 1, 9)
	e.review(t, tie.ID, 1, 2)

	t.Run("按分类,评分降序", func(t *testing.T) {
		list, err := e.list.Execute(ctx, bookapp.ListBooksRequest{Genre: "FANTASY"})
		require.NoError(t, err)
		ids := make([]uint, 0, len(list))
		for _, b := range list {
			ids = append(ids, b.ID)
		}
		assert.Equal(t, []uint{high.ID, low.ID, tie.ID, unrated.ID}, ids, "评分相同按ID,无评分排最后")
	})

	t.Run("按作者模糊匹配", func(t *testing.T) {
		list, err := e.list.Execute(ctx, bookapp.ListBooksRequest{Author: "herbert"})
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("作者为空返回全部", func(t *testing.T) {
		list, err := e.list.Execute(ctx, bookapp.ListBooksRequest{})
		require.NoError(t, err)
		assert.Len(t, list, 5)
	})

	t.Run("未知分类", func(t *testing.T) {
		_, err := e.list.Execute(ctx, bookapp.ListBooksRequest{Genre: "Poetry"})
		assert.ErrorIs(t, err, book.ErrInvalidGenre)
	})

	t.Run("作者统计", func(t *testing.T) {
		authors, err := e.authors.Execute(ctx)
		require.NoError(t, err)
		require.Len(t, authors, 3)
		assert.Equal(t, book.AuthorCount{Author: "Agatha Christie", Count: 2}, authors[0])
		assert.Equal(t, book.AuthorCount{Author: "Frank Herbert", Count: 2}, authors[1])
		assert.Equal(t, book.AuthorCount{Author: "Brian Herbert", Count: 1}, authors[2])
	})
}

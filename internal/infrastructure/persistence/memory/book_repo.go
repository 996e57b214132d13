package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/bigbooks/internal/domain/book"
)

type bookRepository struct {
	s *Store
}

// NewBookRepository 创建图书仓储
func NewBookRepository(s *Store) book.Repository {
	return &bookRepository{s: s}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	return r.s.write(ctx, func() error {
		isbn := book.NormalizeISBN(b.ISBN)
		if _, ok := r.s.isbns[isbn]; ok {
			return book.ErrISBNDuplicate
		}
		r.s.nextBookID++
		b.ID = r.s.nextBookID
		b.ISBN = isbn
		now := time.Now()
		b.CreatedAt, b.UpdatedAt = now, now

		cp := *b
		r.s.books[b.ID] = &cp
		r.s.isbns[isbn] = b.ID
		return nil
	})
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var found *book.Book
	r.s.read(ctx, func() {
		if b, ok := r.s.books[id]; ok {
			cp := *b
			found = &cp
		}
	})
	if found == nil {
		return nil, book.ErrBookNotFound
	}
	return found, nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var found *book.Book
	r.s.read(ctx, func() {
		if id, ok := r.s.isbns[book.NormalizeISBN(isbn)]; ok {
			cp := *r.s.books[id]
			found = &cp
		}
	})
	if found == nil {
		return nil, book.ErrBookNotFound
	}
	return found, nil
}

func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	return r.s.write(ctx, func() error {
		cur, ok := r.s.books[b.ID]
		if !ok {
			return book.ErrBookNotFound
		}
		isbn := book.NormalizeISBN(b.ISBN)
		if owner, ok := r.s.isbns[isbn]; ok && owner != b.ID {
			return book.ErrISBNDuplicate
		}
		delete(r.s.isbns, cur.ISBN)
		r.s.isbns[isbn] = b.ID

		cp := *b
		cp.ISBN = isbn
		cp.CreatedAt = cur.CreatedAt
		cp.UpdatedAt = time.Now()
		r.s.books[b.ID] = &cp
		return nil
	})
}

// Reserve 检查并扣减库存,检查与扣减在同一把锁内完成
func (r *bookRepository) Reserve(ctx context.Context, id uint, quantity int) error {
	if quantity <= 0 {
		return book.ErrInvalidQuantity
	}
	return r.s.write(ctx, func() error {
		cur, ok := r.s.books[id]
		if !ok {
			return book.ErrBookNotFound
		}
		if cur.Stock < quantity {
			return book.ErrInsufficientStock
		}
		cur.Stock -= quantity
		cur.UpdatedAt = time.Now()
		return nil
	})
}

func (r *bookRepository) ListByGenre(ctx context.Context, genre book.Genre) ([]*book.Book, error) {
	return r.filter(ctx, func(b *book.Book) bool { return b.Genre == genre }), nil
}

func (r *bookRepository) ListByAuthor(ctx context.Context, author string) ([]*book.Book, error) {
	needle := strings.ToLower(strings.TrimSpace(author))
	return r.filter(ctx, func(b *book.Book) bool {
		return needle == "" || strings.Contains(strings.ToLower(b.Author), needle)
	}), nil
}

func (r *bookRepository) Authors(ctx context.Context) ([]book.AuthorCount, error) {
	counts := make(map[string]int)
	r.s.read(ctx, func() {
		for _, b := range r.s.books {
			counts[b.Author]++
		}
	})

	authors := make([]book.AuthorCount, 0, len(counts))
	for name, n := range counts {
		authors = append(authors, book.AuthorCount{Author: name, Count: n})
	}
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].Count != authors[j].Count {
			return authors[i].Count > authors[j].Count
		}
		return authors[i].Author < authors[j].Author
	})
	return authors, nil
}

func (r *bookRepository) filter(ctx context.Context, keep func(*book.Book) bool) []*book.Book {
	var list []*book.Book
	r.s.read(ctx, func() {
		for _, b := range r.s.books {
			if keep(b) {
				cp := *b
				list = append(list, &cp)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AddParams 上架参数
type AddParams struct {
	Title       string
	Author      string
	ISBN        string
	Description string
	Genre       Genre
	Price       decimal.Decimal
	Stock       int
}

// UpdateParams 修改参数(nil表示不修改)
type UpdateParams struct {
	Title       *string
	Author      *string
	ISBN        *string
	Description *string
	Genre       *Genre
	Price       *decimal.Decimal
	Stock       *int
}

// Apply 把修改应用到实体上并重新校验
// 校验失败时实体保持原样
func (b *Book) Apply(p UpdateParams) error {
	next := *b
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		next.Author = strings.TrimSpace(*p.Author)
	}
	if p.ISBN != nil {
		next.ISBN = NormalizeISBN(*p.ISBN)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Genre != nil {
		next.Genre = *p.Genre
	}
	if p.Price != nil {
		next.Price = *p.Price
	}
	if p.Stock != nil {
		next.Stock = *p.Stock
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	*b = next
	return nil
}

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装目录维护的业务规则校验
// 2. 库存扣减不在这里:购买流程直接使用Repository.Reserve
type Service interface {
	// AddBook 上架图书
	// 业务规则:字段合法、ISBN不能重复
	AddBook(ctx context.Context, p AddParams) (*Book, error)

	GetBook(ctx context.Context, id uint) (*Book, error)

	// EnsureISBNAvailable ISBN未被exceptID以外的图书占用
	EnsureISBNAvailable(ctx context.Context, isbn string, exceptID uint) error

	ListByGenre(ctx context.Context, genreName string) ([]*Book, error)
	ListByAuthor(ctx context.Context, author string) ([]*Book, error)
	ListAuthors(ctx context.Context) ([]AuthorCount, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddBook 上架图书
func (s *service) AddBook(ctx context.Context, p AddParams) (*Book, error) {
	b := NewBook(p.Title, p.Author, p.ISBN, p.Description, p.Genre, p.Price, p.Stock)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := s.EnsureISBNAvailable(ctx, b.ISBN, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) EnsureISBNAvailable(ctx context.Context, isbn string, exceptID uint) error {
	existing, err := s.repo.FindByISBN(ctx, NormalizeISBN(isbn))
	if err == nil && existing.ID != exceptID {
		return ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return err
	}
	return nil
}

func (s *service) ListByGenre(ctx context.Context, genreName string) ([]*Book, error) {
	g, err := ParseGenre(genreName)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByGenre(ctx, g)
}

func (s *service) ListByAuthor(ctx context.Context, author string) ([]*Book, error) {
	return s.repo.ListByAuthor(ctx, strings.TrimSpace(author))
}

func (s *service) ListAuthors(ctx context.Context) ([]AuthorCount, error) {
	return s.repo.Authors(ctx)
}

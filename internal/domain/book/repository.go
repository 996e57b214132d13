package book

import (
	"context"
)

// AuthorCount 作者及其图书数量
type AuthorCount struct {
	Author string
	Count  int
}

// Repository 图书仓储接口(CatalogStore)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. Reserve是唯一的库存扣减入口,实现必须保证同一本书上的扣减互斥(不超卖)
type Repository interface {
	// Create 创建图书,ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, b *Book) error

	// FindByID 不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 不存在返回ErrBookNotFound
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// LockByID 悲观锁读取图书(SELECT ... FOR UPDATE),必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// Update 整体更新图书信息(包括管理员补货后的库存)
	Update(ctx context.Context, b *Book) error

	// Reserve 原子地检查并扣减库存
	// 图书不存在返回ErrBookNotFound;库存不足返回ErrInsufficientStock且不修改库存
	Reserve(ctx context.Context, id uint, quantity int) error

	// ListByGenre 指定分类的全部图书,按ID升序
	ListByGenre(ctx context.Context, genre Genre) ([]*Book, error)

	// ListByAuthor 作者名包含author(忽略大小写)的图书,author为空返回全部,按ID升序
	ListByAuthor(ctx context.Context, author string) ([]*Book, error)

	// Authors 作者及图书数量,按数量降序、作者名升序
	Authors(ctx context.Context) ([]AuthorCount, error)
}

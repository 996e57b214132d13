package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bigbooks/internal/domain/book"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		return nil, r.translate(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Where("isbn = ?", book.NormalizeISBN(isbn)).First(&model).Error
	if err != nil {
		return nil, r.translate(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// LockByID 悲观锁查询图书
// 教学要点:必须使用getDB(ctx)从context获取事务DB
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		return nil, r.translate(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 更新图书信息
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	err := r.getDB(ctx).Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"isbn":        b.ISBN,
			"title":       b.Title,
			"author":      b.Author,
			"description": b.Description,
			"genre":       int(b.Genre),
			"price":       b.Price,
			"stock":       b.Stock,
		}).Error
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "更新图书失败")
	}
	return nil
}

// Reserve 检查并扣减库存(原子操作)
// UPDATE books SET stock = stock - ? WHERE id = ? AND stock >= ?
// 教学要点:
// 1. 条件UPDATE在行锁内完成"检查+扣减",并发购买不会超卖
// 2. 必须使用getDB(ctx)参与事务
func (r *bookRepository) Reserve(ctx context.Context, id uint, quantity int) error {
	if quantity <= 0 {
		return book.ErrInvalidQuantity
	}

	db := r.getDB(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock >= ?", quantity). // 防止库存为负
		Update("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "扣减库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在,或者库存不足
		// 再查一次确定原因
		var model BookModel
		if err := db.First(&model, id).Error; err != nil {
			return r.translate(err, "查询图书失败")
		}
		return book.ErrInsufficientStock
	}

	return nil
}

// ListByGenre 按分类查询
func (r *bookRepository) ListByGenre(ctx context.Context, genre book.Genre) ([]*book.Book, error) {
	var models []BookModel
	err := r.getDB(ctx).Where("genre = ?", int(genre)).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}
	return toBookEntities(models), nil
}

// ListByAuthor 按作者模糊查询(忽略大小写)
func (r *bookRepository) ListByAuthor(ctx context.Context, author string) ([]*book.Book, error) {
	query := r.getDB(ctx).Model(&BookModel{})
	if author = strings.TrimSpace(author); author != "" {
		query = query.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(author)+"%")
	}

	var models []BookModel
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}
	return toBookEntities(models), nil
}

// Authors 作者及其图书数量
func (r *bookRepository) Authors(ctx context.Context) ([]book.AuthorCount, error) {
	var rows []struct {
		Author string
		Count  int
	}
	err := r.getDB(ctx).Model(&BookModel{}).
		Select("author, COUNT(*) AS count").
		Group("author").
		Order("count DESC, author ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询作者列表失败")
	}

	authors := make([]book.AuthorCount, len(rows))
	for i, row := range rows {
		authors[i] = book.AuthorCount{Author: row.Author, Count: row.Count}
	}
	return authors, nil
}

func (r *bookRepository) translate(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return book.ErrBookNotFound
	}
	return apperrors.Wrap(err, msg)
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       int(b.Genre),
		Price:       b.Price,
		Stock:       b.Stock,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:          m.ID,
		ISBN:        m.ISBN,
		Title:       m.Title,
		Author:      m.Author,
		Description: m.Description,
		Genre:       book.Genre(m.Genre),
		Price:       m.Price,
		Stock:       m.Stock,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}

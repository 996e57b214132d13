package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/internal/domain/review"
)

// Store 单进程内存存储
// 设计说明:
// 1. 所有实体按整数ID存放在map中,账户的流水、图书的评论通过二级索引查询
// 2. 一把RWMutex保护全部数据:事务持有写锁直到提交,事务之间完全串行
// 3. 事务开始时做快照,fn返回错误(或模拟的提交失败)时整体恢复,不会留下中间状态
type Store struct {
	mu sync.RWMutex

	accounts map[uint]*account.Account
	emails   map[string]uint

	books map[uint]*book.Book
	isbns map[string]uint

	entries       map[uint]*ledger.Entry
	confirmations map[string]uint
	byAccount     map[uint][]uint

	reviews   map[uint]*review.Review
	reviewers map[reviewerKey]uint
	byBook    map[uint][]uint

	nextAccountID uint
	nextBookID    uint
	nextEntryID   uint
	nextReviewID  uint

	// commitErr 非nil时下一次提交失败(用于测试基础设施故障)
	commitErr error
}

type reviewerKey struct {
	bookID   uint
	reviewer uint
}

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{
		accounts:      make(map[uint]*account.Account),
		emails:        make(map[string]uint),
		books:         make(map[uint]*book.Book),
		isbns:         make(map[string]uint),
		entries:       make(map[uint]*ledger.Entry),
		confirmations: make(map[string]uint),
		byAccount:     make(map[uint][]uint),
		reviews:       make(map[uint]*review.Review),
		reviewers:     make(map[reviewerKey]uint),
		byBook:        make(map[uint][]uint),
	}
}

// FailNextCommit 让下一次事务提交失败,已做的修改全部回滚
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

type txKey struct{}

// inTx ctx是否处于本存储的事务中(已持有写锁)
func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

func (s *Store) read(ctx context.Context, fn func()) {
	if !s.inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

func (s *Store) write(ctx context.Context, fn func() error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

// snapshot 深拷贝当前状态
func (s *Store) snapshot() *Store {
	c := NewStore()
	for id, a := range s.accounts {
		cp := *a
		c.accounts[id] = &cp
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for id, b := range s.books {
		cp := *b
		c.books[id] = &cp
	}
	for k, v := range s.isbns {
		c.isbns[k] = v
	}
	for id, e := range s.entries {
		c.entries[id] = e // 流水只追加不修改,共享指针即可
	}
	for k, v := range s.confirmations {
		c.confirmations[k] = v
	}
	for k, v := range s.byAccount {
		c.byAccount[k] = append([]uint(nil), v...)
	}
	for id, r := range s.reviews {
		c.reviews[id] = r
	}
	for k, v := range s.reviewers {
		c.reviewers[k] = v
	}
	for k, v := range s.byBook {
		c.byBook[k] = append([]uint(nil), v...)
	}
	c.nextAccountID = s.nextAccountID
	c.nextBookID = s.nextBookID
	c.nextEntryID = s.nextEntryID
	c.nextReviewID = s.nextReviewID
	return c
}

// restore 用快照覆盖当前状态(调用方持有写锁)
func (s *Store) restore(c *Store) {
	s.accounts, s.emails = c.accounts, c.emails
	s.books, s.isbns = c.books, c.isbns
	s.entries, s.confirmations, s.byAccount = c.entries, c.confirmations, c.byAccount
	s.reviews, s.reviewers, s.byBook = c.reviews, c.reviewers, c.byBook
	s.nextAccountID = c.nextAccountID
	s.nextBookID = c.nextBookID
	s.nextEntryID = c.nextEntryID
	s.nextReviewID = c.nextReviewID
}

// TxManager 内存事务管理器
type TxManager struct {
	store *Store
}

// NewTxManager 创建事务管理器
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Transaction 执行事务
// fn返回error或提交失败时恢复快照;嵌套调用直接复用外层事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	err := fn(context.WithValue(ctx, txKey{}, s))
	if err == nil && s.commitErr != nil {
		err, s.commitErr = s.commitErr, nil
	}
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

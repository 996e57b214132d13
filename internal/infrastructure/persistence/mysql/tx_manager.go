package mysql

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// txKey context中存放事务DB的key
type txKey struct{}

// maxDeadlockRetries 死锁重试次数
// 购买先锁账户再锁图书,管理员补货只锁图书,正常不会成环;这里兜底InnoDB的间隙锁死锁
const maxDeadlockRetries = 2

// TxManager 事务管理器
// 教学要点:
// 1. 通过context传递事务DB,Repository用dbFromContext取出
// 2. 已在事务中时直接复用外层事务
// 3. 使用READ COMMITTED,行锁(FOR UPDATE)负责串行化同一账户/同一图书
// 4. fn内遇到死锁(1213)时InnoDB已回滚,重跑fn,fn必须可重入
type TxManager struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db, log: zap.L().Named("tx")}
}

// Transaction 执行事务
// fn返回error时ROLLBACK,返回nil时COMMIT
// COMMIT本身失败时返回驱动错误,调用方按基础设施故障处理
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    acc, err := accountRepo.LockByID(ctx, accountID)
//	    if err != nil {
//	        return err
//	    }
//	    if err := bookRepo.Reserve(ctx, bookID, quantity); err != nil {
//	        return err
//	    }
//	    return ledgerRepo.Append(ctx, entry)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	for attempt := 0; ; attempt++ {
		var fnErr error
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			fnErr = fn(context.WithValue(ctx, txKey{}, tx))
			return fnErr
		}, opts)
		// 只重跑已回滚的死锁;COMMIT失败时结果未知,交给调用方
		if !isDeadlockError(fnErr) || attempt >= maxDeadlockRetries || ctx.Err() != nil {
			return err
		}
		m.log.Warn("事务死锁,重试", zap.Int("attempt", attempt+1), zap.Error(fnErr))
	}
}

package mysql

import (
	"context"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL服务端错误码
const (
	errNumDuplicateEntry = 1062
	errNumDeadlock       = 1213
)

func mysqlErrorNumber(err error) uint16 {
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

// isDuplicateError 唯一索引冲突
// 开启TranslateError后为gorm.ErrDuplicatedKey,否则检查驱动错误码
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return mysqlErrorNumber(err) == errNumDuplicateEntry
}

// isDeadlockError 事务被InnoDB选为死锁牺牲者
func isDeadlockError(err error) bool {
	return err != nil && mysqlErrorNumber(err) == errNumDeadlock
}

// dbFromContext 优先使用context中的事务DB
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

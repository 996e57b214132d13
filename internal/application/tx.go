// Package application 用例层
//
// 每个用例是一个XxxUseCase结构体,通过Execute(ctx, XxxRequest)执行,
// 只依赖domain层接口,持久化驱动(MySQL或内存)在cmd/api中注入。
package application

import (
	"context"
)

// Transactor 事务边界
// mysql.TxManager与memory.TxManager都实现该接口
// fn内通过ctx调用的仓储方法参与同一事务,fn返回error时整体回滚
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

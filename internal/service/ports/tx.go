package ports

import "context"

// Transactor 在同一事务里执行 fn；仓储通过 ctx 取到事务连接
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

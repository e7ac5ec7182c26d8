package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type txKey struct{}

// conn returns the transaction bound to ctx, or the pool when there is none.
func (c *Client) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return c.db.WithContext(ctx)
}

// RunInTx runs fn inside one database transaction. The deferred guard rolls
// back whenever fn fails, commit fails, or fn panics; the panic is re-raised.
// Nested calls join the outer transaction.
func (c *Client) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := c.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback().Error; rbErr != nil {
			c.logger.Warn("transaction rollback failed", zap.Error(rbErr))
		}
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNoTransaction = errors.New("transaction already finished")

type txKey struct{}

// Tx is a gorm transaction bound to a context. Every store call made with
// that context joins it until Commit or Rollback ends it.
type Tx struct {
	id int64
	db *gorm.DB
}

// Commit ends the transaction carried by ctx. A ctx without one is a no-op.
// The returned context no longer carries the transaction.
func Commit(ctx context.Context) (context.Context, error) {
	return finish(ctx, "commit", func(db *gorm.DB) *gorm.DB { return db.Commit() })
}

// Rollback is Commit's counterpart.
func Rollback(ctx context.Context) (context.Context, error) {
	return finish(ctx, "rollback", func(db *gorm.DB) *gorm.DB { return db.Rollback() })
}

func FromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	if !ok || tx == nil {
		return nil
	}
	return tx.db
}

func finish(ctx context.Context, op string, end func(*gorm.DB) *gorm.DB) (context.Context, error) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	if !ok || tx == nil {
		return ctx, nil
	}

	detached := context.WithValue(ctx, txKey{}, (*Tx)(nil))
	if tx.db == nil {
		return detached, errNoTransaction
	}

	logger := zap.S().Named("store_tx").With("tx_id", tx.id, "op", op)
	if err := end(tx.db).Error; err != nil {
		logger.Errorw("transaction failed to end", "error", err)
		return detached, err
	}
	tx.db = nil
	logger.Debug("transaction ended")
	return detached, nil
}

// newTransactionContext begins a transaction unless ctx already carries a
// live one, in which case ctx is returned as is.
func newTransactionContext(ctx context.Context, db *gorm.DB) (context.Context, error) {
	if FromContext(ctx) != nil {
		return ctx, nil
	}

	gtx := db.Session(&gorm.Session{Context: ctx}).Begin()
	if gtx.Error != nil {
		return ctx, gtx.Error
	}

	tx := &Tx{db: gtx}
	// only postgres has txid_current; ids are reused over time
	if db.Dialector.Name() == "postgres" {
		var row struct{ ID int64 }
		if err := gtx.Raw("select txid_current() as id").Scan(&row).Error; err == nil {
			tx.id = row.ID
		}
	}

	return context.WithValue(ctx, txKey{}, tx), nil
}

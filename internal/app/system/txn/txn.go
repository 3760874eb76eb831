// internal/app/system/txn/txn.go

// Package txn runs multi-step datastore cascades atomically.
//
// Run executes fn inside a MongoDB multi-document transaction so that a
// kick/ban/leave cascade, a match creation, or a score finalization either
// commits every step or none. On deployments without replica-set support
// (standalone dev servers), transactions are unavailable; Run detects that
// and falls back to executing fn sequentially, which preserves behavior at
// the cost of atomicity and is logged loudly so it is never mistaken for
// the production mode.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn atomically when the server supports transactions.
// Any error from fn aborts the transaction and is returned unchanged, so
// sentinel errors from stores survive the round trip.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runSequential(ctx, log, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runSequential(ctx, log, fn)
	}
	return err
}

func runSequential(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log != nil {
		log.Warn("transactions not supported by server; running cascade non-atomically")
	}
	return fn(ctx)
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone server, no replica set).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// 20 IllegalOperation, 51 NoSuchTransaction variants, 263
		// OperationNotSupportedInTransaction: all raised by servers
		// without replica-set transaction support.
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") && strings.Contains(s, "replica set") {
		return true
	}
	if strings.Contains(s, "session") && strings.Contains(s, "not supported") {
		return true
	}
	return false
}

// internal/app/system/txn/txn.go

// Package txn runs multi-document mutations inside a MongoDB transaction.
//
// Run is the single entry point: the callback receives a session-bound
// context, so every read and write issued through it participates in the
// transaction. Reads that gate a write (an existence re-check, a capacity
// check) MUST go through that context — a read taken before Run is advisory
// only and can be stale by commit time.
//
// The driver retries transient commit conflicts itself (snapshot-isolated
// optimistic transactions), so callbacks must be idempotent and must not
// perform non-retryable side effects such as outbound HTTP.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on db's client. On servers without
// transaction support (standalone mongod, typically local dev) it logs a
// warning and runs fn without one rather than failing every write.
func Run(ctx context.Context, db *mongo.Database, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Warn("mongo sessions unavailable; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Warn("mongo transactions unsupported; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate the deployment cannot run transactions.
const (
	codeIllegalOperation      = 20
	codeCommandNotSupported   = 51
	codeOperationNotSupported = 263
)

// IsNotSupported reports whether err means the server cannot run
// transactions at all (as opposed to a transaction that merely failed).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if ce, ok := err.(mongo.CommandError); ok {
		cmdErr = ce
	}
	switch cmdErr.Code {
	case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupported:
		return true
	}

	msg := strings.ToLower(err.Error())
	hasTransaction := strings.Contains(msg, "transaction")
	hasSession := strings.Contains(msg, "session")
	switch {
	case hasTransaction && strings.Contains(msg, "replica set"):
		return true
	case hasSession && strings.Contains(msg, "not supported"):
		return true
	case hasTransaction && hasSession:
		return true
	case strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}

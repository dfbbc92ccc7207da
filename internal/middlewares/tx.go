package middlewares

import (
	"bytes"
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/helpmatch/internal/logger"
)

// TxMiddleware wraps an HTTP handler with a database transaction. The match
// endpoint relies on this so the status transition and the chat insert commit
// or roll back together.
func TxMiddleware(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tx, err := db.Beginx()
			if err != nil {
				logger.Log.Errorw("failed to begin transaction", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			defer func() {
				if rec := recover(); rec != nil {
					tx.Rollback()
					panic(rec)
				}
			}()

			// The response is buffered until the transaction outcome is
			// known, so a failed commit surfaces as an error instead of
			// the handler's already-written success body.
			rw := &txResponseWriter{header: make(http.Header), statusCode: http.StatusOK}

			ctx := setTxToContext(r.Context(), tx)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if rw.statusCode >= http.StatusBadRequest {
				if err := tx.Rollback(); err != nil {
					logger.Log.Errorw("failed to rollback transaction", "error", err)
				}
				rw.flush(w)
				return
			}

			if err := tx.Commit(); err != nil {
				logger.Log.Errorw("failed to commit transaction", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			rw.flush(w)
		})
	}
}

// txResponseWriter buffers the status, headers and body until the
// transaction is committed or rolled back.
type txResponseWriter struct {
	header     http.Header
	body       bytes.Buffer
	statusCode int
}

func (rw *txResponseWriter) Header() http.Header {
	return rw.header
}

func (rw *txResponseWriter) Write(b []byte) (int, error) {
	return rw.body.Write(b)
}

func (rw *txResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
}

func (rw *txResponseWriter) flush(w http.ResponseWriter) {
	for key, values := range rw.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(rw.statusCode)
	w.Write(rw.body.Bytes())
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}

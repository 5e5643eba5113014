package tx

import (
	"context"
	"fmt"
	"net/http"
)

type key string

const KeyTx key = "tx"

type DbRepo interface {
	WithTx(ctx context.Context, cb func(ctx context.Context) error) error
}

type Tx struct {
	DbRepo DbRepo
}

// TxMiddlewareHTTP places the repository into the request context so that
// handlers can open a transaction with TxExecute.
func TxMiddlewareHTTP(repo DbRepo) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), KeyTx, Tx{DbRepo: repo})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func fromContext(ctx context.Context) (Tx, error) {
	t, ok := ctx.Value(KeyTx).(Tx)
	if !ok || t.DbRepo == nil {
		return Tx{}, fmt.Errorf("failed to get tx from context")
	}
	return t, nil
}

func TxExecute(ctx context.Context, cb func(ctx context.Context) error) error {
	t, err := fromContext(ctx)
	if err != nil {
		return err
	}
	return t.DbRepo.WithTx(ctx, cb)
}

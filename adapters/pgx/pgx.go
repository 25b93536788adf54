// Package pgx implements lexauth storage on a Postgres pool.
package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/legalaipro/lexauth"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ lexauth.StorageAdapter = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

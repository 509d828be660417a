package bunstore

import (
	"context"
	"database/sql"

	auth "github.com/goliatone/go-auth-lifecycle"
	goerrors "github.com/goliatone/go-errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenSQLite opens a SQLite database through bun's sqliteshim driver
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open sqlite database").
			WithMetadata(map[string]any{"driver": sqliteshim.ShimName})
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// OpenPostgres opens a Postgres database through the pgx stdlib driver
func OpenPostgres(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open postgres database").
			WithMetadata(map[string]any{"driver": "pgx"})
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// CreateSchema creates the users and user_settings tables when missing
func CreateSchema(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*auth.User)(nil),
		(*auth.UserSetting)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "create auth schema")
		}
	}
	return nil
}

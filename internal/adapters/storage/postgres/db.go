package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre un pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// Un proceso maneja pocas mascotas a la vez; el pool chico alcanza.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema crea la tabla pet_state si no existe.
// Es compatible con la tabla que usaba el widget en Supabase (columnas extra nullables).
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pet_state (
			id                  UUID PRIMARY KEY,
			user_id             TEXT NOT NULL UNIQUE,
			name                TEXT NOT NULL,
			hunger              DOUBLE PRECISION NOT NULL,
			happiness           DOUBLE PRECISION NOT NULL,
			hunger_at_fed       DOUBLE PRECISION,
			happiness_at_petted DOUBLE PRECISION,
			last_fed            TIMESTAMPTZ NOT NULL,
			last_petted         TIMESTAMPTZ NOT NULL,
			is_alive            BOOLEAN NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		ALTER TABLE pet_state ADD COLUMN IF NOT EXISTS hunger_at_fed DOUBLE PRECISION;
		ALTER TABLE pet_state ADD COLUMN IF NOT EXISTS happiness_at_petted DOUBLE PRECISION;
	`)
	return err
}

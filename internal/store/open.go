package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"sisassist-backend/internal/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config picks the database, a remote libsql Url takes precedence over a local File.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens (but does not migrate) the configured database.
func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		return sql.Open("libsql", config.Url+"?"+values.Encode())
	}

	if config.File == "" {
		return nil, fmt.Errorf("neither a database file nor url was specified")
	}
	database, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// every connection to an in-memory database is its own database
	if config.File == ":memory:" {
		database.SetMaxOpenConns(1)
	}
	return database, nil
}

// Migrate creates any tables that do not exist yet.
func Migrate(ctx context.Context, database *sql.DB) error {
	_, err := database.ExecContext(ctx, db.Schema)
	return err
}

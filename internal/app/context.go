// Package app wires a workspace together: database, migrations and config.
package app

import (
	"context"
	"database/sql"

	"ptaplan/internal/config"
	"ptaplan/internal/db"
	"ptaplan/internal/engine"
	"ptaplan/internal/migrate"
)

// Open prepares a workspace for use: opens the database, applies pending
// migrations and loads ptaplan.yml. Callers own the returned connection.
func Open(workspace string) (*sql.DB, *config.Config, error) {
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	cfg, err := config.Load(workspace)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, cfg, nil
}

// OpenEngine is Open plus engine construction and admin seeding.
func OpenEngine(ctx context.Context, workspace string) (*sql.DB, engine.Engine, error) {
	conn, cfg, err := Open(workspace)
	if err != nil {
		return nil, engine.Engine{}, err
	}
	e := engine.New(conn, cfg)
	if err := e.SeedAdmin(ctx); err != nil {
		conn.Close()
		return nil, engine.Engine{}, err
	}
	return conn, e, nil
}

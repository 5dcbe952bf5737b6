package db

import (
	"context"
	"database/sql"
	"fmt"
)

func migrate(db *sql.DB) error {
	var tables int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE name='schema_migrations';`).
		Scan(&tables)
	if err != nil {
		return fmt.Errorf("look up schema_migrations: %v", err)
	}
	if tables == 0 {
		err := initSchemaMigration(db)
		if err != nil {
			return err
		}
	}
	err = doMigrate(db, migrations)
	if err != nil {
		return err
	}
	return nil
}

func initSchemaMigration(sql *sql.DB) error {
	_, err := sql.Exec("create table schema_migrations(" +
		"id varchar primary key, count int)")
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %v", err)
	}
	_, err = sql.Exec(`insert into schema_migrations values('current_state',0);`)
	if err != nil {
		return fmt.Errorf("init schema_migrations: %v", err)
	}
	return nil
}

// migrations are applied in order and never edited once released; append
// new statements instead.
var migrations = []string{
	`create table if not exists responses(id text primary key);`,
	`alter table responses add column created_at integer;`,
	`alter table responses add column name text;`,
	`alter table responses add column line integer;`,
	`alter table responses add column extension text;`,
	`alter table responses add column open_with text;`,
	`alter table responses add column meta_data text;`,
	`alter table responses add column test_results text;`,
	`alter table responses add column response_name text;`,
	`alter table responses add column protocol text;`,
	`alter table responses add column status_code integer;`,
	`alter table responses add column status_message text;`,
	`alter table responses add column content_type text;`,
	`alter table responses add column headers text;`,
	`alter table responses add column timings text;`,
	`alter table responses add column request_method text;`,
	`alter table responses add column request_url text;`,
	`alter table responses add column response_uri text;`,
	`create index if not exists responses_created_at on responses(created_at);`,
}

func doMigrate(db *sql.DB, migrations []string) error {
	currentState, err := currentState(db)
	if err != nil {
		return err
	}
	if len(migrations) == currentState {
		return nil
	}
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	for i := currentState; i < len(migrations); i++ {
		_, err := tx.Exec(migrations[i])
		if err != nil {
			return fmt.Errorf("migration(%d): %v", i, err)
		}
	}
	err = updateCurrentState(tx, len(migrations))
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit transaction: %v", err)
	}
	return nil
}

func updateCurrentState(tx *sql.Tx, newState int) error {
	_, err := tx.Exec(`update schema_migrations set count=? where id='current_state';`, newState)
	if err != nil {
		return fmt.Errorf("update current state: %v", err)
	}
	return nil
}

func currentState(db *sql.DB) (int, error) {
	rows, err := db.Query(`select count from schema_migrations where id='current_state';`)
	if err != nil {
		return 0, fmt.Errorf("read current state: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("read current state rows: %v", err)
		}
		return 0, fmt.Errorf("no current_state in schema_migrations: possible" +
			" database corruption")
	}
	var currentState int
	err = rows.Scan(&currentState)
	if err != nil {
		return 0, fmt.Errorf("scan current state query: %v", err)
	}
	return currentState, nil
}

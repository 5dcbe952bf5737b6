package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hbagdi/hitview/pkg/model"
	"github.com/hbagdi/hitview/pkg/response"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

// Store is the sqlite index of the response history. It holds item
// snapshots only; bodies stay in their backing files.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %v", err)
	}
	return nil
}

type StoreOpts struct {
	// Path of the database file.
	Path   string
	Logger *zap.Logger
}

func genDSN(fileName string) string {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=500", fileName)
	return dsn
}

func NewStore(opts StoreOpts) (*Store, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("no logger")
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("no database path")
	}
	db, err := sql.Open("sqlite3", genDSN(opts.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open db file: %v", err)
	}
	err = migrate(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:     db,
		logger: opts.Logger,
	}, nil
}

const columns = `id, created_at, name, line, extension, open_with, meta_data,
	test_results, response_name, protocol, status_code, status_message,
	content_type, headers, timings, request_method, request_url, response_uri`

// Save inserts or replaces the snapshot of an item.
func (s *Store) Save(ctx context.Context, snap response.Snapshot) error {
	metaData, err := marshal(snap.MetaData)
	if err != nil {
		return fmt.Errorf("marshal metadata: %v", err)
	}
	testResults, err := marshal(snap.TestResults)
	if err != nil {
		return fmt.Errorf("marshal test results: %v", err)
	}
	headers, err := marshal(snap.Header)
	if err != nil {
		return fmt.Errorf("marshal headers: %v", err)
	}
	timings, err := json.Marshal(snap.Timings)
	if err != nil {
		return fmt.Errorf("marshal timings: %v", err)
	}
	var line sql.NullInt64
	if snap.Line != nil {
		line = sql.NullInt64{Int64: int64(*snap.Line), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `insert or replace into responses(`+columns+`)
		values(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		snap.ID, snap.Created.UnixNano(), snap.Name, line, snap.Extension,
		snap.OpenWith, metaData, testResults, snap.ResponseName, snap.Protocol,
		snap.StatusCode, snap.StatusMessage, snap.ContentType, headers,
		string(timings), snap.RequestMethod, snap.RequestURL, snap.ResponseURI)
	if err != nil {
		return fmt.Errorf("save response '%v': %v", snap.ID, err)
	}
	return nil
}

// Delete removes one entry. It returns ErrNotFound when id is not indexed.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from responses where id=?;`, id)
	if err != nil {
		return fmt.Errorf("delete response '%v': %v", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete response '%v': %v", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `delete from responses;`); err != nil {
		return fmt.Errorf("clear responses: %v", err)
	}
	return nil
}

// List returns up to limit snapshots, most recent first. A limit of zero or
// less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]response.Snapshot, error) {
	query := `select ` + columns + ` from responses order by created_at desc, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` limit ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query+`;`, args...)
	if err != nil {
		return nil, fmt.Errorf("list responses: %v", err)
	}
	defer rows.Close()

	var res []response.Snapshot
	for rows.Next() {
		snap, err := scan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list responses: %v", err)
	}
	return res, nil
}

// Get returns the snapshot with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (response.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+columns+` from responses where id=?;`, id)
	if err != nil {
		return response.Snapshot{}, fmt.Errorf("get response '%v': %v", id, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return response.Snapshot{}, fmt.Errorf("get response '%v': %v", id, err)
		}
		return response.Snapshot{}, ErrNotFound
	}
	return scan(rows)
}

func scan(rows *sql.Rows) (response.Snapshot, error) {
	var (
		snap        response.Snapshot
		created     int64
		line        sql.NullInt64
		metaData    string
		testResults string
		headers     string
		timings     string
	)
	err := rows.Scan(&snap.ID, &created, &snap.Name, &line, &snap.Extension,
		&snap.OpenWith, &metaData, &testResults, &snap.ResponseName,
		&snap.Protocol, &snap.StatusCode, &snap.StatusMessage,
		&snap.ContentType, &headers, &timings, &snap.RequestMethod,
		&snap.RequestURL, &snap.ResponseURI)
	if err != nil {
		return response.Snapshot{}, fmt.Errorf("scan response row: %v", err)
	}
	snap.Created = time.Unix(0, created)
	if line.Valid {
		l := int(line.Int64)
		snap.Line = &l
	}
	if err := unmarshal(metaData, &snap.MetaData); err != nil {
		return response.Snapshot{}, fmt.Errorf("unmarshal metadata of '%v': %v", snap.ID, err)
	}
	var results []model.TestResult
	if err := unmarshal(testResults, &results); err != nil {
		return response.Snapshot{}, fmt.Errorf("unmarshal test results of '%v': %v", snap.ID, err)
	}
	snap.TestResults = results
	if err := unmarshal(headers, &snap.Header); err != nil {
		return response.Snapshot{}, fmt.Errorf("unmarshal headers of '%v': %v", snap.ID, err)
	}
	if err := unmarshal(timings, &snap.Timings); err != nil {
		return response.Snapshot{}, fmt.Errorf("unmarshal timings of '%v': %v", snap.ID, err)
	}
	return snap, nil
}

// marshal encodes empty values as an empty column.
func marshal(v interface{}) (string, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(js) == "null" || string(js) == "{}" || string(js) == "[]" {
		return "", nil
	}
	return string(js), nil
}

func unmarshal(s string, v interface{}) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

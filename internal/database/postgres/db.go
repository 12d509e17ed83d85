package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joacominatel/stnl/internal/database"
)

// Default engine sizing.
const (
	DefaultPoolSize = 4
	DefaultWorkers  = 4
)

// QResult is the outcome of one statement. Failures are reported through OK
// and Msg rather than a Go error.
type QResult struct {
	Fields       []pgconn.FieldDescription
	Rows         [][]any
	RowsAffected int64
	OK           bool
	Msg          string
	SQL          string
}

// Empty reports whether the statement returned no rows.
func (r QResult) Empty() bool {
	return len(r.Rows) == 0
}

// Err converts a failed result into a *QueryError.
func (r QResult) Err() error {
	if r.OK {
		return nil
	}
	return &QueryError{SQL: r.SQL, Msg: r.Msg}
}

// Options configure an engine.
type Options struct {
	PoolSize int
	Workers  int
	Logger   *slog.Logger
}

// DB is the execution engine: a connection pool, an executor for the Q*
// variants and the migration registry owned by this database.
type DB struct {
	pool      *Pool
	exec      *Executor
	log       *slog.Logger
	migration *database.Migration

	typesMu sync.Mutex
	types   atomic.Pointer[map[uint32]string]
}

// New creates an engine for a connection string. No connection is opened
// until the first statement runs.
func New(connString string, opts Options) (*DB, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	dial := func(ctx context.Context) (Conn, error) {
		conn, err := pgx.ConnectConfig(ctx, cfg.Copy())
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		return conn, nil
	}
	return NewWithDialer(dial, opts), nil
}

// NewWithDialer creates an engine around an arbitrary connection source.
func NewWithDialer(dial Dialer, opts Options) *DB {
	if opts.PoolSize < 1 {
		opts.PoolSize = DefaultPoolSize
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &DB{
		pool:      NewPool(dial, opts.PoolSize),
		exec:      NewExecutor(opts.Workers, opts.Logger),
		log:       opts.Logger,
		migration: database.NewMigration(),
	}
}

// GetConnectionString renders a keyword/value connection string.
func GetConnectionString(name, user, password, host string, port int, schema string) string {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 5432
	}
	if schema == "" {
		schema = "public"
	}
	return fmt.Sprintf("dbname=%s user=%s password='%s' host=%s port=%d options=-csearch_path=%s",
		name, user, escapeConnValue(password), host, port, schema)
}

func escapeConnValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// Close waits for posted tasks to finish and closes idle connections.
func (db *DB) Close(ctx context.Context) error {
	db.exec.Close()
	return db.pool.Close(ctx)
}

// Pool exposes the connection pool.
func (db *DB) Pool() *Pool {
	return db.pool
}

// Executor exposes the task executor, for use with Submit.
func (db *DB) Executor() *Executor {
	return db.exec
}

// Migration returns the registry modules declare their tables in.
func (db *DB) Migration() *database.Migration {
	return db.migration
}

// ExecOption tunes a single Exec call.
type ExecOption func(*execOptions)

type execOptions struct {
	verbose bool
}

// Verbose logs the statement text at debug level before running it.
func Verbose() ExecOption {
	return func(o *execOptions) { o.verbose = true }
}

// Exec runs a statement outside a transaction and captures its rows.
func (db *DB) Exec(ctx context.Context, sql string, opts ...ExecOption) QResult {
	return db.run(ctx, "exec", sql, nil, opts)
}

// ExecSQLCmd runs a parameterized statement outside a transaction. name only
// labels the command in logs.
func (db *DB) ExecSQLCmd(ctx context.Context, name, sql string, params []any, opts ...ExecOption) QResult {
	return db.run(ctx, name, sql, params, opts)
}

// QExec posts Exec to the executor.
func (db *DB) QExec(ctx context.Context, sql string, opts ...ExecOption) *Future[QResult] {
	return Submit(db.exec, func() QResult {
		return db.Exec(ctx, sql, opts...)
	})
}

// ExecStatement runs one statement and reports failure as an error.
func (db *DB) ExecStatement(ctx context.Context, sql string) error {
	return db.Exec(ctx, sql).Err()
}

func (db *DB) run(ctx context.Context, name, sql string, params []any, opts []ExecOption) QResult {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.verbose {
		db.log.Debug("exec", "cmd", name, "sql", sql)
	}

	result := QResult{SQL: sql}
	conn, err := db.pool.Get(ctx)
	if err != nil {
		db.log.Error("exec: no connection", "cmd", name, "error", err)
		result.Msg = ErrNoConnection.Error()
		return result
	}
	defer db.pool.Put(conn)

	args := params
	if len(args) == 0 {
		// simple protocol: no statement caching and multi-statement text allowed
		args = []any{pgx.QueryExecModeSimpleProtocol}
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return db.fail(result, name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result.Fields = make([]pgconn.FieldDescription, len(fields))
	copy(result.Fields, fields)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return db.fail(result, name, err)
		}
		result.Rows = append(result.Rows, values)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return db.fail(result, name, err)
	}
	result.RowsAffected = rows.CommandTag().RowsAffected()
	result.OK = true
	return result
}

func (db *DB) fail(result QResult, name string, err error) QResult {
	result.Fields = nil
	result.Rows = nil
	result.OK = false
	result.Msg = strings.TrimSpace(err.Error())
	db.log.Error("exec failed", "cmd", name, "error", result.Msg, "sql", result.SQL)
	return result
}

// Work runs fn inside a transaction on a dedicated connection. The
// transaction commits when fn returns nil and rolls back otherwise, also
// when fn panics; the panic is then propagated.
func (db *DB) Work(ctx context.Context, fn func(tx pgx.Tx) error) error {
	conn, err := db.pool.Get(ctx)
	if err != nil {
		db.log.Error("work: no connection", "error", err)
		return err
	}
	release := db.pool.Put
	defer func() { release(conn) }()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	finished := false
	defer func() {
		if finished {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			// the connection may still be inside the transaction
			db.log.Error("work: rollback failed", "error", rbErr)
			release = db.pool.Discard
		}
	}()

	if err := fn(tx); err != nil {
		db.log.Error("work failed", "error", err)
		return err
	}
	finished = true
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// QWork posts Work to the executor. A panic in fn is reported as an error
// wrapping ErrTaskPanicked.
func (db *DB) QWork(ctx context.Context, fn func(tx pgx.Tx) error) *Future[error] {
	return Submit(db.exec, func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				db.log.Error("work panicked", "panic", r)
				err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}()
		return db.Work(ctx, fn)
	})
}

// Insert builds and runs a single-row INSERT.
func (db *DB) Insert(ctx context.Context, table string, pairs ...Pair) QResult {
	var ins Inserter
	for _, p := range pairs {
		ins.Add(p.Column, p.Value)
	}
	sql, params := ins.Flush(table)
	return db.ExecSQLCmd(ctx, "insert_"+table, sql, params)
}

// QInsert posts Insert to the executor.
func (db *DB) QInsert(ctx context.Context, table string, pairs ...Pair) *Future[QResult] {
	return Submit(db.exec, func() QResult {
		return db.Insert(ctx, table, pairs...)
	})
}

// InsertBatch collects rows through populate and inserts all of them in one
// transaction: either every row is committed or none is.
func (db *DB) InsertBatch(ctx context.Context, table string, populate func(batch *BatchInserter)) QResult {
	batch := NewBatchInserter(table)
	populate(batch)
	cmds := batch.Commands()

	result := QResult{}
	conn, err := db.pool.Get(ctx)
	if err != nil {
		db.log.Error("insert batch: no connection", "table", table, "error", err)
		result.Msg = ErrNoConnection.Error()
		return result
	}
	defer db.pool.Put(conn)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return db.fail(result, "insert_batch_"+table, err)
	}
	for _, cmd := range cmds {
		tag, err := tx.Exec(ctx, cmd.SQL, cmd.Params...)
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				db.log.Error("insert batch: rollback failed", "table", table, "error", rbErr)
			}
			result.SQL = cmd.SQL
			return db.fail(result, "insert_batch_"+table, err)
		}
		result.RowsAffected += tag.RowsAffected()
	}
	if err := tx.Commit(ctx); err != nil {
		return db.fail(result, "insert_batch_"+table, err)
	}
	result.OK = true
	return result
}

// QInsertBatch posts InsertBatch to the executor.
func (db *DB) QInsertBatch(ctx context.Context, table string, populate func(batch *BatchInserter)) *Future[QResult] {
	return Submit(db.exec, func() QResult {
		return db.InsertBatch(ctx, table, populate)
	})
}

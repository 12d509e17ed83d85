package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joacominatel/stnl/internal/config"
	"github.com/joacominatel/stnl/internal/database/postgres"
	"github.com/joacominatel/stnl/internal/logging"
)

// Module declares the tables and procedures it needs on one or more engines.
type Module interface {
	SetupMigrations(s *Service) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(s *Service) error

func (f ModuleFunc) SetupMigrations(s *Service) error {
	return f(s)
}

// Service holds the engines of the process by alias and runs module
// migrations against them.
type Service struct {
	log *slog.Logger

	mu       sync.RWMutex
	aliases  []string
	dbs      map[string]*postgres.DB
	modules  []Module
	setup    int
	migrated map[string]bool
}

// NewService creates an empty service. A nil logger uses the global one.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{
		log:      logger,
		dbs:      make(map[string]*postgres.DB),
		migrated: make(map[string]bool),
	}
}

// AddDatabase creates an engine from a profile. An empty password is looked
// up in the OS keyring.
func (s *Service) AddDatabase(profile config.Database) error {
	if err := profile.ResolvePassword(); err != nil {
		return &ErrConfig{Cause: err}
	}
	opts := profile.Options()
	opts.Logger = s.log.With("alias", profile.Alias)
	db, err := postgres.New(profile.ConnString(), opts)
	if err != nil {
		return &ErrConfig{Cause: fmt.Errorf("database %s: %w", profile.Alias, err)}
	}
	return s.AttachDatabase(profile.Alias, db)
}

// AttachDatabase registers an existing engine under alias.
func (s *Service) AttachDatabase(alias string, db *postgres.DB) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dbs[alias]; ok {
		return &ErrConfig{Cause: fmt.Errorf("database alias %q is already registered", alias)}
	}
	s.dbs[alias] = db
	s.aliases = append(s.aliases, alias)
	return nil
}

// GetDatabase returns the engine registered under alias.
func (s *Service) GetDatabase(alias string) (*postgres.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.dbs[alias]
	if !ok {
		return nil, &ErrUnknownDatabase{Alias: alias}
	}
	return db, nil
}

// Aliases lists the registered aliases in registration order.
func (s *Service) Aliases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.aliases...)
}

// Use adds modules whose migrations run on the next RunMigrations.
func (s *Service) Use(modules ...Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules = append(s.modules, modules...)
}

// RunMigrations lets every new module declare its migrations, then converges
// each engine that has not been migrated yet. Failures are logged and the
// remaining engines still run; the returned error joins all of them.
func (s *Service) RunMigrations(ctx context.Context) error {
	errs := s.setupModules()
	for _, alias := range s.Aliases() {
		s.mu.RLock()
		done := s.migrated[alias]
		db := s.dbs[alias]
		s.mu.RUnlock()
		if done {
			continue
		}

		actx := logging.WithAlias(ctx, alias)
		start := time.Now()
		err := db.Migrate(actx)
		logging.MigrationEvent(actx, s.log, time.Since(start), err,
			"tables", len(db.Migration().TableNames()),
			"procedures", len(db.Migration().ProcedureNames()))
		if err != nil {
			errs = append(errs, fmt.Errorf("database %s: %w", alias, err))
			continue
		}

		s.mu.Lock()
		s.migrated[alias] = true
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// setupModules runs SetupMigrations of the modules added since the last
// call.
func (s *Service) setupModules() []error {
	s.mu.Lock()
	pending := s.modules[s.setup:]
	s.setup = len(s.modules)
	s.mu.Unlock()

	var errs []error
	for _, m := range pending {
		if err := m.SetupMigrations(s); err != nil {
			s.log.Error("module migration setup failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// Plan lets new modules declare their migrations, then computes the pending
// DDL of every table declared on alias without running it.
func (s *Service) Plan(ctx context.Context, alias string) ([]TablePlan, error) {
	db, err := s.GetDatabase(alias)
	if err != nil {
		return nil, err
	}
	if errs := s.setupModules(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	migrator := postgres.NewMigrator(s.log)
	m := db.Migration()

	plans := make([]TablePlan, 0, len(m.TableNames()))
	for _, name := range m.TableNames() {
		bp, _ := m.Blueprint(name)
		stmts, err := migrator.Plan(ctx, db, bp)
		plans = append(plans, TablePlan{Table: bp.TableName(), Statements: stmts, Err: err})
	}
	return plans, nil
}

// TablePlan is the pending DDL of one table.
type TablePlan struct {
	Table      string
	Statements []string
	Err        error
}

// Exec runs one statement on alias. A rejected statement is returned both
// in the result and as an *ErrQuery.
func (s *Service) Exec(ctx context.Context, alias, sql string, opts ...postgres.ExecOption) (postgres.QResult, error) {
	db, err := s.GetDatabase(alias)
	if err != nil {
		return postgres.QResult{}, err
	}
	r := db.Exec(ctx, sql, opts...)
	if !r.OK {
		if r.Msg == postgres.ErrNoConnection.Error() {
			return r, &ErrConnection{Alias: alias, Cause: postgres.ErrNoConnection}
		}
		return r, &ErrQuery{Query: sql, Cause: r.Err()}
	}
	return r, nil
}

// Ping checks that alias can hand out a working connection.
func (s *Service) Ping(ctx context.Context, alias string) error {
	_, err := s.Exec(ctx, alias, "SELECT 1")
	var qe *ErrQuery
	if errors.As(err, &qe) {
		return &ErrConnection{Alias: alias, Cause: qe.Cause}
	}
	return err
}

// Close shuts down every engine.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, alias := range s.aliases {
		if err := s.dbs[alias].Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", alias, err))
		}
	}
	s.dbs = make(map[string]*postgres.DB)
	s.aliases = nil
	return errors.Join(errs...)
}

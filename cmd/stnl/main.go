// Command stnl converges PostgreSQL schemas declared in code or schema files
// and runs ad-hoc statements against the configured databases.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/joacominatel/stnl/internal/app"
	"github.com/joacominatel/stnl/internal/config"
	"github.com/joacominatel/stnl/internal/database"
	"github.com/joacominatel/stnl/internal/logging"
)

const version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config    string   `name:"config" short:"c" help:"Config file (default ~/.stnl/config.yaml)" type:"path"`
	Alias     string   `name:"alias" short:"a" default:"default" help:"Database alias to operate on"`
	Schema    []string `name:"schema" short:"s" help:"Schema file(s) declared on the selected alias" type:"existingfile"`
	LogLevel  string   `name:"log-level" help:"Log level (debug, info, warn, error); overrides the config file"`
	LogFormat string   `name:"log-format" help:"Log format (text, json); overrides the config file"`
}

// CLI defines the command-line interface for stnl.
type CLI struct {
	Globals

	Migrate MigrateCmd `cmd:"" help:"Apply declared tables and procedures"`
	Plan    PlanCmd    `cmd:"" help:"Show the DDL a migration would run, without running it"`
	Exec    ExecCmd    `cmd:"" help:"Run one statement and print the result"`
	Shell   ShellCmd   `cmd:"" help:"Interactive SQL shell"`
	Init    InitCmd    `cmd:"" help:"Add or replace a database profile in the config file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// loadConfig reads the config file and configures logging from it and the
// command-line overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}
	logging.InitLogger(level, format)
	return cfg, nil
}

// service builds the engines of every configured database and registers
// the schema files on the selected alias.
func (g *Globals) service() (*app.Service, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.HasDatabase(g.Alias) {
		return nil, &app.ErrUnknownDatabase{Alias: g.Alias}
	}

	svc := app.NewService(logging.GetLogger())
	for _, profile := range cfg.Databases {
		if err := svc.AddDatabase(profile); err != nil {
			_ = svc.Close(context.Background())
			return nil, err
		}
	}
	if len(g.Schema) > 0 {
		svc.Use(schemaModule(g.Alias, g.Schema))
	}
	return svc, nil
}

// schemaModule declares the content of schema files on one alias.
func schemaModule(alias string, paths []string) app.Module {
	return app.ModuleFunc(func(s *app.Service) error {
		db, err := s.GetDatabase(alias)
		if err != nil {
			return err
		}
		return applySchemas(db.Migration(), paths)
	})
}

func applySchemas(m *database.Migration, paths []string) error {
	for _, path := range paths {
		schema, err := config.LoadSchema(path)
		if err != nil {
			return &app.ErrConfig{Cause: err}
		}
		if err := schema.Apply(m); err != nil {
			return &app.ErrConfig{Cause: fmt.Errorf("%s: %w", path, err)}
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("stnl %s\n", version)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("stnl"),
		kong.Description("Declarative PostgreSQL schema migrations and SQL execution"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}

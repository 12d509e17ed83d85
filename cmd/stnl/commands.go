package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/joacominatel/stnl/internal/app"
	"github.com/joacominatel/stnl/internal/config"
	"github.com/joacominatel/stnl/internal/database/postgres"
	"github.com/joacominatel/stnl/internal/ui"
)

// MigrateCmd converges every configured database.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(g *Globals, ctx context.Context) error {
	svc, err := g.service()
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	return svc.RunMigrations(ctx)
}

// PlanCmd prints the pending DDL of the selected alias.
type PlanCmd struct{}

func (c *PlanCmd) Run(g *Globals, ctx context.Context) error {
	svc, err := g.service()
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	plans, err := svc.Plan(ctx, g.Alias)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderPlan(g.Alias, toUIPlans(plans)))

	var errs []error
	for _, p := range plans {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errors.Join(errs...)
}

func toUIPlans(plans []app.TablePlan) []ui.TablePlan {
	out := make([]ui.TablePlan, len(plans))
	for i, p := range plans {
		out[i] = ui.TablePlan{Table: p.Table, Statements: p.Statements, Err: p.Err}
	}
	return out
}

// Output formats of exec and shell.
const (
	formatJSON  = "json"
	formatTable = "table"
	formatCSV   = "csv"
)

// ExecCmd runs one statement.
type ExecCmd struct {
	SQL     string `arg:"" help:"Statement to run; - reads it from stdin"`
	Format  string `name:"format" short:"f" default:"json" enum:"json,table,csv" help:"Output format (json, table, csv)"`
	Verbose bool   `name:"verbose" short:"v" help:"Log the statement text at debug level"`
}

func (c *ExecCmd) Run(g *Globals, ctx context.Context) error {
	sql := c.SQL
	if sql == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		sql = string(b)
	}

	svc, err := g.service()
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	db, err := svc.GetDatabase(g.Alias)
	if err != nil {
		return err
	}
	var opts []postgres.ExecOption
	if c.Verbose {
		opts = append(opts, postgres.Verbose())
	}

	r, execErr := svc.Exec(ctx, g.Alias, sql, opts...)
	if err := writeResult(ctx, os.Stdout, db, r, c.Format); err != nil {
		return err
	}
	return execErr
}

// writeResult prints r in format. JSON output is the envelope
// {"ok":..,"msg":..,"data":[..]}; table and csv print the rows, or the
// error message when the statement failed.
func writeResult(ctx context.Context, w io.Writer, db *postgres.DB, r postgres.QResult, format string) error {
	switch format {
	case formatTable:
		if !r.OK {
			_, err := fmt.Fprintln(w, ui.StyleError.Render("Error: "+r.Msg))
			return err
		}
		_, err := io.WriteString(w, ui.FromResult(r).Render())
		return err
	case formatCSV:
		if !r.OK {
			_, err := fmt.Fprintln(w, r.Msg)
			return err
		}
		return ui.FromResult(r).WriteCSV(w)
	default:
		return writeEnvelope(w, db.ConvertQResultToJSON(ctx, r))
	}
}

func writeEnvelope(w io.Writer, env postgres.Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// InitCmd adds a database profile to the config file.
type InitCmd struct {
	DSN           string `arg:"" optional:"" help:"postgres:// URL to take the profile from"`
	Name          string `name:"name" help:"Database name"`
	User          string `name:"user" help:"User name"`
	Host          string `name:"host" help:"Server host"`
	Port          int    `name:"port" help:"Server port"`
	Schema        string `name:"db-schema" help:"search_path schema"`
	PoolSize      int    `name:"pool-size" help:"Connections per engine"`
	Workers       int    `name:"workers" help:"Executor workers per engine"`
	StorePassword bool   `name:"keyring" help:"Move the password into the OS keyring instead of the config file"`
}

func (c *InitCmd) profile(alias string) (config.Database, error) {
	var db config.Database
	if c.DSN != "" {
		var err error
		if db, err = config.ParseDSN(c.DSN); err != nil {
			return db, err
		}
	}
	db.Alias = alias
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&db.Name, c.Name)
	override(&db.User, c.User)
	override(&db.Host, c.Host)
	override(&db.Schema, c.Schema)
	if c.Port > 0 {
		db.Port = c.Port
	}
	if c.PoolSize > 0 {
		db.PoolSize = c.PoolSize
	}
	if c.Workers > 0 {
		db.Workers = c.Workers
	}
	if strings.TrimSpace(db.Name) == "" {
		return db, errors.New("a database name is required (DSN path or --name)")
	}
	return db, nil
}

func (c *InitCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}
	db, err := c.profile(g.Alias)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}
	if c.StorePassword && db.Password != "" {
		if err := config.StorePassword(db, db.Password); err != nil {
			return err
		}
		db.Password = ""
	}

	cfg.AddDatabase(db)
	if err := config.Save(g.Config, cfg); err != nil {
		return &app.ErrConfig{Cause: err}
	}
	fmt.Println(ui.StyleSuccess.Render("Saved " + db.Alias + ": " + db.DisplayString()))
	return nil
}

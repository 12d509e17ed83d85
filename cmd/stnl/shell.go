package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/joacominatel/stnl/internal/database/postgres"
	"github.com/joacominatel/stnl/internal/ui"
)

const (
	promptFirst = "stnl> "
	promptMore  = "   -> "
)

// ShellCmd reads statements terminated by ';' and prints each result.
type ShellCmd struct {
	Format  string `name:"format" short:"f" default:"table" enum:"json,table,csv" help:"Initial output format (json, table, csv)"`
	History string `name:"history" help:"History file (default ~/.stnl/history)" type:"path"`
}

// statementBuffer accumulates input lines until a statement is complete.
type statementBuffer struct {
	b strings.Builder
}

// Feed adds a line and returns the statement once the line ends with ';'.
func (s *statementBuffer) Feed(line string) (string, bool) {
	if s.b.Len() > 0 {
		s.b.WriteString("\n")
	}
	s.b.WriteString(line)
	if !strings.HasSuffix(strings.TrimSpace(line), ";") {
		return "", false
	}
	stmt := strings.TrimSpace(s.b.String())
	s.b.Reset()
	return stmt, true
}

func (s *statementBuffer) Empty() bool {
	return s.b.Len() == 0
}

func (s *statementBuffer) Reset() {
	s.b.Reset()
}

func historyPath(override string) string {
	if override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stnl", "history")
}

var shellCompleter = readline.NewPrefixCompleter(
	readline.PcItem(`\format`,
		readline.PcItem(formatJSON),
		readline.PcItem(formatTable),
		readline.PcItem(formatCSV),
	),
	readline.PcItem(`\quit`),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func (c *ShellCmd) Run(g *Globals, ctx context.Context) error {
	svc, err := g.service()
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	db, err := svc.GetDatabase(g.Alias)
	if err != nil {
		return err
	}
	if err := svc.Ping(ctx, g.Alias); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptFirst,
		HistoryFile:     historyPath(c.History),
		AutoComplete:    shellCompleter,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	sh := &shell{db: db, out: rl.Stdout(), format: c.Format}
	fmt.Fprintln(sh.out, ui.StyleTitle.Render("stnl shell")+ui.StyleMuted.Render(" ("+g.Alias+")"))
	fmt.Fprintln(sh.out, ui.StyleMuted.Render(`Statements end with ';'. \format json|table|csv switches output, exit quits.`))

	var buf statementBuffer
	for {
		if buf.Empty() {
			rl.SetPrompt(promptFirst)
		} else {
			rl.SetPrompt(promptMore)
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if buf.Empty() {
				break
			}
			buf.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if trimmed := strings.TrimSpace(line); buf.Empty() {
			if trimmed == "" {
				continue
			}
			if isExit(trimmed) {
				break
			}
			if strings.HasPrefix(trimmed, `\`) {
				sh.command(trimmed)
				continue
			}
		}

		stmt, complete := buf.Feed(line)
		if !complete {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		sh.run(ctx, stmt)
	}

	fmt.Fprintln(sh.out, "Goodbye!")
	return nil
}

type shell struct {
	db     *postgres.DB
	out    io.Writer
	format string
}

func isExit(line string) bool {
	return strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") || line == `\quit` || line == `\q`
}

// command handles a backslash meta command typed at the start of a
// statement.
func (sh *shell) command(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case `\format`:
		if len(fields) != 2 {
			fmt.Fprintln(sh.out, ui.StyleMuted.Render("format: "+sh.format))
			return
		}
		switch fields[1] {
		case formatJSON, formatTable, formatCSV:
			sh.format = fields[1]
			fmt.Fprintln(sh.out, ui.StyleMuted.Render("format: "+sh.format))
		default:
			fmt.Fprintln(sh.out, ui.StyleError.Render("unknown format "+fields[1]))
		}
	default:
		fmt.Fprintln(sh.out, ui.StyleError.Render("unknown command "+fields[0]))
	}
}

func (sh *shell) run(ctx context.Context, stmt string) {
	r := sh.db.Exec(ctx, stmt)
	if err := writeResult(ctx, sh.out, sh.db, r, sh.format); err != nil {
		fmt.Fprintln(sh.out, ui.StyleError.Render(err.Error()))
	}
}

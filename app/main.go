// Command app answers a handful of queries against a SQLite database file by
// reading its pages directly.
//
// Usage: your_sqlite3.sh sample.db .dbinfo
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dbfile"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/logging"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/page"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/query"
)

// CLI defines the command-line interface.
type CLI struct {
	LogLevel   string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" env:"SQLITE_READER_LOG_LEVEL" enum:"debug,info,warn,error"`
	LogFormat  string `name:"log-format" help:"Log format (text, json)" default:"text" env:"SQLITE_READER_LOG_FORMAT" enum:"text,json"`
	SinglePage bool   `name:"single-page" help:"Read only the root page of each table" env:"SQLITE_READER_SINGLE_PAGE"`

	Database string `arg:"" help:"Path to the database file (plain or xz-compressed)" type:"existingfile"`
	Command  string `arg:"" help:"Command: .dbinfo, .tables or a SELECT statement"`
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute parses args, runs one command, and returns the exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("app"),
		kong.Description("Read-only SQLite file reader"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	_, err = parser.Parse(args)
	if exitCode >= 0 {
		// --help
		return exitCode
	}
	if err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	format, err := logging.ParseFormat(cli.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logging.InitLogger(level, format, stderr)

	mode := page.ModeTree
	if cli.SinglePage {
		mode = page.ModeSinglePage
	}

	ctx := logging.WithRequestID(context.Background(), uuid.New().String())
	if err := openAndRun(ctx, cli.Database, cli.Command, mode, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func openAndRun(ctx context.Context, path, command string, mode page.Mode, w io.Writer) error {
	db, err := dbfile.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	logging.DebugContext(ctx, "open",
		"path", db.Path(),
		"bytes", db.Size(),
		"page_size", db.PageSize(),
		"pages", db.PageCount,
		"compressed", db.Compressed(),
	)

	start := time.Now()
	err = run(ctx, query.NewEngine(db, mode), command, w)
	logging.CommandDone(ctx, command, time.Since(start), err)
	return err
}

// run parses one command and writes its result to w.
func run(ctx context.Context, eng *query.Engine, command string, w io.Writer) error {
	cmd, err := query.Parse(command)
	if err != nil {
		return err
	}

	switch c := cmd.(type) {
	case query.DbInfo:
		info, err := eng.DbInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "database page size: %v\n", info.PageSize)
		fmt.Fprintf(w, "number of tables: %v\n", info.TableCount)

	case query.ListTables:
		tables, err := eng.ListTables(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, strings.Join(tables, " "))

	case query.CountRows:
		count, err := eng.CountRows(ctx, c)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, count)

	case query.Select:
		rows, err := eng.Select(ctx, c)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			fmt.Fprintln(w, rows.Line())
		}
		return rows.Err()

	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}

	return nil
}

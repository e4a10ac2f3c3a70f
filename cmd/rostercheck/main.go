// Command rostercheck runs one registration check from local files and
// prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/JonMunkholm/rostercheck/internal/logging"
)

// exitError carries the process exit code for a failed run.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.msg != "" {
				fmt.Fprintln(os.Stderr, exitErr.msg)
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("rostercheck", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() {
		fmt.Fprint(stderr, `
rostercheck - compare course rosters with registrations.

Usage:
  rostercheck -registrations FILE.csv -students FILE.csv -courses FILE.xlsx

Column names and labels are read from the same environment variables as the
server (REGISTRATION_*, STUDENT_*, COURSE_*).

Options:
`)
		flagSet.PrintDefaults()
	}

	registrationsPath := flagSet.String("registrations", "", "Registration export (CSV).")
	studentsPath := flagSet.String("students", "", "Student directory export (CSV).")
	coursesPath := flagSet.String("courses", "", "Course roster workbook (xlsx).")
	compact := flagSet.Bool("compact", false, "Print the report on one line.")
	logLevel := flagSet.String("log-level", "", "Override LOG_LEVEL.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &exitError{code: 2, msg: err.Error()}
	}
	if *registrationsPath == "" || *studentsPath == "" || *coursesPath == "" {
		flagSet.Usage()
		return &exitError{code: 2}
	}

	cfg, err := config.Load()
	if err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	slog.SetDefault(logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format))

	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	open := func(path string) (*os.File, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, &exitError{code: 1, msg: err.Error()}
		}
		files = append(files, f)
		return f, nil
	}

	registrations, err := open(*registrationsPath)
	if err != nil {
		return err
	}
	students, err := open(*studentsPath)
	if err != nil {
		return err
	}
	courses, err := open(*coursesPath)
	if err != nil {
		return err
	}

	service := core.NewService(cfg, nil)
	result, err := service.Verify(ctx, core.VerifyInput{
		Registrations: registrations,
		Students:      students,
		Courses:       courses,
	})
	if err != nil {
		slog.Debug("verification failed", "error", err)
		return &exitError{code: 1, msg: core.FormatUserError(err)}
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

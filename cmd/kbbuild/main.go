// Command kbbuild aggregates the historical workout and nutrition dataset into the
// exercise and diet knowledge bases read by the recommendation service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/recommender/internal/knowledge"
	"example.com/recommender/internal/logging"
)

type options struct {
	input       string
	exerciseOut string
	dietOut     string
	sqlitePath  string
	postgresURL string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logging.Fatal().Err(err).Msg("knowledge base build failed")
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("kbbuild", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.input, "input", "", "historical dataset CSV (required)")
	fs.StringVar(&opts.exerciseOut, "exercise-out", "", "write the exercise knowledge base CSV here")
	fs.StringVar(&opts.dietOut, "diet-out", "", "write the diet knowledge base CSV here")
	fs.StringVar(&opts.sqlitePath, "sqlite", "", "write both tables into this SQLite database")
	fs.StringVar(&opts.postgresURL, "postgres", "", "write both tables into this Postgres database")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.input == "" {
		return opts, errors.New("-input is required")
	}
	if opts.exerciseOut == "" && opts.dietOut == "" && opts.sqlitePath == "" && opts.postgresURL == "" {
		return opts, errors.New("at least one of -exercise-out, -diet-out, -sqlite or -postgres is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, output io.Writer) error {
	opts, err := parseFlags(args, output)
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: opts.logLevel, Format: "console", Output: output})

	exercises, diets, err := build(opts.input)
	if err != nil {
		return err
	}
	logging.Info().Int("exercise_rows", len(exercises)).Int("diet_rows", len(diets)).Msg("knowledge bases aggregated")

	if opts.exerciseOut != "" {
		if err := writeFile(opts.exerciseOut, func(w io.Writer) error { return knowledge.WriteExerciseCSV(w, exercises) }); err != nil {
			return err
		}
		logging.Info().Str("path", opts.exerciseOut).Msg("exercise knowledge base written")
	}
	if opts.dietOut != "" {
		if err := writeFile(opts.dietOut, func(w io.Writer) error { return knowledge.WriteDietCSV(w, diets) }); err != nil {
			return err
		}
		logging.Info().Str("path", opts.dietOut).Msg("diet knowledge base written")
	}
	stores, closeStores, err := openStores(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStores()
	for name, store := range stores {
		if err := store.Save(ctx, exercises, diets); err != nil {
			return fmt.Errorf("save %s knowledge base: %w", name, err)
		}
		logging.Info().Str("store", name).Msg("knowledge base saved")
	}
	return nil
}

// openStores opens every database target named on the command line.
func openStores(ctx context.Context, opts options) (map[string]knowledge.Store, func(), error) {
	stores := make(map[string]knowledge.Store)
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if opts.sqlitePath != "" {
		store, err := knowledge.OpenSQLite(opts.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = store.Close() })
		stores["sqlite"] = store
	}
	if opts.postgresURL != "" {
		pool, err := pgxpool.New(ctx, opts.postgresURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		store := knowledge.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		stores["postgres"] = store
	}
	return stores, closeAll, nil
}

func build(input string) ([]knowledge.ExerciseRow, []knowledge.DietRow, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := knowledge.ReadRawRecords(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", input, err)
	}
	b := knowledge.NewBuilder()
	for _, rec := range records {
		b.Add(rec)
	}
	return b.Exercises(), b.Diets(), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

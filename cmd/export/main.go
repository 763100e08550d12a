package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"finbook/internal/accounts"
	"finbook/internal/auth"
	"finbook/internal/config"
	"finbook/internal/docstore"
	"finbook/internal/export"
	"finbook/internal/partitions"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; ignore the error when it doesn't exist.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], os.Stdout, os.Stderr, logger); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)

	user := fs.String("user", "", "Username or email of the account to export")
	kind := fs.String("kind", "complete", "Export kind: complete, bill, or analysis")
	cleanup := fs.Bool("cleanup", false, "Delete exports older than the retention window and exit")
	configFile := fs.String("config", "", "Path to config file (optional)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	index, err := accounts.NewIndex(cfg.DataDir, auth.BcryptHasher{}, logger)
	if err != nil {
		return fmt.Errorf("failed to open account registry: %w", err)
	}
	parts := partitions.New(docstore.New(cfg.DataDir, logger))
	compiler := export.NewCompiler(index, parts, cfg.ExportDir, logger)

	if *cleanup {
		removed, err := compiler.CleanupOldExports(cfg.ExportRetention)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Fprintf(stdout, "Removed %d old export(s)\n", removed)
		return nil
	}

	if *user == "" {
		fmt.Fprintln(stdout, "Usage: export -user <username|email> [-kind complete|bill|analysis]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}

	account, err := index.FindByIdentifier(*user)
	if err != nil {
		return fmt.Errorf("failed to resolve account %q: %w", *user, err)
	}

	var path string
	switch *kind {
	case "complete":
		path, err = compiler.ExportComplete(account)
	case "bill":
		path, err = compiler.ExportBillOnly(account)
	case "analysis":
		path, err = compiler.ExportAnalysisOnly(account)
	default:
		return fmt.Errorf("unknown export kind %q", *kind)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(stdout, "Export written to %s\n", path)
	return nil
}

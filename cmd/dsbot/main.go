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

	"github.com/ruslano69/dsbot/pkg/logger"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dsbot", flag.ContinueOnError)
	flags, err := ParseFlags(fs, args)
	if err != nil {
		return err
	}

	if *flags.Version {
		fmt.Fprintf(out, "dsbot %s\n", version)
		return nil
	}

	if *flags.CreateConfig != "" {
		return createConfigTemplate(out, *flags.CreateConfig, *flags.Config)
	}

	if !flags.commandWasSpecified() {
		fs.SetOutput(out)
		fs.Usage()
		return fmt.Errorf("no command specified")
	}

	config, err := LoadConfig(*flags.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.Init(config.Log)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, config, log)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	cfg, err := a.serverConfig(ctx, *flags.Guild, *flags.User, *flags.Lang)
	if err != nil {
		return fmt.Errorf("failed to load server settings: %w", err)
	}

	switch {
	case *flags.InitSchema:
		return a.initSchema(ctx, out)
	case *flags.Get != "":
		return a.get(ctx, out, *flags.Get, *flags.Where, *flags.Log)
	case *flags.Set != "":
		if *flags.Entity == "" {
			return fmt.Errorf("--set requires --entity")
		}
		return a.set(ctx, out, *flags.Entity, *flags.Set, *flags.Where, cfg, *flags.Log)
	case *flags.ExportXLSX != "":
		return a.exportXLSX(ctx, out, *flags.ExportXLSX, *flags.Where, *flags.Output, *flags.Log)
	case *flags.ImportXLSX != "":
		if *flags.Entity == "" {
			return fmt.Errorf("--import-xlsx requires --entity")
		}
		return a.importXLSX(ctx, out, *flags.Entity, *flags.ImportXLSX, *flags.Sheet, cfg, *flags.Log)
	case *flags.Audit:
		return a.auditLog(ctx, out, *flags.Where)
	}
	return nil
}

// createConfigTemplate creates a sample configuration file
func createConfigTemplate(out io.Writer, dbType, path string) error {
	config := CreateSampleConfig(dbType)
	if config.Database.BuildDSN() == "" {
		return fmt.Errorf("unsupported database type: %s", dbType)
	}

	if err := SaveConfig(path, config); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Created sample %s config: %s\n", dbType, path)
	fmt.Fprintln(out, "Edit the file with your database credentials and run:")
	fmt.Fprintf(out, "  dsbot --init-schema --config %s\n", path)
	return nil
}

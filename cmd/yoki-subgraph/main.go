package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/AstarNetwork/yoki2-subgraph/config"
	"github.com/AstarNetwork/yoki2-subgraph/introspection"
	"github.com/AstarNetwork/yoki2-subgraph/server"
	"github.com/AstarNetwork/yoki2-subgraph/validation"
	"github.com/AstarNetwork/yoki2-subgraph/yoki"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file",
	}

	printCommand = &cli.Command{
		Name:   "print",
		Usage:  "Writes the schema SDL",
		Action: printSDL,
	}
	introspectCommand = &cli.Command{
		Name:   "introspect",
		Usage:  "Writes the introspection result as JSON",
		Action: introspect,
	}
	checkCommand = &cli.Command{
		Name:   "check",
		Usage:  "Builds the schema with full validation",
		Action: check,
	}
	validateCommand = &cli.Command{
		Name:      "validate",
		Usage:     "Validates query documents against the schema",
		ArgsUsage: "FILE...",
		Action:    validate,
	}
	serveCommand = &cli.Command{
		Name:   "serve",
		Usage:  "Serves the schema over HTTP",
		Action: serve,
	}
)

// usageError is reported with exit code 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:        "yoki-subgraph",
		Usage:       "Yoki Origins subgraph schema tool",
		HideVersion: true,
		Writer:      stdout,
		ErrWriter:   stderr,
		Flags:       []cli.Flag{configFlag},
		Commands: []*cli.Command{
			printCommand,
			introspectCommand,
			checkCommand,
			validateCommand,
			serveCommand,
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() > 0 {
				return usageError{fmt.Errorf("unknown command %q", ctx.Args().First())}
			}
			_ = cli.ShowAppHelp(ctx)
			return usageError{errors.New("missing command")}
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return usageError{err}
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).RunContext(ctx, append([]string{"yoki-subgraph"}, args...))
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)
	var usage usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// setup loads the configuration and its logger. Only serve logs to stdout;
// the other commands write their output there.
func setup(ctx *cli.Context, serving bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !serving && (cfg.Logging.OutputPath == "" || cfg.Logging.OutputPath == "stdout") {
		cfg.Logging.OutputPath = "stderr"
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func printSDL(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	schema, err := yoki.Load(cfg.Schema, logger)
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}
	return schema.WriteSDL(ctx.App.Writer)
}

func introspect(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	schema, err := yoki.Load(cfg.Schema, logger)
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}
	data, err := introspection.JSON(schema)
	if err != nil {
		return fmt.Errorf("failed to introspect schema: %w", err)
	}
	_, err = fmt.Fprintln(ctx.App.Writer, string(data))
	return err
}

// check always runs full schema validation, whatever assume_valid says.
func check(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := yoki.Check(yoki.Options(cfg.Schema)...); err != nil {
		return fmt.Errorf("schema is invalid: %w", err)
	}
	_, err = fmt.Fprintln(ctx.App.Writer, "schema is valid")
	return err
}

func validate(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return usageError{errors.New("validate needs at least one query file")}
	}
	cfg, logger, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	schema, err := yoki.Load(cfg.Schema, logger)
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}
	v := validation.New(schema,
		validation.MaxFirst(cfg.Schema.MaxFirst),
		validation.MaxSkip(cfg.Schema.MaxSkip),
		validation.Logger(logger),
	)

	paths := ctx.Args().Slice()
	failed := 0
	for _, path := range paths {
		query, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(ctx.App.ErrWriter, "%s: %v\n", path, err)
			failed++
			continue
		}
		errs := v.Validate(validation.Params{Query: string(query)})
		if len(errs) == 0 {
			fmt.Fprintf(ctx.App.Writer, "%s: ok\n", path)
			continue
		}
		failed++
		for _, e := range errs {
			fmt.Fprintf(ctx.App.Writer, "%s: %v\n", path, e)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d query files failed validation", failed, len(paths))
	}
	return nil
}

func serve(ctx *cli.Context) error {
	cfg, logger, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	schema, err := yoki.Load(cfg.Schema, logger)
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}
	srv, err := server.New(cfg, schema, logger)
	if err != nil {
		logger.Error("Failed to create server", zap.Error(err))
		return err
	}
	if err := srv.Run(ctx.Context); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	return nil
}

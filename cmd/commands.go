package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mini-maxit/harness/internal/config"
	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/rabbitmq"
	"github.com/mini-maxit/harness/internal/rabbitmq/consumer"
	"github.com/mini-maxit/harness/internal/rabbitmq/responder"
	"github.com/mini-maxit/harness/internal/reporter"
	"github.com/mini-maxit/harness/internal/scheduler"
	"github.com/mini-maxit/harness/internal/stages/templates"
	"github.com/mini-maxit/harness/internal/storage"
	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/languages"
	"github.com/mini-maxit/harness/pkg/solution"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a solution against a problem's test cases",
		ArgsUsage: "<solution-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "language, inferred from the file extension when omitted"},
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Usage: "problem whose stored test cases are used"},
			&cli.StringFlag{Name: "suite", Usage: "TOML or YAML suite file used instead of --problem"},
			&cli.DurationFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "time limit per test case"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "number of test cases run in parallel"},
			&cli.StringSliceFlag{Name: "param", Usage: "entry point parameter kinds in order, e.g. int[] int"},
			&cli.StringFlag{Name: "report", Usage: "write the JSON report to this path (.zst compresses it)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print state transitions"},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log := logger.NewNamedLogger("cli")

	if cmd.NArg() != 1 {
		return cli.Exit("expected exactly one solution file", exitHardError)
	}
	sourcePath := cmd.Args().First()

	artifact, err := loadArtifact(sourcePath, cmd.String("lang"), cmd.StringSlice("param"))
	if err != nil {
		return cli.Exit(err.Error(), exitHardError)
	}

	cfg := config.NewConfig()
	suite, err := loadSuite(cfg, cmd.String("problem"), cmd.String("suite"))
	if err != nil {
		return cli.Exit(err.Error(), exitHardError)
	}

	h, err := newHarness(cfg, reporter.NewTerminal(os.Stdout, cmd.Bool("verbose")), cmd.Int("workers"))
	if err != nil {
		return cli.Exit(err.Error(), exitHardError)
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = cfg.CaseTimeout
	}

	report, err := h.RunHarness(ctx, artifact, suite, timeout)
	if err != nil {
		return cli.Exit(err.Error(), exitHardError)
	}
	log.Infof("Run finished [RunID: %s] passed %d/%d", report.RunID, report.PassedCount, report.TotalCount)

	if path := cmd.String("report"); path != "" {
		if err := reporter.WriteReport(path, report); err != nil {
			return cli.Exit(err.Error(), exitHardError)
		}
	}

	if !report.AllPassed() {
		return cli.Exit("", exitFailed)
	}
	return nil
}

func loadArtifact(path, lang string, params []string) (solution.SolutionArtifact, error) {
	var (
		languageType languages.LanguageType
		err          error
	)
	if lang != "" {
		languageType, err = languages.ParseLanguageType(lang)
	} else {
		languageType, err = languages.FromExtension(path)
	}
	if err != nil {
		return solution.SolutionArtifact{}, fmt.Errorf("%w: %s", err, path)
	}

	signature, err := solution.ParseSignature(params)
	if err != nil {
		return solution.SolutionArtifact{}, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return solution.SolutionArtifact{}, err
	}

	return solution.SolutionArtifact{
		Language:  languageType,
		RawSource: string(source),
		Signature: signature,
	}, nil
}

func loadSuite(cfg *config.Config, problem, suitePath string) (solution.TestSuite, error) {
	switch {
	case suitePath != "":
		return storage.LoadSuiteFile(suitePath)
	case problem != "":
		return storage.NewSuiteStore(cfg.SuitesDir).LoadSuite(problem)
	default:
		return solution.TestSuite{}, errors.New("either --problem or --suite is required")
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "write a starter solution",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Required: true},
			&cli.StringFlag{Name: "dir", Value: constants.StarterDirName, Usage: "directory of the starter file"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			lang, err := languages.ParseLanguageType(cmd.String("lang"))
			if err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}
			def, err := lang.Definition()
			if err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}
			source, err := templates.Starter(lang)
			if err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}

			dir := cmd.String("dir")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}
			path := filepath.Join(dir, constants.StarterFileName+"."+def.Extension)
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return cli.Exit(fmt.Sprintf("refusing to overwrite: %s", err), exitHardError)
			}
			defer f.Close()
			if _, err := io.WriteString(f, source); err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}

			fmt.Fprintf(cmd.Root().Writer, "Created %s\n", path)
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "store a new test case for a problem",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Required: true},
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true},
			&cli.StringFlag{Name: "expected", Aliases: []string{"e"}, Required: true},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := config.NewConfig()
			problem := cmd.String("problem")
			// Shell arguments cannot carry newlines easily, so \n separates records.
			input := strings.ReplaceAll(cmd.String("input"), `\n`, "\n")

			idx, err := storage.NewSuiteStore(cfg.SuitesDir).AddTestCase(problem, input, cmd.String("expected"))
			if err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}
			fmt.Fprintf(cmd.Root().Writer, "Added test case %d to %s\n", idx, problem)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import example cases as alternating input/expected lines",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Required: true},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("expected exactly one examples file", exitHardError)
			}

			var (
				text []byte
				err  error
			)
			if name := cmd.Args().First(); name == "-" {
				text, err = io.ReadAll(os.Stdin)
			} else {
				text, err = os.ReadFile(name)
			}
			if err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}

			cfg := config.NewConfig()
			problem := cmd.String("problem")
			count, err := storage.NewSuiteStore(cfg.SuitesDir).ImportExamples(problem, string(text))
			if err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}
			fmt.Fprintf(cmd.Root().Writer, "Imported %d test case(s) into %s\n", count, problem)
			return nil
		},
	}
}

func problemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "problems",
		Usage: "list problems with stored test cases",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg := config.NewConfig()
			problems, err := storage.NewSuiteStore(cfg.SuitesDir).ListProblems()
			if err != nil {
				return cli.Exit(err.Error(), exitHardError)
			}
			for _, p := range problems {
				fmt.Fprintln(cmd.Root().Writer, p)
			}
			return nil
		},
	}
}

func languagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "list supported languages",
		Action: func(_ context.Context, cmd *cli.Command) error {
			for _, spec := range languages.GetSupportedLanguagesWithVersions().Languages {
				kind := "interpreted"
				if spec.Compiled {
					kind = "compiled"
				}
				fmt.Fprintf(cmd.Root().Writer, "%-8s .%-5s %-12s %s\n",
					spec.LanguageName, spec.Extension, kind, strings.Join(spec.Versions, ","))
			}
			return nil
		},
	}
}

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:   "worker",
		Usage:  "serve run requests from the RabbitMQ queue",
		Action: workerAction,
	}
}

func workerAction(ctx context.Context, _ *cli.Command) error {
	log := logger.NewNamedLogger("main")
	log.Info("Starting worker")

	cfg := config.NewConfig()

	conn := rabbitmq.NewRabbitMqConnection(cfg)
	mainChannel := rabbitmq.NewRabbitMQChannel(conn)

	h, err := newHarness(cfg, nil, 0)
	if err != nil {
		return cli.Exit(err.Error(), exitHardError)
	}

	resp := responder.NewResponder(mainChannel, cfg.PublishChanSize)
	sched := scheduler.NewScheduler(cfg.MaxWorkers, h, resp)
	cons := consumer.NewConsumer(mainChannel, cfg.ConsumeQueueName, cfg.MaxWorkers, sched, resp)

	listening := make(chan struct{})
	go func() {
		defer close(listening)
		cons.Listen()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown requested")
	case <-listening:
		log.Warn("Consumer stopped")
	}

	// Running tasks still publish their partial reports before the channel closes.
	sched.Shutdown()
	if err := resp.Close(); err != nil {
		log.Errorf("Failed to close responder: %s", err)
	}
	if err := mainChannel.Close(); err != nil {
		log.Errorf("Failed to close RabbitMQ channel: %s", err)
	}
	if err := conn.Close(); err != nil {
		log.Errorf("Failed to close RabbitMQ connection: %s", err)
	}
	<-listening

	log.Info("Worker stopped")
	return nil
}

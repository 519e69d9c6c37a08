package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"prreview/internal/app"
	"prreview/internal/clipboard"
	"prreview/internal/config"
	"prreview/internal/git"
	"prreview/internal/github"
	"prreview/internal/logging"
	"prreview/internal/util"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s) %s", v, c, d)
}

type flags struct {
	Repo       string
	ConfigPath string
	LogLevel   string
	LogFile    string
	Local      bool
}

func main() {
	var (
		f         flags
		logCloser func()
	)

	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = ""
	}

	cmd := &cli.Command{
		Name:      "prreview",
		Usage:     "Review pull requests in the terminal",
		UsageText: "prreview [options] <pr-number>\nprreview --local [base..head]",
		Description: `Browse a pull request's changed files as a tree, read the diff with syntax
highlighting, expand hidden context, leave inline comments and submit the
review to GitHub through the gh CLI.

With --local the diff comes from git instead: a base..head range, or the
uncommitted working tree when no range is given. Reviews are copied to the
clipboard as Markdown.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "repo",
				Aliases:     []string{"R"},
				Usage:       "repository as owner/name (defaults to the current checkout)",
				Destination: &f.Repo,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PRREVIEW_CONFIG"),
				Value:       defaultConfig,
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("PRREVIEW_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to the user state directory)",
				Sources:     cli.EnvVars("PRREVIEW_LOG_FILE"),
				Destination: &f.LogFile,
			},
			&cli.BoolFlag{
				Name:        "local",
				Usage:       "review a local git range or the working tree instead of a pull request",
				Destination: &f.Local,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logging.New(f.LogLevel, f.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, f, c.Args().Slice())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected one argument, got %d. Run 'prreview --help' for usage", len(args))
	}
	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}

	cfg, err := config.LoadFromPath(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	deps, err := collaborators(ctx, f, cfg, cwd, arg)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = log.Logger

	log.Info().Str("version", version).Bool("local", f.Local).Msg("starting")
	program := tea.NewProgram(app.NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}

func collaborators(ctx context.Context, f flags, cfg config.Config, cwd, arg string) (app.Deps, error) {
	runner := util.ExecRunner{}

	if f.Local {
		src, err := git.New(ctx, runner, git.Options{
			GitPath: cfg.GitPath,
			Dir:     cwd,
			Range:   arg,
			Logger:  log.Logger,
		})
		if err != nil {
			return app.Deps{}, err
		}
		return app.Deps{Diff: src, Context: src, Review: clipboard.NewSink(log.Logger)}, nil
	}

	if arg == "" {
		return app.Deps{}, errors.New("missing pull request number. Run 'prreview --help' for usage")
	}
	number, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || number <= 0 {
		return app.Deps{}, fmt.Errorf("invalid pull request number %q", arg)
	}

	repo := f.Repo
	if repo == "" {
		if repo, err = github.ResolveRepo(ctx, runner, cfg.GHPath, cwd); err != nil {
			return app.Deps{}, err
		}
	}
	client := github.New(runner, github.Options{
		GHPath: cfg.GHPath,
		Repo:   repo,
		Number: number,
		Dir:    cwd,
		Logger: log.Logger,
	})
	return app.Deps{Diff: client, Context: client, Review: client}, nil
}

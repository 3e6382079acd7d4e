package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/microclaw/microclaw-install/internal/asset"
	"github.com/microclaw/microclaw-install/internal/binary"
	"github.com/microclaw/microclaw-install/internal/config"
	"github.com/microclaw/microclaw-install/internal/logging"
	"github.com/microclaw/microclaw-install/internal/platform"
	"github.com/microclaw/microclaw-install/internal/release"
	"github.com/microclaw/microclaw-install/internal/shell"
)

// app carries the process-level collaborators of the command so tests can
// replace them.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	getenv   func(string) string
	homeDir  func() (string, error)
	detector platform.Detector
	tempDir  string
}

func newApp() *app {
	return &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		getenv:   os.Getenv,
		homeDir:  os.UserHomeDir,
		detector: platform.NewDetector(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "microclaw-install [repo] [install-dir]",
		Short: "Install the latest microclaw release for this machine",
		Long: `microclaw-install downloads the latest release of microclaw built for the
current operating system and CPU architecture, unpacks it, and copies the
executable into the install directory.

Settings are read from flags, MICROCLAW_* environment variables and an
optional config file (` + config.DefaultConfigFile() + `).`,
		Args:          cobra.MaximumNArgs(2),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Repo = args[0]
			}
			if len(args) > 1 {
				cfg.InstallDir = args[1]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.install(cmd.Context(), cfg)
		},
	}

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default: "+config.DefaultConfigFile()+")")
	flags.String("repo", config.DefaultRepo, "GitHub repository to install from (owner/name)")
	flags.String("install-dir", "", "directory to place the executable in (default: ~/.local/bin)")
	flags.String("rules", "", "Lua file defining asset name patterns")
	flags.String("api-url", "", "GitHub API base URL")
	flags.Int("retries", binary.DefaultRetries, "extra download attempts after a failure")
	flags.Duration("timeout", 0, "per-request timeout (default: built-in)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	return cmd
}

func (a *app) install(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: a.stderr,
	})
	if err != nil {
		return err
	}
	logger.Debug("configuration resolved", "config", fmt.Sprintf("%+v", cfg.Redacted()))

	opts := release.Options{
		BaseURL: cfg.APIURL,
		Token:   cfg.GitHubToken,
		Logger:  logger,
	}
	if cfg.Timeout > 0 {
		opts.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	releases, err := release.NewClient(opts)
	if err != nil {
		return err
	}

	var patterns []string
	if cfg.RulesFile != "" {
		info, err := a.detector.Detect(ctx)
		if err != nil {
			return fmt.Errorf("resolve platform: %w", err)
		}
		patterns, err = asset.LoadScript(ctx, cfg.RulesFile, info)
		if err != nil {
			return err
		}
		logger.Info("asset rules loaded", "file", cfg.RulesFile, "patterns", len(patterns))
	}

	manager, err := binary.NewManager(binary.Config{
		InstallDir: cfg.InstallDir,
		TempDir:    a.tempDir,
		Detector:   a.detector,
		Releases:   releases,
		Patterns:   patterns,
		Retries:    cfg.Retries,
		Timeout:    cfg.Timeout,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	result, err := manager.Install(ctx, binary.Options{Repo: cfg.Repo})
	if err != nil {
		return err
	}

	a.report(ctx, result, manager.InstallDir())
	return nil
}

// report prints the outcome and, when the install directory is not on
// PATH, how to add it.
func (a *app) report(ctx context.Context, result *binary.Result, installDir string) {
	fmt.Fprintf(a.stdout, "Installed %s\n", result.Path)
	fmt.Fprintf(a.stdout, "  release %s from %s (%s)\n", result.Tag, result.Repo, result.Asset.FileName())
	if result.Replaced {
		fmt.Fprintln(a.stdout, "  replaced the existing executable")
	}

	if shell.InPath(installDir, a.getenv("PATH")) {
		return
	}

	g := shell.NewGuidance(shell.DetectShell(ctx).Shell, installDir, a.userHome())

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s is not on your PATH.\n", installDir)
	if g.RCFile != "" {
		fmt.Fprintf(a.stdout, "Add it by appending this line to %s:\n", g.RCFile)
	} else {
		fmt.Fprintln(a.stdout, "Add it to your shell configuration, for example:")
	}
	fmt.Fprintf(a.stdout, "  %s\n", g.Line)
}

// userHome returns the current user's home directory, or "" when it
// cannot be determined.
func (a *app) userHome() string {
	lookup := a.homeDir
	if lookup == nil {
		lookup = os.UserHomeDir
	}
	home, err := lookup()
	if err != nil {
		return ""
	}
	return home
}

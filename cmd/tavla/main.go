package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// rootFlags holds the persistent CLI overrides.
type rootFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// main handles main.
func main() {
	// Local .env files override nothing already exported; missing files are
	// not an error.
	_ = godotenv.Load()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI tree. The bare invocation starts the board;
// export, import, and paths run headless.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{appName: "tavla"}
	if envApp := strings.TrimSpace(os.Getenv("TAVLA_APP_NAME")); envApp != "" {
		flags.appName = envApp
	}

	root := &cobra.Command{
		Use:           "tavla",
		Short:         "tavla is a terminal kanban board",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd.Context(), flags, stderr)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", version == "dev", "use dev mode paths (<app>-dev)")

	root.AddCommand(newExportCmd(flags, stdout, stderr))
	root.AddCommand(newImportCmd(flags, stdout, stderr))
	root.AddCommand(newPathsCmd(flags, stdout))
	return root
}

func newExportCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), flags, stderr, false)
			if err != nil {
				return err
			}
			defer rt.close()

			encoded, err := rt.svc.ExportSnapshot(cmd.Context())
			if err != nil {
				rt.logger.Error("export failed", "err", err)
				return fmt.Errorf("export snapshot: %w", err)
			}
			encoded = append(encoded, '\n')
			if outPath == "-" {
				_, err = stdout.Write(encoded)
				return err
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write snapshot %q: %w", outPath, err)
			}
			rt.logger.Info("snapshot written", "path", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load tasks from a JSON snapshot or legacy dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot %q: %w", args[0], err)
			}

			rt, err := newRuntime(cmd.Context(), flags, stderr, false)
			if err != nil {
				return err
			}
			defer rt.close()

			imported, skipped, err := rt.svc.ImportSnapshot(cmd.Context(), raw)
			if err != nil {
				rt.logger.Error("import failed", "path", args[0], "err", err)
				return fmt.Errorf("import snapshot: %w", err)
			}
			rt.logger.Info("snapshot imported", "path", args[0], "imported", imported, "skipped", skipped)
			_, _ = fmt.Fprintf(stdout, "imported %d task(s), skipped %d\n", imported, skipped)
			return nil
		},
	}
}

func newPathsCmd(flags *rootFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved config and data locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: flags.appName,
				DevMode: flags.devMode,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(stdout, "log: %s\n", paths.LogPath)
			return nil
		},
	}
}

// runBoard assembles the runtime and hands the terminal to the board loop.
func runBoard(ctx context.Context, flags *rootFlags, stderr io.Writer) error {
	rt, err := newRuntime(ctx, flags, stderr, true)
	if err != nil {
		return err
	}
	defer rt.close()

	opts := []tui.Option{
		tui.WithTaskFieldConfig(tui.TaskFieldConfig{
			ShowPriority:    rt.cfg.TaskFields.ShowPriority,
			ShowDueDate:     rt.cfg.TaskFields.ShowDueDate,
			ShowDescription: rt.cfg.TaskFields.ShowDescription,
		}),
		tui.WithConfirmTexts(tui.ConfirmTexts{
			Title:       rt.cfg.Confirm.DeleteTitle,
			Message:     rt.cfg.Confirm.DeleteMessage,
			ConfirmText: rt.cfg.Confirm.ConfirmLabel,
			CancelText:  rt.cfg.Confirm.CancelLabel,
		}),
		tui.WithGreetingName(rt.cfg.Identity.Name),
		tui.WithMaxAvatars(rt.cfg.Board.MaxAvatars),
	}
	if !rt.cfg.Board.ShowGreeting {
		opts = append(opts, tui.WithGreetingDisabled())
	}

	rt.logger.Info("starting board loop")
	if _, err := programFactory(tui.NewModel(rt.svc, opts...)).Run(); err != nil {
		rt.logger.Error("board loop terminated with error", "err", err)
		return fmt.Errorf("run board: %w", err)
	}
	rt.logger.Info("board loop complete")
	return nil
}

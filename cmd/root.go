package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/synchthia/kaizen/config"
	"github.com/synchthia/kaizen/prompts"
	"github.com/synchthia/kaizen/ux"
	"go.uber.org/zap"
)

// App carries what every command needs once flags are parsed.
type App struct {
	Log      *zap.Logger
	UX       *ux.UserLog
	Prompter prompts.Prompter

	// WorkDir receives ipfs.json and anchors relative paths
	WorkDir    string
	ConfigPath string
	LogLevel   string
}

func (a *App) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(a.WorkDir, p)
}

func RootCommand(version string) *cobra.Command {
	return newRootCommand(&App{Prompter: prompts.NewPrompter()}, version)
}

func newRootCommand(app *App, version string) *cobra.Command {
	c := &cobra.Command{
		Use:           "kaizen",
		Short:         "Deploy contracts and publish build output to IPFS",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd.OutOrStdout())
		},
	}
	c.CompletionOptions.HiddenDefaultCmd = true

	c.PersistentFlags().StringVar(&app.ConfigPath, "config", config.FileName, "project config file")
	c.PersistentFlags().StringVar(&app.LogLevel, "log-level", "error", "log level (debug, info, warn, error)")

	c.AddCommand(DeployCommand(app))
	c.AddCommand(IPFSCommand(app))
	c.AddCommand(SetIPFSCommand(app))

	return c
}

func (a *App) setup(out io.Writer) error {
	log, err := ux.NewLogger(a.LogLevel)
	if err != nil {
		return err
	}
	a.Log = log
	a.UX = ux.NewUserLog(log, out)

	if a.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		a.WorkDir = wd
	}
	a.ConfigPath = a.resolve(a.ConfigPath)
	return nil
}

// Execute runs the CLI and reports any failure once.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := RootCommand(version).ExecuteContext(ctx)
	if err != nil {
		if ux.Logger != nil {
			ux.Logger.PrintError(err)
		} else {
			fmt.Fprintf(os.Stderr, "something went wrong!\n%s\n", err)
		}
	}
	return err
}

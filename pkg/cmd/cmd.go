package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/hbagdi/hitview/pkg/app"
	"github.com/hbagdi/hitview/pkg/config"
	"github.com/hbagdi/hitview/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	configFile string
	noColor    bool
	file       string
	workspace  string
}

// Run executes the hitview command line. args[0] is the program name.
func Run(ctx context.Context, args ...string) error {
	root := newRootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "hitview",
		Short:         "Keep and browse the history of HTTP responses",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "",
		"configuration file (default: hitview.yaml in . or $HOME/.config/hitview)")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", color.NoColor,
		"disable colored output")
	root.PersistentFlags().StringVar(&flags.file, "file", "",
		"request file the responses belong to, anchors the 'file' storage mode")
	root.PersistentFlags().StringVar(&flags.workspace, "workspace", "",
		"workspace root, anchors the 'workspace' storage mode")

	root.AddCommand(newCaptureCmd(flags))
	root.AddCommand(newListCmd(flags))
	root.AddCommand(newShowCmd(flags))
	root.AddCommand(newRemoveCmd(flags))
	root.AddCommand(newClearCmd(flags))
	root.AddCommand(newCopyCmd(flags))
	root.AddCommand(newPruneCmd(flags))
	root.AddCommand(newInspectCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

// withApp loads the configuration, builds the application and runs fn
// through app.WrapCommand.
func (g *globalFlags) withApp(cmd *cobra.Command,
	fn func(ctx context.Context, a *app.App) error) error {
	cfg, cfgErr := config.Load(g.configFile)
	logCfg := config.Log{Level: "info"}
	if cfgErr == nil {
		logCfg = cfg.Log
	}
	logger, err := log.New(logCfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	run := app.WrapCommand(cmd.Name(), logger, func(ctx context.Context) error {
		if cfgErr != nil {
			return cfgErr
		}
		a, err := app.New(ctx, *cfg, app.Opts{
			Out:           cmd.OutOrStdout(),
			In:            cmd.InOrStdin(),
			NoColor:       g.noColor,
			ActiveFile:    g.file,
			WorkspaceRoot: g.workspace,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn("close application", zap.Error(err))
			}
		}()
		return fn(ctx, a)
	})
	return run(cmd.Context())
}

package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/hbagdi/hitview/pkg/app"
	"github.com/hbagdi/hitview/pkg/model"
	"github.com/hbagdi/hitview/pkg/printer"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

const (
	shortIDLength = 8
	timeFormat    = "2006-01-02 15:04:05"
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the response history, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return executeList(cmd, a)
			})
		},
	}
}

func executeList(cmd *cobra.Command, a *app.App) error {
	p := printer.NewPrinter(printer.Opts{Writer: cmd.OutOrStdout(), Mode: printer.ModeNoColor})
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tNAME\tEXTENSION")
	for _, item := range a.Store.Items() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(item.ID),
			item.Created.Format(timeFormat), p.Status(item.Response.StatusCode),
			item.Name, item.Extension)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a response again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				item, err := a.Store.Lookup(args[0])
				if err != nil {
					return fmt.Errorf("'%v': %w", args[0], err)
				}
				if !a.Store.Show(ctx, item) {
					return fmt.Errorf("response '%v' was not shown", item.ID)
				}
				return nil
			})
		},
	}
}

func newRemoveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove responses from the history",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				for _, id := range args {
					item, err := a.Store.Lookup(id)
					if err != nil {
						return fmt.Errorf("'%v': %w", id, err)
					}
					a.Store.Remove(ctx, item)
				}
				return nil
			})
		},
	}
}

func newClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every response from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				a.Store.Clear(ctx)
				return nil
			})
		},
	}
}

func newPruneCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete stored files no history entry refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				a.Store.Prune(ctx)
				return nil
			})
		},
	}
}

func newCopyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy the body of a response to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				body, err := lookupBody(ctx, a, args[0])
				if err != nil {
					return err
				}
				if err := writeClipboard(string(body)); err != nil {
					return fmt.Errorf("copy to clipboard: %v", err)
				}
				return nil
			})
		},
	}
}

func newInspectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <id>",
		Short: "Print the JSON body of a response as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(ctx context.Context, a *app.App) error {
				body, err := lookupBody(ctx, a, args[0])
				if err != nil {
					return err
				}
				if !gjson.ValidBytes(body) {
					return fmt.Errorf("response '%v' has no JSON body", args[0])
				}
				mode := printer.ModeColorConsole
				if flags.noColor {
					mode = printer.ModeNoColor
				}
				p := printer.NewPrinter(printer.Opts{Writer: cmd.OutOrStdout(), Mode: mode})
				return p.Inspect(model.Inspect(gjson.ParseBytes(body).Value()))
			})
		},
	}
}

func lookupBody(ctx context.Context, a *app.App, id string) ([]byte, error) {
	item, err := a.Store.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("'%v': %w", id, err)
	}
	return a.Store.Body(ctx, item)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeVersion(cmd)
		},
	}
}

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/berrythewa/cliprecall/internal/common"
	"github.com/berrythewa/cliprecall/internal/ipc"
	"github.com/berrythewa/cliprecall/internal/types"
	"github.com/berrythewa/cliprecall/pkg/format"
)

const requestTimeout = 5 * time.Second

// displayFlags are the formatting flags shared by list and search.
type displayFlags struct {
	compact  bool
	noColors bool
	noIcons  bool
	maxLines int
	maxWidth int
}

func (d *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&d.compact, "compact", "c", false, "use compact single-line format")
	cmd.Flags().BoolVar(&d.noColors, "no-colors", false, "disable colored output")
	cmd.Flags().BoolVar(&d.noIcons, "no-icons", false, "disable icons in output")
	cmd.Flags().IntVar(&d.maxLines, "max-lines", 10, "maximum lines to show per entry (0 = no limit)")
	cmd.Flags().IntVar(&d.maxWidth, "max-width", 80, "maximum width per line (0 = no limit)")
}

func (d *displayFlags) options(w io.Writer) format.Options {
	opts := format.DefaultOptions()
	if d.compact {
		opts = format.CompactOptions()
	}
	if f, ok := w.(*os.File); !ok || !common.IsTerminal(f) || d.noColors {
		opts.UseColors = false
	}
	if d.noIcons {
		opts.UseIcons = false
	}
	if !d.compact {
		opts.MaxLines = d.maxLines
	}
	opts.MaxWidth = d.maxWidth
	return opts
}

func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		display displayFlags
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query clipboard history",
		Long: `Query the running daemon's clipboard history:
  • List and search entries, newest first
  • Restore an entry to the clipboard
  • Clear the history or show its size

Without a subcommand the most recent entries are listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeHistoryList(cmd, limit, display)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to display (0 = all)")
	display.register(cmd)

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistorySearchCmd(),
		newHistoryRestoreCmd(),
		newHistoryClearCmd(),
		newHistorySizeCmd(),
		newHistoryStatsCmd(),
	)
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var (
		limit   int
		display displayFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clipboard history",
		Long: `List clipboard history entries, newest first.

Examples:
  cliprecall history list                 # Show last 10 entries
  cliprecall history list -n 0            # Show every entry
  cliprecall history list --compact       # Compact single-line format
  cliprecall history list --json          # Machine-readable output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeHistoryList(cmd, limit, display)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries to show (0 = all)")
	display.register(cmd)
	return cmd
}

func newHistorySearchCmd() *cobra.Command {
	var display displayFlags

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search text and URL entries",
		Long: `Search text and URL entries for a case-insensitive substring.
Multiple arguments are joined with spaces. Images never match.

Examples:
  cliprecall history search github
  cliprecall history search "error: connection"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := strings.Join(args, " ")
			var views []types.RecordView
			if err := call(cmd.Context(), ipc.NewRequest(ipc.CmdSearch, "keyword", keyword), &views); err != nil {
				return err
			}
			return printViews(cmd.OutOrStdout(), views, display)
		},
	}
	display.register(cmd)
	return cmd
}

func newHistoryRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id|position>",
		Short: "Copy a history entry back to the clipboard",
		Long: `Write a history entry back to the clipboard and move it to the
front of the history. The entry can be named by its full ID, a unique
ID prefix, or its 1-based position in 'history list'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var views []types.RecordView
			if err := call(ctx, ipc.NewRequest(ipc.CmdList), &views); err != nil {
				return err
			}
			id, err := resolveID(views, args[0])
			if err != nil {
				return err
			}

			var restored types.RecordView
			if err := call(ctx, ipc.NewRequest(ipc.CmdRestore, "id", id), &restored); err != nil {
				return err
			}
			if useJSON {
				return printJSON(cmd.OutOrStdout(), restored)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %s: %s\n", restored.Type, restored.Preview)
			return nil
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !force {
				fmt.Fprint(out, "This will permanently delete clipboard history. Continue? (y/N): ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(response)) {
				case "y", "yes":
				default:
					fmt.Fprintln(out, "Clear cancelled.")
					return nil
				}
			}

			var cleared ipc.SizeData
			if err := call(cmd.Context(), ipc.NewRequest(ipc.CmdClear), &cleared); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Cleared %d entries\n", cleared.Size)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func newHistorySizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Show the number of history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var size ipc.SizeData
			if err := call(cmd.Context(), ipc.NewRequest(ipc.CmdSize), &size); err != nil {
				return err
			}
			if useJSON {
				return printJSON(cmd.OutOrStdout(), size)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d / %d entries\n", size.Size, size.Capacity)
			return nil
		},
	}
}

func newHistoryStatsCmd() *cobra.Command {
	var display displayFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show history statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var views []types.RecordView
			if err := call(ctx, ipc.NewRequest(ipc.CmdList), &views); err != nil {
				return err
			}
			var size ipc.SizeData
			if err := call(ctx, ipc.NewRequest(ipc.CmdSize), &size); err != nil {
				return err
			}

			stats := format.ComputeStats(views, size.Capacity)
			out := cmd.OutOrStdout()
			if useJSON {
				return printJSON(out, stats)
			}
			fmt.Fprintln(out, format.FormatStats(stats, display.options(out)))
			return nil
		},
	}
	display.register(cmd)
	return cmd
}

func executeHistoryList(cmd *cobra.Command, limit int, display displayFlags) error {
	req := ipc.NewRequest(ipc.CmdList)
	if limit > 0 {
		req = ipc.NewRequest(ipc.CmdList, "limit", limit)
	}
	var views []types.RecordView
	if err := call(cmd.Context(), req, &views); err != nil {
		return err
	}
	return printViews(cmd.OutOrStdout(), views, display)
}

func printViews(w io.Writer, views []types.RecordView, display displayFlags) error {
	if useJSON {
		if views == nil {
			views = []types.RecordView{}
		}
		return printJSON(w, views)
	}
	_, err := fmt.Fprintln(w, format.FormatList(views, display.options(w)))
	return err
}

// resolveID maps a full ID, unique ID prefix or 1-based list position to
// a record ID.
func resolveID(views []types.RecordView, ref string) (string, error) {
	if pos, err := strconv.Atoi(ref); err == nil {
		if pos < 1 || pos > len(views) {
			return "", fmt.Errorf("position %d out of range (history has %d entries)", pos, len(views))
		}
		return views[pos-1].ID, nil
	}

	var matches []string
	for _, v := range views {
		if v.ID == ref {
			return v.ID, nil
		}
		if strings.HasPrefix(v.ID, ref) {
			matches = append(matches, v.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no history entry matches %q", ref)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%q is ambiguous (%d entries match)", ref, len(matches))
}

// call sends req to the daemon and decodes the response data into out.
func call(ctx context.Context, req *ipc.Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	socket := cfg.SocketPath()
	resp, err := ipc.SendRequest(ctx, socket, req)
	if errors.Is(err, ipc.ErrDaemonUnavailable) {
		return fmt.Errorf("daemon is not running on %s (start it with 'cliprecall run')", socket)
	}
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

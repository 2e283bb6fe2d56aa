package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/berrythewa/cliprecall/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			socket := cfg.SocketPath()

			if !ipc.IsRunning(socket) {
				if useJSON {
					return printJSON(out, map[string]any{"running": false, "socket": socket})
				}
				fmt.Fprintf(out, "Status: stopped\nSocket: %s\n", socket)
				return nil
			}

			var size ipc.SizeData
			if err := call(cmd.Context(), ipc.NewRequest(ipc.CmdSize), &size); err != nil {
				return err
			}
			pid := readPID()
			if useJSON {
				return printJSON(out, map[string]any{
					"running":  true,
					"socket":   socket,
					"pid":      pid,
					"size":     size.Size,
					"capacity": size.Capacity,
				})
			}
			fmt.Fprintf(out, "Status:  running\nSocket:  %s\n", socket)
			if pid > 0 {
				fmt.Fprintf(out, "PID:     %d\n", pid)
			}
			fmt.Fprintf(out, "History: %d / %d entries\n", size.Size, size.Capacity)
			return nil
		},
	}
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle the history view",
		Long: `Flip the daemon's history-view visibility flag. Bind this to a
global hotkey; front ends subscribed to the daemon show or hide their
history window in response.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var toggle ipc.ToggleData
			if err := call(cmd.Context(), ipc.NewRequest(ipc.CmdToggle), &toggle); err != nil {
				return err
			}
			if useJSON {
				return printJSON(cmd.OutOrStdout(), toggle)
			}
			state := "hidden"
			if toggle.Visible {
				state = "visible"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History view %s\n", state)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"ccsnap/internal/model"
)

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Take scheduled snapshots until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval < 0 {
			return fmt.Errorf("--interval must be positive")
		}

		a, err := newApp("watch")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Watch(cmd.Context(), interval, func(s *model.Snapshot) {
			status := "baseline"
			if s.ChangedFromPrevious != nil {
				status = fmt.Sprintf("%d change(s)", *s.ChangedFromPrevious)
			}
			fmt.Printf("%s  %s  %s\n", s.SnapshotTime.Local().Format(time.DateTime), s.ID, status)
		})
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")

		a, err := newApp("serve")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve(cmd.Context(), listen, func(addr net.Addr) {
			fmt.Printf("Listening on http://%s\n", addr)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "Time between snapshots (default: schedule.interval)")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Address to listen on (default: api.listen)")
}

package main

import (
	"time"

	"github.com/aki307/frext/state"
	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if watch {
				if interval <= 0 {
					interval = a.cfg.PollInterval()
				}
				m := state.NewConnectionMonitor(a.client, interval, a.logger)
				m.OnChange(func(connected bool) {
					stamp := time.Now().Format("15:04:05")
					if connected {
						a.printf("%s connected\n", stamp)
					} else {
						a.printf("%s disconnected\n", stamp)
					}
				})
				m.Run(ctx)
				return nil
			}

			resp := a.client.TestConnection(ctx)
			if !resp.Success || resp.Data == nil {
				return failed("health", resp.Error, resp)
			}
			a.printf("Backend: %s (%s)\n", resp.Data.Status, a.client.URL(""))

			if info := a.client.GetSystemInfo(ctx); info.Success && info.Data != nil {
				a.printf("Version: %s\nOCR:     %s\nGPT:     %s\nStatus:  %s\n",
					info.Data.Version, info.Data.OCREngine, info.Data.GPTModel, info.Data.Status)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling and report connection changes until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval for --watch (default connection.poll_interval_seconds)")
	return cmd
}

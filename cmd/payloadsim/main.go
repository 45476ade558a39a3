package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dglo/payload-sub005/pkg/config"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "payloadsim",
		Short: "payloadsim - pooled DAQ payload pipeline simulator",
		Long: `payloadsim drives the payload factories with a synthetic trigger workload.
Simulated string hubs build hits and beacons, a trigger stage groups them into
trigger requests, and a consumer deep-copies and checks every request. At the
end a JSON report with the pool statistics is printed.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "payloadsim v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the default configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(config.Default())
		},
	})

	root.AddCommand(newRunCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

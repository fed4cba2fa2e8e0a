// Command dropkit-demo runs a self-contained DropKit server: the live
// widget page, the intake and blob endpoints, Prometheus metrics, and a
// local multipart receiver so uploads complete without any external
// infrastructure. Configuration comes from DROPKIT_* environment
// variables overlaid with flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dropkit-demo",
		Short: "Demo server for the DropKit upload widget",
		Long: `dropkit-demo serves a page with a live drag-and-drop upload widget.

Files dropped in the browser stream to the server over the intake
endpoint, get previewed, and upload to a local receiver (or, with
DROPKIT_S3_BUCKET set, to presigned S3 URLs). Prometheus metrics are
exposed on /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// Command dayguard is the host-resident parental-control supervisor's
// operator entrypoint: it starts the long-running service (serve), manages
// schema migrations (migrate), sets the parent password (set-password), and
// renders usage reports from the command line (report). Grounded on the
// teacher's cmd/metron flag-and-run main, generalized to spf13/cobra
// subcommands per the operator CLI named in SPEC_FULL.md's DOMAIN STACK.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "dayguard",
		Short: "Host-resident parental-control supervisor",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "dayguard.json", "path to the configuration file")

	root.AddCommand(serveCmd(), migrateCmd(), setPasswordCmd(), reportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

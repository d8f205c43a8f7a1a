// Command fieldctl is the operator tool for custom fields: offline value
// validation, the policy matrix and a dump of the stored schema.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errInvalid makes the process exit 1 without printing an error: the
// validation result already explains the failure.
var errInvalid = errors.New("values are invalid")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldctl <command>",
		Short:         "Operator tool for custom fields",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "output as JSON")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newPolicyCmd())
	root.AddCommand(newSchemaCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

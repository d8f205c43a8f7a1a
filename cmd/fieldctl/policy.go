package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/policy"
)

func newPolicyCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "policy [--role ROLE]",
		Short: "Print the access rule table, or what one role may do",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := policy.Default()
			rules := table.Rules()
			if role != "" {
				r := domain.Role(role)
				if !r.IsValid() {
					return fmt.Errorf("unknown role %q (one of %s)", role, roleList())
				}
				rules = table.Permitted(r)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if rules == nil {
					rules = []policy.Rule{}
				}
				return writeJSON(cmd, rules)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RESOURCE\tACTION\tROLES")
			for _, r := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Resource, r.Action, joinRoles(r.Roles))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only list the rules granting this role")
	return cmd
}

func joinRoles(roles []domain.Role) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, ", ")
}

func roleList() string {
	return joinRoles(domain.Roles())
}

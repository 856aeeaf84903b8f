package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/service/auth"
)

func policyCmd() *cobra.Command {
	policy := &cobra.Command{Use: "policy", Short: "Inspect the authorization matrix"}
	policy.AddCommand(&cobra.Command{
		Use:   "show [role]",
		Short: "Show which actions each role may perform",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles := auth.Roles()
			if len(args) == 1 {
				roles = []domain.Role{domain.Role(args[0])}
			}

			header := table.Row{"Role"}
			for _, action := range auth.Actions() {
				header = append(header, string(action))
			}

			tw := newTable(cmd.OutOrStdout(), header)
			for _, role := range roles {
				row := table.Row{string(role)}
				for _, action := range auth.Actions() {
					mark := ""
					if auth.Authorize(role, action) {
						mark = "x"
					}
					row = append(row, mark)
				}
				tw.AppendRow(row)
			}
			tw.Render()

			if len(args) == 1 && len(auth.PermittedActions(roles[0])) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "role %q is granted nothing\n", args[0])
			}
			return nil
		},
	})
	return policy
}

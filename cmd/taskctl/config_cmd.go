package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ctlabs/taskrouter/internal/config"
	"github.com/ctlabs/taskrouter/internal/redact"
)

func (c *cli) configCmd() *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Inspect configuration"}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate configuration, then print a redacted summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printConfigSummary(cmd, cfg)
			return nil
		},
	})
	return cfgCmd
}

func printConfigSummary(cmd *cobra.Command, cfg *config.Config) {
	tw := newTable(cmd.OutOrStdout(), table.Row{"Key", "Value"})
	tw.AppendRows([]table.Row{
		{"server.port", strconv.Itoa(cfg.Server.Port)},
		{"server.log_level", cfg.Server.LogLevel},
		{"vault.url", redact.String(cfg.Vault.URL)},
		{"vault.token", secretState(cfg.Vault.Token)},
		{"vault.jwt_auth_path", cfg.Vault.JWTAuthPath},
		{"vault.jwt_role", cfg.Vault.JWTRole},
		{"vault.userpass_auth_path", cfg.Vault.UserpassAuthPath},
		{"redis.url", redact.String(cfg.Redis.URL)},
		{"redis.password", secretState(cfg.Redis.Password)},
		{"task.ttl", cfg.Task.TTL().String()},
	})
	tw.Render()
	fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
}

func secretState(v string) string {
	if v == "" {
		return "(not set)"
	}
	return "(set)"
}

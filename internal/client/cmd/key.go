package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/client/tokencache"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "key", Short: "Manage the local token-sealing key"}
	cmd.AddCommand(&cobra.Command{Use: "init", Short: "Generate the local key", RunE: func(cmd *cobra.Command, args []string) error {
		if err := tokencache.GenerateKey(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Key generated at", tokencache.KeyPath())
		return nil
	}})
	cmd.AddCommand(&cobra.Command{Use: "status", Short: "Show key status", Run: func(cmd *cobra.Command, args []string) {
		if tokencache.KeyExists() {
			fmt.Fprintln(cmd.OutOrStdout(), "Key: ready")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Key: not initialized")
		}
	}})
	return cmd
}

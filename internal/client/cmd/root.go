package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:   "oar",
		Short: "Observe and Report CLI",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Server base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newAuthCmd(&serverURL))
	root.AddCommand(newAccountCmd(&serverURL))
	root.AddCommand(newObsCmd(&serverURL))
	root.AddCommand(newKeyCmd())
	return root
}

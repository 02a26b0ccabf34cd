package cmd

import (
	"fmt"
	"strings"

	"dirsync/core/models"

	"github.com/spf13/cobra"
)

var dirServer serverFlags

// dirCmd represents the dir command
var dirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Show the directory tree published by a server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()

		cli, err := dirServer.newClient(cfg.Client, logg)
		if err != nil {
			return err
		}
		tree, err := cli.GetDir(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		tree.Walk(func(path string, node *models.DirectoryNode) {
			indent := strings.Repeat("  ", strings.Count(path, "/"))
			fmt.Fprintf(out, "%s%s/ (%d files)\n", indent, node.Name, node.FileCount)
		})
		fmt.Fprintf(out, "total: %d files\n", tree.TotalFiles())
		return nil
	},
}

func init() {
	dirServer.bind(dirCmd)
	RootCmd.AddCommand(dirCmd)
}

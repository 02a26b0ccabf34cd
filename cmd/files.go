package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	filesServer serverFlags
	filesUpdate bool
)

// filesCmd represents the files command
var filesCmd = &cobra.Command{
	Use:   "files [prefix]",
	Short: "List files published by a server",
	Long:  `Lists the files whose path starts with prefix. An empty prefix lists everything.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()

		var prefix string
		if len(args) > 0 {
			prefix = args[0]
		}

		cli, err := filesServer.newClient(cfg.Client, logg)
		if err != nil {
			return err
		}
		records, err := cli.ListFiles(cmd.Context(), prefix, filesUpdate)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, rec := range records {
			if rec.Deleted {
				fmt.Fprintf(out, "%s (deleted)\n", rec.Path)
				continue
			}
			fmt.Fprintf(out, "%s (size=%d)\n", rec.Path, rec.Size)
		}
		return nil
	},
}

func init() {
	filesServer.bind(filesCmd)
	filesCmd.Flags().BoolVar(&filesUpdate, "update", false, "Ask the server to re-check files on disk first")
	RootCmd.AddCommand(filesCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/depscope/depscope/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display detailed version information about depscope.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.NewInfo(Version, Commit, Date)
		cmd.Println(info.FullString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var vidFilters filterFlags

var videosCmd = &cobra.Command{
	Use:   "videos <file>",
	Short: "List video ids in the filtered data with their watch URLs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := vidFilters.load(cmd, args[0])
		if err != nil {
			return err
		}
		if len(v.Videos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No video ids available in the current data.")
			return nil
		}
		for _, vid := range v.Videos {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", vid.ID, vid.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(videosCmd)
	vidFilters.register(videosCmd)
}

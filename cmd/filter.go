package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/utils"
	"github.com/spf13/cobra"
)

var (
	filFilters    filterFlags
	filOutputPath string
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Write the filtered rows, with engagement_rate, as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := filFilters.load(cmd, args[0])
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := dataset.WriteCSV(&buf, v.Table); err != nil {
			return err
		}
		if filOutputPath == "" || filOutputPath == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := utils.SafeWriteFile(filOutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d of %d rows to %s\n", v.Rows, v.Total, filOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filFilters.register(filterCmd)
	filterCmd.Flags().StringVarP(&filOutputPath, "output", "o", "", "output CSV path (default stdout)")
}

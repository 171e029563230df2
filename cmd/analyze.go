package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/trendboard/internal/config"
	"github.com/KaramelBytes/trendboard/internal/insights"
	"github.com/KaramelBytes/trendboard/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaFilters    filterFlags
	anaOutputPath string
	anaJSON       bool
	anaSampleRows int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a trending CSV/TSV and produce a concise summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := anaFilters.load(cmd, args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("sample-rows") && anaSampleRows < len(v.Preview) {
			if anaSampleRows < 0 {
				anaSampleRows = 0
			}
			v.Preview = v.Preview[:anaSampleRows]
		}

		var out []byte
		if anaJSON {
			if out, err = utils.PrettyJSON(v); err != nil {
				return err
			}
			out = append(out, '\n')
		} else {
			out = []byte(v.Markdown())
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFilters.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit JSON instead of Markdown")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of head rows to include")
}

func insightOptions(c *cfgpkg.Global) insights.Options {
	opt := insights.DefaultOptions()
	if c.TopChannels > 0 {
		opt.TopChannels = c.TopChannels
	}
	if c.HistogramBins > 0 {
		opt.Bins = c.HistogramBins
	}
	if c.SampleRows > 0 {
		opt.SampleRows = c.SampleRows
	}
	return opt
}

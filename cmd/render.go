package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/trendboard/internal/charts"
	"github.com/KaramelBytes/trendboard/internal/insights"
	"github.com/KaramelBytes/trendboard/internal/utils"
	"github.com/spf13/cobra"
)

var (
	renFilters filterFlags
	renOutDir  string
	renOnly    []string
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render the dashboard charts as PNG files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		v, err := renFilters.load(cmd, args[0])
		if err != nil {
			return err
		}
		opt := charts.Options{Width: c.ChartWidth, Height: c.ChartHeight}

		var written []string
		if len(renOnly) == 0 {
			if written, err = charts.RenderAll(renOutDir, v, opt); err != nil {
				return err
			}
		} else {
			if err := utils.EnsureDir(renOutDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, name := range renOnly {
				path := filepath.Join(renOutDir, name+".png")
				if err := renderOne(path, name, v, opt); err != nil {
					return err
				}
				written = append(written, path)
			}
		}
		for _, p := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", p)
		}
		if len(written) == 0 {
			fmt.Fprintln(os.Stderr, "⚠ Warning: no chart applies to this dataset")
		}
		return nil
	},
}

func renderOne(path, name string, v *insights.View, opt charts.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := charts.Render(f, name, v, opt); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renFilters.register(renderCmd)
	renderCmd.Flags().StringVar(&renOutDir, "out-dir", "charts", "directory for the PNG files")
	renderCmd.Flags().StringSliceVar(&renOnly, "chart", nil, "render only these charts (repeatable)")
}

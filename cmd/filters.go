package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
	"github.com/KaramelBytes/trendboard/internal/server"
	"github.com/spf13/cobra"
)

// filterFlags are the dataset flags shared by analyze, filter, render and videos.
type filterFlags struct {
	channels      []string
	trendingFrom  string
	trendingTo    string
	publishFrom   string
	publishTo     string
	minViews      string
	maxViews      string
	delimiter     string
	defaultFilter bool
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&ff.channels, "channel", nil, "keep only this channel (repeatable; --channel= keeps nothing)")
	f.StringVar(&ff.trendingFrom, "trending-from", "", "earliest trending date (YYYY-MM-DD)")
	f.StringVar(&ff.trendingTo, "trending-to", "", "latest trending date (YYYY-MM-DD)")
	f.StringVar(&ff.publishFrom, "publish-from", "", "earliest publish time (YYYY-MM-DD)")
	f.StringVar(&ff.publishTo, "publish-to", "", "latest publish time (YYYY-MM-DD)")
	f.StringVar(&ff.minViews, "min-views", "", "minimum views")
	f.StringVar(&ff.maxViews, "max-views", "", "maximum views")
	f.StringVar(&ff.delimiter, "delimiter", "", "CSV delimiter: ',', 'tab', ';' or '|' (default: from extension)")
	f.BoolVar(&ff.defaultFilter, "default-filter", false, "apply the dashboard's initial filter when no other filter flag is set")
}

func (ff *filterFlags) loadOptions() (dataset.Options, error) {
	opt := dataset.Options{}
	switch strings.ToLower(ff.delimiter) {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", ff.delimiter)
	}
	return opt, nil
}

// query maps the changed flags onto the dashboard's query parameters so the
// CLI and the server share one parser.
func (ff *filterFlags) query(cmd *cobra.Command) url.Values {
	q := url.Values{}
	f := cmd.Flags()
	if f.Changed("channel") {
		q.Set("channels", "none")
		for _, c := range ff.channels {
			q.Add("channel", c)
		}
	}
	for _, b := range []struct {
		flag, param, val string
	}{
		{"trending-from", "trending_from", ff.trendingFrom},
		{"trending-to", "trending_to", ff.trendingTo},
		{"publish-from", "publish_from", ff.publishFrom},
		{"publish-to", "publish_to", ff.publishTo},
		{"min-views", "min_views", ff.minViews},
		{"max-views", "max_views", ff.maxViews},
	} {
		if f.Changed(b.flag) {
			q.Set(b.param, b.val)
		}
	}
	return q
}

// load reads the file and builds the filtered view. With no filter flags the
// whole table is kept, unless --default-filter asks for the dashboard default.
func (ff *filterFlags) load(cmd *cobra.Command, path string) (*insights.View, error) {
	opt, err := ff.loadOptions()
	if err != nil {
		return nil, err
	}
	f, explicit, err := server.ParseFilter(ff.query(cmd))
	if err != nil {
		return nil, err
	}
	t, err := dataset.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	if !explicit && ff.defaultFilter {
		f = dataset.DefaultFilter(t)
	}
	c, err := ensureConfig()
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", path).Int("rows", t.Len()).Bool("filtered", f.Active()).Msg("dataset loaded")
	return insights.Build(t, f, insightOptions(c)), nil
}

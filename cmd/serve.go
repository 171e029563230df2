package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/trendboard/internal/assets"
	"github.com/KaramelBytes/trendboard/internal/charts"
	cfgpkg "github.com/KaramelBytes/trendboard/internal/config"
	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	srvAddr     string
	srvData     string
	srvNoLottie bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		if srvAddr != "" {
			c.ListenAddr = srvAddr
		}
		logger := newLogger(c, false).With().Str("component", "server").Logger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var fetcher *assets.Fetcher
		if !srvNoLottie && c.LottieURL != "" {
			cache, closeCache := assetCache(ctx, c, logger)
			defer closeCache()
			fetcher = assets.NewFetcher(cache, assets.Options{
				Timeout:     time.Duration(c.HTTPTimeoutSec) * time.Second,
				MaxAttempts: c.RetryMaxAttempts,
				BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
				MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
			}, logger)
		}

		srv := server.New(server.Config{
			Addr:        c.ListenAddr,
			CORSOrigins: c.CORSOrigins,
			Insights:    insightOptions(c),
			Charts:      charts.Options{Width: c.ChartWidth, Height: c.ChartHeight},
			LottieURL:   c.LottieURL,
		}, fetcher, logger)

		if srvData != "" {
			t, err := dataset.LoadFile(srvData, dataset.Options{})
			if err != nil {
				return fmt.Errorf("preload dataset: %w", err)
			}
			srv.SetDataset(t)
			logger.Info().Str("file", srvData).Int("rows", t.Len()).Msg("dataset preloaded")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard at http://%s\n", c.ListenAddr)
		return srv.ListenAndServe(ctx)
	},
}

// assetCache picks the animation cache. An unreachable Redis falls back to
// memory with a warning.
func assetCache(ctx context.Context, c *cfgpkg.Global, logger zerolog.Logger) (assets.Cache, func()) {
	if c.AssetCache != "redis" {
		return assets.NewMemoryCache(), func() {}
	}
	rc := assets.NewRedisCache(c.RedisAddr)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Str("addr", c.RedisAddr).Msg("redis unavailable, using in-memory asset cache")
		_ = rc.Close()
		return assets.NewMemoryCache(), func() {}
	}
	return rc, func() { _ = rc.Close() }
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().StringVar(&srvData, "data", "", "preload this CSV as the current dataset")
	serveCmd.Flags().BoolVar(&srvNoLottie, "no-animation", false, "do not fetch the header animation")
}

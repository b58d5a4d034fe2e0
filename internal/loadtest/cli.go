package loadtest

import (
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/tilescores/pkg/logger"
)

// Default values for command line flags.
const (
	defaultURL     = "http://127.0.0.1:9080"
	defaultCount   = 200
	defaultTop     = 10
	defaultWorkers = 16
	defaultTimeout = 10 * time.Second
	defaultMinTime = 15.0
	defaultMaxTime = 600.0
)

// NewApp builds the score-load command. Summary lines go to out.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "score-load",
		Usage: "fire concurrent add_score calls at a leaderboard and verify the ranking",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: defaultURL, Usage: "base URL of the leaderboard service", EnvVars: []string{"TILESCORES_LOAD_URL"}},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: defaultCount, Usage: "number of scores to submit"},
			&cli.IntFlag{Name: "top", Value: defaultTop, Usage: "limit for the get_top_scores check"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: defaultWorkers, Usage: "concurrent submitters"},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "per-request timeout"},
			&cli.Float64Flag{Name: "min-time", Value: defaultMinTime, Usage: "fastest generated completion time in seconds"},
			&cli.Float64Flag{Name: "max-time", Value: defaultMaxTime, Usage: "slowest generated completion time in seconds"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for generated times (0 = random)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write acknowledged scores to this JSON file"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := configFromContext(c)
			if err != nil {
				return err
			}

			level := "info"
			if c.Bool("verbose") {
				level = "debug"
			}
			if err := logger.SetLevelString(level); err != nil {
				return err
			}

			res, err := Run(c.Context, cfg, logger.Named("loadtest"))
			printStats(out, res.Stats)
			return err
		},
	}
}

func configFromContext(c *cli.Context) (Config, error) {
	cfg := Config{
		BaseURL:    c.String("url"),
		NumScores:  c.Int("count"),
		TopN:       c.Int("top"),
		Workers:    c.Int("workers"),
		Timeout:    c.Duration("timeout"),
		MinTime:    c.Float64("min-time"),
		MaxTime:    c.Float64("max-time"),
		Seed:       c.Int64("seed"),
		OutputFile: c.String("output"),
	}
	if cfg.NumScores <= 0 {
		return cfg, fmt.Errorf("count must be positive, got %d", cfg.NumScores)
	}
	if cfg.TopN <= 0 {
		return cfg, fmt.Errorf("top must be positive, got %d", cfg.TopN)
	}
	if cfg.Workers <= 0 {
		return cfg, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.MaxTime <= cfg.MinTime {
		return cfg, fmt.Errorf("max-time %.2f must exceed min-time %.2f", cfg.MaxTime, cfg.MinTime)
	}
	return cfg, nil
}

func printStats(out io.Writer, st Stats) {
	_, _ = fmt.Fprintf(out, "generated=%d succeeded=%d failed=%d returned=%d duration=%s\n",
		st.Generated, st.Succeeded, st.Failed, st.Returned, st.Duration.Round(time.Millisecond))
}

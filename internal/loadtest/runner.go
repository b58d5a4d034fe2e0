package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/okian/tilescores/internal/domain/model"
	"github.com/okian/tilescores/pkg/logger"
)

// Run executes one load run: health check, concurrent submissions, a ranked
// read and verification of that read against what was submitted.
func Run(ctx context.Context, cfg Config, log logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TopN <= 0 {
		cfg.TopN = cfg.NumScores
	}

	res := Result{Stats: Stats{StartTime: time.Now()}}
	client := newInvokeClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: health check
	log.Info(ctx, "checking service health", logger.String("url", cfg.BaseURL))
	if err := client.healthy(ctx); err != nil {
		return res, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	// Step 2: generate
	subs := generateSubmissions(cfg.NumScores, cfg.MinTime, cfg.MaxTime, cfg.Seed)
	res.Stats.Generated = len(subs)
	log.Info(ctx, "generated submissions", logger.Int("count", len(subs)))

	// Step 3: submit concurrently
	stored, failed := submitAll(ctx, client, subs, cfg.Workers, log)
	res.Stored = stored
	res.Stats.Succeeded = len(stored)
	res.Stats.Failed = failed
	if failed > 0 {
		return res, fmt.Errorf("%w: %d of %d add_score calls failed", ErrSubmit, failed, len(subs))
	}

	if cfg.OutputFile != "" {
		if err := writeSubmissions(cfg.OutputFile, stored); err != nil {
			log.Warn(ctx, "could not write output file", logger.String("file", cfg.OutputFile), logger.Error(err))
		}
	}

	// Step 4: ranked read
	var top []model.Score
	if err := client.invoke(ctx, "get_top_scores", map[string]int{"limit": cfg.TopN}, &top); err != nil {
		return res, err
	}
	res.Top = top
	res.Stats.Returned = len(top)

	// Step 5: verify
	if err := Verify(stored, top, cfg.TopN); err != nil {
		return res, err
	}

	res.Stats.EndTime = time.Now()
	res.Stats.Duration = res.Stats.EndTime.Sub(res.Stats.StartTime)
	log.Info(ctx, "load run passed",
		logger.Int("submitted", res.Stats.Succeeded),
		logger.Int("returned", res.Stats.Returned),
		logger.Duration("duration", res.Stats.Duration),
	)
	return res, nil
}

func submitAll(ctx context.Context, client *invokeClient, subs []Submission, workers int, log logger.Logger) ([]model.Score, int) {
	jobs := make(chan Submission)
	var (
		mu     sync.Mutex
		stored = make([]model.Score, 0, len(subs))
		failed int
		wg     sync.WaitGroup
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				var score model.Score
				err := client.invoke(ctx, "add_score", sub, &score)

				mu.Lock()
				if err != nil {
					failed++
					log.Error(ctx, "add_score failed", logger.String("name", sub.Name), logger.Error(err))
				} else {
					stored = append(stored, score)
				}
				mu.Unlock()
			}
		}()
	}

	for _, sub := range subs {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	return stored, failed
}

func writeSubmissions(path string, scores []model.Score) error {
	data, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

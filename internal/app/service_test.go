package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/tilescores/internal/adapters/repository"
	service "github.com/okian/tilescores/internal/app"
	"github.com/okian/tilescores/internal/domain/model"
	"github.com/okian/tilescores/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type failingStore struct {
	err error
}

func (f *failingStore) Record(context.Context, string, float64) (model.Score, error) {
	return model.Score{}, f.err
}

func (f *failingStore) TopScores(context.Context, int) ([]model.Score, error) {
	return nil, f.err
}

func (f *failingStore) Count(context.Context) (int, error) {
	return 0, f.err
}

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{service.WithDBPath(filepath.Join(t.TempDir(), "scores.db"))}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithDBPath(filepath.Join(t.TempDir(), "scores.db")))

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should report not started", func() {
				So(stats["started"], ShouldEqual, false)
				So(stats, ShouldNotContainKey, "totalScores")
			})
		})

		Convey("When calling operations before starting", func() {
			_, addErr := svc.AddScore(context.Background(), "Alice", 1)
			_, topErr := svc.TopScores(context.Background(), 5)

			Convey("Then they should fail with ErrNotStarted", func() {
				So(errors.Is(addErr, service.ErrNotStarted), ShouldBeTrue)
				So(errors.Is(topErr, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalScores"], ShouldEqual, 0)
			})

			Convey("And starting twice should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a database path that cannot be created", t, func() {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		pre := service.New(service.WithDBPath(blocker))
		So(pre.Start(context.Background()), ShouldBeNil)
		pre.Stop()

		svc := service.New(service.WithDBPath(filepath.Join(blocker, "scores.db")))
		err := svc.Start(context.Background())

		Convey("Then Start should fail with a schema error", func() {
			So(errors.Is(err, repository.ErrSchema), ShouldBeTrue)
		})
	})
}

func TestService_Scores(t *testing.T) {
	Convey("Given a started service with a fixed clock", t, func() {
		fixed := time.Unix(1_720_000_000, 0)
		svc := newStartedService(t, service.WithClock(func() time.Time { return fixed }))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When a score is added and the top ten are read", func() {
			added, err := svc.AddScore(ctx, "Alice", 12.5)
			So(err, ShouldBeNil)
			top, err := svc.TopScores(ctx, 10)

			Convey("Then the read should contain exactly the added score", func() {
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 1)
				So(top[0], ShouldResemble, added)
				So(added.Timestamp, ShouldEqual, fixed.Unix())
			})

			Convey("And stats should count it", func() {
				So(svc.GetStats()["totalScores"], ShouldEqual, 1)
			})
		})

		Convey("When many scores are added concurrently", func() {
			const k = 32
			var wg sync.WaitGroup
			errs := make(chan error, k)
			for i := 0; i < k; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if _, err := svc.AddScore(ctx, "p", float64(k-i)); err != nil {
						errs <- err
					}
				}(i)
			}
			wg.Wait()
			close(errs)

			top, err := svc.TopScores(ctx, k*2)

			Convey("Then every score should be stored with a distinct id", func() {
				So(len(errs), ShouldEqual, 0)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, k)
				seen := map[int64]bool{}
				for _, s := range top {
					seen[*s.ID] = true
				}
				So(len(seen), ShouldEqual, k)
				So(top[0].Time, ShouldEqual, 1)
			})
		})
	})
}

func TestService_StoreErrors(t *testing.T) {
	Convey("Given a service backed by a failing store", t, func() {
		storeErr := errors.New("disk I/O error")
		svc := service.New(service.WithStore(&failingStore{err: storeErr}))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then AddScore should surface the store error", func() {
			_, err := svc.AddScore(context.Background(), "Alice", 1)
			So(errors.Is(err, storeErr), ShouldBeTrue)
		})

		Convey("Then TopScores should surface the store error", func() {
			_, err := svc.TopScores(context.Background(), 5)
			So(errors.Is(err, storeErr), ShouldBeTrue)
		})

		Convey("Then stats should carry the error message", func() {
			So(svc.GetStats()["error"], ShouldEqual, "disk I/O error")
		})
	})
}

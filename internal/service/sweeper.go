package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartSweeper runs Sweep every interval on a gocron scheduler.  The caller
// must Shutdown the returned scheduler.
func StartSweeper(svc *BookingService, interval time.Duration, log *zap.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := svc.Sweep(ctx); err != nil {
				log.Error("periodic sweep failed", zap.Error(err))
			}
		}),
		gocron.WithName("release-expired-holds"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	s.Start()
	return s, nil
}

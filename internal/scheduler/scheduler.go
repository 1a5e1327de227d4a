// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/refi-outreach/internal/service"
)

// DailyScheduler invokes the daily trigger on a cron spec (default
// every morning at 7). The advance itself is the same code path as the
// manual trigger endpoint.
type DailyScheduler struct {
	cronEngine *cron.Cron
	daily      *service.DailyService
	log        *logrus.Logger
	spec       string
}

func NewDailyScheduler(daily *service.DailyService, log *logrus.Logger, spec string) *DailyScheduler {
	return &DailyScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		daily:      daily,
		log:        log,
		spec:       spec,
	}
}

func (s *DailyScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		result, err := s.daily.Run(ctx)
		if err != nil {
			s.log.Errorf("Daily trigger failed: %v", err)
			return
		}
		s.log.Infof("Daily trigger done: %d refi-ready, %d cadences advanced",
			result.RefiReadyCount, result.CadencesAdvanced)
	})
	if err != nil {
		return err
	}
	s.cronEngine.Start()
	s.log.Infof("Daily scheduler started with spec %q", s.spec)
	return nil
}

func (s *DailyScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.log.Info("Daily scheduler stopped")
}

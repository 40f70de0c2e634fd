package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// QueueMonitor periodically logs the depth of the notification queues.
type QueueMonitor struct {
	inspector TaskInspector
	scheduler gocron.Scheduler
	interval  time.Duration
	queues    []string
}

func NewQueueMonitor(inspector TaskInspector, interval time.Duration, queues ...string) (*QueueMonitor, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if len(queues) == 0 {
		queues = []string{QueueCritical, QueueDefault}
	}

	return &QueueMonitor{
		inspector: inspector,
		scheduler: scheduler,
		interval:  interval,
		queues:    queues,
	}, nil
}

// Start schedules the queue report job.
func (m *QueueMonitor) Start() error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(
			func() {
				m.report(context.Background())
			},
		),
	)
	if err != nil {
		return err
	}

	m.scheduler.Start()
	return nil
}

func (m *QueueMonitor) Stop() error {
	return m.scheduler.Shutdown()
}

func (m *QueueMonitor) report(ctx context.Context) {
	for _, queue := range m.queues {
		info, err := m.inspector.GetQueueInfo(ctx, queue)
		if err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("failed to inspect queue")
			continue
		}

		log.Info().
			Str("queue", queue).
			Int("pending", info.Pending).
			Int("active", info.Active).
			Int("retry", info.Retry).
			Int("archived", info.Archived).
			Int("processed", info.Processed).
			Int("failed", info.Failed).
			Msg("queue stats")
	}
}

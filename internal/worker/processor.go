package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/katatrina/call-notifier/internal/calls"
	"github.com/katatrina/call-notifier/internal/notification"
	"github.com/rs/zerolog/log"
)

/*
 This file contains code that will pick up the tasks from the Redis queue and process them.
*/

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// IncomingCallNotifier is implemented by *notification.NotificationService.
type IncomingCallNotifier interface {
	NotifyIncomingCall(ctx context.Context, call calls.Call) (notification.Result, error)
}

type RedisTaskProcessor struct {
	server   *asynq.Server
	notifier IncomingCallNotifier
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, concurrency int, notifier IncomingCallNotifier) *RedisTaskProcessor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger: NewLogger(),
		},
	)

	return &RedisTaskProcessor{
		server:   server,
		notifier: notifier,
	}
}

// Start registers the task handlers for the mux, attaches the mux to the asynq server, and starts the server.
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskNotifyIncomingCall, processor.ProcessTaskNotifyIncomingCall)

	return processor.server.Start(mux)
}

// Shutdown waits for active tasks to finish and stops the server.
func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}

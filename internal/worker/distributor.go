package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
)

const (
	TaskNotifyIncomingCall = "call:notify_incoming"
)

// ErrDuplicateTask is returned when a task with the same ID was already enqueued.
var ErrDuplicateTask = errors.New("task already enqueued")

/*
This file will contain the codes to create tasks and distributes them to the Redis queue.
*/

type TaskDistributor interface {
	DistributeTaskNotifyIncomingCall(ctx context.Context, payload *PayloadNotifyIncomingCall, opts ...asynq.Option) error
	Close() error
}

type RedisTaskDistributor struct {
	client *asynq.Client // client sends tasks to redis queue.
	opts   []asynq.Option
}

// NewTaskDistributor creates a distributor. defaultOpts are applied before per-call options.
func NewTaskDistributor(redisOpt asynq.RedisClientOpt, defaultOpts ...asynq.Option) TaskDistributor {
	client := asynq.NewClient(redisOpt)

	return &RedisTaskDistributor{
		client: client,
		opts:   defaultOpts,
	}
}

func (distributor *RedisTaskDistributor) Close() error {
	return distributor.client.Close()
}

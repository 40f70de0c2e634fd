package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

type TaskInspector interface {
	GetQueueInfo(ctx context.Context, queue string) (*asynq.QueueInfo, error)
	GetTaskInfo(ctx context.Context, queue, taskID string) (*asynq.TaskInfo, error)
	Close() error
}

type RedisTaskInspector struct {
	inspector *asynq.Inspector
}

func NewTaskInspector(redisOpt asynq.RedisClientOpt) TaskInspector {
	return &RedisTaskInspector{
		inspector: asynq.NewInspector(redisOpt),
	}
}

func (i *RedisTaskInspector) GetQueueInfo(ctx context.Context, queue string) (*asynq.QueueInfo, error) {
	return i.inspector.GetQueueInfo(queue)
}

func (i *RedisTaskInspector) GetTaskInfo(ctx context.Context, queue, taskID string) (*asynq.TaskInfo, error) {
	return i.inspector.GetTaskInfo(queue, taskID)
}

func (i *RedisTaskInspector) Close() error {
	return i.inspector.Close()
}

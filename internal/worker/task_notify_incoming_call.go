package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/katatrina/call-notifier/internal/calls"
	"github.com/rs/zerolog/log"
)

// PayloadNotifyIncomingCall contain all data of the task that we want to store in Redis.
type PayloadNotifyIncomingCall struct {
	CallID     string `json:"call_id"`
	CalleeID   string `json:"callee_id"`
	CallerName string `json:"caller_name,omitempty"`
}

func NewPayloadNotifyIncomingCall(call calls.Call) *PayloadNotifyIncomingCall {
	return &PayloadNotifyIncomingCall{
		CallID:     call.ID,
		CalleeID:   call.CalleeID,
		CallerName: call.CallerName,
	}
}

func (p PayloadNotifyIncomingCall) Call() calls.Call {
	return calls.Call{
		ID:         p.CallID,
		CalleeID:   p.CalleeID,
		CallerName: p.CallerName,
	}
}

// NotifyIncomingCallTaskID is unique per call, so a call record never produces two tasks
// while the previous one is still retained.
func NotifyIncomingCallTaskID(callID string) string {
	return fmt.Sprintf("%s:%s", TaskNotifyIncomingCall, callID)
}

func (distributor *RedisTaskDistributor) DistributeTaskNotifyIncomingCall(
	ctx context.Context,
	payload *PayloadNotifyIncomingCall,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	taskID := NotifyIncomingCallTaskID(payload.CallID)
	taskOpts := make([]asynq.Option, 0, len(distributor.opts)+len(opts)+1)
	taskOpts = append(taskOpts, distributor.opts...)
	taskOpts = append(taskOpts, opts...)
	taskOpts = append(taskOpts, asynq.TaskID(taskID))

	task := asynq.NewTask(TaskNotifyIncomingCall, jsonPayload, taskOpts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			log.Info().
				Str("task_id", taskID).
				Str("call_id", payload.CallID).
				Msg("incoming call task already enqueued")
			return ErrDuplicateTask
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().
		Str("type", task.Type()).
		Str("task_id", taskID).
		Str("call_id", payload.CallID).
		Str("queue", info.Queue).
		Int("max_retry", info.MaxRetry).
		Msg("task enqueued")

	return nil
}

func (processor *RedisTaskProcessor) ProcessTaskNotifyIncomingCall(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadNotifyIncomingCall
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	result, err := processor.notifier.NotifyIncomingCall(ctx, payload.Call())
	if err != nil {
		if errors.Is(err, calls.ErrMalformedCall) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Info().Str("type", task.Type()).
		Str("call_id", payload.CallID).
		Bool("sent", result.Sent).
		Msg("task processed")

	return nil
}

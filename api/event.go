package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/call-notifier/internal/event"
	"github.com/katatrina/call-notifier/internal/worker"
	"github.com/rs/zerolog/log"
)

// handleCallCreatedEvent enqueues an incoming call notification for a newly created call document.
func (server *Server) handleCallCreatedEvent(ctx *gin.Context) {
	var req event.FirestoreEvent
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	call, err := req.Call(server.config.CallsCollection)
	if err != nil {
		if errors.Is(err, event.ErrNotCreateEvent) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		log.Warn().
			Err(err).
			Str("document", req.Value.Name).
			Str("request_id", ctx.GetString(requestIDKey)).
			Msg("rejected call event")
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	taskID := worker.NotifyIncomingCallTaskID(call.ID)
	err = server.taskDistributor.DistributeTaskNotifyIncomingCall(ctx, worker.NewPayloadNotifyIncomingCall(call))
	if err != nil {
		if errors.Is(err, worker.ErrDuplicateTask) {
			rsp := gin.H{
				"status":  "duplicate",
				"call_id": call.ID,
				"task_id": taskID,
			}
			info, err := server.taskInspector.GetTaskInfo(ctx, worker.QueueCritical, taskID)
			if err != nil {
				log.Warn().Err(err).Str("task_id", taskID).Msg("failed to inspect duplicate task")
			} else {
				rsp["task_state"] = info.State.String()
			}

			ctx.JSON(http.StatusOK, rsp)
			return
		}

		ctx.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{
		"status":  "enqueued",
		"call_id": call.ID,
		"task_id": taskID,
	})
}

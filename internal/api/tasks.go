package api

import (
	"errors"
	"net/http"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/internal/service"
	"gtask_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type taskRoutes struct {
	ts service.TaskCompletionServiceI
}

func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskCompletionServiceI) {
	r := &taskRoutes{ts: ts}
	h := handler.Group("/tasks")
	{
		h.POST("/complete", r.CompleteTask)
	}
}

type CompleteTaskRequest struct {
	TelegramID int64           `json:"telegram_id"`
	TaskType   string          `json:"task_type"`
	Amount     decimal.Decimal `json:"amount"`
	ReferrerID *int64          `json:"referrer_id"`
}

type CompleteTaskResponse struct {
	Success    bool            `json:"success"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// CompleteTask is the inbound completion trigger. There is no idempotency
// key: a client that retries after a timeout may double-credit if the first
// attempt actually landed.
func (r *taskRoutes) CompleteTask(c *gin.Context) {
	log := logger.Logger()

	var req CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind completion request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := r.ts.CompleteTask(c.Request.Context(), model.TaskCompletion{
		PayeeID:    req.TelegramID,
		TaskType:   req.TaskType,
		Amount:     req.Amount,
		ReferrerID: req.ReferrerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount"})
		case errors.Is(err, service.ErrPayeeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		default:
			log.Error("task completion failed",
				zap.Int64("telegram_id", req.TelegramID),
				zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "credit_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, CompleteTaskResponse{
		Success:    true,
		NewBalance: result.NewBalance,
	})
}

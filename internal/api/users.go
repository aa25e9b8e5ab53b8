package api

import (
	"errors"
	"net/http"
	"strconv"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/internal/service"
	"gtask_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userRoutes struct {
	as service.AccountServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, as service.AccountServiceI) {
	r := &userRoutes{as: as}
	h := handler.Group("/users")
	{
		h.POST("/", r.RegisterAccount)
		h.GET("/:telegram_id", r.GetAccount)
		h.GET("/:telegram_id/stats", r.GetAccountStats)
	}
}

type RegisterAccountRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	ReferrerID *int64 `json:"referrer_id"`
}

func (r *userRoutes) RegisterAccount(c *gin.Context) {
	log := logger.Logger()

	var req RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	acc, err := r.as.Register(c.Request.Context(), req.TelegramID, req.Username, req.FirstName, req.ReferrerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		case errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "already_registered"})
		default:
			log.Error("failed to register account",
				zap.Int64("telegram_id", req.TelegramID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration_failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"telegram_id": acc.TelegramID,
		"username":    acc.Username,
		"balance":     acc.Balance,
	})
}

func (r *userRoutes) GetAccount(c *gin.Context) {
	acc, ok := r.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"telegram_id":     acc.TelegramID,
		"username":        acc.Username,
		"first_name":      acc.FirstName,
		"balance":         acc.Balance,
		"completed_tasks": acc.CompletedTasks,
		"referral_count":  acc.ReferralCount,
		"total_earnings":  acc.TotalEarnings,
		"referrer_id":     acc.ReferrerID,
		"created_at":      acc.CreatedAt,
	})
}

func (r *userRoutes) GetAccountStats(c *gin.Context) {
	acc, ok := r.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":         acc.Balance,
		"total_earnings":  acc.TotalEarnings,
		"completed_tasks": acc.CompletedTasks,
		"referral_count":  acc.ReferralCount,
	})
}

func (r *userRoutes) lookup(c *gin.Context) (*model.Account, bool) {
	log := logger.Logger()

	telegramID := c.Param("telegram_id")
	id, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return nil, false
	}

	acc, err := r.as.GetAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return nil, false
		}
		log.Error("failed to get account", zap.Int64("telegram_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}

	return acc, true
}

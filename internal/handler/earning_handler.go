package handler

import (
	"net/http"

	"campuspay/internal/domain"
	"campuspay/internal/middleware"
	"campuspay/internal/repository"

	"github.com/gin-gonic/gin"
)

type EarningHandler struct {
	earningRepo *repository.EarningRepository
}

func NewEarningHandler(earningRepo *repository.EarningRepository) *EarningHandler {
	return &EarningHandler{earningRepo: earningRepo}
}

// List returns the calling lecturer's earnings rows.
func (h *EarningHandler) List(c *gin.Context) {
	lecturerID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	earnings, total, err := h.earningRepo.ListLecturerEarnings(lecturerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": earnings, "total": total})
}

// Summary returns pending and lifetime earning totals.
func (h *EarningHandler) Summary(c *gin.Context) {
	lecturerID := middleware.GetUserID(c)
	pending, err := h.earningRepo.SumLecturerEarnings(lecturerID, domain.EarningStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	total, err := h.earningRepo.SumLecturerEarnings(lecturerID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pending_kobo":      pending,
		"total_earned_kobo": total,
	})
}

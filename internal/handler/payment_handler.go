package handler

import (
	"errors"
	"log"
	"net/http"

	"campuspay/internal/middleware"
	"campuspay/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type PaySubmissionRequest struct {
	LecturerID   uint   `json:"lecturer_id" binding:"required"`
	SourceType   string `json:"source_type" binding:"required,oneof=assignment_submission test_submission"`
	SourceID     uint   `json:"source_id" binding:"required"`
	SubmissionID uint   `json:"submission_id" binding:"required"`
	AmountKobo   int64  `json:"amount_kobo" binding:"required"`
	Description  string `json:"description"`
}

// PaySubmission charges the student for a graded submission and splits the
// amount between lecturer, partner and platform. Retrying the same
// submission is safe and returns the original result.
func (h *PaymentHandler) PaySubmission(c *gin.Context) {
	var req PaySubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	studentID := middleware.GetUserID(c)
	result, err := h.svc.ProcessSubmissionPayment(service.PaymentInput{
		StudentID:    studentID,
		LecturerID:   req.LecturerID,
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		SubmissionID: req.SubmissionID,
		AmountKobo:   req.AmountKobo,
		Description:  req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidSourceType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrWalletNotFound), errors.Is(err, service.ErrLecturerWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicatePayment):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Printf("[Payment] submission payment failed: student=%d lecturer=%d submission=%d err=%v",
				studentID, req.LecturerID, req.SubmissionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment failed"})
		}
		return
	}
	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

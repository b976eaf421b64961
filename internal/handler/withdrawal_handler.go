package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"campuspay/internal/middleware"
	"campuspay/internal/repository"
	"campuspay/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	svc       *service.WithdrawalService
	repo      *repository.WithdrawalRepository
	auditRepo *repository.AuditRepository
}

func NewWithdrawalHandler(svc *service.WithdrawalService, repo *repository.WithdrawalRepository, auditRepo *repository.AuditRepository) *WithdrawalHandler {
	return &WithdrawalHandler{svc: svc, repo: repo, auditRepo: auditRepo}
}

type CreateWithdrawalRequest struct {
	AmountKobo    int64  `json:"amount_kobo" binding:"required"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
}

// Create files a payout request for the caller.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	w, err := h.svc.Create(service.CreateInput{
		UserID:        userID,
		AmountKobo:    req.AmountKobo,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			log.Printf("[Withdrawal] create failed: user=%d err=%v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
}

// ListMine returns the caller's withdrawal requests.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	reqs, err := h.repo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": reqs})
}

// List returns withdrawal requests for admin review, oldest first.
func (h *WithdrawalHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	reqs, total, err := h.repo.ListByStatus(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": reqs, "total": total})
}

type ReviewRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

func (h *WithdrawalHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)
	adminID := middleware.GetUserID(c)
	w, err := h.svc.Approve(uint(id), adminID, req.Notes)
	if err != nil {
		h.reviewError(c, err, "approve", uint(id))
		return
	}
	h.audit(adminID, "withdrawal_approve", c, uint(id))
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

func (h *WithdrawalHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rejection reason is required"})
		return
	}
	adminID := middleware.GetUserID(c)
	w, err := h.svc.Reject(uint(id), adminID, req.Reason)
	if err != nil {
		h.reviewError(c, err, "reject", uint(id))
		return
	}
	h.audit(adminID, "withdrawal_reject", c, uint(id))
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

type MarkPaidRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required"`
}

func (h *WithdrawalHandler) MarkPaid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetUserID(c)
	w, err := h.svc.MarkPaid(uint(id), adminID, req.PaymentReference)
	if err != nil {
		h.reviewError(c, err, "mark paid", uint(id))
		return
	}
	h.audit(adminID, "withdrawal_paid", c, uint(id))
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

func (h *WithdrawalHandler) reviewError(c *gin.Context, err error, action string, id uint) {
	switch {
	case errors.Is(err, service.ErrWithdrawalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidWithdrawalState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[Withdrawal] %s failed: id=%d err=%v", action, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "action failed"})
	}
}

func (h *WithdrawalHandler) audit(adminID uint, action string, c *gin.Context, id uint) {
	if h.auditRepo == nil {
		return
	}
	h.auditRepo.Record(&adminID, action, "withdrawal", strconv.FormatUint(uint64(id), 10), c.ClientIP(), nil)
}

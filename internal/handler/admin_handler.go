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

type AdminHandler struct {
	ledger      *service.LedgerService
	walletRepo  *repository.WalletRepository
	txnRepo     *repository.TransactionRepository
	reportRepo  *repository.ReportRepository
	settingRepo *repository.SettingRepository
	auditRepo   *repository.AuditRepository
}

func NewAdminHandler(
	ledger *service.LedgerService,
	walletRepo *repository.WalletRepository,
	txnRepo *repository.TransactionRepository,
	reportRepo *repository.ReportRepository,
	settingRepo *repository.SettingRepository,
	auditRepo *repository.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		ledger:      ledger,
		walletRepo:  walletRepo,
		txnRepo:     txnRepo,
		reportRepo:  reportRepo,
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
	}
}

type AdjustmentRequest struct {
	UserID     uint   `json:"user_id" binding:"required"`
	AmountKobo int64  `json:"amount_kobo" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// CreditWallet manually credits a user's wallet.
func (h *AdminHandler) CreditWallet(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetUserID(c)
	txn, err := h.ledger.CreditWallet(req.UserID, req.AmountKobo, adminID, req.Reason)
	if err != nil {
		h.adjustmentError(c, err, "credit", req.UserID)
		return
	}
	h.auditRepo.Record(&adminID, "wallet_credit", "wallet", strconv.FormatUint(uint64(req.UserID), 10), c.ClientIP(), req)
	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// DebitWallet manually debits a user's wallet. Fails if the balance cannot
// cover the amount.
func (h *AdminHandler) DebitWallet(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetUserID(c)
	txn, err := h.ledger.DebitWallet(req.UserID, req.AmountKobo, adminID, req.Reason)
	if err != nil {
		h.adjustmentError(c, err, "debit", req.UserID)
		return
	}
	h.auditRepo.Record(&adminID, "wallet_debit", "wallet", strconv.FormatUint(uint64(req.UserID), 10), c.ClientIP(), req)
	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

type RefundRequest struct {
	UserID        uint   `json:"user_id" binding:"required"`
	TransactionID *uint  `json:"transaction_id"`
	AmountKobo    int64  `json:"amount_kobo" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	RefundType    string `json:"refund_type" binding:"required,oneof=full partial"`
}

// Refund processes an admin refund back into a user's wallet.
func (h *AdminHandler) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetUserID(c)
	refund, err := h.ledger.ProcessRefund(service.RefundInput{
		UserID:        req.UserID,
		TransactionID: req.TransactionID,
		AmountKobo:    req.AmountKobo,
		Reason:        req.Reason,
		RefundType:    req.RefundType,
		AdminID:       adminID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrRefundExceedsOriginal):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[Admin] refund failed: user=%d err=%v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refund failed"})
		}
		return
	}
	h.auditRepo.Record(&adminID, "refund", "wallet", strconv.FormatUint(uint64(req.UserID), 10), c.ClientIP(), req)
	c.JSON(http.StatusCreated, gin.H{"refund": refund})
}

// ListWallets returns all wallets ordered by balance.
func (h *AdminHandler) ListWallets(c *gin.Context) {
	limit, offset := pagination(c)
	wallets, total, err := h.walletRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": wallets, "total": total})
}

// ListTransactions returns the ledger filtered by purpose.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	limit, offset := pagination(c)
	purpose := c.Query("purpose")
	if purpose == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purpose query parameter is required"})
		return
	}
	txns, total, err := h.txnRepo.ListByPurpose(purpose, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "total": total})
}

// Dashboard returns platform aggregates.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.reportRepo.Dashboard()
	if err != nil {
		log.Printf("[Admin] dashboard query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListSettings returns all system settings.
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type SettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateSetting writes a system setting, e.g. the lecturer share percent.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settingRepo.Set(req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	adminID := middleware.GetUserID(c)
	h.auditRepo.Record(&adminID, "setting_update", "setting", req.Key, c.ClientIP(), req)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListAuditLogs returns recent audit entries.
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit, offset := pagination(c)
	logs, err := h.auditRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}

func (h *AdminHandler) adjustmentError(c *gin.Context, err error, action string, userID uint) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[Admin] %s failed: user=%d err=%v", action, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}

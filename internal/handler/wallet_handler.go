package handler

import (
	"net/http"
	"strconv"

	"campuspay/internal/middleware"
	"campuspay/internal/repository"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletRepo *repository.WalletRepository
	txnRepo    *repository.TransactionRepository
}

func NewWalletHandler(walletRepo *repository.WalletRepository, txnRepo *repository.TransactionRepository) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo, txnRepo: txnRepo}
}

// GetBalance returns the current user's wallet, creating it lazily.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.walletRepo.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_kobo":      w.BalanceKobo,
		"total_funded_kobo": w.TotalFundedKobo,
		"total_spent_kobo":  w.TotalSpentKobo,
		"currency":          w.Currency,
	})
}

// GetHistory returns the user's transactions, newest first.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.walletRepo.GetOrCreate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	limit, offset := pagination(c)
	txns, total, err := h.txnRepo.ListByWallet(w.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// GetTransaction returns a single transaction owned by the caller.
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ref := c.Param("reference")
	txn, err := h.txnRepo.GetByReference(ref)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	w, err := h.walletRepo.GetByUserID(userID)
	if err != nil || txn.WalletID != w.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

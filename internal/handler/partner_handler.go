package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"campuspay/internal/domain"
	"campuspay/internal/middleware"
	"campuspay/internal/repository"
	"campuspay/internal/service"

	"github.com/gin-gonic/gin"
)

type PartnerHandler struct {
	svc         *service.PartnerService
	partnerRepo *repository.PartnerRepository
	earningRepo *repository.EarningRepository
}

func NewPartnerHandler(svc *service.PartnerService, partnerRepo *repository.PartnerRepository, earningRepo *repository.EarningRepository) *PartnerHandler {
	return &PartnerHandler{svc: svc, partnerRepo: partnerRepo, earningRepo: earningRepo}
}

type CreatePartnerRequest struct {
	UserID         uint   `json:"user_id" binding:"required"`
	BusinessName   string `json:"business_name" binding:"required"`
	CommissionRate int    `json:"commission_rate"`
}

// Create promotes a user to partner (admin only).
func (h *PartnerHandler) Create(c *gin.Context) {
	var req CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.CreatePartner(req.UserID, req.BusinessName, req.CommissionRate)
	if err != nil {
		if errors.Is(err, service.ErrPartnerExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[Partner] create failed: user=%d err=%v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"partner": p})
}

type ReferralRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
}

// RegisterReferral links the calling lecturer to a partner's code.
func (h *PartnerHandler) RegisterReferral(c *gin.Context) {
	var req ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lecturerID := middleware.GetUserID(c)
	ref, err := h.svc.RegisterReferral(req.ReferralCode, lecturerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "referral code not found"})
		case errors.Is(err, service.ErrAlreadyReferred):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.Printf("[Partner] referral failed: lecturer=%d err=%v", lecturerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "referral failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"referral": ref})
}

// Me returns the caller's partner profile with earnings totals.
func (h *PartnerHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	p, err := h.partnerRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	pending, _ := h.earningRepo.SumPartnerEarnings(p.ID, domain.EarningStatusPending)
	total, _ := h.earningRepo.SumPartnerEarnings(p.ID, "")
	c.JSON(http.StatusOK, gin.H{
		"partner":           p,
		"pending_kobo":      pending,
		"total_earned_kobo": total,
	})
}

// Referrals lists the lecturers this partner referred.
func (h *PartnerHandler) Referrals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	p, err := h.partnerRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	limit, offset := pagination(c)
	refs, err := h.partnerRepo.ListReferrals(p.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": refs})
}

// Earnings lists the partner's commission rows.
func (h *PartnerHandler) Earnings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	p, err := h.partnerRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	limit, offset := pagination(c)
	earnings, total, err := h.earningRepo.ListPartnerEarnings(p.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": earnings, "total": total})
}

// List returns all partners (admin only).
func (h *PartnerHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	partners, total, err := h.partnerRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": partners, "total": total})
}

type PartnerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// SetStatus activates or suspends a partner (admin only).
func (h *PartnerHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req PartnerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == domain.PartnerStatusActive {
		err = h.svc.Activate(uint(id))
	} else {
		err = h.svc.Suspend(uint(id))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type CommissionRateRequest struct {
	CommissionRate int `json:"commission_rate" binding:"required"`
}

// SetCommissionRate changes a partner's rate for future payments (admin only).
func (h *PartnerHandler) SetCommissionRate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req CommissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SetCommissionRate(uint(id), req.CommissionRate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

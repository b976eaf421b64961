package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"campuspay/internal/domain"
	"campuspay/internal/models"
	"campuspay/internal/repository"
)

// NotificationService persists in-app notifications and mirrors them to FCM.
// It implements Notifier, so money services never see a notification error.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.SendToUser(context.Background(), u.FCMToken, notifType, title, body, data)
}

func naira(kobo int64) string {
	return fmt.Sprintf("₦%d.%02d", kobo/100, kobo%100)
}

// PaymentProcessed notifies all three parties of a settled submission payment.
func (s *NotificationService) PaymentProcessed(studentID, lecturerID, partnerUserID uint, split Split, reference string) {
	if err := s.Notify(studentID, "PAYMENT_SENT", "Payment sent",
		naira(split.GrossKobo)+" was charged for your submission",
		map[string]interface{}{"reference": reference, "amount_kobo": split.GrossKobo}); err != nil {
		log.Printf("[Notify] student %d payment notice failed: %v", studentID, err)
	}
	if err := s.Notify(lecturerID, "PAYMENT_RECEIVED", "Payment received",
		"You earned "+naira(split.LecturerKobo)+" from a graded submission",
		map[string]interface{}{"reference": reference, "amount_kobo": split.LecturerKobo}); err != nil {
		log.Printf("[Notify] lecturer %d payment notice failed: %v", lecturerID, err)
	}
	if partnerUserID != 0 && split.PartnerKobo > 0 {
		if err := s.Notify(partnerUserID, "COMMISSION_EARNED", "Commission earned",
			"You earned "+naira(split.PartnerKobo)+" in referral commission",
			map[string]interface{}{"reference": reference, "amount_kobo": split.PartnerKobo}); err != nil {
			log.Printf("[Notify] partner user %d commission notice failed: %v", partnerUserID, err)
		}
	}
}

func (s *NotificationService) WalletAdjusted(userID uint, txType string, amountKobo int64, reason string) {
	title := "Wallet credited"
	body := naira(amountKobo) + " was added to your wallet"
	if txType == domain.TxTypeDebit {
		title = "Wallet debited"
		body = naira(amountKobo) + " was deducted from your wallet"
	}
	if reason != "" {
		body += ": " + reason
	}
	if err := s.Notify(userID, "WALLET_ADJUSTED", title, body,
		map[string]interface{}{"amount_kobo": amountKobo, "type": txType}); err != nil {
		log.Printf("[Notify] user %d adjustment notice failed: %v", userID, err)
	}
}

func (s *NotificationService) RefundProcessed(userID uint, amountKobo int64, reason string) {
	body := naira(amountKobo) + " was refunded to your wallet"
	if reason != "" {
		body += ": " + reason
	}
	if err := s.Notify(userID, "REFUND_PROCESSED", "Refund processed", body,
		map[string]interface{}{"amount_kobo": amountKobo}); err != nil {
		log.Printf("[Notify] user %d refund notice failed: %v", userID, err)
	}
}

func (s *NotificationService) WithdrawalUpdated(userID, withdrawalID uint, status string, amountKobo int64) {
	var title, body string
	switch status {
	case domain.WithdrawalStatusPending:
		title = "Withdrawal requested"
		body = "Your withdrawal request for " + naira(amountKobo) + " is pending review"
	case domain.WithdrawalStatusApproved:
		title = "Withdrawal approved"
		body = "Your withdrawal of " + naira(amountKobo) + " was approved and is being processed"
	case domain.WithdrawalStatusRejected:
		title = "Withdrawal rejected"
		body = "Your withdrawal request for " + naira(amountKobo) + " was rejected"
	case domain.WithdrawalStatusPaid:
		title = "Withdrawal paid"
		body = naira(amountKobo) + " has been sent to your bank account"
	default:
		return
	}
	if err := s.Notify(userID, "WITHDRAWAL_"+status, title, body,
		map[string]interface{}{"withdrawal_id": withdrawalID, "amount_kobo": amountKobo}); err != nil {
		log.Printf("[Notify] user %d withdrawal notice failed: %v", userID, err)
	}
}

func (s *NotificationService) WalletFunded(userID uint, amountKobo int64) {
	if err := s.Notify(userID, "WALLET_FUNDED", "Wallet funded",
		naira(amountKobo)+" was added to your wallet",
		map[string]interface{}{"amount_kobo": amountKobo}); err != nil {
		log.Printf("[Notify] user %d funding notice failed: %v", userID, err)
	}
}

var _ Notifier = (*NotificationService)(nil)

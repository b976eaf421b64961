package router

import (
	"log"
	"time"

	"campuspay/config"
	"campuspay/internal/domain"
	"campuspay/internal/handler"
	"campuspay/internal/middleware"
	"campuspay/internal/repository"
	"campuspay/internal/service"
	"campuspay/internal/ws"
	"campuspay/pkg/paystack"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))
	// Stricter per-user ceiling on endpoints that move money.
	moneyMw := middleware.MoneyRateLimit(middleware.NewRateLimiter(20, 60*time.Second))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	earningRepo := repository.NewEarningRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	hub := ws.NewHub()
	gateway := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey)
	runTx := service.GormTxRunner(db)

	// Services
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc)
	authSvc := service.NewAuthService(cfg, userRepo, walletRepo)
	splitSvc := service.NewSplitService(partnerRepo, settingRepo)
	paymentSvc := service.NewPaymentService(runTx, walletRepo, txnRepo, splitSvc, earningRepo, partnerRepo, notifSvc, hub)
	ledgerSvc := service.NewLedgerService(runTx, walletRepo, txnRepo, refundRepo, notifSvc, hub)
	fundingSvc := service.NewFundingService(runTx, walletRepo, txnRepo, gateway, cfg.Paystack.CallbackURL, notifSvc, hub)
	withdrawalSvc := service.NewWithdrawalService(runTx, withdrawalRepo, walletRepo, txnRepo, earningRepo, notifSvc, hub)
	partnerSvc := service.NewPartnerService(partnerRepo, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo, auditRepo)
	walletHandler := handler.NewWalletHandler(walletRepo, txnRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	fundingHandler := handler.NewFundingHandler(fundingSvc, userRepo, gateway)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc, withdrawalRepo, auditRepo)
	adminHandler := handler.NewAdminHandler(ledgerSvc, walletRepo, txnRepo, reportRepo, settingRepo, auditRepo)
	partnerHandler := handler.NewPartnerHandler(partnerSvc, partnerRepo, earningRepo)
	earningHandler := handler.NewEarningHandler(earningRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", authHandler.Me)
			me.PATCH("/fcm-token", authHandler.UpdateFCMToken)
			me.GET("/notifications", notificationHandler.List)
			me.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
			me.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
		}

		wallet := api.Group("/wallet")
		wallet.Use(authMw)
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.GET("/transactions", walletHandler.GetHistory)
			wallet.GET("/transactions/:reference", walletHandler.GetTransaction)
			wallet.POST("/fund", moneyMw, fundingHandler.Initialize)
			wallet.GET("/fund/:reference/verify", fundingHandler.Verify)
		}

		payments := api.Group("/payments")
		payments.Use(authMw, middleware.RequireRole(domain.RoleStudent))
		{
			payments.POST("/submission", moneyMw, paymentHandler.PaySubmission)
		}

		earnings := api.Group("/earnings")
		earnings.Use(authMw, middleware.RequireRole(domain.RoleLecturer))
		{
			earnings.GET("", earningHandler.List)
			earnings.GET("/summary", earningHandler.Summary)
		}

		withdrawals := api.Group("/withdrawals")
		withdrawals.Use(authMw, middleware.RequireRole(domain.RoleLecturer, domain.RolePartner))
		{
			withdrawals.POST("", moneyMw, withdrawalHandler.Create)
			withdrawals.GET("", withdrawalHandler.ListMine)
		}

		partners := api.Group("/partners")
		partners.Use(authMw)
		{
			partners.POST("/referrals", middleware.RequireRole(domain.RoleLecturer), partnerHandler.RegisterReferral)
			partners.GET("/me", middleware.RequireRole(domain.RolePartner), partnerHandler.Me)
			partners.GET("/me/referrals", middleware.RequireRole(domain.RolePartner), partnerHandler.Referrals)
			partners.GET("/me/earnings", middleware.RequireRole(domain.RolePartner), partnerHandler.Earnings)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/wallets", adminHandler.ListWallets)
			admin.GET("/transactions", adminHandler.ListTransactions)
			admin.POST("/wallets/credit", adminHandler.CreditWallet)
			admin.POST("/wallets/debit", adminHandler.DebitWallet)
			admin.POST("/refunds", adminHandler.Refund)
			admin.GET("/withdrawals", withdrawalHandler.List)
			admin.POST("/withdrawals/:id/approve", withdrawalHandler.Approve)
			admin.POST("/withdrawals/:id/reject", withdrawalHandler.Reject)
			admin.POST("/withdrawals/:id/paid", withdrawalHandler.MarkPaid)
			admin.POST("/partners", partnerHandler.Create)
			admin.GET("/partners", partnerHandler.List)
			admin.PATCH("/partners/:id/status", partnerHandler.SetStatus)
			admin.PATCH("/partners/:id/commission", partnerHandler.SetCommissionRate)
			admin.GET("/settings", adminHandler.ListSettings)
			admin.PUT("/settings", adminHandler.UpdateSetting)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}

		api.POST("/webhooks/paystack", fundingHandler.PaystackWebhook)
	}

	r.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, hub))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
	})

	return r
}

package domain

const (
	RoleStudent  = "STUDENT"
	RoleLecturer = "LECTURER"
	RolePartner  = "PARTNER"
	RoleAdmin    = "ADMIN"
)

const (
	TxTypeCredit = "credit"
	TxTypeDebit  = "debit"
)

const (
	TxPurposeFunding           = "funding"
	TxPurposeAssignmentPayment = "assignment_payment"
	TxPurposeTestPayment       = "test_payment"
	TxPurposeRefund            = "refund"
	TxPurposeAdjustment        = "adjustment"
	TxPurposeWithdrawal        = "withdrawal"
)

const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
)

const (
	SourceTypeAssignmentSubmission = "assignment_submission"
	SourceTypeTestSubmission       = "test_submission"
)

const (
	PartnerStatusActive    = "active"
	PartnerStatusSuspended = "suspended"
)

const (
	EarningStatusPending   = "pending"
	EarningStatusWithdrawn = "withdrawn"
)

const (
	RefundTypeFull    = "full"
	RefundTypePartial = "partial"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusPaid     = "paid"
)

// System setting keys for the revenue split policy. Values are integer
// percentages stored as strings.
const (
	SettingLecturerSharePercent  = "lecturer_share_percent"
	SettingDefaultCommissionRate = "default_commission_rate"
)

// Compiled defaults used when system_settings has no override.
const (
	DefaultLecturerSharePercent  = 50
	DefaultCommissionRatePercent = 15
)

// Wallet funding limits in kobo (NGN x 100).
const (
	MinFundingKobo = 100 * 100
	MaxFundingKobo = 5_000_000 * 100
)

package backend

import (
	"github.com/jrsteele09/npl-portal/internal/utils"
)

// DashboardStats are the headline portfolio figures
type DashboardStats struct {
	TotalMembers           int     `json:"total_members"`
	TotalLoans             int     `json:"total_loans"`
	TotalNPLLoans          int     `json:"total_npl_loans"`
	TotalOutstandingAmount float64 `json:"total_outstanding_amount"`
	TotalArrearsAmount     float64 `json:"total_arrears_amount"`
	RecoveryRatePercent    float64 `json:"recovery_rate_percent"`
	CallsToday             int     `json:"calls_today"`
	PromisesDueToday       int     `json:"promises_due_today"`
	EscalationsPending     int     `json:"escalations_pending"`
}

// NPLPercentage is the share of loans that are non-performing
func (s DashboardStats) NPLPercentage() float64 {
	if s.TotalLoans == 0 {
		return 0
	}
	return float64(s.TotalNPLLoans) / float64(s.TotalLoans) * 100
}

// ArrearsPercentage is arrears as a share of the outstanding amount
func (s DashboardStats) ArrearsPercentage() float64 {
	if s.TotalOutstandingAmount == 0 {
		return 0
	}
	return s.TotalArrearsAmount / s.TotalOutstandingAmount * 100
}

type Member struct {
	ID               string          `json:"id"`
	MemberNumber     string          `json:"member_number"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Email            string          `json:"email"`
	PhoneNumber      string          `json:"phone_number"`
	IDNumber         string          `json:"id_number"`
	Address          string          `json:"address"`
	BranchCode       string          `json:"branch_code"`
	RegistrationDate utils.Timestamp `json:"registration_date"`
	Status           string          `json:"status"`
	CreatedAt        utils.Timestamp `json:"created_at"`
}

func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

type MemberCreate struct {
	MemberNumber string `json:"member_number"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	IDNumber     string `json:"id_number"`
	Address      string `json:"address"`
	BranchCode   string `json:"branch_code"`
}

// Loan statuses
const (
	LoanPerforming    = "performing"
	LoanNonPerforming = "non_performing"
	LoanDefaulted     = "defaulted"
	LoanClosed        = "closed"
)

type LoanAccount struct {
	ID                 string           `json:"id"`
	LoanNumber         string           `json:"loan_number"`
	MemberID           string           `json:"member_id"`
	MemberNumber       string           `json:"member_number"`
	LoanType           string           `json:"loan_type"` // branch or mobile
	PrincipalAmount    float64          `json:"principal_amount"`
	OutstandingBalance float64          `json:"outstanding_balance"`
	MonthlyPayment     float64          `json:"monthly_payment"`
	InterestRate       float64          `json:"interest_rate"`
	LoanTermMonths     int              `json:"loan_term_months"`
	DisbursementDate   utils.Timestamp  `json:"disbursement_date"`
	MaturityDate       utils.Timestamp  `json:"maturity_date"`
	LastPaymentDate    *utils.Timestamp `json:"last_payment_date"`
	DaysInArrears      int              `json:"days_in_arrears"`
	ArrearsAmount      float64          `json:"arrears_amount"`
	Status             string           `json:"status"`
	BranchCode         string           `json:"branch_code"`
	CreatedAt          utils.Timestamp  `json:"created_at"`
}

func (l LoanAccount) NonPerforming() bool {
	return l.Status == LoanNonPerforming
}

// ArrearsPercentage is arrears as a share of the outstanding balance
func (l LoanAccount) ArrearsPercentage() float64 {
	if l.OutstandingBalance == 0 {
		return 0
	}
	return l.ArrearsAmount / l.OutstandingBalance * 100
}

type LoanCreate struct {
	LoanNumber         string          `json:"loan_number"`
	MemberID           string          `json:"member_id"`
	MemberNumber       string          `json:"member_number"`
	LoanType           string          `json:"loan_type"`
	PrincipalAmount    float64         `json:"principal_amount"`
	OutstandingBalance float64         `json:"outstanding_balance"`
	MonthlyPayment     float64         `json:"monthly_payment"`
	InterestRate       float64         `json:"interest_rate"`
	LoanTermMonths     int             `json:"loan_term_months"`
	DisbursementDate   utils.Timestamp `json:"disbursement_date"`
	BranchCode         string          `json:"branch_code"`
}

// MemberListParams filter GET /members. Zero values are omitted.
type MemberListParams struct {
	Skip   int
	Limit  int
	Search string
}

// LoanListParams filter GET /loans. Zero values are omitted.
type LoanListParams struct {
	Skip         int
	Limit        int
	Status       string
	MemberSearch string
}

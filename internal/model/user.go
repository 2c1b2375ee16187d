package model

import "time"

// User 结构体表示用户模型
type User struct {
	ID               string            `json:"id"`
	Username         string            `json:"username"`
	DisplayName      string            `json:"display_name"`
	Email            string            `json:"email"`
	Bio              string            `json:"bio,omitempty"`
	Occupation       []string          `json:"occupation,omitempty"`
	Avatar           string            `json:"avatar,omitempty"`
	CoverImage       string            `json:"cover_image,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	FinancialProfile *FinancialProfile `json:"financial_profile,omitempty"`
	FollowersCount   int               `json:"followers_count"`
	FollowingCount   int               `json:"following_count"`
	PostsCount       int               `json:"posts_count"`
}

// FinancialProfile 用户的财务资料，两个主开关控制对其他用户的整体可见性
type FinancialProfile struct {
	TotalIncome       float64        `json:"total_income,omitempty"`
	IncomeBreakdown   []IncomeSource `json:"income_breakdown,omitempty"`
	ShowIncomeAmounts bool           `json:"show_income_amounts,omitempty"`
	CreditCards       []CreditCard   `json:"credit_cards,omitempty"`
	BankAccounts      []BankAccount  `json:"bank_accounts,omitempty"`
	Investments       []Investment   `json:"investments,omitempty"`
	Loans             []Loan         `json:"loans,omitempty"`
	ShowIncome        bool           `json:"show_income"`
	ShowAssets        bool           `json:"show_assets"`
	ShowBankAccounts  *bool          `json:"show_bank_accounts,omitempty"`
	ShowCreditCards   *bool          `json:"show_credit_cards,omitempty"`
	ShowInvestments   *bool          `json:"show_investments,omitempty"`
	ShowLoans         *bool          `json:"show_loans,omitempty"`
}

type IncomeType string

const (
	IncomeSalary     IncomeType = "salary"
	IncomeBusiness   IncomeType = "business"
	IncomeInvestment IncomeType = "investment"
	IncomePassive    IncomeType = "passive"
	IncomeOther      IncomeType = "other"
)

type IncomeFrequency string

const (
	FrequencyMonthly IncomeFrequency = "monthly"
	FrequencyYearly  IncomeFrequency = "yearly"
	FrequencyOneTime IncomeFrequency = "one-time"
)

type IncomeSource struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    float64         `json:"amount"`
	Type      IncomeType      `json:"type"`
	Frequency IncomeFrequency `json:"frequency"`
}

type BankAccountType string

const (
	AccountChecking   BankAccountType = "checking"
	AccountSavings    BankAccountType = "savings"
	AccountInvestment BankAccountType = "investment"
)

type BankAccount struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        BankAccountType `json:"type"`
	Description string          `json:"description,omitempty"`
}

type CreditCard struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"` // Visa、Mastercard 等
	Benefits []string `json:"benefits,omitempty"`
}

type InvestmentType string

const (
	InvestStocks     InvestmentType = "stocks"
	InvestCrypto     InvestmentType = "crypto"
	InvestRealEstate InvestmentType = "real-estate"
	InvestBonds      InvestmentType = "bonds"
	InvestOther      InvestmentType = "other"
)

type Investment struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       InvestmentType `json:"type"`
	Category   string         `json:"category,omitempty"`
	Value      *float64       `json:"value,omitempty"`
	ReturnRate *float64       `json:"return_rate,omitempty"`
}

type LoanType string

const (
	LoanStudent  LoanType = "student"
	LoanMortgage LoanType = "mortgage"
	LoanAuto     LoanType = "auto"
	LoanPersonal LoanType = "personal"
	LoanBusiness LoanType = "business"
	LoanOther    LoanType = "other"
)

type Loan struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   LoanType `json:"type"`
	Lender string   `json:"lender,omitempty"`
}

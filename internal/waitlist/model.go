package waitlist

import "time"

// Request is one waitlist signup.
type Request struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" binding:"required"`
	Email            string    `json:"email" binding:"required,email"`
	Company          string    `json:"company" binding:"required"`
	AnnualRevenue    string    `json:"annualRevenue" binding:"required"`
	Role             string    `json:"role" binding:"required"`
	ContractVolume   string    `json:"contractVolume" binding:"required"`
	BillingChallenge string    `json:"challenge" binding:"required"`
	CreatedAt        time.Time `json:"createdAt"`
}

// fieldLabels names each form field the way the signup form shows it.
var fieldLabels = map[string]string{
	"Name":             "Name",
	"Email":            "Email",
	"Company":          "Company",
	"AnnualRevenue":    "Annual revenue",
	"Role":             "Role",
	"ContractVolume":   "Contract volume",
	"BillingChallenge": "Biggest challenge",
}

// Options offered by the signup form.
var (
	RevenueOptions = []string{"<$5M", "$5M - $20M", "$20M - $50M", "$50M - $200M", "$200M+"}
	RoleOptions    = []string{"CFO / Finance", "RevOps", "COO", "Founder / CEO", "Other"}
)

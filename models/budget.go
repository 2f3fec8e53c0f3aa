package models

import (
	"encoding/json"
	"time"
)

// Expense statuses. The forward path is planned -> approved -> paid;
// planned -> paid is allowed, nothing transitions back to planned.
const (
	ExpensePlanned  = "planned"
	ExpenseApproved = "approved"
	ExpensePaid     = "paid"
)

const (
	BudgetActive   = "active"
	BudgetArchived = "archived"
)

// DefaultCategories seed every lazily created budget.
var DefaultCategories = []string{
	"pre-production",
	"cast",
	"crew",
	"equipment",
	"location",
	"post-production",
	"other",
}

// Budget is a project's versioned financial plan, stored as one document
// per project. Version increments exactly once per structural edit (the
// category list or the total budget), and the pre-edit state is pushed
// onto PreviousVersions first. Expense writes never bump the version.
type Budget struct {
	ID               string           `json:"id"`
	ProjectID        string           `json:"projectId"`
	Currency         string           `json:"currency"`
	TotalBudget      float64          `json:"totalBudget"`
	Status           string           `json:"status"`
	Version          int              `json:"version"`
	Categories       []BudgetCategory `json:"categories"`
	Expenses         []Expense        `json:"expenses"`
	PreviousVersions []BudgetSnapshot `json:"previousVersions"`
	Settings         BudgetSettings   `json:"settings"`
	CreatedBy        string           `json:"createdBy"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type BudgetCategory struct {
	Name     string  `json:"name"`
	Budgeted float64 `json:"budgeted"`
	Spent    float64 `json:"spent"`
}

type Expense struct {
	ID            string     `json:"id"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	Date          string     `json:"date"`
	Vendor        string     `json:"vendor,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	CreatedBy     string     `json:"createdBy"`
	ApprovedBy    string     `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type BudgetSettings struct {
	RequireApproval bool    `json:"requireApproval"`
	ApprovalLimit   float64 `json:"approvalLimit"`
}

// BudgetSnapshot is a full copy of the document taken immediately before a
// structural edit, tagged with the pre-edit version. Snapshots are never
// pruned. Data omits the snapshot array itself.
type BudgetSnapshot struct {
	Version    int             `json:"version"`
	SnapshotAt time.Time       `json:"snapshotAt"`
	ChangedBy  string          `json:"changedBy"`
	Data       json.RawMessage `json:"data"`
}

// BudgetSummary is derived on read, never stored.
type BudgetSummary struct {
	TotalBudget    float64 `json:"totalBudget"`
	TotalSpent     float64 `json:"totalSpent"`
	PercentageUsed float64 `json:"percentageUsed"`
	OverBudget     bool    `json:"overBudget"`
}

// Summary recomputes the spend rollup. Only approved and paid expenses
// count as spent; planned ones do not.
func (b *Budget) Summary() BudgetSummary {
	var spent float64
	for _, e := range b.Expenses {
		if e.Status == ExpenseApproved || e.Status == ExpensePaid {
			spent += e.Amount
		}
	}
	s := BudgetSummary{
		TotalBudget: b.TotalBudget,
		TotalSpent:  spent,
		OverBudget:  spent > b.TotalBudget,
	}
	if b.TotalBudget > 0 {
		s.PercentageUsed = spent / b.TotalBudget
	}
	return s
}

// IsOverWarningThreshold reports whether spend has crossed the given
// fraction of the total budget (e.g. 0.9 for 90%). Advisory only.
func (b *Budget) IsOverWarningThreshold(threshold float64) bool {
	return b.Summary().TotalSpent >= threshold*b.TotalBudget
}

// HasCategory checks name against the budget's current category set.
func (b *Budget) HasCategory(name string) bool {
	for _, c := range b.Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

type CreateExpenseRequest struct {
	Category      string  `json:"category" binding:"required"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Status        string  `json:"status" binding:"omitempty,oneof=planned approved paid"`
	Date          string  `json:"date"`
	Vendor        string  `json:"vendor"`
	PaymentMethod string  `json:"paymentMethod"`
}

type UpdateCategoriesRequest struct {
	Categories []BudgetCategory `json:"categories" binding:"required,min=1"`
}

type UpdateTotalBudgetRequest struct {
	TotalBudget float64 `json:"totalBudget" binding:"required,gte=0"`
	Currency    string  `json:"currency"`
}

type UpdateBudgetSettingsRequest struct {
	RequireApproval bool    `json:"requireApproval"`
	ApprovalLimit   float64 `json:"approvalLimit" binding:"gte=0"`
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/store"
)

const defaultWarnThreshold = 0.9

// BudgetService owns the per-project budget document: categories,
// expenses, the structural version counter and its snapshot history.
// Structural edits (category list, total budget) snapshot the pre-edit
// state and bump the version; expense writes never do.
type BudgetService struct {
	store         store.DocumentStore
	warnThreshold float64
}

func NewBudgetService(st store.DocumentStore) *BudgetService {
	threshold := defaultWarnThreshold
	if raw := os.Getenv("BUDGET_WARN_THRESHOLD"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 && parsed <= 1 {
			threshold = parsed
		}
	}
	return &BudgetService{store: st, warnThreshold: threshold}
}

// GetOrCreateDefault finds the project's active budget or lazily creates
// one with the default category set. The exists-check and the create are
// separate storage calls, so two concurrent first writes can both create;
// the storage layer does not enforce one active budget per project.
func (s *BudgetService) GetOrCreateDefault(ctx context.Context, projectID, creatorID string) (*models.Budget, error) {
	docs, err := s.store.Find(ctx, store.CollectionBudgets, store.Filter{
		"projectId": projectID,
		"status":    models.BudgetActive,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		var budget models.Budget
		if err := json.Unmarshal(docs[0].Data, &budget); err != nil {
			return nil, err
		}
		return &budget, nil
	}

	categories := make([]models.BudgetCategory, 0, len(models.DefaultCategories))
	for _, name := range models.DefaultCategories {
		categories = append(categories, models.BudgetCategory{Name: name})
	}

	budget := models.Budget{
		ID:               uuid.New().String(),
		ProjectID:        projectID,
		Currency:         "USD",
		Status:           models.BudgetActive,
		Version:          1,
		Categories:       categories,
		Expenses:         []models.Expense{},
		PreviousVersions: []models.BudgetSnapshot{},
		Settings:         models.BudgetSettings{},
		CreatedBy:        creatorID,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := s.save(ctx, budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (s *BudgetService) Get(ctx context.Context, budgetID string) (*models.Budget, error) {
	doc, err := s.store.FindByID(ctx, store.CollectionBudgets, budgetID)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: budget %s", ErrNotFound, budgetID)
	}
	if err != nil {
		return nil, err
	}
	var budget models.Budget
	if err := json.Unmarshal(doc.Data, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

// CreateExpense validates the category against the budget's current
// category set and applies the approval-limit override: with
// requireApproval on and amount above approvalLimit, the expense lands
// as planned no matter what status the caller sent. No version bump.
func (s *BudgetService) CreateExpense(ctx context.Context, budgetID string, req models.CreateExpenseRequest, actorID string) (*models.Expense, *models.BudgetSummary, error) {
	budget, err := s.Get(ctx, budgetID)
	if err != nil {
		return nil, nil, err
	}
	if !budget.HasCategory(req.Category) {
		return nil, nil, fmt.Errorf("%w: category %q is not in this budget", ErrValidation, req.Category)
	}

	status := req.Status
	if status == "" {
		status = models.ExpensePlanned
	}
	if budget.Settings.RequireApproval && req.Amount > budget.Settings.ApprovalLimit {
		status = models.ExpensePlanned
	}

	expense := models.Expense{
		ID:            uuid.New().String(),
		Category:      req.Category,
		Description:   req.Description,
		Amount:        req.Amount,
		Status:        status,
		Date:          req.Date,
		Vendor:        req.Vendor,
		PaymentMethod: req.PaymentMethod,
		CreatedBy:     actorID,
		CreatedAt:     time.Now(),
	}

	budget.Expenses = append(budget.Expenses, expense)
	s.recalcCategorySpend(budget)
	budget.UpdatedAt = time.Now()
	if err := s.save(ctx, *budget); err != nil {
		return nil, nil, err
	}

	summary := budget.Summary()
	return &expense, &summary, nil
}

// UpdateCategories replaces the category list. This is one of the two
// structural edits: the pre-edit document is snapshotted first, then the
// version increments.
func (s *BudgetService) UpdateCategories(ctx context.Context, budgetID string, categories []models.BudgetCategory, actorID string) (*models.Budget, error) {
	budget, err := s.Get(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.pushSnapshot(budget, actorID); err != nil {
		return nil, err
	}

	budget.Categories = categories
	s.recalcCategorySpend(budget)
	budget.Version++
	budget.UpdatedAt = time.Now()
	if err := s.save(ctx, *budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// UpdateTotalBudget is the other structural edit path.
func (s *BudgetService) UpdateTotalBudget(ctx context.Context, budgetID string, total float64, currency, actorID string) (*models.Budget, error) {
	budget, err := s.Get(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.pushSnapshot(budget, actorID); err != nil {
		return nil, err
	}

	budget.TotalBudget = total
	if currency != "" {
		budget.Currency = currency
	}
	budget.Version++
	budget.UpdatedAt = time.Now()
	if err := s.save(ctx, *budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// UpdateSettings changes the approval policy. Not a structural edit.
func (s *BudgetService) UpdateSettings(ctx context.Context, budgetID string, settings models.BudgetSettings) (*models.Budget, error) {
	budget, err := s.Get(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	budget.Settings = settings
	budget.UpdatedAt = time.Now()
	if err := s.save(ctx, *budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// Expense transition actions.
const (
	ExpenseActionApprove  = "approve"
	ExpenseActionMarkPaid = "markPaid"
)

// TransitionExpense applies approve or markPaid. Permission levels
// (admin for approve, write for markPaid) are enforced upstream by the
// handler against the parent project.
func (s *BudgetService) TransitionExpense(ctx context.Context, budgetID, expenseID, action, actorID string) (*models.Expense, error) {
	budget, err := s.Get(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	for i := range budget.Expenses {
		if budget.Expenses[i].ID != expenseID {
			continue
		}
		now := time.Now()
		switch action {
		case ExpenseActionApprove:
			budget.Expenses[i].Status = models.ExpenseApproved
			budget.Expenses[i].ApprovedBy = actorID
			budget.Expenses[i].ApprovedAt = &now
		case ExpenseActionMarkPaid:
			budget.Expenses[i].Status = models.ExpensePaid
			budget.Expenses[i].PaidAt = &now
		default:
			return nil, fmt.Errorf("%w: unknown expense action %q", ErrValidation, action)
		}

		s.recalcCategorySpend(budget)
		budget.UpdatedAt = now
		if err := s.save(ctx, *budget); err != nil {
			return nil, err
		}
		expense := budget.Expenses[i]
		return &expense, nil
	}
	return nil, fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
}

// DeleteExpense removes the line item outright. No tombstone and no
// snapshot; only structural edits are snapshotted.
func (s *BudgetService) DeleteExpense(ctx context.Context, budgetID, expenseID string) (*models.BudgetSummary, error) {
	budget, err := s.Get(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	found := false
	expenses := make([]models.Expense, 0, len(budget.Expenses))
	for _, e := range budget.Expenses {
		if e.ID == expenseID {
			found = true
			continue
		}
		expenses = append(expenses, e)
	}
	if !found {
		return nil, fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}

	budget.Expenses = expenses
	s.recalcCategorySpend(budget)
	budget.UpdatedAt = time.Now()
	if err := s.save(ctx, *budget); err != nil {
		return nil, err
	}
	summary := budget.Summary()
	return &summary, nil
}

// IsOverWarningThreshold flags a near-limit budget without blocking any
// write. Threshold comes from BUDGET_WARN_THRESHOLD, default 90%.
func (s *BudgetService) IsOverWarningThreshold(budget *models.Budget) bool {
	return budget.IsOverWarningThreshold(s.warnThreshold)
}

// pushSnapshot appends the full pre-edit state, tagged with the pre-edit
// version, actor and timestamp. The copy omits PreviousVersions so the
// history does not nest.
func (s *BudgetService) pushSnapshot(budget *models.Budget, actorID string) error {
	snapshot := *budget
	snapshot.PreviousVersions = nil
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	budget.PreviousVersions = append(budget.PreviousVersions, models.BudgetSnapshot{
		Version:    budget.Version,
		SnapshotAt: time.Now(),
		ChangedBy:  actorID,
		Data:       data,
	})
	return nil
}

// recalcCategorySpend rolls approved+paid expense amounts into each
// category's spent figure. Expenses whose category no longer exists do
// not roll up anywhere.
func (s *BudgetService) recalcCategorySpend(budget *models.Budget) {
	spent := make(map[string]float64)
	for _, e := range budget.Expenses {
		if e.Status == models.ExpenseApproved || e.Status == models.ExpensePaid {
			spent[e.Category] += e.Amount
		}
	}
	for i := range budget.Categories {
		budget.Categories[i].Spent = spent[budget.Categories[i].Name]
	}
}

func (s *BudgetService) save(ctx context.Context, budget models.Budget) error {
	doc, err := store.Marshal(budget.ID, budget)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionBudgets, doc)
}

package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateboard/slateboard-api/models"
	"github.com/slateboard/slateboard-api/store"
)

func newBudgetFixture(t *testing.T) (*BudgetService, *models.Budget) {
	t.Helper()
	s := NewBudgetService(store.NewMemoryStore())
	budget, err := s.GetOrCreateDefault(context.Background(), "proj-1", "user-1")
	require.NoError(t, err)
	return s, budget
}

func TestGetOrCreateDefault(t *testing.T) {
	s, budget := newBudgetFixture(t)

	assert.Equal(t, 1, budget.Version)
	assert.Equal(t, "USD", budget.Currency)
	assert.Equal(t, models.BudgetActive, budget.Status)
	assert.Empty(t, budget.Expenses)
	assert.Empty(t, budget.PreviousVersions)

	require.Len(t, budget.Categories, len(models.DefaultCategories))
	for i, name := range models.DefaultCategories {
		assert.Equal(t, name, budget.Categories[i].Name)
	}

	// Second call finds the existing document instead of creating.
	again, err := s.GetOrCreateDefault(context.Background(), "proj-1", "user-2")
	require.NoError(t, err)
	assert.Equal(t, budget.ID, again.ID)

	// Separate projects get separate budgets.
	other, err := s.GetOrCreateDefault(context.Background(), "proj-2", "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, budget.ID, other.ID)
}

func TestCreateExpenseDefaultsToPlanned(t *testing.T) {
	s, budget := newBudgetFixture(t)

	expense, summary, err := s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "crew",
		Amount:   250,
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.ExpensePlanned, expense.Status)
	assert.Equal(t, "user-1", expense.CreatedBy)
	assert.Zero(t, summary.TotalSpent, "planned expenses do not count as spent")
}

func TestCreateExpenseRejectsUnknownCategory(t *testing.T) {
	s, budget := newBudgetFixture(t)

	_, _, err := s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "catering",
		Amount:   100,
	}, "user-1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApprovalLimitOverride(t *testing.T) {
	s, budget := newBudgetFixture(t)

	_, err := s.UpdateSettings(context.Background(), budget.ID, models.BudgetSettings{
		RequireApproval: true,
		ApprovalLimit:   500,
	})
	require.NoError(t, err)

	// Above the limit: the requested approved status is overridden.
	expense, _, err := s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "equipment",
		Amount:   501,
		Status:   models.ExpenseApproved,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExpensePlanned, expense.Status)

	// Exactly at the limit: not above, the caller's status stands.
	expense, _, err = s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "equipment",
		Amount:   500,
		Status:   models.ExpenseApproved,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseApproved, expense.Status)
}

func TestStructuralEditsSnapshotAndBumpVersion(t *testing.T) {
	s, budget := newBudgetFixture(t)

	updated, err := s.UpdateCategories(context.Background(), budget.ID, []models.BudgetCategory{
		{Name: "cast", Budgeted: 10000},
		{Name: "crew", Budgeted: 5000},
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Version)
	require.Len(t, updated.PreviousVersions, 1)
	assert.Equal(t, 1, updated.PreviousVersions[0].Version)
	assert.Equal(t, "user-1", updated.PreviousVersions[0].ChangedBy)

	updated, err = s.UpdateTotalBudget(context.Background(), budget.ID, 50000, "EUR", "user-2")
	require.NoError(t, err)

	assert.Equal(t, 3, updated.Version)
	assert.Equal(t, float64(50000), updated.TotalBudget)
	assert.Equal(t, "EUR", updated.Currency)
	require.Len(t, updated.PreviousVersions, 2)
	assert.Equal(t, 2, updated.PreviousVersions[1].Version)

	// Snapshots hold the pre-edit state and never nest their own history.
	var snapshot models.Budget
	require.NoError(t, json.Unmarshal(updated.PreviousVersions[1].Data, &snapshot))
	assert.Equal(t, 2, snapshot.Version)
	assert.Zero(t, snapshot.TotalBudget)
	assert.Nil(t, snapshot.PreviousVersions)
}

func TestExpenseWritesDoNotBumpVersion(t *testing.T) {
	s, budget := newBudgetFixture(t)

	expense, _, err := s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "cast",
		Amount:   100,
	}, "user-1")
	require.NoError(t, err)

	_, err = s.TransitionExpense(context.Background(), budget.ID, expense.ID, ExpenseActionApprove, "user-2")
	require.NoError(t, err)

	_, err = s.DeleteExpense(context.Background(), budget.ID, expense.ID)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), budget.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Empty(t, got.PreviousVersions)
}

func TestSummaryCountsOnlyApprovedAndPaid(t *testing.T) {
	s, budget := newBudgetFixture(t)

	_, err := s.UpdateTotalBudget(context.Background(), budget.ID, 1000, "", "user-1")
	require.NoError(t, err)

	add := func(amount float64) *models.Expense {
		expense, _, err := s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
			Category: "other",
			Amount:   amount,
		}, "user-1")
		require.NoError(t, err)
		return expense
	}

	add(100) // stays planned
	approved := add(200)
	paid := add(300)

	_, err = s.TransitionExpense(context.Background(), budget.ID, approved.ID, ExpenseActionApprove, "user-2")
	require.NoError(t, err)
	_, err = s.TransitionExpense(context.Background(), budget.ID, paid.ID, ExpenseActionMarkPaid, "user-2")
	require.NoError(t, err)

	got, err := s.Get(context.Background(), budget.ID)
	require.NoError(t, err)

	summary := got.Summary()
	assert.Equal(t, float64(500), summary.TotalSpent)
	assert.Equal(t, 0.5, summary.PercentageUsed)
	assert.False(t, summary.OverBudget)

	// Approved and paid amounts roll into the category spend.
	for _, c := range got.Categories {
		if c.Name == "other" {
			assert.Equal(t, float64(500), c.Spent)
		}
	}
}

func TestTransitionExpense(t *testing.T) {
	s, budget := newBudgetFixture(t)

	expense, _, err := s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "location",
		Amount:   750,
	}, "user-1")
	require.NoError(t, err)

	approved, err := s.TransitionExpense(context.Background(), budget.ID, expense.ID, ExpenseActionApprove, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	paid, err := s.TransitionExpense(context.Background(), budget.ID, expense.ID, ExpenseActionMarkPaid, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExpensePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = s.TransitionExpense(context.Background(), budget.ID, expense.ID, "reject", "user-1")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.TransitionExpense(context.Background(), budget.ID, "missing", ExpenseActionApprove, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExpense(t *testing.T) {
	s, budget := newBudgetFixture(t)

	expense, _, err := s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "crew",
		Amount:   400,
		Status:   models.ExpenseApproved,
	}, "user-1")
	require.NoError(t, err)

	summary, err := s.DeleteExpense(context.Background(), budget.ID, expense.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalSpent)

	_, err = s.DeleteExpense(context.Background(), budget.ID, expense.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWarningThreshold(t *testing.T) {
	s, budget := newBudgetFixture(t)

	_, err := s.UpdateTotalBudget(context.Background(), budget.ID, 1000, "", "user-1")
	require.NoError(t, err)

	_, _, err = s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "post-production",
		Amount:   899,
		Status:   models.ExpensePaid,
	}, "user-1")
	require.NoError(t, err)

	got, err := s.Get(context.Background(), budget.ID)
	require.NoError(t, err)
	assert.False(t, s.IsOverWarningThreshold(got), "below 90%% of total")

	_, _, err = s.CreateExpense(context.Background(), budget.ID, models.CreateExpenseRequest{
		Category: "post-production",
		Amount:   51,
		Status:   models.ExpensePaid,
	}, "user-1")
	require.NoError(t, err)

	got, err = s.Get(context.Background(), budget.ID)
	require.NoError(t, err)
	assert.True(t, s.IsOverWarningThreshold(got), "950 of 1000 crosses the default threshold")
	assert.False(t, got.Summary().OverBudget, "warning is not over budget")
}

func TestUpdateSettingsIsNotStructural(t *testing.T) {
	s, budget := newBudgetFixture(t)

	updated, err := s.UpdateSettings(context.Background(), budget.ID, models.BudgetSettings{
		RequireApproval: true,
		ApprovalLimit:   1000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Version)
	assert.Empty(t, updated.PreviousVersions)
	assert.True(t, updated.Settings.RequireApproval)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermissionOwner(t *testing.T) {
	p := &Project{ID: "p1", OwnerID: "owner-1"}

	for _, level := range []string{PermissionRead, PermissionWrite, PermissionDelete, PermissionAdmin} {
		assert.True(t, p.HasPermission("owner-1", level), "owner implies %s", level)
	}
}

func TestHasPermissionNonMember(t *testing.T) {
	p := &Project{
		ID:      "p1",
		OwnerID: "owner-1",
		Members: []ProjectMember{
			{UserID: "member-1", Permissions: Permissions{Read: true, Write: true}},
		},
	}

	for _, level := range []string{PermissionRead, PermissionWrite, PermissionDelete, PermissionAdmin} {
		assert.False(t, p.HasPermission("stranger", level))
	}
}

func TestHasPermissionLevels(t *testing.T) {
	p := &Project{
		ID:      "p1",
		OwnerID: "owner-1",
		Members: []ProjectMember{
			{UserID: "crew-1", Permissions: Permissions{Read: true, Write: true}},
			{UserID: "coord-1", Permissions: Permissions{Read: true, Write: true, Delete: true}},
			{UserID: "admin-1", Permissions: Permissions{Admin: true}},
			{UserID: "viewer-1", Permissions: Permissions{Read: true}},
		},
	}

	cases := []struct {
		userID string
		level  string
		want   bool
	}{
		{"crew-1", PermissionRead, true},
		{"crew-1", PermissionWrite, true},
		{"crew-1", PermissionDelete, false},
		{"crew-1", PermissionAdmin, false},

		{"coord-1", PermissionDelete, true},
		{"coord-1", PermissionAdmin, false},

		// The admin flag implies every level.
		{"admin-1", PermissionRead, true},
		{"admin-1", PermissionWrite, true},
		{"admin-1", PermissionDelete, true},
		{"admin-1", PermissionAdmin, true},

		// Membership alone grants read.
		{"viewer-1", PermissionRead, true},
		{"viewer-1", PermissionWrite, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, p.HasPermission(tc.userID, tc.level), "%s / %s", tc.userID, tc.level)
	}
}

func TestBudgetSummary(t *testing.T) {
	b := &Budget{
		TotalBudget: 1000,
		Expenses: []Expense{
			{Amount: 100, Status: ExpensePlanned},
			{Amount: 200, Status: ExpenseApproved},
			{Amount: 300, Status: ExpensePaid},
		},
	}

	s := b.Summary()
	assert.Equal(t, float64(1000), s.TotalBudget)
	assert.Equal(t, float64(500), s.TotalSpent)
	assert.Equal(t, 0.5, s.PercentageUsed)
	assert.False(t, s.OverBudget)

	b.Expenses = append(b.Expenses, Expense{Amount: 600, Status: ExpensePaid})
	assert.True(t, b.Summary().OverBudget)
}

func TestBudgetSummaryZeroTotal(t *testing.T) {
	b := &Budget{Expenses: []Expense{{Amount: 50, Status: ExpensePaid}}}

	s := b.Summary()
	assert.Zero(t, s.PercentageUsed, "no division by a zero total")
	assert.True(t, s.OverBudget)
}

func TestIsOverWarningThreshold(t *testing.T) {
	b := &Budget{
		TotalBudget: 1000,
		Expenses:    []Expense{{Amount: 900, Status: ExpensePaid}},
	}

	// The comparison is inclusive: exactly at the threshold warns.
	assert.True(t, b.IsOverWarningThreshold(0.9))
	assert.False(t, b.IsOverWarningThreshold(0.95))
}

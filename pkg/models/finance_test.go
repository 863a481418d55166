package models_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestInvoice(t *testing.T) {
	inv := models.ParseInvoice(1, map[string]any{
		"invoiceid": "3", "name": "Camp", "extra": "Summer", "entrydate": "2026-07-01", "archived": "0", "finalised": "1",
	})
	want := models.Invoice{ID: 3, SectionID: 1, Name: "Camp", Extra: "Summer", Date: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Finalised: true}
	if diff := cmp.Diff(want, inv, cmpopts.IgnoreUnexported(models.Invoice{})); diff != "" {
		t.Errorf("ParseInvoice mismatch (-want +got):\n%s", diff)
	}
	inv.MarkClean()
	inv.Extra = "Winter"
	assert.Equal(t, []string{"extra"}, inv.Changed())
	assert.NoError(t, models.Validate(inv))
}

func TestInvoiceItems(t *testing.T) {
	inv := models.Invoice{ID: 3, SectionID: 1}
	income := models.ParseInvoiceItem(inv, 0, map[string]any{
		"id": "7", "recordid": "70", "entrydate": "2026-07-02", "amount": "100", "payto": "Parents",
		"description": "Fees", "budgetname": "Camp", "type": "Income", "editable": true,
	})
	expense := models.ParseInvoiceItem(inv, 1, map[string]any{
		"id": "8", "entrydate": "2026-07-03", "amount": "35.5", "description": "Food", "budgetname": "Camp", "type": "Expense",
	})
	assert.Equal(t, "100.00", income.Amount)
	assert.Equal(t, 100.0, income.Value())
	assert.Equal(t, -35.5, expense.Value())
	assert.Equal(t, 1, expense.Row)
	assert.Equal(t, 3, expense.Invoice.ID)

	items := []models.InvoiceItem{income, expense}
	assert.Equal(t, 64.5, models.InvoiceTotal(items, ""))
	assert.Equal(t, 100.0, models.InvoiceTotal(items, models.InvoiceItemIncome))
	assert.Equal(t, 35.5, models.InvoiceTotal(items, models.InvoiceItemExpense))
	assert.True(t, income.Less(expense))

	assert.NoError(t, models.Validate(expense))
	expense.Type = "Gift"
	assert.ErrorIs(t, models.Validate(expense), constants.ErrInvalidObject)

	expense.MarkClean()
	expense.Amount = "40.00"
	assert.Equal(t, []string{"amount"}, expense.Changed())
}

func TestBudget(t *testing.T) {
	b := models.ParseBudget(1, map[string]any{"categoryid": "4", "name": "Camp"})
	assert.Equal(t, 4, b.ID)
	b.MarkClean()
	assert.Empty(t, b.Changed())
	b.Name = "Camps"
	assert.Equal(t, []string{"name"}, b.Changed())

	budgets := []models.Budget{{ID: 2, SectionID: 1, Name: "Z"}, {ID: 1, SectionID: 1, Name: "A"}}
	models.SortBudgets(budgets)
	assert.Equal(t, "A", budgets[0].Name)
}

func TestGiftAid(t *testing.T) {
	donations := models.ParseGiftAidDonations(1, []any{
		map[string]any{"rows": []any{map[string]any{"field": "firstname"}}},
		map[string]any{"rows": []any{map[string]any{"field": "2026-10-05"}, map[string]any{"field": "2026-09-07"}}},
	})
	assert.Equal(t, []models.GiftAidDonation{
		{SectionID: 1, Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)},
		{SectionID: 1, Date: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)},
	}, donations)

	data := models.ParseGiftAidData(1, 2, 0, map[string]any{
		"scoutid": "100", "firstname": "Alice", "lastname": "Smith", "patrolid": "5",
		"total": "3.00", "tax": "0.75", "2026-09-07": "1.00", "2026-10-05": "2.00",
	})
	assert.Equal(t, map[string]string{"2026-09-07": "1.00", "2026-10-05": "2.00"}, data.Donations)
	data.MarkClean()
	data.Donations["2026-10-05"] = "2.50"
	assert.Equal(t, []string{"2026-10-05"}, data.Changed())

	rec := models.GiftAidRecord{SectionID: 1, TermID: 2, Date: time.Now(), MemberIDs: []int{100}, Amount: "2"}
	assert.Equal(t, "2.00", rec.WireAmount())
	assert.NoError(t, models.Validate(rec))
	rec.MemberIDs = nil
	assert.ErrorIs(t, models.Validate(rec), constants.ErrInvalidObject)
}

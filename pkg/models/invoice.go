package models

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// Invoice groups a set of income and expense items.
type Invoice struct {
	ID        int       `json:"id" validate:"gte=0"`
	SectionID int       `json:"section_id" validate:"gt=0"`
	Name      string    `json:"name" validate:"required"`
	Extra     string    `json:"extra"`
	Date      time.Time `json:"date" validate:"required"`
	Archived  bool      `json:"archived"`
	Finalised bool      `json:"finalised"`

	tracked
}

func ParseInvoice(sectionID int, data map[string]any) Invoice {
	return Invoice{
		ID:        util.ToInt(data["invoiceid"]),
		SectionID: sectionID,
		Name:      util.ToString(data["name"]),
		Extra:     util.ToString(data["extra"]),
		Date:      util.ToDate(data["entrydate"]),
		Archived:  util.ToBool(data["archived"]),
		Finalised: util.ToBool(data["finalised"]),
	}
}

func (i *Invoice) Fields() map[string]string {
	return map[string]string{
		"name":  i.Name,
		"extra": i.Extra,
		"date":  util.FormatDate(i.Date),
	}
}

func (i *Invoice) MarkClean() {
	i.tracked.markClean(i.Fields())
}

func (i *Invoice) Changed() []string {
	return i.tracked.changed(i.Fields())
}

func (i Invoice) Less(o Invoice) bool {
	switch {
	case i.SectionID != o.SectionID:
		return i.SectionID < o.SectionID
	case !i.Date.Equal(o.Date):
		return i.Date.Before(o.Date)
	}
	return i.ID < o.ID
}

func SortInvoices(invoices []Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool { return invoices[i].Less(invoices[j]) })
}

// Invoice item types
const (
	InvoiceItemIncome  = "Income"
	InvoiceItemExpense = "Expense"
)

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	ID          int       `json:"id" validate:"gte=0"`
	Invoice     Invoice   `json:"invoice" validate:"-"`
	RecordID    int       `json:"record_id" validate:"gte=0"`
	Date        time.Time `json:"date" validate:"required"`
	Amount      string    `json:"amount" validate:"required,numeric"`
	Type        string    `json:"type" validate:"oneof=Income Expense"`
	PayeePayer  string    `json:"payee_payer"`
	Description string    `json:"description" validate:"required"`
	BudgetName  string    `json:"budget_name" validate:"required"`
	Editable    bool      `json:"editable"`
	// Row is the item's index, which OSM wants back on update
	Row int `json:"row"`

	tracked
}

func ParseInvoiceItem(invoice Invoice, row int, data map[string]any) InvoiceItem {
	it := InvoiceItem{
		ID:          util.ToInt(data["id"]),
		Invoice:     invoice,
		RecordID:    util.ToInt(data["recordid"]),
		Date:        util.ToDate(data["entrydate"]),
		Amount:      fmt.Sprintf("%.2f", util.ToFloat(data["amount"])),
		PayeePayer:  util.ToString(data["payto"]),
		Description: util.ToString(data["description"]),
		BudgetName:  util.ToString(data["budgetname"]),
		Editable:    util.ToBool(data["editable"]),
		Type:        InvoiceItemIncome,
		Row:         row,
	}
	if util.ToString(data["type"]) == InvoiceItemExpense {
		it.Type = InvoiceItemExpense
	}
	return it
}

// Fields maps OSM's column names to the item's values
func (it *InvoiceItem) Fields() map[string]string {
	return map[string]string{
		"amount":      it.Amount,
		"budgetname":  it.BudgetName,
		"description": it.Description,
		"entrydate":   util.FormatDate(it.Date),
		"payto":       it.PayeePayer,
		"type":        it.Type,
	}
}

func (it *InvoiceItem) MarkClean() {
	it.tracked.markClean(it.Fields())
}

func (it *InvoiceItem) Changed() []string {
	return it.tracked.changed(it.Fields())
}

// Value is the signed amount: expenses are negative
func (it InvoiceItem) Value() float64 {
	v := util.ToFloat(it.Amount)
	if it.Type == InvoiceItemExpense {
		return -v
	}
	return v
}

func (it InvoiceItem) Less(o InvoiceItem) bool {
	switch {
	case it.Invoice.ID != o.Invoice.ID:
		return it.Invoice.ID < o.Invoice.ID
	case !it.Date.Equal(o.Date):
		return it.Date.Before(o.Date)
	}
	return it.ID < o.ID
}

// InvoiceTotal sums the items of the given type, or all items signed when typ is "".
func InvoiceTotal(items []InvoiceItem, typ string) float64 {
	total := 0.0
	for _, it := range items {
		switch {
		case typ == "":
			total += it.Value()
		case it.Type == typ:
			total += util.ToFloat(it.Amount)
		}
	}
	return math.Round(total*100) / 100
}

package osm

import (
	"context"
	"fmt"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetInvoices lists the section's invoices, archived ones included.
func GetInvoices(ctx context.Context, a *API, sectionID int, opts ...Option) ([]models.Invoice, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaFinance, sectionID, opts...); err != nil {
		return nil, err
	}
	invoices, err := fetch(ctx, a, opts, func() ([]models.Invoice, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("finances.php?action=getInvoices&sectionid=%d&showArchived=true", sectionID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.Invoice
		for _, item := range util.Maps(data["items"]) {
			out = append(out, models.ParseInvoice(sectionID, item))
		}
		models.SortInvoices(out)
		return out, nil
	}, "invoices", sectionID)
	for i := range invoices {
		invoices[i].MarkClean()
	}
	return invoices, err
}

func GetInvoice(ctx context.Context, a *API, sectionID, invoiceID int, opts ...Option) (models.Invoice, error) {
	invoices, err := GetInvoices(ctx, a, sectionID, opts...)
	if err != nil {
		return models.Invoice{}, err
	}
	for _, inv := range invoices {
		if inv.ID == invoiceID {
			return inv, nil
		}
	}
	return models.Invoice{}, fmt.Errorf("invoice %d: %w", invoiceID, constants.ErrNotFound)
}

func CreateInvoice(ctx context.Context, a *API, inv *models.Invoice) (bool, error) {
	if inv.ID != 0 {
		return false, fmt.Errorf("invoice %d already exists: %w", inv.ID, constants.ErrInvalidObject)
	}
	if err := models.Validate(inv); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, inv.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("finances.php?action=addInvoice&sectionid=%d", inv.SectionID), formOf(inv.Fields()))
	if err != nil {
		return false, err
	}
	id := util.ToInt(util.Map(data)["id"])
	if id <= 0 {
		return false, nil
	}
	inv.ID = id
	inv.MarkClean()
	a.invalidate(ctx, []any{"invoices", inv.SectionID})
	return true, nil
}

func UpdateInvoice(ctx context.Context, a *API, inv *models.Invoice) (bool, error) {
	if inv.ID <= 0 {
		return false, fmt.Errorf("invoice has no id: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(inv); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, inv.SectionID); err != nil {
		return false, err
	}
	if len(inv.Changed()) == 0 {
		return true, nil
	}
	f := formOf(inv.Fields())
	f.Set("invoiceid", fmt.Sprint(inv.ID))
	data, err := a.Post(ctx, endpoint("finances.php?action=addInvoice&sectionid=%d", inv.SectionID), f)
	if err != nil {
		return false, err
	}
	if !util.ToBool(util.Map(data)["ok"]) {
		return false, nil
	}
	inv.MarkClean()
	a.invalidate(ctx, []any{"invoices", inv.SectionID})
	return true, nil
}

// invoiceAction posts one of the invoice state changes that answer {"ok": true}.
func invoiceAction(ctx context.Context, a *API, inv *models.Invoice, action string, fields map[string]string) (bool, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, inv.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("finances.php?action=%s&sectionid=%d", action, inv.SectionID), formOf(fields))
	if err != nil {
		return false, err
	}
	if !util.ToBool(util.Map(data)["ok"]) {
		return false, nil
	}
	a.invalidate(ctx, []any{"invoices", inv.SectionID})
	return true, nil
}

func DeleteInvoice(ctx context.Context, a *API, inv *models.Invoice) (bool, error) {
	ok, err := invoiceAction(ctx, a, inv, "deleteInvoice", map[string]string{"invoiceid": fmt.Sprint(inv.ID)})
	if ok {
		a.invalidate(ctx, []any{"invoice-items", inv.SectionID, inv.ID})
	}
	return ok, err
}

func ArchiveInvoice(ctx context.Context, a *API, inv *models.Invoice) (bool, error) {
	ok, err := invoiceAction(ctx, a, inv, "archiveInvoice", map[string]string{"invoiceid": fmt.Sprint(inv.ID), "archived": "1"})
	if ok {
		inv.Archived = true
	}
	return ok, err
}

// FinaliseInvoice locks the invoice so its items can no longer change.
func FinaliseInvoice(ctx context.Context, a *API, inv *models.Invoice) (bool, error) {
	if inv.Finalised {
		return false, nil
	}
	ok, err := invoiceAction(ctx, a, inv, endpoint("finaliseInvoice&invoiceid=%d", inv.ID), nil)
	if ok {
		inv.Finalised = true
	}
	return ok, err
}

// GetInvoiceItems lists the invoice's lines. OSM's blank and total rows are left out.
func GetInvoiceItems(ctx context.Context, a *API, inv models.Invoice, opts ...Option) ([]models.InvoiceItem, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaFinance, inv.SectionID, opts...); err != nil {
		return nil, err
	}
	items, err := fetch(ctx, a, opts, func() ([]models.InvoiceItem, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("finances.php?action=getInvoiceRecords&invoiceid=%d&sectionid=%d&dateFormat=generic", inv.ID, inv.SectionID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.InvoiceItem
		for row, item := range util.Maps(data["items"]) {
			it := models.ParseInvoiceItem(inv, row, item)
			if it.ID > 0 {
				out = append(out, it)
			}
		}
		return out, nil
	}, "invoice-items", inv.SectionID, inv.ID)
	for i := range items {
		items[i].MarkClean()
	}
	return items, err
}

// CreateInvoiceItem adds a blank line to the invoice, finds it in a fresh
// listing and fills in the item's fields.
func CreateInvoiceItem(ctx context.Context, a *API, it *models.InvoiceItem) (bool, error) {
	if it.ID != 0 {
		return false, fmt.Errorf("invoice item %d already exists: %w", it.ID, constants.ErrInvalidObject)
	}
	if it.Invoice.ID <= 0 {
		return false, fmt.Errorf("invoice item has no invoice: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(it); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, it.Invoice.SectionID); err != nil {
		return false, err
	}

	before, err := GetInvoiceItems(ctx, a, it.Invoice, NoReadCache())
	if err != nil {
		return false, err
	}
	known := map[int]bool{}
	for _, b := range before {
		known[b.ID] = true
	}

	if _, err := a.Post(ctx, endpoint("finances.php?action=addRecord&invoiceid=%d&sectionid=%d", it.Invoice.ID, it.Invoice.SectionID), nil); err != nil {
		return false, err
	}

	after, err := GetInvoiceItems(ctx, a, it.Invoice, NoReadCache())
	if err != nil {
		return false, err
	}
	var added *models.InvoiceItem
	for i := range after {
		if !known[after[i].ID] {
			added = &after[i]
			break
		}
	}
	if added == nil {
		return false, nil
	}

	it.ID = added.ID
	it.RecordID = added.RecordID
	it.Row = added.Row
	it.Editable = added.Editable
	// a record that was never loaded reports every field as changed, so the blank line gets all of them
	return UpdateInvoiceItem(ctx, a, it)
}

// UpdateInvoiceItem sends each changed column of the line.
func UpdateInvoiceItem(ctx context.Context, a *API, it *models.InvoiceItem) (bool, error) {
	if it.ID <= 0 {
		return false, fmt.Errorf("invoice item has no id: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(it); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, it.Invoice.SectionID); err != nil {
		return false, err
	}

	fields := it.Fields()
	updated := true
	for _, column := range it.Changed() {
		data, err := postInto[map[string]any](ctx, a, endpoint("finances.php?action=updateRecord&sectionid=%d&dateFormat=generic", it.Invoice.SectionID), formOf(map[string]string{
			"section_id": fmt.Sprint(it.Invoice.SectionID),
			"invoiceid":  fmt.Sprint(it.Invoice.ID),
			"recordid":   fmt.Sprint(it.RecordID),
			"row":        fmt.Sprint(it.Row),
			"column":     column,
			"value":      fields[column],
		}))
		if err != nil {
			return false, err
		}
		if util.ToString(data[column]) != fields[column] {
			updated = false
		}
	}

	if updated {
		it.MarkClean()
		a.invalidate(ctx, []any{"invoice-items", it.Invoice.SectionID, it.Invoice.ID})
	}
	return updated, nil
}

func DeleteInvoiceItem(ctx context.Context, a *API, it *models.InvoiceItem) (bool, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, it.Invoice.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("finances.php?action=deleteEntry&sectionid=%d", it.Invoice.SectionID), formOf(map[string]string{
		"id": fmt.Sprint(it.ID),
	}))
	if err != nil {
		return false, err
	}
	if !util.ToBool(util.Map(data)["ok"]) {
		return false, nil
	}
	a.invalidate(ctx, []any{"invoice-items", it.Invoice.SectionID, it.Invoice.ID})
	return true, nil
}

// InvoiceTotal sums the invoice's items of typ, or all of them signed when typ is "".
func InvoiceTotal(ctx context.Context, a *API, inv models.Invoice, typ string, opts ...Option) (float64, error) {
	items, err := GetInvoiceItems(ctx, a, inv, opts...)
	if err != nil {
		return 0, err
	}
	return models.InvoiceTotal(items, typ), nil
}

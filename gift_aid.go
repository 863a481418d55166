package osm

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/models"
)

func requireGiftAid(ctx context.Context, a *API, ability models.Permission, sectionID int, opts ...Option) error {
	if err := RequireAbilityTo(ctx, a, ability, models.AreaFinance, sectionID, opts...); err != nil {
		return err
	}
	return RequireSubscription(ctx, a, models.SubscriptionGold, sectionID, opts...)
}

// GetGiftAidDonations lists the dates donations were collected on; termID 0 means the current term.
func GetGiftAidDonations(ctx context.Context, a *API, sectionID, termID int, opts ...Option) ([]models.GiftAidDonation, error) {
	if err := requireGiftAid(ctx, a, models.PermissionRead, sectionID, opts...); err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() ([]models.GiftAidDonation, error) {
		data, err := a.Post(ctx, endpoint("giftaid.php?action=getStructure&sectionid=%d&termid=%d", sectionID, termID), nil)
		if err != nil {
			return nil, err
		}
		return models.ParseGiftAidDonations(sectionID, data), nil
	}, "gift-aid-donations", sectionID, termID)
}

// GetGiftAidData lists each member's donations in the term.
func GetGiftAidData(ctx context.Context, a *API, sectionID, termID int, opts ...Option) ([]models.GiftAidData, error) {
	if err := requireGiftAid(ctx, a, models.PermissionRead, sectionID, opts...); err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return nil, err
	}
	data, err := fetch(ctx, a, opts, func() ([]models.GiftAidData, error) {
		res, err := postInto[map[string]any](ctx, a, endpoint("giftaid.php?action=getGrid&sectionid=%d&termid=%d", sectionID, termID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.GiftAidData
		for row, item := range util.Maps(res["items"]) {
			d := models.ParseGiftAidData(sectionID, termID, row, item)
			if d.MemberID > 0 {
				out = append(out, d)
			}
		}
		return out, nil
	}, "gift-aid-data", sectionID, termID)
	for i := range data {
		data[i].MarkClean()
	}
	return data, err
}

// UpdateGiftAidData sends each changed donation date of the member's row.
func UpdateGiftAidData(ctx context.Context, a *API, d *models.GiftAidData) (bool, error) {
	if err := models.Validate(d); err != nil {
		return false, err
	}
	if err := requireGiftAid(ctx, a, models.PermissionWrite, d.SectionID); err != nil {
		return false, err
	}

	updated := true
	for _, date := range d.Changed() {
		value := d.Donations[date]
		res, err := postInto[map[string]any](ctx, a, endpoint("giftaid.php?action=updateScout&sectionid=%d&termid=%d", d.SectionID, d.TermID), formOf(map[string]string{
			"scoutid":   fmt.Sprint(d.MemberID),
			"column":    date,
			"value":     value,
			"sectionid": fmt.Sprint(d.SectionID),
			"row":       fmt.Sprint(d.Row),
		}))
		if err != nil {
			return false, err
		}
		if util.ToString(res[date]) != value {
			updated = false
		}
	}

	if updated {
		d.MarkClean()
		a.invalidate(ctx, []any{"gift-aid-data", d.SectionID, d.TermID})
	}
	return updated, nil
}

// RecordGiftAidDonation records the same donation for several members. OSM
// answers with the rows it changed, which must include every member.
func RecordGiftAidDonation(ctx context.Context, a *API, r models.GiftAidRecord) (bool, error) {
	if err := models.Validate(r); err != nil {
		return false, err
	}
	if err := requireGiftAid(ctx, a, models.PermissionWrite, r.SectionID); err != nil {
		return false, err
	}

	scouts := make([]string, 0, len(r.MemberIDs))
	for _, id := range r.MemberIDs {
		scouts = append(scouts, fmt.Sprint(id))
	}
	scoutsJSON, err := json.Marshal(scouts)
	if err != nil {
		return false, err
	}

	data, err := a.Post(ctx, endpoint("giftaid.php?action=update&sectionid=%d&termid=%d", r.SectionID, r.TermID), formOf(map[string]string{
		"scouts":     string(scoutsJSON),
		"donatedate": util.FormatDate(r.Date),
		"amount":     r.WireAmount(),
		"notes":      r.Notes,
		"sectionid":  fmt.Sprint(r.SectionID),
	}))
	if err != nil {
		return false, err
	}
	rows, ok := data.([]any)
	if !ok {
		return false, nil
	}
	echoed := map[int]bool{}
	for _, row := range util.Maps(rows) {
		echoed[util.ToInt(row["scoutid"])] = true
	}
	for _, id := range r.MemberIDs {
		if !echoed[id] {
			return false, nil
		}
	}
	a.invalidate(ctx, []any{"gift-aid-data", r.SectionID, r.TermID}, []any{"gift-aid-donations", r.SectionID, r.TermID})
	return true, nil
}

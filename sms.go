package osm

import (
	"context"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/models"
)

// SendSMS texts the members' contact numbers. OSM charges credits per message.
func SendSMS(ctx context.Context, a *API, sms models.SMS) (bool, error) {
	if err := models.Validate(sms); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaContact, sms.SectionID); err != nil {
		return false, err
	}

	data, err := a.Post(ctx, endpoint("ext/members/sms/?action=sendText&sectionid=%d", sms.SectionID), formOf(map[string]string{
		"msg":            sms.Message,
		"scouts":         joinIDs(sms.MemberIDs),
		"source_address": sms.Source,
		"all":            "one",
		"type":           "",
		"scheduled":      "now",
	}))
	if err != nil {
		return false, err
	}
	if !util.ToBool(util.Map(data)["result"]) {
		return false, nil
	}
	a.invalidate(ctx, []any{"sms-reports", sms.SectionID})
	return true, nil
}

func GetSMSDeliveryReports(ctx context.Context, a *API, sectionID int, opts ...Option) ([]models.SMSDeliveryReport, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaContact, sectionID, opts...); err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() ([]models.SMSDeliveryReport, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("sms.php?action=deliveryReports&sectionid=%d&dateFormat=generic", sectionID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.SMSDeliveryReport
		for _, item := range util.Maps(data["items"]) {
			out = append(out, models.ParseSMSDeliveryReport(sectionID, item))
		}
		models.SortSMSDeliveryReports(out)
		return out, nil
	}, "sms-reports", sectionID)
}

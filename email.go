package osm

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/models"
)

func GetEmailDeliveryReports(ctx context.Context, a *API, sectionID int, opts ...Option) ([]models.EmailDeliveryReport, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaContact, sectionID, opts...); err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() ([]models.EmailDeliveryReport, error) {
		data, err := a.Post(ctx, endpoint("ext/settings/emails/?action=getDeliveryReport&sectionid=%d", sectionID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.EmailDeliveryReport
		for _, item := range util.Maps(data) {
			out = append(out, models.ParseEmailDeliveryReport(sectionID, item))
		}
		models.SortEmailDeliveryReports(out)
		return out, nil
	}, "email-reports", sectionID)
}

// GetSentEmail returns the content of an email from a delivery report, or nil if OSM no longer has it.
func GetSentEmail(ctx context.Context, a *API, sectionID, emailID int, opts ...Option) (*models.SentEmail, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaContact, sectionID, opts...); err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() (*models.SentEmail, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("ext/settings/emails/?action=getSentEmail&section_id=%d&email_id=%d", sectionID, emailID), nil)
		if err != nil {
			return nil, err
		}
		if !util.ToBool(data["ok"]) {
			return nil, nil
		}
		email := models.ParseSentEmail(util.Map(data["data"]))
		return &email, nil
	}, "sent-email", sectionID, emailID)
}

// GetEmailAddresses returns the contact addresses OSM would email for the members.
func GetEmailAddresses(ctx context.Context, a *API, sectionID int, memberIDs []int) (models.EmailAddresses, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaContact, sectionID); err != nil {
		return nil, err
	}
	data, err := selectedEmails(ctx, a, sectionID, memberIDs)
	if err != nil {
		return nil, err
	}
	return models.ParseEmailAddresses(data), nil
}

func selectedEmails(ctx context.Context, a *API, sectionID int, memberIDs []int) (map[string]any, error) {
	return postInto[map[string]any](ctx, a, endpoint("ext/members/email/?action=getSelectedEmailsFromContacts&sectionid=%d&scouts=%s", sectionID, joinIDs(memberIDs)), nil)
}

// SendEmail emails the members' contacts. The body may carry merge tags such as [FIRSTNAME].
func SendEmail(ctx context.Context, a *API, email models.Email) (bool, error) {
	if err := models.Validate(email); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaContact, email.SectionID); err != nil {
		return false, err
	}

	selected, err := selectedEmails(ctx, a, email.SectionID, email.MemberIDs)
	if err != nil {
		return false, err
	}
	emailsJSON, err := json.Marshal(selected["data"])
	if err != nil {
		return false, err
	}

	data, err := a.Post(ctx, "ext/members/email/?action=send", formOf(map[string]string{
		"sectionid": fmt.Sprint(email.SectionID),
		"emails":    string(emailsJSON),
		"scouts":    joinIDs(email.MemberIDs),
		"cc":        strings.Join(email.CC, ","),
		"from":      email.From,
		"subject":   email.Subject,
		"body":      email.Body,
	}))
	if err != nil {
		return false, err
	}
	if !util.ToBool(util.Map(data)["ok"]) {
		return false, nil
	}
	a.invalidate(ctx, []any{"email-reports", email.SectionID})
	return true, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, ",")
}

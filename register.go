package osm

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/models"
)

// GetRegisterStructure lists the register's columns; termID 0 means the current term.
func GetRegisterStructure(ctx context.Context, a *API, sectionID, termID int, opts ...Option) ([]models.RegisterField, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaRegister, sectionID, opts...); err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() ([]models.RegisterField, error) {
		data, err := a.Post(ctx, endpoint("users.php?action=registerStructure&sectionid=%d&termid=%d", sectionID, termID), nil)
		if err != nil {
			return nil, err
		}
		return models.ParseRegisterStructure(data), nil
	}, "register-structure", sectionID, termID)
}

// GetRegisterAttendance lists each member's attendance in the term.
func GetRegisterAttendance(ctx context.Context, a *API, sectionID, termID int, opts ...Option) ([]models.RegisterAttendance, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaRegister, sectionID, opts...); err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() ([]models.RegisterAttendance, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("users.php?action=register&sectionid=%d&termid=%d", sectionID, termID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.RegisterAttendance
		for _, item := range util.Maps(data["items"]) {
			row := models.ParseRegisterAttendance(sectionID, termID, item)
			if row.MemberID > 0 {
				out = append(out, row)
			}
		}
		return out, nil
	}, "register-attendance", sectionID, termID)
}

// UpdateRegisterAttendance marks the members present or absent on one date.
func UpdateRegisterAttendance(ctx context.Context, a *API, u models.RegisterUpdate) (bool, error) {
	if err := models.Validate(u); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaRegister, u.SectionID); err != nil {
		return false, err
	}
	section, err := GetSection(ctx, a, u.SectionID)
	if err != nil {
		return false, err
	}
	termID, err := a.termOrCurrent(ctx, u.SectionID, u.TermID)
	if err != nil {
		return false, err
	}

	scouts := make([]string, 0, len(u.MemberIDs))
	for _, id := range u.MemberIDs {
		scouts = append(scouts, fmt.Sprint(id))
	}
	scoutsJSON, err := json.Marshal(scouts)
	if err != nil {
		return false, err
	}
	badges := u.CompletedBadgeRequirements
	if badges == nil {
		badges = []map[string]any{}
	}
	badgesJSON, err := json.Marshal(badges)
	if err != nil {
		return false, err
	}

	data, err := a.Post(ctx, endpoint("users.php?action=registerUpdate&sectionid=%d&termid=%d", u.SectionID, termID), formOf(map[string]string{
		"scouts":          string(scoutsJSON),
		"selectedDate":    util.FormatDate(u.Date),
		"present":         u.Mark,
		"section":         string(section.Type),
		"sectionid":       fmt.Sprint(u.SectionID),
		"completedBadges": string(badgesJSON),
	}))
	if err != nil {
		return false, err
	}
	if _, ok := data.([]any); !ok {
		return false, nil
	}
	a.invalidate(ctx, []any{"register-attendance", u.SectionID, termID}, []any{"register-attendance", u.SectionID, 0})
	return true, nil
}

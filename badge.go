package osm

import (
	"context"
	"fmt"
	"time"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetBadges lists the badges of one type available to the section.
func GetBadges(ctx context.Context, a *API, sectionID int, typ models.BadgeType, opts ...Option) ([]models.Badge, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaBadge, sectionID, opts...); err != nil {
		return nil, err
	}
	section, err := GetSection(ctx, a, sectionID, opts...)
	if err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, sectionID, 0)
	if err != nil {
		return nil, err
	}

	return fetch(ctx, a, opts, func() ([]models.Badge, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint(
			"ext/badges/records/?action=getBadgeStructureByType&section=%s&type_id=%d&term_id=%d&section_id=%d",
			section.Type, typ, termID, sectionID), nil)
		if err != nil {
			return nil, err
		}
		structures := util.Map(data["structure"])
		var badges []models.Badge
		for key, detail := range util.Map(data["details"]) {
			badges = append(badges, models.ParseBadge(typ, util.Map(detail), structures[key]))
		}
		models.SortBadges(badges)
		return badges, nil
	}, "badges", sectionID, typ, termID)
}

// GetBadgeData lists every member's progress through the badge; termID 0 means the current term.
func GetBadgeData(ctx context.Context, a *API, badge models.Badge, sectionID, termID int, opts ...Option) ([]models.BadgeData, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaBadge, sectionID, opts...); err != nil {
		return nil, err
	}
	section, err := GetSection(ctx, a, sectionID, opts...)
	if err != nil {
		return nil, err
	}
	termID, err = a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return nil, err
	}

	data, err := fetch(ctx, a, opts, func() ([]models.BadgeData, error) {
		res, err := postInto[map[string]any](ctx, a, endpoint(
			"ext/badges/records/?action=getBadgeRecords&term_id=%d&section=%s&badge_id=%d&section_id=%d&badge_version=%d",
			termID, section.Type, badge.ID, sectionID, badge.Version), nil)
		if err != nil {
			return nil, err
		}
		var out []models.BadgeData
		for _, item := range util.Maps(res["items"]) {
			out = append(out, models.ParseBadgeData(badge, sectionID, item))
		}
		return out, nil
	}, "badge-data", sectionID, badge.ID, badge.Version, termID)
	for i := range data {
		data[i].MarkClean()
	}
	return data, err
}

// UpdateBadgeData sends each changed requirement entry.
func UpdateBadgeData(ctx context.Context, a *API, d *models.BadgeData) (bool, error) {
	if err := models.Validate(d); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaBadge, d.SectionID); err != nil {
		return false, err
	}

	updated := true
	for _, requirement := range d.Changed() {
		field := fmt.Sprint(requirement)
		value := d.Requirements[requirement]
		res, err := postInto[map[string]any](ctx, a, "ext/badges/records/?action=updateSingleRecord", formOf(map[string]string{
			"scoutid":       fmt.Sprint(d.MemberID),
			"section_id":    fmt.Sprint(d.SectionID),
			"badge_id":      fmt.Sprint(d.Badge.ID),
			"badge_version": fmt.Sprint(d.Badge.Version),
			"field":         field,
			"value":         value,
		}))
		if err != nil {
			return false, err
		}
		if util.ToInt(res["scoutid"]) != d.MemberID || util.ToString(res[field]) != value {
			updated = false
		}
	}

	if updated {
		d.MarkClean()
		a.invalidateBadgeData(ctx, d)
	}
	return updated, nil
}

// MarkBadgeAwarded records that the badge (or a staged badge's level) was
// presented on date.
func MarkBadgeAwarded(ctx context.Context, a *API, d *models.BadgeData, date time.Time, level int) (bool, error) {
	if date.IsZero() {
		return false, fmt.Errorf("award date is required: %w", constants.ErrInvalidObject)
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaBadge, d.SectionID); err != nil {
		return false, err
	}
	if level <= 0 {
		level = 1
	}

	res, err := postInto[map[string]any](ctx, a, "ext/badges/records/?action=overrideCompletion", formOf(map[string]string{
		"action":        "awarded",
		"section_id":    fmt.Sprint(d.SectionID),
		"badge_id":      fmt.Sprint(d.Badge.ID),
		"badge_version": fmt.Sprint(d.Badge.Version),
		"scoutid":       fmt.Sprint(d.MemberID),
		"level":         fmt.Sprint(level),
		"date":          util.FormatDate(date),
	}))
	if err != nil {
		return false, err
	}
	if util.ToInt(res["scoutid"]) != d.MemberID {
		return false, nil
	}

	d.Awarded = level
	d.AwardedDate = date
	a.invalidateBadgeData(ctx, d)
	a.invalidate(ctx, []any{"due-badges", d.SectionID})
	return true, nil
}

func (a *API) invalidateBadgeData(ctx context.Context, d *models.BadgeData) {
	if a.cache == nil {
		return
	}
	keys := [][]any{{"badge-data", d.SectionID, d.Badge.ID, d.Badge.Version, 0}}
	terms, _ := GetTermsForSection(ctx, a, d.SectionID)
	for _, t := range terms {
		keys = append(keys, []any{"badge-data", d.SectionID, d.Badge.ID, d.Badge.Version, t.ID})
	}
	a.invalidate(ctx, keys...)
}

// GetDueBadges lists badges members have completed but not been given; termID 0 means the current term.
func GetDueBadges(ctx context.Context, a *API, sectionID, termID int, opts ...Option) (models.DueBadges, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaBadge, sectionID, opts...); err != nil {
		return models.DueBadges{}, err
	}
	section, err := GetSection(ctx, a, sectionID, opts...)
	if err != nil {
		return models.DueBadges{}, err
	}
	termID, err = a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return models.DueBadges{}, err
	}

	return fetch(ctx, a, opts, func() (models.DueBadges, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("ext/badges/due/?action=get&section=%s&sectionid=%d&termid=%d", section.Type, sectionID, termID), nil)
		if err != nil {
			return models.DueBadges{}, err
		}
		return models.ParseDueBadges(sectionID, data), nil
	}, "due-badges", sectionID, termID)
}

package osm

import (
	"context"
	"fmt"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/connection"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetMembers lists a section's members in a term; termID 0 means the current term.
func GetMembers(ctx context.Context, a *API, sectionID, termID int, opts ...Option) ([]models.Member, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaMember, sectionID, opts...); err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return nil, err
	}

	members, err := fetch(ctx, a, opts, func() ([]models.Member, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("users.php?action=getUserDetails&sectionid=%d&termid=%d", sectionID, termID), nil)
		if err != nil {
			return nil, err
		}
		var members []models.Member
		for _, item := range util.Maps(data["items"]) {
			members = append(members, models.ParseMember(sectionID, item))
		}
		models.SortMembers(members)
		return members, nil
	}, "members", sectionID, termID)
	for i := range members {
		members[i].MarkClean()
	}
	return members, err
}

// GetMember finds one member of the section in the current term.
func GetMember(ctx context.Context, a *API, sectionID, memberID int, opts ...Option) (models.Member, error) {
	members, err := GetMembers(ctx, a, sectionID, 0, opts...)
	if err != nil {
		return models.Member{}, err
	}
	for _, m := range members {
		if m.ID == memberID {
			return m, nil
		}
	}
	return models.Member{}, fmt.Errorf("member %d: %w", memberID, constants.ErrNotFound)
}

// CreateMember adds the member to its section and sets the member's ID.
func CreateMember(ctx context.Context, a *API, m *models.Member) (bool, error) {
	if m.ID != 0 {
		return false, fmt.Errorf("member %d already exists: %w", m.ID, constants.ErrInvalidObject)
	}
	if err := models.Validate(m); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaMember, m.SectionID); err != nil {
		return false, err
	}

	f := formOf(m.Fields())
	f.Set("sectionid", fmt.Sprint(m.SectionID))
	f.Set("patrolid", fmt.Sprint(m.GroupingID))
	f.Set("patrolleader", fmt.Sprint(m.GroupingLeader))
	data, err := a.Post(ctx, "users.php?action=newMember", f)
	if err != nil {
		return false, err
	}
	res := util.Map(data)
	id := util.ToInt(res["scoutid"])
	if util.ToString(res["result"]) != "ok" || id <= 0 {
		return false, nil
	}

	m.ID = id
	m.MarkClean()
	a.invalidateTerms(ctx, m.SectionID, "members")
	return true, nil
}

// UpdateMember sends every changed column, then the grouping if that changed.
// It reports true only if OSM confirmed every value.
func UpdateMember(ctx context.Context, a *API, m *models.Member) (bool, error) {
	if m.ID <= 0 {
		return false, fmt.Errorf("member has no id: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(m); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaMember, m.SectionID); err != nil {
		return false, err
	}

	fields := m.Fields()
	updated := true
	for _, column := range m.Changed() {
		data, err := postInto[map[string]any](ctx, a, "users.php?action=updateMember&dateFormat=generic", formOf(map[string]string{
			"scoutid":   fmt.Sprint(m.ID),
			"column":    column,
			"value":     fields[column],
			"sectionid": fmt.Sprint(m.SectionID),
		}))
		if err != nil {
			return false, err
		}
		if util.ToString(data[column]) != fields[column] {
			a.logger.Debug().Int("member_id", m.ID).Str("column", column).Msg("member update not confirmed")
			updated = false
		}
	}

	if m.GroupingChanged() {
		data, err := a.Post(ctx, endpoint("users.php?action=updateMemberPatrol&sectionid=%d", m.SectionID), formOf(map[string]string{
			"scoutid":  fmt.Sprint(m.ID),
			"patrolid": fmt.Sprint(m.GroupingID),
			"pl":       fmt.Sprint(m.GroupingLeader),
		}))
		if err != nil {
			return false, err
		}
		res := util.Map(data)
		if res == nil || util.ToInt(res["patrolid"]) != m.GroupingID {
			updated = false
		}
	}

	if updated {
		m.MarkClean()
		a.invalidateTerms(ctx, m.SectionID, "members")
	}
	return updated, nil
}

// GetMemberPhoto returns the member's photo as JPEG bytes.
func GetMemberPhoto(ctx context.Context, a *API, sectionID, memberID int, blackAndWhite bool, opts ...Option) ([]byte, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaMember, sectionID, opts...); err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() ([]byte, error) {
		data, err := a.Post(ctx, endpoint("ext/members/contact/images/member.php?sectionid=%d&scoutid=%d&bw=%t", sectionID, memberID, blackAndWhite), nil)
		if err != nil {
			return nil, err
		}
		photo, ok := data.([]byte)
		if !ok {
			return nil, &connection.OSMError{Message: fmt.Sprintf("no photo for member %d", memberID)}
		}
		return photo, nil
	}, "member-photo", memberID, blackAndWhite)
}

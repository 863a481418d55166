package osm

import (
	"context"
	"fmt"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetGroupings lists the section's groupings. OSM's pseudo groupings
// (leaders, unallocated) have ids <= 0 and are left out.
func GetGroupings(ctx context.Context, a *API, sectionID int, opts ...Option) ([]models.Grouping, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaMember, sectionID, opts...); err != nil {
		return nil, err
	}
	groupings, err := fetch(ctx, a, opts, func() ([]models.Grouping, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("users.php?action=getPatrols&sectionid=%d", sectionID), nil)
		if err != nil {
			return nil, err
		}
		var groupings []models.Grouping
		for _, item := range util.Maps(data["patrols"]) {
			g := models.ParseGrouping(sectionID, item)
			if g.ID > 0 {
				groupings = append(groupings, g)
			}
		}
		models.SortGroupings(groupings)
		return groupings, nil
	}, "groupings", sectionID)
	for i := range groupings {
		groupings[i].MarkClean()
	}
	return groupings, err
}

// UpdateGrouping sends a changed name or active flag, then changed points.
func UpdateGrouping(ctx context.Context, a *API, g *models.Grouping) (bool, error) {
	if g.ID <= 0 {
		return false, fmt.Errorf("grouping has no id: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(g); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaMember, g.SectionID); err != nil {
		return false, err
	}

	updated := true
	changed := map[string]bool{}
	for _, f := range g.Changed() {
		changed[f] = true
	}

	if changed["name"] || changed["active"] {
		data, err := a.Post(ctx, endpoint("users.php?action=editPatrol&sectionid=%d", g.SectionID), formOf(map[string]string{
			"patrolid": fmt.Sprint(g.ID),
			"name":     g.Name,
			"active":   fmt.Sprint(g.Active),
		}))
		if err != nil {
			return false, err
		}
		if _, ok := data.(map[string]any); !ok {
			updated = false
		}
	}

	if changed["points"] {
		ok, err := UpdateGroupingPoints(ctx, a, g, g.Points)
		if err != nil {
			return false, err
		}
		updated = updated && ok
	}

	if updated {
		g.MarkClean()
		a.invalidate(ctx, []any{"groupings", g.SectionID})
	}
	return updated, nil
}

// UpdateGroupingPoints sets the grouping's points. OSM answers {} when it worked.
func UpdateGroupingPoints(ctx context.Context, a *API, g *models.Grouping, points int) (bool, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaMember, g.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("users.php?action=updatePatrolPoints&sectionid=%d", g.SectionID), formOf(map[string]string{
		"patrolid": fmt.Sprint(g.ID),
		"points":   fmt.Sprint(points),
	}))
	if err != nil {
		return false, err
	}
	if res, ok := data.(map[string]any); !ok || len(res) != 0 {
		return false, nil
	}
	g.Points = points
	a.invalidate(ctx, []any{"groupings", g.SectionID})
	return true, nil
}

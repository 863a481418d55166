package osm_test

import (
	"testing"
	"time"

	"github.com/osmx/osm-go"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubBadges(o *OSMForTest) {
	o.JSON("ext/badges/records/?action=getBadgeStructureByType", map[string]any{
		"details": map[string]any{
			"100_0": map[string]any{"badge_id": "100", "badge_version": "0", "name": "Nights Away", "levels": "1,5,10", "latest": "1"},
			"90_1":  map[string]any{"badge_id": "90", "badge_version": "1", "name": "Camper"},
		},
		"structure": map[string]any{
			"100_0": []any{
				map[string]any{"rows": []any{map[string]any{"field": "firstname", "name": "First name"}}},
				map[string]any{"rows": []any{
					map[string]any{"field": "2000", "name": "One night", "module": "a", "editable": "true"},
					map[string]any{"field": "2001", "name": "Five nights", "module": "a", "editable": "true"},
				}},
			},
		},
	})
	o.JSON("ext/badges/records/?action=getBadgeRecords", map[string]any{"items": []any{
		map[string]any{"scoutid": "101", "firstname": "Amy", "lastname": "Ant", "completed": "1", "awarded": "0", "2000": "Camp 2025", "2001": "x"},
	}})
}

func TestGetBadges(t *testing.T) {
	o := NewTestOSM(t)
	stubBadges(o)

	badges, err := osm.GetBadges(ctx, o.API, beavers, models.BadgeTypeActivity)
	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, "Camper", badges[0].Name)
	assert.Equal(t, "90_1", badges[0].Identifier)

	nightsAway := badges[1]
	assert.Equal(t, []int{1, 5, 10}, nightsAway.Levels)
	require.Len(t, nightsAway.Requirements, 2)
	assert.Equal(t, 2001, nightsAway.Requirements[1].ID)

	req, _ := o.Last("ext/badges/records/?action=getBadgeStructureByType")
	assert.Equal(t, "beavers", req.Query.Get("section"))
	assert.Equal(t, "2", req.Query.Get("type_id"))
	assert.Equal(t, "10", req.Query.Get("term_id"))
}

func TestBadgeData(t *testing.T) {
	o := NewTestOSM(t)
	stubBadges(o)
	o.JSON("ext/badges/records/?action=updateSingleRecord", map[string]any{"scoutid": "101", "2001": "Camp 2026"})
	o.JSON("ext/badges/records/?action=overrideCompletion", map[string]any{"scoutid": 101})

	badges, err := osm.GetBadges(ctx, o.API, beavers, models.BadgeTypeActivity)
	require.NoError(t, err)

	data, err := osm.GetBadgeData(ctx, o.API, badges[1], beavers, 0)
	require.NoError(t, err)
	require.Len(t, data, 1)
	amy := data[0]
	assert.True(t, amy.Met(2000))
	assert.False(t, amy.Met(2001))
	assert.True(t, amy.Due())
	assert.Equal(t, map[string]int{"a": 1}, amy.GainedInModules())

	amy.Requirements[2001] = "Camp 2026"
	ok, err := osm.UpdateBadgeData(ctx, o.API, &amy)
	require.NoError(t, err)
	assert.True(t, ok)
	req, _ := o.Last("ext/badges/records/?action=updateSingleRecord")
	assert.Equal(t, "2001", req.Form.Get("field"))
	assert.Equal(t, "Camp 2026", req.Form.Get("value"))
	assert.Equal(t, "100", req.Form.Get("badge_id"))
	assert.Empty(t, amy.Changed())

	awardedOn := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	ok, err = osm.MarkBadgeAwarded(ctx, o.API, &amy, awardedOn, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, amy.Awarded)
	award, _ := o.Last("ext/badges/records/?action=overrideCompletion")
	assert.Equal(t, "awarded", award.Form.Get("action"))
	assert.Equal(t, "2026-10-01", award.Form.Get("date"))
	assert.Equal(t, "1", award.Form.Get("level"))

	_, err = osm.MarkBadgeAwarded(ctx, o.API, &amy, time.Time{}, 1)
	assert.ErrorIs(t, err, constants.ErrInvalidObject)

	_, err = osm.GetBadgeData(ctx, o.API, badges[1], beavers, currentTerm)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Count("ext/badges/records/?action=getBadgeRecords"))
}

func TestGetDueBadges(t *testing.T) {
	o := NewTestOSM(t)
	o.JSON("ext/badges/due/?action=get", map[string]any{
		"description": map[string]any{"100_1": map[string]any{"name": "Nights Away", "level": "1"}},
		"pending": map[string]any{"100": []any{
			map[string]any{"scoutid": "101", "firstname": "Amy", "lastname": "Ant", "badge_id": "100", "completed": "1"},
		}},
	})

	due, err := osm.GetDueBadges(ctx, o.API, beavers, 0)
	require.NoError(t, err)
	assert.False(t, due.Empty())
	assert.Equal(t, []string{"100_1"}, due.ByMember[101])
	assert.Equal(t, "Nights Away (Level 1)", due.Descriptions["100_1"])
	assert.Equal(t, "Amy Ant", due.MemberNames[101])

	_, err = osm.GetDueBadges(ctx, o.API, cubs, 0)
	assert.NoError(t, err, "cubs can read badges even without a current term")
}

package models_test

import (
	"testing"
	"time"

	"github.com/osmx/osm-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgeFixture() models.Badge {
	detail := map[string]any{
		"badge_id": "93", "badge_version": "0", "badge_identifier": "93_0", "name": "Camper",
		"group_name": "", "latest": "1", "sharing": "default-locked", "userid": "0",
		"levels": "", "min_modules_required": "0", "min_completed": "2",
	}
	structure := []any{
		map[string]any{"rows": []any{map[string]any{"name": "First name", "field": "firstname"}}},
		map[string]any{"rows": []any{
			map[string]any{"name": "Pitch a tent", "field": "101", "module": "a", "editable": "true", "tooltip": "Help pitch"},
			map[string]any{"name": "Cook", "field": "102", "module": "a", "editable": "true"},
			map[string]any{"name": "Night away", "field": "103", "module": "b", "editable": "true"},
		}},
	}
	return models.ParseBadge(models.BadgeTypeActivity, detail, structure)
}

func TestParseBadge(t *testing.T) {
	b := badgeFixture()
	assert.Equal(t, 93, b.ID)
	assert.Equal(t, "93_0", b.Identifier)
	assert.Equal(t, 2, b.MinRequirementsCompleted)
	assert.True(t, b.Latest)
	require.Len(t, b.Requirements, 3)
	assert.Equal(t, models.BadgeRequirement{
		BadgeID: 93, ID: 101, Name: "Pitch a tent", Description: "Help pitch", ModuleLetter: "a", Editable: true,
	}, b.Requirements[0])
	assert.False(t, b.Staged())
	assert.NoError(t, models.Validate(b))

	staged := models.ParseBadge(models.BadgeTypeStaged, map[string]any{"badge_id": "5", "name": "Nights", "levels": "1,5,10"}, nil)
	assert.Equal(t, []int{1, 5, 10}, staged.Levels)
	assert.Equal(t, "5_0", staged.Identifier)
	assert.True(t, staged.Staged())
}

func TestBadgeType(t *testing.T) {
	assert.Equal(t, models.BadgeTypeCore, models.ParseBadgeType("Core"))
	assert.Equal(t, models.BadgeTypeStaged, models.ParseBadgeType("3"))
	assert.Equal(t, "challenge", models.BadgeTypeChallenge.String())
	assert.Equal(t, "unknown", models.BadgeType(9).String())
}

func TestBadgeData(t *testing.T) {
	b := badgeFixture()
	d := models.ParseBadgeData(b, 1, map[string]any{
		"scoutid": "100", "firstname": "Alice", "lastname": "Smith",
		"completed": "1", "awarded": "0", "awardeddate": "0000-00-00",
		"101": "Yes", "102": "xNot yet", "103": "",
	})
	assert.Equal(t, 100, d.MemberID)
	assert.True(t, d.Due())
	assert.True(t, d.AwardedDate.IsZero())
	assert.True(t, d.Met(101))
	assert.False(t, d.Met(102))
	assert.False(t, d.Met(103))
	assert.Equal(t, map[string]int{"a": 1}, d.GainedInModules())

	d.MarkClean()
	d.Requirements[103] = "Done"
	d.Requirements[102] = "Done"
	assert.Equal(t, []int{102, 103}, d.Changed())

	d.AwardedDate = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, models.Validate(d))
}

func TestParseDueBadges(t *testing.T) {
	due := models.ParseDueBadges(1, map[string]any{
		"description": map[string]any{
			"93_1": map[string]any{"name": "Camper", "level": "0"},
			"5_10": map[string]any{"name": "Nights Away", "level": "10"},
		},
		"pending": map[string]any{
			"93_1": []any{
				map[string]any{"scoutid": "100", "firstname": "Alice", "lastname": "Smith", "badge_id": "93", "completed": "1"},
				map[string]any{"scoutid": "101", "firstname": "Bob", "lastname": "Jones", "badge_id": "93", "completed": "1"},
			},
			"5_10": []any{
				map[string]any{"scoutid": "100", "firstname": "Alice", "lastname": "Smith", "badge_id": "5", "completed": "10"},
			},
		},
	})
	assert.False(t, due.Empty())
	assert.Equal(t, []string{"5_10", "93_1"}, due.ByMember[100])
	assert.Equal(t, []string{"93_1"}, due.ByMember[101])
	assert.Equal(t, "Camper", due.Descriptions["93_1"])
	assert.Equal(t, "Nights Away (Level 10)", due.Descriptions["5_10"])
	assert.Equal(t, 2, due.Totals["93_1"])
	assert.Equal(t, "Bob Jones", due.MemberNames[101])
	assert.True(t, models.ParseDueBadges(1, map[string]any{}).Empty())
}

func TestFlexiRecords(t *testing.T) {
	record := models.FlexiRecord{ID: 11, SectionID: 1, Name: "Alpha"}
	columns := []models.FlexiColumn{
		models.ParseFlexiColumn(record, map[string]any{"field": "f_10", "name": "Later", "editable": true}),
		models.ParseFlexiColumn(record, map[string]any{"field": "f_2", "name": "Sooner", "editable": true}),
		models.ParseFlexiColumn(record, map[string]any{"field": "firstname", "name": "First name", "editable": false}),
	}
	models.SortFlexiColumns(columns)
	assert.Equal(t, []string{"firstname", "f_2", "f_10"}, []string{columns[0].ID, columns[1].ID, columns[2].ID})
	assert.True(t, columns[0].System())
	assert.False(t, columns[1].System())

	d := models.ParseFlexiData(record, map[string]any{
		"scoutid": "100", "patrolid": "5", "firstname": "Alice", "dob": "2018-05-04", "f_2": "Yes", "total": 3,
	})
	assert.Equal(t, 100, d.MemberID)
	assert.Equal(t, map[string]string{"firstname": "Alice", "dob": "2018-05-04", "f_2": "Yes", "total": "3"}, d.Fields)
	d.MarkClean()
	d.Fields["f_2"] = "No"
	assert.Equal(t, []string{"f_2"}, d.Changed())

	records := []models.FlexiRecord{{ID: 2, SectionID: 1, Name: "B"}, {ID: 1, SectionID: 1, Name: "B"}, {ID: 9, SectionID: 1, Name: "A"}}
	models.SortFlexiRecords(records)
	assert.Equal(t, []int{9, 1, 2}, []int{records[0].ID, records[1].ID, records[2].ID})
}

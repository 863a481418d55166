package osm_test

import (
	"testing"

	"github.com/osmx/osm-go"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campKit = models.FlexiRecord{ID: 11, SectionID: beavers, Name: "Camp kit"}

func TestFlexiColumns(t *testing.T) {
	o := NewTestOSM(t)
	o.JSON("extras.php?action=getExtra", map[string]any{"structure": []any{
		map[string]any{"rows": []any{
			map[string]any{"field": "firstname", "name": "First name"},
			map[string]any{"field": "dob", "name": "DOB"},
		}},
		map[string]any{"rows": []any{
			map[string]any{"field": "f_2", "name": "Sleeping bag", "editable": "true"},
			map[string]any{"field": "f_1", "name": "Tent", "editable": "true"},
		}},
	}})
	o.JSON("extras.php?action=addColumn", map[string]any{"config": `[{"id":"f_1","name":"Tent"},{"id":"f_2","name":"Sleeping bag"},{"id":"f_3","name":"Mat"}]`})
	o.JSON("extras.php?action=renameColumn", map[string]any{"config": `[{"id":"f_1","name":"Tents"},{"id":"f_2","name":"Sleeping bag"}]`})
	o.JSON("extras.php?action=deleteColumn", map[string]any{"config": `[{"id":"f_2","name":"Sleeping bag"}]`})

	columns, err := osm.GetFlexiColumns(ctx, o.API, campKit)
	require.NoError(t, err)
	require.Len(t, columns, 4)
	assert.True(t, columns[0].System())
	assert.Equal(t, "f_1", columns[2].ID)
	assert.Equal(t, "f_2", columns[3].ID)

	ok, err := osm.AddFlexiColumn(ctx, o.API, campKit, "Mat")
	require.NoError(t, err)
	assert.True(t, ok)

	tent := columns[2]
	tent.Name = "Tents"
	ok, err = osm.RenameFlexiColumn(ctx, o.API, &tent)
	require.NoError(t, err)
	assert.True(t, ok)
	req, _ := o.Last("extras.php?action=renameColumn")
	assert.Equal(t, "f_1", req.Form.Get("columnId"))
	assert.Equal(t, "11", req.Query.Get("extraid"))

	ok, err = osm.DeleteFlexiColumn(ctx, o.API, tent)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = osm.DeleteFlexiColumn(ctx, o.API, columns[0])
	assert.ErrorIs(t, err, constants.ErrInvalidObject)
	_, err = osm.AddFlexiColumn(ctx, o.API, campKit, " ")
	assert.ErrorIs(t, err, constants.ErrInvalidObject)

	_, err = osm.GetFlexiColumns(ctx, o.API, campKit)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Count("extras.php?action=getExtra"), "column changes drop the cached structure")
}

func TestFlexiData(t *testing.T) {
	o := NewTestOSM(t)
	o.JSON("extras.php?action=getExtraRecords", map[string]any{"items": []any{
		map[string]any{"scoutid": "101", "patrolid": "3", "firstname": "Amy", "dob": "2017-03-04", "f_1": "Yes", "f_2": ""},
	}})
	o.JSON("extras.php?action=updateScout", map[string]any{"items": []any{
		map[string]any{"scoutid": "102", "f_2": "Own"},
		map[string]any{"scoutid": "101", "f_2": "Borrowed"},
	}})

	data, err := osm.GetFlexiData(ctx, o.API, campKit, 0)
	require.NoError(t, err)
	require.Len(t, data, 1)
	amy := data[0]
	assert.Equal(t, 3, amy.GroupingID)
	assert.Equal(t, "Yes", amy.Fields["f_1"])
	assert.NotContains(t, amy.Fields, "scoutid")

	amy.Fields["f_2"] = "Borrowed"
	amy.Fields["firstname"] = "Amelia"
	ok, err := osm.UpdateFlexiData(ctx, o.API, &amy, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	updates := o.Requests("extras.php?action=updateScout")
	require.Len(t, updates, 1, "system columns are not sent")
	assert.Equal(t, "f_2", updates[0].Form.Get("column"))
	assert.Equal(t, "10", updates[0].Form.Get("termid"))
	assert.Equal(t, "11", updates[0].Form.Get("extraid"))

	_, err = osm.GetFlexiData(ctx, o.API, models.FlexiRecord{ID: 12, SectionID: cubs}, 0)
	assert.ErrorIs(t, err, constants.ErrForbidden)
}

func TestFlexiDataCachedPerTerm(t *testing.T) {
	o := NewTestOSM(t)
	o.JSON("extras.php?action=getExtraRecords", map[string]any{"items": []any{
		map[string]any{"scoutid": "101", "firstname": "Amy", "f_1": "Yes"},
	}})
	o.JSON("extras.php?action=getExtraRecords", map[string]any{"items": []any{
		map[string]any{"scoutid": "101", "firstname": "Amy", "f_1": "No"},
	}})
	o.JSON("extras.php?action=updateScout", map[string]any{"items": []any{
		map[string]any{"scoutid": "101", "f_1": "Maybe"},
	}})

	now, err := osm.GetFlexiData(ctx, o.API, campKit, currentTerm)
	require.NoError(t, err)
	last, err := osm.GetFlexiData(ctx, o.API, campKit, 9)
	require.NoError(t, err)
	assert.Equal(t, "Yes", now[0].Fields["f_1"])
	assert.Equal(t, "No", last[0].Fields["f_1"])
	assert.Equal(t, 2, o.Count("extras.php?action=getExtraRecords"))

	_, err = osm.GetFlexiData(ctx, o.API, campKit, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Count("extras.php?action=getExtraRecords"))

	last[0].Fields["f_1"] = "Maybe"
	ok, err := osm.UpdateFlexiData(ctx, o.API, &last[0], 9)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = osm.GetFlexiData(ctx, o.API, campKit, currentTerm)
	require.NoError(t, err)
	_, err = osm.GetFlexiData(ctx, o.API, campKit, 9)
	require.NoError(t, err)
	assert.Equal(t, 4, o.Count("extras.php?action=getExtraRecords"), "the update dropped every term")
}

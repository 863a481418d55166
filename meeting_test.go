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

func TestMeetings(t *testing.T) {
	o := NewTestOSM(t)
	o.JSON("programme.php?action=getProgramme", map[string]any{
		"items": []any{
			map[string]any{"eveningid": "41", "title": "Campfire", "meetingdate": "2026-10-15", "starttime": "18:00:00", "endtime": "19:15:00"},
			map[string]any{"eveningid": "40", "title": "Games", "meetingdate": "2026-10-08", "parentsrequired": "2"},
		},
		"activities": map[string]any{"41": []any{map[string]any{"activityid": "900", "title": "Songs", "notes": "loud ones"}}},
		"badgelinks": map[string]any{"41": []any{map[string]any{"badgetype": "activity", "badge_id": "100", "column_id": "2000"}}},
	})
	o.JSON("programme.php?action=editEvening", map[string]any{"result": 0})
	o.JSON("programme.php?action=addActivityToProgramme", map[string]any{"result": 0})
	o.JSON("programme.php?action=deleteEvening", map[string]any{})

	meetings, err := osm.GetMeetings(ctx, o.API, beavers, 0)
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, "Games", meetings[0].Title)
	assert.Equal(t, 2, meetings[0].ParentsRequired)

	campfire := meetings[1]
	assert.Equal(t, "19:15", campfire.FinishTime)
	require.Len(t, campfire.Activities, 1)
	assert.Equal(t, 900, campfire.Activities[0].ActivityID)
	require.Len(t, campfire.BadgeLinks, 1)

	campfire.Notes = "Bring a mug"
	ok, err := osm.UpdateMeeting(ctx, o.API, &campfire)
	require.NoError(t, err)
	assert.True(t, ok)
	req, _ := o.Last("programme.php?action=editEvening")
	assert.Equal(t, "41", req.Form.Get("eveningid"))
	assert.Equal(t, "Bring a mug", req.Form.Get("notesforparents"))
	assert.JSONEq(t, `[{"activityid":"900","notes":"loud ones"}]`, req.Form.Get("activity"))

	_, err = osm.GetMeetings(ctx, o.API, beavers, currentTerm)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Count("programme.php?action=getProgramme"))

	hike := models.Meeting{SectionID: beavers, Title: "Hike", Date: time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC), StartTime: "18:30"}
	ok, err = osm.CreateMeeting(ctx, o.API, &hike)
	require.NoError(t, err)
	assert.True(t, ok)
	add, _ := o.Last("programme.php?action=addActivityToProgramme")
	assert.Equal(t, "2026-10-22", add.Form.Get("meetingdate"))
	assert.Equal(t, "-1", add.Form.Get("activityid"))

	ok, err = osm.DeleteMeeting(ctx, o.API, &campfire)
	require.NoError(t, err)
	assert.True(t, ok)

	bad := models.Meeting{SectionID: beavers, Title: "Late", Date: hike.Date, StartTime: "25:00"}
	_, err = osm.CreateMeeting(ctx, o.API, &bad)
	assert.ErrorIs(t, err, constants.ErrInvalidObject)
}

func TestGetActivity(t *testing.T) {
	o := NewTestOSM(t)
	o.JSON("programme.php?action=getActivity", map[string]any{
		"details":  map[string]any{"activityid": "900", "version": "2", "title": "Songs", "runningtime": "15"},
		"editable": true,
		"versions": []any{map[string]any{"value": "1", "userid": "7", "label": "first"}, map[string]any{"value": "2", "userid": "7", "label": "second"}},
		"tags":     []any{"campfire"},
		"files":    []any{map[string]any{"fileid": "5", "filename": "songs.pdf", "name": "Song sheet"}},
	})

	activity, err := osm.GetActivity(ctx, o.API, 900, 0)
	require.NoError(t, err)
	assert.Equal(t, "Songs", activity.Title)
	assert.Equal(t, 15, activity.RunningTime)
	assert.Len(t, activity.Versions, 2)
	assert.Equal(t, []string{"campfire"}, activity.Tags)
	require.Len(t, activity.Files, 1)
	assert.Equal(t, "songs.pdf", activity.Files[0].FileName)
	req, _ := o.Last("programme.php?action=getActivity")
	assert.Empty(t, req.Query.Get("version"))

	_, err = osm.GetActivity(ctx, o.API, 901, 3)
	assert.ErrorIs(t, err, constants.ErrNotFound)
	req, _ = o.Last("programme.php?action=getActivity")
	assert.Equal(t, "3", req.Query.Get("version"))
}

package osm

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetMeetings lists the section's programme for a term; termID 0 means the current term.
func GetMeetings(ctx context.Context, a *API, sectionID, termID int, opts ...Option) ([]models.Meeting, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaProgramme, sectionID, opts...); err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, sectionID, termID)
	if err != nil {
		return nil, err
	}

	meetings, err := fetch(ctx, a, opts, func() ([]models.Meeting, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("programme.php?action=getProgramme&sectionid=%d&termid=%d", sectionID, termID), nil)
		if err != nil {
			return nil, err
		}
		activities := util.Map(data["activities"])
		badgeLinks := util.Map(data["badgelinks"])
		var out []models.Meeting
		for _, item := range util.Maps(data["items"]) {
			id := util.ToString(item["eveningid"])
			out = append(out, models.ParseMeeting(sectionID, item, activities[id], badgeLinks[id]))
		}
		models.SortMeetings(out)
		return out, nil
	}, "meetings", sectionID, termID)
	for i := range meetings {
		meetings[i].MarkClean()
	}
	return meetings, err
}

// CreateMeeting adds a meeting to the programme. OSM does not return the new
// meeting's id; fetch the programme again to find it.
func CreateMeeting(ctx context.Context, a *API, m *models.Meeting) (bool, error) {
	if m.ID != 0 {
		return false, fmt.Errorf("meeting %d already exists: %w", m.ID, constants.ErrInvalidObject)
	}
	if err := models.Validate(m); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaProgramme, m.SectionID); err != nil {
		return false, err
	}

	data, err := postInto[map[string]any](ctx, a, "programme.php?action=addActivityToProgramme", formOf(map[string]string{
		"meetingdate": util.FormatDate(m.Date),
		"sectionid":   fmt.Sprint(m.SectionID),
		"activityid":  "-1",
		"start":       util.FormatDate(m.Date),
		"starttime":   m.StartTime,
		"endtime":     m.FinishTime,
		"title":       m.Title,
	}))
	if err != nil {
		return false, err
	}
	if result, ok := util.ToIntOK(data["result"]); !ok || result != 0 {
		return false, nil
	}
	a.invalidateTerms(ctx, m.SectionID, "meetings")
	return true, nil
}

// UpdateMeeting sends the whole meeting, activities included.
func UpdateMeeting(ctx context.Context, a *API, m *models.Meeting) (bool, error) {
	if m.ID <= 0 {
		return false, fmt.Errorf("meeting has no id: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(m); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaProgramme, m.SectionID); err != nil {
		return false, err
	}

	activities := make([]map[string]string, 0, len(m.Activities))
	for _, act := range m.Activities {
		activities = append(activities, map[string]string{
			"activityid": fmt.Sprint(act.ActivityID),
			"notes":      act.Notes,
		})
	}
	activitiesJSON, err := json.Marshal(activities)
	if err != nil {
		return false, err
	}

	f := formOf(m.Fields())
	f.Set("eveningid", fmt.Sprint(m.ID))
	f.Set("sectionid", fmt.Sprint(m.SectionID))
	f.Set("activity", string(activitiesJSON))
	data, err := postInto[map[string]any](ctx, a, "programme.php?action=editEvening", f)
	if err != nil {
		return false, err
	}
	if result, ok := util.ToIntOK(data["result"]); !ok || result != 0 {
		return false, nil
	}
	m.MarkClean()
	a.invalidateTerms(ctx, m.SectionID, "meetings")
	return true, nil
}

func DeleteMeeting(ctx context.Context, a *API, m *models.Meeting) (bool, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaProgramme, m.SectionID); err != nil {
		return false, err
	}
	if _, err := a.Post(ctx, endpoint("programme.php?action=deleteEvening&eveningid=%d&sectionid=%d", m.ID, m.SectionID), nil); err != nil {
		return false, err
	}
	a.invalidateTerms(ctx, m.SectionID, "meetings")
	return true, nil
}

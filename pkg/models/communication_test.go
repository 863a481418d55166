package models_test

import (
	"testing"
	"time"

	"github.com/osmx/osm-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMSDeliveryReport(t *testing.T) {
	r := models.ParseSMSDeliveryReport(1, map[string]any{
		"smsid": "1", "batchid": "2", "scoutid": "100", "scoutname": "Alice Smith", "phone": "447700900000",
		"from": "Leader", "message": "Hello", "schedule": "2026-10-19 18:30:00", "lastupdated": "2026-10-19 18:31:00",
		"credits": "1", "status": "Delivered",
	})
	assert.Equal(t, models.SMSStatusDelivered, r.Status)
	assert.True(t, r.Delivered())
	assert.False(t, r.Failed())
	assert.Equal(t, time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC), r.ScheduledAt)

	failed := models.ParseSMSDeliveryReport(1, map[string]any{"smsid": "2", "status": "Invalid destination address"})
	assert.Equal(t, models.SMSStatusInvalidDestination, failed.Status)
	assert.True(t, failed.Failed())

	reports := []models.SMSDeliveryReport{r, failed}
	models.SortSMSDeliveryReports(reports)
	assert.Equal(t, 2, reports[0].SMSID)

	sms := models.SMS{SectionID: 1, MemberIDs: []int{100}, Source: "Leader", Message: "Hi"}
	assert.NoError(t, models.Validate(sms))
	sms.Message = ""
	assert.Error(t, models.Validate(sms))
}

func TestEmailDeliveryReport(t *testing.T) {
	r := models.ParseEmailDeliveryReport(1, map[string]any{
		"id": "55", "name": "19/10/2026 18:30 - Camp - kit list",
		"children": []any{
			map[string]any{"id": "55-100", "name": "parent@example.com", "status": "delivered"},
			map[string]any{"id": "55-101", "name": "bad@example.com", "status": "Bounced"},
		},
	})
	assert.Equal(t, 55, r.ID)
	assert.Equal(t, time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC), r.SentAt)
	assert.Equal(t, "Camp - kit list", r.Subject)
	require.Len(t, r.Recipients, 2)
	assert.Equal(t, 100, r.Recipients[0].MemberID)
	assert.True(t, r.Recipients[0].Delivered())
	require.Len(t, r.Bounced(), 1)
	assert.Equal(t, "bad@example.com", r.Bounced()[0].Address)

	plain := models.ParseEmailDeliveryReport(1, map[string]any{"id": 1, "name": "No date here"})
	assert.True(t, plain.SentAt.IsZero())
	assert.Equal(t, "No date here", plain.Subject)
}

func TestEmailAddresses(t *testing.T) {
	addrs := models.ParseEmailAddresses(map[string]any{"data": map[string]any{
		"100": map[string]any{"emails": []any{"b@example.com", "a@example.com", ""}},
	}})
	assert.Equal(t, models.EmailAddresses{100: {"a@example.com", "b@example.com"}}, addrs)

	email := models.Email{SectionID: 1, MemberIDs: []int{100}, From: "Leader", Subject: "Hi", Body: "Hello [FIRSTNAME]", CC: []string{"nope"}}
	assert.Error(t, models.Validate(email))
	email.CC = []string{"cc@example.com"}
	assert.NoError(t, models.Validate(email))
}

func TestRegister(t *testing.T) {
	fields := models.ParseRegisterStructure([]any{
		map[string]any{"rows": []any{map[string]any{"field": "firstname", "name": "First name", "width": "100px"}}},
		map[string]any{"rows": []any{
			map[string]any{"field": "2026-10-12", "name": "Mon 12 Oct", "tooltip": "Hike", "width": "25"},
			map[string]any{"field": "2026-10-05", "name": "Mon 5 Oct", "tooltip": ""},
		}},
	})
	require.Len(t, fields, 3)
	assert.Equal(t, "Hike", fields[1].Tooltip)
	assert.Equal(t, []time.Time{
		time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
	}, models.RegisterDates(fields))

	a := models.ParseRegisterAttendance(1, 2, map[string]any{
		"scoutid": "100", "firstname": "Alice", "lastname": "Smith", "patrolid": "5", "total": "1",
		"2026-10-05": "Yes", "2026-10-12": "No", "2026-10-19": "Maybe",
	})
	assert.Equal(t, models.RegisterPresent, a.On(time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.RegisterAbsent, a.On(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.RegisterUnknown, a.On(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, a.Attendance, 3)
}

func TestMeeting(t *testing.T) {
	m := models.ParseMeeting(1, map[string]any{
		"eveningid": "9", "title": "Knots", "notesforparents": "Bring rope", "meetingdate": "2026-10-19",
		"starttime": "18:30:00", "endtime": "19:45:00", "parentsrequired": "2", "games": "Tag",
	}, []any{map[string]any{"activityid": "33", "title": "Reef knot", "notes": ""}},
		[]any{map[string]any{"badge_id": "93", "badgetype": "activity", "column_id": "101"}})
	assert.Equal(t, 9, m.ID)
	assert.Equal(t, "18:30", m.StartTime)
	assert.Equal(t, "19:45", m.FinishTime)
	assert.Equal(t, []models.MeetingActivity{{ActivityID: 33, Title: "Reef knot"}}, m.Activities)
	require.Len(t, m.BadgeLinks, 1)
	assert.NoError(t, models.Validate(m))

	m.MarkClean()
	m.Title = "Knots and lashings"
	assert.Equal(t, []string{"title"}, m.Changed())

	m.StartTime = "25:00"
	assert.Error(t, models.Validate(m))
}

func TestActivity(t *testing.T) {
	a := models.ParseActivity(map[string]any{
		"details": map[string]any{
			"activityid": "33", "version": "1", "groupid": "3", "userid": "4", "title": "Reef knot",
			"description": "Tie it", "runningtime": "20", "shared": "2", "rating": "5",
		},
		"editable":  true,
		"deletable": "0",
		"used":      "3",
		"versions":  []any{map[string]any{"value": "1", "userid": "4", "label": "Current"}},
		"sections":  []any{"cubs", "scouts"},
		"tags":      []any{"knots"},
		"files":     []any{map[string]any{"fileid": "6", "filename": "knot.pdf", "name": "Knot sheet"}},
		"badges":    []any{map[string]any{"badge_id": "93", "badgetype": "activity"}},
	})
	assert.Equal(t, 33, a.ID)
	assert.Equal(t, "Reef knot", a.Title)
	assert.True(t, a.Editable)
	assert.False(t, a.Deletable)
	assert.Equal(t, 3, a.Used)
	assert.Equal(t, []models.SectionType{models.SectionTypeCubs, models.SectionTypeScouts}, a.Sections)
	assert.Equal(t, []string{"knots"}, a.Tags)
	assert.Equal(t, "knot.pdf", a.Files[0].FileName)
	assert.Equal(t, 1, a.Versions[0].Version)
	assert.Len(t, a.BadgeLinks, 1)
}

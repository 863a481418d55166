package models

import (
	"sort"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// Meeting is an evening of a section's programme.
type Meeting struct {
	ID              int               `json:"id" validate:"gte=0"`
	SectionID       int               `json:"section_id" validate:"gt=0"`
	Title           string            `json:"title" validate:"required"`
	Notes           string            `json:"notes"`
	Date            time.Time         `json:"date" validate:"required"`
	StartTime       string            `json:"start_time" validate:"omitempty,datetime=15:04"`
	FinishTime      string            `json:"finish_time" validate:"omitempty,datetime=15:04"`
	ParentsRequired int               `json:"parents_required" validate:"gte=0"`
	GamesAndSongs   string            `json:"games"`
	PreNotes        string            `json:"pre_notes"`
	PostNotes       string            `json:"post_notes"`
	Leaders         string            `json:"leaders"`
	Activities      []MeetingActivity `json:"activities"`
	BadgeLinks      []EventBadgeLink  `json:"badge_links"`

	tracked
}

// MeetingActivity is an activity from the library used in a meeting.
type MeetingActivity struct {
	ActivityID int    `json:"activity_id" validate:"gt=0"`
	Title      string `json:"title"`
	Notes      string `json:"notes"`
}

// ParseMeeting reads an item of getProgramme with its activities and badge links.
func ParseMeeting(sectionID int, data map[string]any, activities, badgeLinks any) Meeting {
	m := Meeting{
		ID:              util.ToInt(data["eveningid"]),
		SectionID:       sectionID,
		Title:           util.ToString(data["title"]),
		Notes:           util.ToString(data["notesforparents"]),
		Date:            util.ToDate(data["meetingdate"]),
		StartTime:       util.ToClock(data["starttime"]),
		FinishTime:      util.ToClock(data["endtime"]),
		ParentsRequired: util.ToInt(data["parentsrequired"]),
		GamesAndSongs:   util.ToString(data["games"]),
		PreNotes:        util.ToString(data["prenotes"]),
		PostNotes:       util.ToString(data["postnotes"]),
		Leaders:         util.ToString(data["leaders"]),
	}
	for _, a := range util.Maps(activities) {
		m.Activities = append(m.Activities, MeetingActivity{
			ActivityID: util.ToInt(a["activityid"]),
			Title:      util.ToString(a["title"]),
			Notes:      util.ToString(a["notes"]),
		})
	}
	for _, l := range util.Maps(badgeLinks) {
		m.BadgeLinks = append(m.BadgeLinks, ParseEventBadgeLink(l))
	}
	return m
}

func (m *Meeting) Fields() map[string]string {
	return map[string]string{
		"title":           m.Title,
		"notesforparents": m.Notes,
		"meetingdate":     util.FormatDate(m.Date),
		"starttime":       m.StartTime,
		"endtime":         m.FinishTime,
		"parentsrequired": util.ToString(m.ParentsRequired),
		"games":           m.GamesAndSongs,
		"prenotes":        m.PreNotes,
		"postnotes":       m.PostNotes,
		"leaders":         m.Leaders,
	}
}

func (m *Meeting) MarkClean() {
	m.tracked.markClean(m.Fields())
}

func (m *Meeting) Changed() []string {
	return m.tracked.changed(m.Fields())
}

func (m Meeting) Less(o Meeting) bool {
	switch {
	case m.SectionID != o.SectionID:
		return m.SectionID < o.SectionID
	case !m.Date.Equal(o.Date):
		return m.Date.Before(o.Date)
	case m.StartTime != o.StartTime:
		return m.StartTime < o.StartTime
	}
	return m.ID < o.ID
}

func SortMeetings(meetings []Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool { return meetings[i].Less(meetings[j]) })
}

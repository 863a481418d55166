package models

import (
	"sort"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// Register attendance marks
const (
	RegisterPresent = "Yes"
	RegisterAbsent  = "No"
	RegisterUnknown = ""
)

// RegisterField is a column of the register structure, either member details or a meeting date.
type RegisterField struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Tooltip string    `json:"tooltip"`
	Width   int       `json:"width"`
	Date    time.Time `json:"date"`
}

// ParseRegisterStructure flattens the two row blocks of users.php?action=registerStructure.
func ParseRegisterStructure(data any) []RegisterField {
	var fields []RegisterField
	for _, block := range util.Maps(data) {
		for _, row := range util.Maps(block["rows"]) {
			f := RegisterField{
				ID:      util.ToString(row["field"]),
				Name:    util.ToString(row["name"]),
				Tooltip: util.ToString(row["tooltip"]),
				Width:   util.ToInt(row["width"]),
			}
			f.Date = util.ToDate(f.ID)
			fields = append(fields, f)
		}
	}
	return fields
}

// Dates returns the meeting dates of the structure in order
func RegisterDates(fields []RegisterField) []time.Time {
	var dates []time.Time
	for _, f := range fields {
		if !f.Date.IsZero() {
			dates = append(dates, f.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// RegisterAttendance is one member's row of the register.
type RegisterAttendance struct {
	SectionID  int    `json:"section_id" validate:"gt=0"`
	TermID     int    `json:"term_id" validate:"gt=0"`
	MemberID   int    `json:"member_id" validate:"gt=0"`
	GroupingID int    `json:"grouping_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Total      int    `json:"total"`
	// Attendance maps "YYYY-MM-DD" to a register mark
	Attendance map[string]string `json:"attendance"`
}

func ParseRegisterAttendance(sectionID, termID int, data map[string]any) RegisterAttendance {
	a := RegisterAttendance{
		SectionID:  sectionID,
		TermID:     termID,
		MemberID:   util.ToInt(data["scoutid"]),
		GroupingID: util.ToInt(data["patrolid"]),
		FirstName:  util.ToString(data["firstname"]),
		LastName:   util.ToString(data["lastname"]),
		Total:      util.ToInt(data["total"]),
		Attendance: map[string]string{},
	}
	for k, v := range data {
		if d := util.ToDate(k); !d.IsZero() {
			mark := util.ToString(v)
			if mark != RegisterPresent && mark != RegisterAbsent {
				mark = RegisterUnknown
			}
			a.Attendance[util.FormatDate(d)] = mark
		}
	}
	return a
}

// On returns the mark for a date
func (a RegisterAttendance) On(date time.Time) string {
	return a.Attendance[util.FormatDate(date)]
}

func (a RegisterAttendance) Less(o RegisterAttendance) bool {
	switch {
	case a.SectionID != o.SectionID:
		return a.SectionID < o.SectionID
	case a.GroupingID != o.GroupingID:
		return a.GroupingID < o.GroupingID
	case a.LastName != o.LastName:
		return a.LastName < o.LastName
	}
	return a.FirstName < o.FirstName
}

// RegisterUpdate marks members present or absent for one date.
type RegisterUpdate struct {
	SectionID int       `json:"section_id" validate:"gt=0"`
	TermID    int       `json:"term_id" validate:"gte=0"`
	Date      time.Time `json:"date" validate:"required"`
	MemberIDs []int     `json:"member_ids" validate:"required,min=1,dive,gt=0"`
	Mark      string    `json:"mark" validate:"oneof=Yes No ''"`
	// CompletedBadgeRequirements are ticked as part of the update
	CompletedBadgeRequirements []map[string]any `json:"completed_badge_requirements"`
}

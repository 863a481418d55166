package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// EventCostTBC is sent as the cost of an event whose cost is not yet known
const EventCostTBC = "-1.00"

// Event is an entry in a section's events list.
type Event struct {
	ID                             int       `json:"id" validate:"gte=0"`
	SectionID                      int       `json:"section_id" validate:"gt=0"`
	Name                           string    `json:"name" validate:"required"`
	Start                          time.Time `json:"start"`
	Finish                         time.Time `json:"finish"`
	StartTime                      string    `json:"start_time" validate:"omitempty,datetime=15:04"`
	FinishTime                     string    `json:"finish_time" validate:"omitempty,datetime=15:04"`
	Location                       string    `json:"location"`
	Cost                           string    `json:"cost" validate:"omitempty,numeric"`
	Notes                          string    `json:"notes"`
	Notepad                        string    `json:"notepad"`
	PublicNotepad                  string    `json:"public_notepad"`
	ConfirmByDate                  time.Time `json:"confirm_by_date"`
	ArchivedAt                     time.Time `json:"archived_at"`
	AllowChanges                   bool      `json:"allow_changes"`
	ReminderEmails                 bool      `json:"reminder_emails"`
	AttendanceReminder             int       `json:"attendance_reminder" validate:"oneof=0 1 2 3 7 14 21 28"`
	AllowBooking                   bool      `json:"allow_booking"`
	AttendanceLimit                int       `json:"attendance_limit" validate:"gte=0"`
	AttendanceLimitIncludesLeaders bool      `json:"attendance_limit_includes_leaders"`
	Archived                       bool      `json:"archived"`
	// Yes and Reserved are counted from the event's attendance
	Yes      int `json:"yes"`
	Reserved int `json:"reserved"`

	Columns    []EventColumn    `json:"columns"`
	BadgeLinks []EventBadgeLink `json:"badge_links"`

	tracked
}

// ParseEvent builds an Event from events.php; columns arrive as a JSON string in "config".
func ParseEvent(sectionID int, data map[string]any) Event {
	e := Event{
		ID:                             util.ToInt(data["eventid"]),
		SectionID:                      sectionID,
		Name:                           util.ToString(data["name"]),
		Start:                          util.ToDate(data["startdate"]),
		Finish:                         util.ToDate(data["enddate"]),
		StartTime:                      util.ToClock(data["starttime"]),
		FinishTime:                     util.ToClock(data["endtime"]),
		Location:                       util.ToString(data["location"]),
		Cost:                           util.ToString(data["cost"]),
		Notes:                          util.ToString(data["notes"]),
		Notepad:                        util.ToString(data["notepad"]),
		PublicNotepad:                  util.ToString(data["publicnotepad"]),
		ConfirmByDate:                  util.ToDate(data["confdate"]),
		AllowChanges:                   util.ToBool(data["allowchanges"]),
		ReminderEmails:                 !util.ToBool(data["disablereminders"]),
		AttendanceReminder:             util.ToInt(data["attendancereminder"]),
		AllowBooking:                   util.ToBool(data["allowbooking"]),
		AttendanceLimit:                util.ToInt(data["attendancelimit"]),
		AttendanceLimitIncludesLeaders: util.ToBool(data["limitincludesleaders"]),
		Archived:                       util.ToBool(data["archived"]),
		Yes:                            util.ToInt(data["yes"]),
		Reserved:                       util.ToInt(data["reserved"]),
	}
	if e.Cost == "" || e.Cost == EventCostTBC {
		e.Cost = ""
	}
	for _, c := range util.Maps(util.DecodeJSONString(data["config"])) {
		e.Columns = append(e.Columns, ParseEventColumn(e.SectionID, e.ID, c))
	}
	links := util.Map(data["badgelinks"])
	if links == nil {
		links = map[string]any{"": data["badgelinks"]}
	}
	for _, group := range links {
		for _, l := range util.Maps(group) {
			e.BadgeLinks = append(e.BadgeLinks, ParseEventBadgeLink(l))
		}
	}
	return e
}

// CostTBC reports whether no cost has been set
func (e Event) CostTBC() bool {
	return e.Cost == ""
}

// CostFree reports whether the event costs nothing
func (e Event) CostFree() bool {
	return e.Cost != "" && util.ToFloat(e.Cost) == 0
}

// WireCost is the cost as OSM expects it
func (e Event) WireCost() string {
	if e.CostTBC() {
		return EventCostTBC
	}
	return e.Cost
}

func (e Event) Limited() bool {
	return e.AttendanceLimit > 0
}

// Spaces left before the attendance limit. It is -1 for unlimited events.
func (e Event) Spaces() int {
	if !e.Limited() {
		return -1
	}
	left := e.AttendanceLimit - e.Yes - e.Reserved
	if left < 0 {
		return 0
	}
	return left
}

// Full reports whether the attendance limit has been reached
func (e Event) Full() bool {
	return e.Limited() && e.Spaces() == 0
}

// Column finds a column by id or name
func (e Event) Column(idOrName string) (EventColumn, bool) {
	for _, c := range e.Columns {
		if c.ID == idOrName || strings.EqualFold(c.Name, idOrName) {
			return c, true
		}
	}
	return EventColumn{}, false
}

func (e *Event) Fields() map[string]string {
	return map[string]string{
		"name":                 e.Name,
		"location":             e.Location,
		"startdate":            util.FormatDate(e.Start),
		"enddate":              util.FormatDate(e.Finish),
		"starttime":            e.StartTime,
		"endtime":              e.FinishTime,
		"cost":                 e.WireCost(),
		"notes":                e.Notes,
		"confdate":             util.FormatDate(e.ConfirmByDate),
		"allowChanges":         fmt.Sprint(e.AllowChanges),
		"disablereminders":     fmt.Sprint(!e.ReminderEmails),
		"attendancelimit":      fmt.Sprint(e.AttendanceLimit),
		"limitincludesleaders": fmt.Sprint(e.AttendanceLimitIncludesLeaders),
		"attendancereminder":   fmt.Sprint(e.AttendanceReminder),
		"allowbooking":         fmt.Sprint(e.AllowBooking),
		"notepad":              e.Notepad,
		"publicnotepad":        e.PublicNotepad,
	}
}

func (e *Event) MarkClean() {
	e.tracked.markClean(e.Fields())
}

func (e *Event) Changed() []string {
	return e.tracked.changed(e.Fields())
}

// Validate checks the tags plus the date ordering
func (e *Event) Validate() error {
	if err := Validate(e); err != nil {
		return err
	}
	if !e.Start.IsZero() && !e.Finish.IsZero() && e.Finish.Before(e.Start) {
		return invalid("finish", "is before start")
	}
	return nil
}

func (e Event) Less(o Event) bool {
	switch {
	case !e.Start.Equal(o.Start):
		return e.Start.Before(o.Start)
	case e.Name != o.Name:
		return e.Name < o.Name
	}
	return e.ID < o.ID
}

func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Less(events[j]) })
}

// EventColumn is a question attached to an event, with ids like "f_1".
type EventColumn struct {
	SectionID int    `json:"section_id" validate:"gt=0"`
	EventID   int    `json:"event_id" validate:"gt=0"`
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	// ParentLabel is what parents see in My.SCOUT
	ParentLabel    string `json:"parent_label"`
	ParentRequired bool   `json:"parent_required"`

	tracked
}

func ParseEventColumn(sectionID, eventID int, data map[string]any) EventColumn {
	return EventColumn{
		SectionID:      sectionID,
		EventID:        eventID,
		ID:             util.ToString(data["id"]),
		Name:           util.ToString(data["name"]),
		ParentLabel:    util.ToString(data["pL"]),
		ParentRequired: util.ToBool(data["pR"]),
	}
}

func (c *EventColumn) Fields() map[string]string {
	return map[string]string{
		"columnName":    c.Name,
		"parentLabel":   c.ParentLabel,
		"parentRequire": boolString(c.ParentRequired),
	}
}

func (c *EventColumn) MarkClean() {
	c.tracked.markClean(c.Fields())
}

func (c *EventColumn) Changed() []string {
	return c.tracked.changed(c.Fields())
}

// EventBadgeLink ties an event to a badge requirement that attendance completes.
type EventBadgeLink struct {
	BadgeType        BadgeType `json:"badge_type"`
	BadgeID          int       `json:"badge_id"`
	BadgeVersion     int       `json:"badge_version"`
	BadgeName        string    `json:"badge_name"`
	RequirementID    int       `json:"requirement_id"`
	RequirementLabel string    `json:"requirement_label"`
	Data             string    `json:"data"`
}

func ParseEventBadgeLink(data map[string]any) EventBadgeLink {
	return EventBadgeLink{
		BadgeType:        ParseBadgeType(util.ToString(data["badgetype"])),
		BadgeID:          util.ToInt(data["badge_id"]),
		BadgeVersion:     util.ToInt(data["badge_version"]),
		BadgeName:        util.ToString(data["badgeLongName"]),
		RequirementID:    util.ToInt(data["column_id"]),
		RequirementLabel: util.ToString(data["columnnameLongName"]),
		Data:             util.ToString(data["data"]),
	}
}

// Attendance states as OSM names them
const (
	AttendanceYes      = "Yes"
	AttendanceNo       = "No"
	AttendanceInvited  = "Invited"
	AttendanceShown    = "Show in My.SCOUT"
	AttendanceReserved = "Reserved"
)

// EventAttendance is one member's row for an event.
type EventAttendance struct {
	SectionID  int    `json:"section_id" validate:"gt=0"`
	EventID    int    `json:"event_id" validate:"gt=0"`
	TermID     int    `json:"term_id" validate:"gte=0"`
	MemberID   int    `json:"member_id" validate:"gt=0"`
	GroupingID int    `json:"grouping_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Attending  string `json:"attending" validate:"omitempty,oneof=Yes No Invited 'Show in My.SCOUT' Reserved"`
	Payment    string `json:"payment"`
	// Row is the row index OSM wants back on update
	Row int `json:"row" validate:"gte=0"`
	// Fields holds the event's column answers keyed by column id
	Fields map[string]string `json:"fields"`

	tracked
}

func ParseEventAttendance(sectionID, eventID, termID, row int, data map[string]any) EventAttendance {
	a := EventAttendance{
		SectionID:  sectionID,
		EventID:    eventID,
		TermID:     termID,
		MemberID:   util.ToInt(data["scoutid"]),
		GroupingID: util.ToInt(data["patrolid"]),
		FirstName:  util.ToString(data["firstname"]),
		LastName:   util.ToString(data["lastname"]),
		Attending:  util.ToString(data["attending"]),
		Payment:    util.ToString(data["payment"]),
		Row:        row,
		Fields:     map[string]string{},
	}
	for k, v := range data {
		if strings.HasPrefix(k, "f_") {
			a.Fields[k] = util.ToString(v)
		}
	}
	return a
}

func (a *EventAttendance) values() map[string]string {
	out := copyStrings(a.Fields)
	out["attending"] = a.Attending
	out["payment"] = a.Payment
	return out
}

func (a *EventAttendance) MarkClean() {
	a.tracked.markClean(a.values())
}

// Changed lists the column ids, "attending" and "payment" modified since MarkClean.
func (a *EventAttendance) Changed() []string {
	return a.tracked.changed(a.values())
}

// Value returns the value to send for a changed field
func (a *EventAttendance) Value(field string) string {
	return a.values()[field]
}

func (a EventAttendance) Less(o EventAttendance) bool {
	if a.GroupingID != o.GroupingID {
		return a.GroupingID < o.GroupingID
	}
	if a.LastName != o.LastName {
		return a.LastName < o.LastName
	}
	return a.FirstName < o.FirstName
}

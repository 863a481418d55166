package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// GroupingLeaders is the grouping OSM puts adult leaders in
const GroupingLeaders = -2

// Member is a young person or adult in a section, as listed by users.php?action=getUserDetails.
type Member struct {
	ID             int       `json:"id" validate:"gte=0"`
	SectionID      int       `json:"section_id" validate:"gt=0"`
	FirstName      string    `json:"first_name" validate:"required"`
	LastName       string    `json:"last_name" validate:"required"`
	DateOfBirth    time.Time `json:"date_of_birth" validate:"required"`
	Started        time.Time `json:"started"`
	StartedSection time.Time `json:"started_section" validate:"required"`
	// FinishedSection is zero for a member who has not left
	FinishedSection time.Time `json:"finished_section"`
	// Age as OSM reports it, "YY / MM"
	Age string `json:"age"`

	GroupingID     int    `json:"grouping_id"`
	GroupingLabel  string `json:"grouping_label"`
	GroupingLeader int    `json:"grouping_leader" validate:"gte=0,lte=2"`

	Email1    string `json:"email1" validate:"omitempty,email"`
	Email2    string `json:"email2" validate:"omitempty,email"`
	Email3    string `json:"email3" validate:"omitempty,email"`
	Email4    string `json:"email4" validate:"omitempty,email"`
	Phone1    string `json:"phone1"`
	Phone2    string `json:"phone2"`
	Phone3    string `json:"phone3"`
	Phone4    string `json:"phone4"`
	Address   string `json:"address"`
	Address2  string `json:"address2"`
	Parents   string `json:"parents"`
	Notes     string `json:"notes"`
	Medical   string `json:"medical"`
	Religion  string `json:"religion"`
	School    string `json:"school"`
	Ethnicity string `json:"ethnicity"`
	Subs      string `json:"subs"`

	tracked
}

func ParseMember(sectionID int, data map[string]any) Member {
	return Member{
		ID:              util.ToInt(data["scoutid"]),
		SectionID:       sectionID,
		FirstName:       util.ToString(data["firstname"]),
		LastName:        util.ToString(data["lastname"]),
		DateOfBirth:     util.ToDate(data["dob"]),
		Started:         util.ToDate(data["started"]),
		StartedSection:  util.ToDate(data["startedsection"]),
		FinishedSection: util.ToDate(data["enddate"]),
		Age:             util.ToString(data["age"]),
		GroupingID:      util.ToInt(data["patrolid"]),
		GroupingLabel:   util.ToString(data["patrol"]),
		GroupingLeader:  util.ToInt(data["patrolleader"]),
		Email1:          util.ToString(data["email1"]),
		Email2:          util.ToString(data["email2"]),
		Email3:          util.ToString(data["email3"]),
		Email4:          util.ToString(data["email4"]),
		Phone1:          util.ToString(data["phone1"]),
		Phone2:          util.ToString(data["phone2"]),
		Phone3:          util.ToString(data["phone3"]),
		Phone4:          util.ToString(data["phone4"]),
		Address:         util.ToString(data["address"]),
		Address2:        util.ToString(data["address2"]),
		Parents:         util.ToString(data["parents"]),
		Notes:           util.ToString(data["notes"]),
		Medical:         util.ToString(data["medical"]),
		Religion:        util.ToString(data["religion"]),
		School:          util.ToString(data["school"]),
		Ethnicity:       util.ToString(data["ethnicity"]),
		Subs:            util.ToString(data["subs"]),
	}
}

// Fields maps OSM's column names to the member's values. The grouping is
// not included because OSM changes it through a separate endpoint.
func (m *Member) Fields() map[string]string {
	return map[string]string{
		"firstname":      m.FirstName,
		"lastname":       m.LastName,
		"dob":            util.FormatDate(m.DateOfBirth),
		"started":        util.FormatDate(m.Started),
		"startedsection": util.FormatDate(m.StartedSection),
		"email1":         m.Email1,
		"email2":         m.Email2,
		"email3":         m.Email3,
		"email4":         m.Email4,
		"phone1":         m.Phone1,
		"phone2":         m.Phone2,
		"phone3":         m.Phone3,
		"phone4":         m.Phone4,
		"address":        m.Address,
		"address2":       m.Address2,
		"parents":        m.Parents,
		"notes":          m.Notes,
		"medical":        m.Medical,
		"religion":       m.Religion,
		"school":         m.School,
		"ethnicity":      m.Ethnicity,
		"subs":           m.Subs,
	}
}

func (m *Member) groupingFields() map[string]string {
	return map[string]string{
		"patrolid": fmt.Sprint(m.GroupingID),
		"pl":       fmt.Sprint(m.GroupingLeader),
	}
}

func (m *Member) MarkClean() {
	all := m.Fields()
	for k, v := range m.groupingFields() {
		all[k] = v
	}
	m.tracked.markClean(all)
}

// Changed lists the OSM columns modified since MarkClean
func (m *Member) Changed() []string {
	return m.tracked.changed(m.Fields())
}

// GroupingChanged reports whether the grouping or the leader flag was modified
func (m *Member) GroupingChanged() bool {
	return len(m.tracked.changed(m.groupingFields())) > 0
}

func (m Member) Name(separator ...string) string {
	sep := " "
	if len(separator) > 0 {
		sep = separator[0]
	}
	return strings.Join([]string{m.FirstName, m.LastName}, sep)
}

func (m Member) Leader() bool {
	return m.GroupingID == GroupingLeaders
}

func (m Member) Youth() bool {
	return m.GroupingID > GroupingLeaders
}

// Current reports whether the member was in the section on date
func (m Member) Current(date time.Time) bool {
	d := day(date)
	if m.StartedSection.IsZero() || m.StartedSection.After(d) {
		return false
	}
	return m.FinishedSection.IsZero() || !m.FinishedSection.Before(d)
}

// AgeYears and AgeMonths split OSM's "YY / MM" age
func (m Member) AgeYears() int {
	years, _ := m.ageParts()
	return years
}

func (m Member) AgeMonths() int {
	_, months := m.ageParts()
	return months
}

func (m Member) ageParts() (int, int) {
	parts := strings.Split(m.Age, "/")
	if len(parts) != 2 {
		return 0, 0
	}
	return util.ToInt(parts[0]), util.ToInt(parts[1])
}

// Less orders by section, grouping, leaders of the grouping first, then last and first name.
func (m Member) Less(o Member) bool {
	switch {
	case m.SectionID != o.SectionID:
		return m.SectionID < o.SectionID
	case m.GroupingID != o.GroupingID:
		return m.GroupingID < o.GroupingID
	case m.GroupingLeader != o.GroupingLeader:
		return m.GroupingLeader > o.GroupingLeader
	case m.LastName != o.LastName:
		return m.LastName < o.LastName
	}
	return m.FirstName < o.FirstName
}

func SortMembers(members []Member) {
	sort.SliceStable(members, func(i, j int) bool { return members[i].Less(members[j]) })
}

package models

import (
	"sort"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

type Term struct {
	ID        int       `json:"id" validate:"gte=0"`
	SectionID int       `json:"section_id" validate:"gt=0"`
	Name      string    `json:"name" validate:"required"`
	Start     time.Time `json:"start" validate:"required"`
	Finish    time.Time `json:"finish" validate:"required,gtefield=Start"`

	tracked
}

func ParseTerm(data map[string]any) Term {
	return Term{
		ID:        util.ToInt(data["termid"]),
		SectionID: util.ToInt(data["sectionid"]),
		Name:      util.ToString(data["name"]),
		Start:     util.ToDate(data["startdate"]),
		Finish:    util.ToDate(data["enddate"]),
	}
}

// Fields are the values OSM's addTerm endpoint takes
func (t *Term) Fields() map[string]string {
	return map[string]string{
		"term":  t.Name,
		"start": util.FormatDate(t.Start),
		"end":   util.FormatDate(t.Finish),
	}
}

// MarkClean records the current values as the ones OSM holds
func (t *Term) MarkClean() {
	t.tracked.markClean(t.Fields())
}

// Changed lists the OSM fields modified since MarkClean
func (t *Term) Changed() []string {
	return t.tracked.changed(t.Fields())
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Past reports whether the term finished before the day of now
func (t Term) Past(now time.Time) bool {
	return t.Finish.Before(day(now))
}

// Future reports whether the term starts after the day of now
func (t Term) Future(now time.Time) bool {
	return t.Start.After(day(now))
}

func (t Term) Current(now time.Time) bool {
	return !t.Past(now) && !t.Future(now)
}

// Contains reports whether date falls within the term, both ends included
func (t Term) Contains(date time.Time) bool {
	d := day(date)
	return !d.Before(t.Start) && !d.After(t.Finish)
}

func (t Term) Less(o Term) bool {
	if t.SectionID != o.SectionID {
		return t.SectionID < o.SectionID
	}
	if !t.Start.Equal(o.Start) {
		return t.Start.Before(o.Start)
	}
	if !t.Finish.Equal(o.Finish) {
		return t.Finish.Before(o.Finish)
	}
	return t.Name < o.Name
}

func SortTerms(terms []Term) {
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Less(terms[j]) })
}

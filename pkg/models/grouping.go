package models

import (
	"fmt"
	"sort"

	"github.com/osmx/osm-go/internal/util"
)

// Grouping is a patrol, six, lodge or similar subdivision of a section.
type Grouping struct {
	ID        int    `json:"id" validate:"gte=-2"`
	SectionID int    `json:"section_id" validate:"gt=0"`
	Name      string `json:"name" validate:"required"`
	Active    bool   `json:"active"`
	Points    int    `json:"points"`

	tracked
}

func ParseGrouping(sectionID int, data map[string]any) Grouping {
	return Grouping{
		ID:        util.ToInt(data["patrolid"]),
		SectionID: sectionID,
		Name:      util.ToString(data["name"]),
		Active:    util.ToBool(data["active"]),
		Points:    util.ToInt(data["points"]),
	}
}

func (g *Grouping) Fields() map[string]string {
	return map[string]string{
		"name":   g.Name,
		"active": boolString(g.Active),
		"points": fmt.Sprint(g.Points),
	}
}

func (g *Grouping) MarkClean() {
	g.tracked.markClean(g.Fields())
}

func (g *Grouping) Changed() []string {
	return g.tracked.changed(g.Fields())
}

func (g Grouping) Less(o Grouping) bool {
	switch {
	case g.SectionID != o.SectionID:
		return g.SectionID < o.SectionID
	case g.Active != o.Active:
		return g.Active
	case g.Name != o.Name:
		return g.Name < o.Name
	}
	return g.ID < o.ID
}

func SortGroupings(groupings []Grouping) {
	sort.SliceStable(groupings, func(i, j int) bool { return groupings[i].Less(groupings[j]) })
}

package models

import (
	"sort"

	"github.com/osmx/osm-go/internal/util"
)

// BudgetUnnamed is the name OSM gives a freshly added budget
const BudgetUnnamed = "** Unnamed **"

// Budget is a finance category items are booked against.
type Budget struct {
	ID        int    `json:"id" validate:"gte=0"`
	SectionID int    `json:"section_id" validate:"gt=0"`
	Name      string `json:"name" validate:"required"`

	tracked
}

func ParseBudget(sectionID int, data map[string]any) Budget {
	return Budget{
		ID:        util.ToInt(data["categoryid"]),
		SectionID: sectionID,
		Name:      util.ToString(data["name"]),
	}
}

func (b *Budget) Fields() map[string]string {
	return map[string]string{"name": b.Name}
}

func (b *Budget) MarkClean() {
	b.tracked.markClean(b.Fields())
}

func (b *Budget) Changed() []string {
	return b.tracked.changed(b.Fields())
}

func (b Budget) Less(o Budget) bool {
	switch {
	case b.SectionID != o.SectionID:
		return b.SectionID < o.SectionID
	case b.Name != o.Name:
		return b.Name < o.Name
	}
	return b.ID < o.ID
}

func SortBudgets(budgets []Budget) {
	sort.SliceStable(budgets, func(i, j int) bool { return budgets[i].Less(budgets[j]) })
}

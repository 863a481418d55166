package models

import (
	"sort"
	"strings"

	"github.com/osmx/osm-go/internal/util"
)

// FlexiSystemColumns are created by OSM and cannot be renamed or deleted.
var FlexiSystemColumns = []string{"firstname", "lastname", "dob", "total", "completed", "age", "patrol"}

// FlexiRecord is a section's reference to one of its flexi records.
type FlexiRecord struct {
	ID        int    `json:"id" validate:"gt=0"`
	SectionID int    `json:"section_id" validate:"gt=0"`
	Name      string `json:"name" validate:"required"`
}

func (r FlexiRecord) Less(o FlexiRecord) bool {
	switch {
	case r.SectionID != o.SectionID:
		return r.SectionID < o.SectionID
	case r.Name != o.Name:
		return r.Name < o.Name
	}
	return r.ID < o.ID
}

func SortFlexiRecords(records []FlexiRecord) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Less(records[j]) })
}

// FlexiColumn is a column of a flexi record. User columns have ids like "f_1".
type FlexiColumn struct {
	FlexiRecord FlexiRecord `json:"flexi_record" validate:"-"`
	ID          string      `json:"id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Editable    bool        `json:"editable"`
}

func ParseFlexiColumn(record FlexiRecord, data map[string]any) FlexiColumn {
	return FlexiColumn{
		FlexiRecord: record,
		ID:          util.ToString(data["field"]),
		Name:        util.ToString(data["name"]),
		Editable:    util.ToBool(data["editable"]),
	}
}

// System reports whether OSM owns the column
func (c FlexiColumn) System() bool {
	for _, id := range FlexiSystemColumns {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Less puts system columns first, then user columns by their numeric suffix.
func (c FlexiColumn) Less(o FlexiColumn) bool {
	if c.System() != o.System() {
		return c.System()
	}
	ci := util.ToInt(strings.TrimPrefix(c.ID, "f_"))
	oi := util.ToInt(strings.TrimPrefix(o.ID, "f_"))
	if ci != oi {
		return ci < oi
	}
	return c.ID < o.ID
}

func SortFlexiColumns(columns []FlexiColumn) {
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Less(columns[j]) })
}

// FlexiData is one member's row of a flexi record.
type FlexiData struct {
	FlexiRecord FlexiRecord `json:"flexi_record" validate:"-"`
	MemberID    int         `json:"member_id" validate:"gt=0"`
	GroupingID  int         `json:"grouping_id"`
	// Fields is keyed by column id
	Fields map[string]string `json:"fields"`

	tracked
}

// ParseFlexiData keeps every column of the row except the identifying ones.
func ParseFlexiData(record FlexiRecord, data map[string]any) FlexiData {
	d := FlexiData{
		FlexiRecord: record,
		MemberID:    util.ToInt(data["scoutid"]),
		GroupingID:  util.ToInt(data["patrolid"]),
		Fields:      map[string]string{},
	}
	for k, v := range data {
		switch k {
		case "scoutid", "patrolid":
			continue
		case "dob":
			d.Fields[k] = util.FormatDate(util.ToDate(v))
		default:
			d.Fields[k] = util.ToString(v)
		}
	}
	return d
}

func (d *FlexiData) MarkClean() {
	d.tracked.markClean(d.Fields)
}

func (d *FlexiData) Changed() []string {
	return d.tracked.changed(d.Fields)
}

func (d FlexiData) Less(o FlexiData) bool {
	if d.FlexiRecord.ID != o.FlexiRecord.ID {
		return d.FlexiRecord.ID < o.FlexiRecord.ID
	}
	if d.GroupingID != o.GroupingID {
		return d.GroupingID < o.GroupingID
	}
	return d.MemberID < o.MemberID
}

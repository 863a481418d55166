package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

type BadgeType int

const (
	BadgeTypeChallenge BadgeType = 1
	BadgeTypeActivity  BadgeType = 2
	BadgeTypeStaged    BadgeType = 3
	BadgeTypeCore      BadgeType = 4
)

var badgeTypeNames = map[BadgeType]string{
	BadgeTypeChallenge: "challenge",
	BadgeTypeActivity:  "activity",
	BadgeTypeStaged:    "staged",
	BadgeTypeCore:      "core",
}

func (t BadgeType) String() string {
	if s, ok := badgeTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseBadgeType accepts the type's name or its number
func ParseBadgeType(s string) BadgeType {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range badgeTypeNames {
		if s == name {
			return t
		}
	}
	return BadgeType(util.ToInt(s))
}

// Badge is a badge definition with its requirements.
type Badge struct {
	ID                        int                `json:"id" validate:"gt=0"`
	Version                   int                `json:"version" validate:"gte=0"`
	Type                      BadgeType          `json:"type" validate:"gte=1,lte=4"`
	Identifier                string             `json:"identifier" validate:"required"`
	Name                      string             `json:"name" validate:"required"`
	Requirements              []BadgeRequirement `json:"requirements"`
	GroupName                 string             `json:"group_name"`
	Latest                    bool               `json:"latest"`
	SharingStatus             string             `json:"sharing_status"`
	UserID                    int                `json:"user_id"`
	Levels                    []int              `json:"levels"`
	MinModulesRequired        int                `json:"min_modules_required"`
	MinRequirementsCompleted  int                `json:"min_requirements_completed"`
	AddColumnIDToRequirements string             `json:"add_column_id_to_requirements"`
}

// ParseBadge builds a Badge from a "details" entry and its "structure" rows.
func ParseBadge(typ BadgeType, detail map[string]any, structure any) Badge {
	b := Badge{
		ID:                        util.ToInt(detail["badge_id"]),
		Version:                   util.ToInt(detail["badge_version"]),
		Type:                      typ,
		Identifier:                util.ToString(detail["badge_identifier"]),
		Name:                      util.ToString(detail["name"]),
		GroupName:                 util.ToString(detail["group_name"]),
		Latest:                    util.ToBool(detail["latest"]),
		SharingStatus:             util.ToString(detail["sharing"]),
		UserID:                    util.ToInt(detail["userid"]),
		MinModulesRequired:        util.ToInt(detail["min_modules_required"]),
		MinRequirementsCompleted:  util.ToInt(detail["min_completed"]),
		AddColumnIDToRequirements: util.ToString(detail["add_columns_to_module"]),
	}
	if b.Identifier == "" {
		b.Identifier = fmt.Sprintf("%d_%d", b.ID, b.Version)
	}
	for _, l := range strings.Split(util.ToString(detail["levels"]), ",") {
		if n, ok := util.ToIntOK(l); ok && strings.TrimSpace(l) != "" {
			b.Levels = append(b.Levels, n)
		}
	}
	// structure[0] describes the record's fixed columns, structure[1] the requirements
	blocks := util.Slice(structure)
	if len(blocks) > 1 {
		for _, r := range util.Maps(util.Map(blocks[1])["rows"]) {
			b.Requirements = append(b.Requirements, ParseBadgeRequirement(b, r))
		}
	}
	return b
}

// Staged reports whether completion is tracked by level rather than requirement
func (b Badge) Staged() bool {
	return b.Type == BadgeTypeStaged
}

func (b Badge) Less(o Badge) bool {
	if b.Type != o.Type {
		return b.Type < o.Type
	}
	if b.Name != o.Name {
		return b.Name < o.Name
	}
	if b.ID != o.ID {
		return b.ID < o.ID
	}
	return b.Version < o.Version
}

func SortBadges(badges []Badge) {
	sort.SliceStable(badges, func(i, j int) bool { return badges[i].Less(badges[j]) })
}

// BadgeRequirement is one column of a badge's record.
type BadgeRequirement struct {
	BadgeID      int    `json:"badge_id"`
	BadgeVersion int    `json:"badge_version"`
	ID           int    `json:"id" validate:"gt=0"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	ModuleLetter string `json:"module_letter"`
	Editable     bool   `json:"editable"`
}

func ParseBadgeRequirement(b Badge, data map[string]any) BadgeRequirement {
	return BadgeRequirement{
		BadgeID:      b.ID,
		BadgeVersion: b.Version,
		ID:           util.ToInt(data["field"]),
		Name:         util.ToString(data["name"]),
		Description:  util.ToString(data["tooltip"]),
		ModuleLetter: util.ToString(data["module"]),
		Editable:     util.ToBool(data["editable"]),
	}
}

// BadgeData is one member's progress through a badge.
type BadgeData struct {
	Badge       Badge     `json:"badge" validate:"-"`
	SectionID   int       `json:"section_id" validate:"gt=0"`
	MemberID    int       `json:"member_id" validate:"gt=0"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Completed   int       `json:"completed" validate:"gte=0"`
	Awarded     int       `json:"awarded" validate:"gte=0"`
	AwardedDate time.Time `json:"awarded_date"`
	DueAt       time.Time `json:"due_at"`
	// Requirements holds the member's entries keyed by requirement id
	Requirements map[int]string `json:"requirements"`

	tracked
}

func ParseBadgeData(b Badge, sectionID int, data map[string]any) BadgeData {
	d := BadgeData{
		Badge:        b,
		SectionID:    sectionID,
		MemberID:     util.ToInt(data["scoutid"]),
		FirstName:    util.ToString(data["firstname"]),
		LastName:     util.ToString(data["lastname"]),
		Completed:    util.ToInt(data["completed"]),
		Awarded:      util.ToInt(data["awarded"]),
		AwardedDate:  util.ToDate(data["awardeddate"]),
		DueAt:        util.ToDate(data["due"]),
		Requirements: map[int]string{},
	}
	for k, v := range data {
		if id, ok := util.ToIntOK(k); ok && id > 0 {
			d.Requirements[id] = util.ToString(v)
		}
	}
	return d
}

func (d *BadgeData) values() map[string]string {
	out := make(map[string]string, len(d.Requirements))
	for id, v := range d.Requirements {
		out[fmt.Sprint(id)] = v
	}
	return out
}

func (d *BadgeData) MarkClean() {
	d.tracked.markClean(d.values())
}

// Changed lists the requirement ids modified since MarkClean
func (d *BadgeData) Changed() []int {
	keys := d.tracked.changed(d.values())
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		out = append(out, util.ToInt(k))
	}
	sort.Ints(out)
	return out
}

// Met reports whether an entry for the requirement counts as done.
// OSM marks an unmet entry with a leading "x".
func (d BadgeData) Met(requirementID int) bool {
	v := strings.TrimSpace(d.Requirements[requirementID])
	return v != "" && !strings.HasPrefix(strings.ToLower(v), "x")
}

// GainedInModules counts met requirements by module letter
func (d BadgeData) GainedInModules() map[string]int {
	out := map[string]int{}
	for _, r := range d.Badge.Requirements {
		if d.Met(r.ID) {
			out[r.ModuleLetter]++
		}
	}
	return out
}

func (d BadgeData) Started() bool {
	if d.Completed > d.Awarded && d.Badge.Staged() {
		return true
	}
	for _, v := range d.Requirements {
		if strings.TrimSpace(v) != "" {
			return d.Completed == 0
		}
	}
	return false
}

// Due reports whether the badge is completed but not yet awarded
func (d BadgeData) Due() bool {
	return d.Completed > d.Awarded
}

func (d BadgeData) Less(o BadgeData) bool {
	if d.Badge.ID != o.Badge.ID {
		return d.Badge.Less(o.Badge)
	}
	if d.LastName != o.LastName {
		return d.LastName < o.LastName
	}
	return d.FirstName < o.FirstName
}

// DueBadges lists, per member, the badges awaiting award.
type DueBadges struct {
	SectionID int `json:"section_id"`
	// ByMember maps member id to the keys of badges due, like "93_1" (badge id and level)
	ByMember map[int][]string `json:"by_member"`
	// Descriptions maps those keys to a readable name
	Descriptions map[string]string `json:"descriptions"`
	MemberNames  map[int]string    `json:"member_names"`
	// Totals counts how many of each badge are needed
	Totals map[string]int `json:"totals"`
}

// ParseDueBadges reads ext/badges/due/?action=get.
func ParseDueBadges(sectionID int, data map[string]any) DueBadges {
	d := DueBadges{
		SectionID:    sectionID,
		ByMember:     map[int][]string{},
		Descriptions: map[string]string{},
		MemberNames:  map[int]string{},
		Totals:       map[string]int{},
	}
	for key, v := range util.Map(data["description"]) {
		desc := util.Map(v)
		name := util.ToString(desc["name"])
		if level := util.ToString(desc["level"]); level != "" && level != "0" {
			name = fmt.Sprintf("%s (Level %s)", name, level)
		}
		d.Descriptions[key] = name
	}
	for _, entries := range util.Map(data["pending"]) {
		for _, entry := range util.Maps(entries) {
			member := util.ToInt(entry["scoutid"])
			key := fmt.Sprintf("%d_%d", util.ToInt(entry["badge_id"]), util.ToInt(entry["completed"]))
			d.ByMember[member] = append(d.ByMember[member], key)
			d.MemberNames[member] = strings.TrimSpace(util.ToString(entry["firstname"]) + " " + util.ToString(entry["lastname"]))
			d.Totals[key]++
		}
	}
	for _, keys := range d.ByMember {
		sort.Strings(keys)
	}
	return d
}

func (d DueBadges) Empty() bool {
	return len(d.ByMember) == 0
}

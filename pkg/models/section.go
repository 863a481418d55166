package models

import (
	"time"

	"github.com/osmx/osm-go/internal/util"
)

type SectionType string

const (
	SectionTypeBeavers   SectionType = "beavers"
	SectionTypeCubs      SectionType = "cubs"
	SectionTypeScouts    SectionType = "scouts"
	SectionTypeExplorers SectionType = "explorers"
	SectionTypeNetwork   SectionType = "network"
	SectionTypeAdults    SectionType = "adults"
	SectionTypeWaiting   SectionType = "waiting"
	SectionTypeUnknown   SectionType = "unknown"
)

func ParseSectionType(s string) SectionType {
	switch t := SectionType(s); t {
	case SectionTypeBeavers, SectionTypeCubs, SectionTypeScouts, SectionTypeExplorers,
		SectionTypeNetwork, SectionTypeAdults, SectionTypeWaiting:
		return t
	}
	return SectionTypeUnknown
}

// Youth reports whether members of this type of section are young people
func (t SectionType) Youth() bool {
	switch t {
	case SectionTypeBeavers, SectionTypeCubs, SectionTypeScouts, SectionTypeExplorers:
		return true
	}
	return false
}

type SubscriptionLevel int

const (
	SubscriptionBronze   SubscriptionLevel = 1
	SubscriptionSilver   SubscriptionLevel = 2
	SubscriptionGold     SubscriptionLevel = 3
	SubscriptionGoldPlus SubscriptionLevel = 4
)

func (l SubscriptionLevel) String() string {
	switch l {
	case SubscriptionBronze:
		return "Bronze"
	case SubscriptionSilver:
		return "Silver"
	case SubscriptionGold:
		return "Gold"
	case SubscriptionGoldPlus:
		return "Gold+"
	}
	return "Unknown"
}

// Section is one of the user's roles in OSM.
type Section struct {
	ID                  int               `json:"id" validate:"gt=0"`
	Name                string            `json:"name" validate:"required"`
	GroupID             int               `json:"group_id" validate:"gt=0"`
	GroupName           string            `json:"group_name"`
	Type                SectionType       `json:"type" validate:"required"`
	SubscriptionLevel   SubscriptionLevel `json:"subscription_level" validate:"gte=1,lte=4"`
	SubscriptionExpires time.Time         `json:"subscription_expires"`
	NumberOfMembers     int               `json:"number_of_members" validate:"gte=0"`
	FlexiRecords        []FlexiRecord     `json:"flexi_records"`
	ColumnNames         map[string]string `json:"column_names"`
	Permissions         Permissions       `json:"permissions"`
	HasBadgeRecords     bool              `json:"has_badge_records"`
	HasProgramme        bool              `json:"has_programme"`
	GoCardless          bool              `json:"gocardless"`
	Default             bool              `json:"default"`
}

// ParseSection builds a Section from an entry of api.php?action=getUserRoles.
// The section's settings arrive as JSON inside the sectionConfig string.
func ParseSection(role map[string]any) Section {
	config := util.Map(util.DecodeJSONString(role["sectionConfig"]))

	s := Section{
		ID:                  util.ToInt(role["sectionid"]),
		Name:                util.ToString(role["sectionname"]),
		GroupID:             util.ToInt(role["groupid"]),
		GroupName:           util.ToString(role["groupname"]),
		Type:                ParseSectionType(util.ToString(role["section"])),
		SubscriptionLevel:   SubscriptionLevel(util.ToInt(config["subscription_level"])),
		SubscriptionExpires: util.ToDate(config["subscription_expires"]),
		NumberOfMembers:     util.ToInt(config["numscouts"]),
		ColumnNames:         map[string]string{},
		Permissions:         PermissionsFromLevels(util.Map(role["permissions"])),
		HasBadgeRecords:     util.ToBool(config["hasUsedBadgeRecords"]),
		HasProgramme:        util.ToBool(config["hasProgramme"]),
		GoCardless:          util.ToBool(config["gocardless"]),
		Default:             util.ToBool(role["isDefault"]),
	}
	if t := util.ToString(config["sectionType"]); s.Type == SectionTypeUnknown && t != "" {
		s.Type = ParseSectionType(t)
	}
	if s.SubscriptionLevel < SubscriptionBronze {
		s.SubscriptionLevel = SubscriptionBronze
	}
	for k, v := range util.Map(config["columnNames"]) {
		s.ColumnNames[k] = util.ToString(v)
	}
	for _, extra := range util.Maps(config["extraRecords"]) {
		s.FlexiRecords = append(s.FlexiRecords, FlexiRecord{
			ID:        util.ToInt(extra["extraid"]),
			SectionID: s.ID,
			Name:      util.ToString(extra["name"]),
		})
	}
	SortFlexiRecords(s.FlexiRecords)
	return s
}

func (s Section) Youth() bool {
	return s.Type.Youth()
}

// SubscriptionAtLeast reports whether the section's subscription is level or better
func (s Section) SubscriptionAtLeast(level SubscriptionLevel) bool {
	return s.SubscriptionLevel >= level
}

// Less orders sections by group name, then type, then name.
func (s Section) Less(o Section) bool {
	if s.GroupName != o.GroupName {
		return s.GroupName < o.GroupName
	}
	if s.Type != o.Type {
		return sectionTypeOrder(s.Type) < sectionTypeOrder(o.Type)
	}
	return s.Name < o.Name
}

func sectionTypeOrder(t SectionType) int {
	for i, st := range []SectionType{SectionTypeBeavers, SectionTypeCubs, SectionTypeScouts,
		SectionTypeExplorers, SectionTypeNetwork, SectionTypeAdults, SectionTypeWaiting} {
		if st == t {
			return i
		}
	}
	return 99
}

// APIAccess is what a section has granted to one API application.
type APIAccess struct {
	APIID       string      `json:"api_id"`
	Name        string      `json:"name"`
	Permissions Permissions `json:"permissions"`
}

// ParseAPIAccess reads ext/settings/access/?action=getAPIAccess.
func ParseAPIAccess(data map[string]any) []APIAccess {
	var out []APIAccess
	for _, api := range util.Maps(data["apis"]) {
		out = append(out, APIAccess{
			APIID:       util.ToString(api["apiid"]),
			Name:        util.ToString(api["name"]),
			Permissions: PermissionsFromLevels(util.Map(api["permissions"])),
		})
	}
	return out
}

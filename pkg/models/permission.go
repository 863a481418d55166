package models

import (
	"sort"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
)

type Permission string

const (
	PermissionRead       Permission = "read"
	PermissionWrite      Permission = "write"
	PermissionAdminister Permission = "administer"
)

// Areas of a section that OSM grants permissions on
const (
	AreaBadge         = "badge"
	AreaMember        = "member"
	AreaUser          = "user"
	AreaRegister      = "register"
	AreaContact       = "contact"
	AreaProgramme     = "programme"
	AreaEvents        = "events"
	AreaFlexi         = "flexi"
	AreaFinance       = "finance"
	AreaQuartermaster = "quartermaster"
)

// Permissions maps an area to what may be done there.
type Permissions map[string][]Permission

// PermissionsFromLevels converts OSM's {"member": "20"} to {"member": [read write]}.
func PermissionsFromLevels(levels map[string]any) Permissions {
	p := Permissions{}
	for area, level := range levels {
		if granted := permissionsForLevel(util.ToInt(level)); len(granted) > 0 {
			p[area] = granted
		}
	}
	return p
}

func permissionsForLevel(level int) []Permission {
	switch {
	case level >= constants.PermissionLevelAdminister:
		return []Permission{PermissionRead, PermissionWrite, PermissionAdminister}
	case level >= constants.PermissionLevelWrite:
		return []Permission{PermissionRead, PermissionWrite}
	case level >= constants.PermissionLevelRead:
		return []Permission{PermissionRead}
	}
	return nil
}

func (p Permissions) Can(ability Permission, area string) bool {
	for _, granted := range p[area] {
		if granted == ability {
			return true
		}
	}
	return false
}

// Areas lists the areas with any permission, sorted
func (p Permissions) Areas() []string {
	areas := make([]string, 0, len(p))
	for a := range p {
		areas = append(areas, a)
	}
	sort.Strings(areas)
	return areas
}

package models

import (
	"github.com/osmx/osm-go/internal/util"
)

// Activity is an entry of OSM's shared activity library.
type Activity struct {
	ID           int               `json:"id"`
	Version      int               `json:"version"`
	GroupID      int               `json:"group_id"`
	UserID       int               `json:"user_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Resources    string            `json:"resources"`
	Instructions string            `json:"instructions"`
	RunningTime  int               `json:"running_time"`
	Location     string            `json:"location"`
	Shared       int               `json:"shared"`
	Rating       int               `json:"rating"`
	Editable     bool              `json:"editable"`
	Deletable    bool              `json:"deletable"`
	Used         int               `json:"used"`
	Versions     []ActivityVersion `json:"versions"`
	Sections     []SectionType     `json:"sections"`
	Tags         []string          `json:"tags"`
	Files        []ActivityFile    `json:"files"`
	BadgeLinks   []EventBadgeLink  `json:"badge_links"`
}

type ActivityVersion struct {
	Version   int    `json:"version"`
	CreatedBy int    `json:"created_by"`
	Label     string `json:"label"`
}

type ActivityFile struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Name     string `json:"name"`
}

// ParseActivity reads programme.php?action=getActivity.
func ParseActivity(data map[string]any) Activity {
	d := util.Map(data["details"])
	a := Activity{
		ID:           util.ToInt(d["activityid"]),
		Version:      util.ToInt(d["version"]),
		GroupID:      util.ToInt(d["groupid"]),
		UserID:       util.ToInt(d["userid"]),
		Title:        util.ToString(d["title"]),
		Description:  util.ToString(d["description"]),
		Resources:    util.ToString(d["resources"]),
		Instructions: util.ToString(d["instructions"]),
		RunningTime:  util.ToInt(d["runningtime"]),
		Location:     util.ToString(d["location"]),
		Shared:       util.ToInt(d["shared"]),
		Rating:       util.ToInt(d["rating"]),
		Editable:     util.ToBool(data["editable"]),
		Deletable:    util.ToBool(data["deletable"]),
		Used:         util.ToInt(data["used"]),
	}
	for _, v := range util.Maps(data["versions"]) {
		a.Versions = append(a.Versions, ActivityVersion{
			Version:   util.ToInt(v["value"]),
			CreatedBy: util.ToInt(v["userid"]),
			Label:     util.ToString(v["label"]),
		})
	}
	for _, s := range util.Slice(data["sections"]) {
		a.Sections = append(a.Sections, ParseSectionType(util.ToString(s)))
	}
	for _, t := range util.Slice(data["tags"]) {
		a.Tags = append(a.Tags, util.ToString(t))
	}
	for _, f := range util.Maps(data["files"]) {
		a.Files = append(a.Files, ActivityFile{
			ID:       util.ToInt(f["fileid"]),
			FileName: util.ToString(f["filename"]),
			Name:     util.ToString(f["name"]),
		})
	}
	for _, l := range util.Maps(data["badges"]) {
		a.BadgeLinks = append(a.BadgeLinks, ParseEventBadgeLink(l))
	}
	return a
}

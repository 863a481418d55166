package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// GiftAidDonation is a date donations were collected on.
type GiftAidDonation struct {
	SectionID int       `json:"section_id"`
	Date      time.Time `json:"date" validate:"required"`
}

// ParseGiftAidDonations reads the date columns out of giftaid.php?action=getStructure.
func ParseGiftAidDonations(sectionID int, data any) []GiftAidDonation {
	var out []GiftAidDonation
	for _, block := range util.Maps(data) {
		for _, row := range util.Maps(block["rows"]) {
			if d := util.ToDate(row["field"]); !d.IsZero() {
				out = append(out, GiftAidDonation{SectionID: sectionID, Date: d})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GiftAidData is one member's donations in a term.
type GiftAidData struct {
	SectionID  int    `json:"section_id" validate:"gt=0"`
	TermID     int    `json:"term_id" validate:"gt=0"`
	MemberID   int    `json:"member_id" validate:"gt=0"`
	GroupingID int    `json:"grouping_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Tax        string `json:"tax"`
	Total      string `json:"total"`
	// Donations maps "YYYY-MM-DD" to the amount given
	Donations map[string]string `json:"donations"`
	Row       int               `json:"row"`

	tracked
}

func ParseGiftAidData(sectionID, termID, row int, data map[string]any) GiftAidData {
	g := GiftAidData{
		SectionID:  sectionID,
		TermID:     termID,
		MemberID:   util.ToInt(data["scoutid"]),
		GroupingID: util.ToInt(data["patrolid"]),
		FirstName:  util.ToString(data["firstname"]),
		LastName:   util.ToString(data["lastname"]),
		Tax:        util.ToString(data["tax"]),
		Total:      util.ToString(data["total"]),
		Donations:  map[string]string{},
		Row:        row,
	}
	for k, v := range data {
		if d := util.ToDate(k); !d.IsZero() {
			g.Donations[util.FormatDate(d)] = util.ToString(v)
		}
	}
	return g
}

func (g *GiftAidData) MarkClean() {
	g.tracked.markClean(g.Donations)
}

// Changed lists the donation dates modified since MarkClean
func (g *GiftAidData) Changed() []string {
	return g.tracked.changed(g.Donations)
}

func (g GiftAidData) Less(o GiftAidData) bool {
	switch {
	case g.SectionID != o.SectionID:
		return g.SectionID < o.SectionID
	case g.GroupingID != o.GroupingID:
		return g.GroupingID < o.GroupingID
	case g.LastName != o.LastName:
		return g.LastName < o.LastName
	}
	return g.FirstName < o.FirstName
}

// GiftAidRecord records a donation for several members on one date.
type GiftAidRecord struct {
	SectionID int       `json:"section_id" validate:"gt=0"`
	TermID    int       `json:"term_id" validate:"gt=0"`
	Date      time.Time `json:"date" validate:"required"`
	MemberIDs []int     `json:"member_ids" validate:"required,min=1,dive,gt=0"`
	Amount    string    `json:"amount" validate:"required,numeric"`
	Notes     string    `json:"notes"`
}

// WireAmount formats the amount with two decimals
func (r GiftAidRecord) WireAmount() string {
	return fmt.Sprintf("%.2f", util.ToFloat(r.Amount))
}

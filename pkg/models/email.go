package models

import (
	"sort"
	"strings"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// Email recipient states
const (
	EmailStatusProcessed = "processed"
	EmailStatusDelivered = "delivered"
	EmailStatusBounced   = "bounced"
)

// EmailDeliveryReport is a sent email with the state of each recipient.
type EmailDeliveryReport struct {
	ID         int                      `json:"id"`
	SectionID  int                      `json:"section_id"`
	SentAt     time.Time                `json:"sent_at"`
	Subject    string                   `json:"subject"`
	Recipients []EmailDeliveryRecipient `json:"recipients"`
}

// ParseEmailDeliveryReport reads an entry whose name is "dd/mm/yyyy HH:MM - subject".
func ParseEmailDeliveryReport(sectionID int, data map[string]any) EmailDeliveryReport {
	r := EmailDeliveryReport{
		ID:        util.ToInt(data["id"]),
		SectionID: sectionID,
	}
	name := util.ToString(data["name"])
	if when, subject, ok := strings.Cut(name, " - "); ok {
		if t, err := time.Parse("02/01/2006 15:04", strings.TrimSpace(when)); err == nil {
			r.SentAt = t
			name = subject
		}
	}
	r.Subject = name
	for _, child := range util.Maps(data["children"]) {
		r.Recipients = append(r.Recipients, ParseEmailDeliveryRecipient(r.ID, child))
	}
	return r
}

// Status lists the recipients in the given state
func (r EmailDeliveryReport) Status(status string) []EmailDeliveryRecipient {
	var out []EmailDeliveryRecipient
	for _, rc := range r.Recipients {
		if rc.Status == status {
			out = append(out, rc)
		}
	}
	return out
}

func (r EmailDeliveryReport) Bounced() []EmailDeliveryRecipient {
	return r.Status(EmailStatusBounced)
}

func (r EmailDeliveryReport) Less(o EmailDeliveryReport) bool {
	if !r.SentAt.Equal(o.SentAt) {
		return r.SentAt.Before(o.SentAt)
	}
	return r.ID < o.ID
}

func SortEmailDeliveryReports(reports []EmailDeliveryReport) {
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Less(reports[j]) })
}

// EmailDeliveryRecipient is one address an email went to. OSM ids them "emailid-memberid".
type EmailDeliveryRecipient struct {
	EmailID  int    `json:"email_id"`
	MemberID int    `json:"member_id"`
	Address  string `json:"address"`
	Status   string `json:"status"`
}

func ParseEmailDeliveryRecipient(emailID int, data map[string]any) EmailDeliveryRecipient {
	rc := EmailDeliveryRecipient{
		EmailID: emailID,
		Address: util.ToString(data["name"]),
		Status:  strings.ToLower(util.ToString(data["status"])),
	}
	if _, member, ok := strings.Cut(util.ToString(data["id"]), "-"); ok {
		rc.MemberID = util.ToInt(member)
	}
	return rc
}

func (rc EmailDeliveryRecipient) Delivered() bool {
	return rc.Status == EmailStatusDelivered
}

func (rc EmailDeliveryRecipient) Bounced() bool {
	return rc.Status == EmailStatusBounced
}

// SentEmail is the content of an email in a delivery report.
type SentEmail struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func ParseSentEmail(data map[string]any) SentEmail {
	return SentEmail{
		To:      util.ToString(data["to"]),
		From:    util.ToString(data["from"]),
		Subject: util.ToString(data["subject"]),
		Body:    util.ToString(data["body"]),
	}
}

// Email is a message to send to members' contacts. Body may carry
// OSM's merge tags such as [FIRSTNAME].
type Email struct {
	SectionID int      `json:"section_id" validate:"gt=0"`
	MemberIDs []int    `json:"member_ids" validate:"required,min=1,dive,gt=0"`
	From      string   `json:"from" validate:"required"`
	CC        []string `json:"cc" validate:"dive,email"`
	Subject   string   `json:"subject" validate:"required"`
	Body      string   `json:"body" validate:"required"`
}

// EmailAddresses maps member id to the contact addresses OSM will use.
type EmailAddresses map[int][]string

// ParseEmailAddresses reads getSelectedEmailsFromContacts: data.<memberid>.emails.
func ParseEmailAddresses(data map[string]any) EmailAddresses {
	out := EmailAddresses{}
	for id, v := range util.Map(data["data"]) {
		member := util.Map(v)
		for _, addr := range util.Slice(member["emails"]) {
			if s := util.ToString(addr); s != "" {
				out[util.ToInt(id)] = append(out[util.ToInt(id)], s)
			}
		}
	}
	for _, addrs := range out {
		sort.Strings(addrs)
	}
	return out
}

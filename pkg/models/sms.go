package models

import (
	"sort"
	"strings"
	"time"

	"github.com/osmx/osm-go/internal/util"
)

// SMS delivery states
const (
	SMSStatusSent               = "sent"
	SMSStatusNotSent            = "not_sent"
	SMSStatusDelivered          = "delivered"
	SMSStatusNotDelivered       = "not_delivered"
	SMSStatusInvalidDestination = "invalid_destination_address"
	SMSStatusInvalidSource      = "invalid_source_address"
	SMSStatusInvalidMessage     = "invalid_message_format"
	SMSStatusRouteNotAvailable  = "route_not_available"
	SMSStatusNotAllowed         = "not_allowed"
)

var smsStatuses = map[string]string{
	"sent":                        SMSStatusSent,
	"not sent":                    SMSStatusNotSent,
	"delivered":                   SMSStatusDelivered,
	"not delivered":               SMSStatusNotDelivered,
	"invalid destination address": SMSStatusInvalidDestination,
	"invalid source address":      SMSStatusInvalidSource,
	"invalid message format":      SMSStatusInvalidMessage,
	"route not available":         SMSStatusRouteNotAvailable,
	"not allowed":                 SMSStatusNotAllowed,
}

// SMSDeliveryReport is the state of one text message to one number.
type SMSDeliveryReport struct {
	SectionID     int       `json:"section_id"`
	SMSID         int       `json:"sms_id"`
	BatchID       int       `json:"batch_id"`
	MemberID      int       `json:"member_id"`
	MemberName    string    `json:"member_name"`
	ToNumber      string    `json:"to_number"`
	FromNumber    string    `json:"from_number"`
	Message       string    `json:"message"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	Credits       int       `json:"credits"`
	Status        string    `json:"status"`
}

func ParseSMSDeliveryReport(sectionID int, data map[string]any) SMSDeliveryReport {
	r := SMSDeliveryReport{
		SectionID:     sectionID,
		SMSID:         util.ToInt(data["smsid"]),
		BatchID:       util.ToInt(data["batchid"]),
		MemberID:      util.ToInt(data["scoutid"]),
		MemberName:    util.ToString(data["scoutname"]),
		ToNumber:      util.ToString(data["phone"]),
		FromNumber:    util.ToString(data["from"]),
		Message:       util.ToString(data["message"]),
		ScheduledAt:   util.ToDateTime(data["schedule"]),
		LastUpdatedAt: util.ToDateTime(data["lastupdated"]),
		Credits:       util.ToInt(data["credits"]),
		Status:        util.ToString(data["status"]),
	}
	if s, ok := smsStatuses[strings.ToLower(strings.TrimSpace(r.Status))]; ok {
		r.Status = s
	}
	return r
}

func (r SMSDeliveryReport) Delivered() bool {
	return r.Status == SMSStatusDelivered
}

// Failed reports a status that will not change to delivered
func (r SMSDeliveryReport) Failed() bool {
	switch r.Status {
	case SMSStatusSent, SMSStatusDelivered, "":
		return false
	}
	return true
}

func (r SMSDeliveryReport) Less(o SMSDeliveryReport) bool {
	if !r.ScheduledAt.Equal(o.ScheduledAt) {
		return r.ScheduledAt.Before(o.ScheduledAt)
	}
	return r.SMSID < o.SMSID
}

func SortSMSDeliveryReports(reports []SMSDeliveryReport) {
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Less(reports[j]) })
}

// SMS is a text message to send to members' phones.
type SMS struct {
	SectionID int    `json:"section_id" validate:"gt=0"`
	MemberIDs []int  `json:"member_ids" validate:"required,min=1,dive,gt=0"`
	Source    string `json:"source" validate:"required"`
	Message   string `json:"message" validate:"required,max=612"`
}

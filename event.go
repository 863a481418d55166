package osm

import (
	"context"
	"fmt"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

func requireEvents(ctx context.Context, a *API, ability models.Permission, sectionID int, opts ...Option) error {
	if err := RequireAbilityTo(ctx, a, ability, models.AreaEvents, sectionID, opts...); err != nil {
		return err
	}
	return RequireSubscription(ctx, a, models.SubscriptionSilver, sectionID, opts...)
}

// GetEvents lists the section's events, archived ones included, with full details.
func GetEvents(ctx context.Context, a *API, sectionID int, opts ...Option) ([]models.Event, error) {
	if err := requireEvents(ctx, a, models.PermissionRead, sectionID, opts...); err != nil {
		return nil, err
	}
	events, err := fetch(ctx, a, opts, func() ([]models.Event, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("events.php?action=getEvents&sectionid=%d&showArchived=true", sectionID), nil)
		if err != nil {
			return nil, err
		}
		var events []models.Event
		for _, item := range util.Maps(data["items"]) {
			listed := models.ParseEvent(sectionID, item)
			event, err := GetEvent(ctx, a, sectionID, listed.ID, opts...)
			if err != nil {
				return nil, err
			}
			event.Yes = listed.Yes
			event.Reserved = listed.Reserved
			event.Archived = listed.Archived
			events = append(events, event)
		}
		models.SortEvents(events)
		return events, nil
	}, "events", sectionID)
	for i := range events {
		events[i].MarkClean()
	}
	return events, err
}

func GetEvent(ctx context.Context, a *API, sectionID, eventID int, opts ...Option) (models.Event, error) {
	if err := requireEvents(ctx, a, models.PermissionRead, sectionID, opts...); err != nil {
		return models.Event{}, err
	}
	event, err := fetch(ctx, a, opts, func() (models.Event, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("events.php?action=getEvent&sectionid=%d&eventid=%d", sectionID, eventID), nil)
		if err != nil {
			return models.Event{}, err
		}
		event := models.ParseEvent(sectionID, data)
		if event.ID != eventID {
			return models.Event{}, fmt.Errorf("event %d: %w", eventID, constants.ErrNotFound)
		}
		return event, nil
	}, "event", sectionID, eventID)
	event.MarkClean()
	return event, err
}

func eventForm(e *models.Event) map[string]string {
	fields := e.Fields()
	delete(fields, "notepad")
	delete(fields, "publicnotepad")
	return fields
}

// CreateEvent adds the event and sets its ID. Notepads are saved afterwards.
// When OSM adds the event but a notepad is not saved, it returns false with
// e.ID already set: the event exists, so finish it with UpdateEvent rather
// than creating it again.
func CreateEvent(ctx context.Context, a *API, e *models.Event) (bool, error) {
	if e.ID != 0 {
		return false, fmt.Errorf("event %d already exists: %w", e.ID, constants.ErrInvalidObject)
	}
	if err := e.Validate(); err != nil {
		return false, err
	}
	if err := requireEvents(ctx, a, models.PermissionWrite, e.SectionID); err != nil {
		return false, err
	}

	data, err := a.Post(ctx, endpoint("events.php?action=addEvent&sectionid=%d", e.SectionID), formOf(eventForm(e)))
	if err != nil {
		return false, err
	}
	id := util.ToInt(util.Map(data)["id"])
	if id <= 0 {
		return false, nil
	}
	e.ID = id
	a.invalidate(ctx, []any{"events", e.SectionID})

	ok, err := saveNotepads(ctx, a, e, e.Notepad != "", e.PublicNotepad != "")
	if err != nil || !ok {
		return false, err
	}
	e.MarkClean()
	return true, nil
}

// UpdateEvent sends the event's details if any changed, then changed notepads.
func UpdateEvent(ctx context.Context, a *API, e *models.Event) (bool, error) {
	if e.ID <= 0 {
		return false, fmt.Errorf("event has no id: %w", constants.ErrInvalidObject)
	}
	if err := e.Validate(); err != nil {
		return false, err
	}
	if err := requireEvents(ctx, a, models.PermissionWrite, e.SectionID); err != nil {
		return false, err
	}

	changed := map[string]bool{}
	for _, f := range e.Changed() {
		changed[f] = true
	}
	details := false
	for f := range eventForm(e) {
		details = details || changed[f]
	}

	updated := true
	if details {
		f := formOf(eventForm(e))
		f.Set("eventid", fmt.Sprint(e.ID))
		data, err := a.Post(ctx, endpoint("events.php?action=addEvent&sectionid=%d", e.SectionID), f)
		if err != nil {
			return false, err
		}
		updated = util.ToInt(util.Map(data)["id"]) == e.ID
	}

	ok, err := saveNotepads(ctx, a, e, changed["notepad"], changed["publicnotepad"])
	if err != nil {
		return false, err
	}
	updated = updated && ok

	if updated {
		e.MarkClean()
		a.invalidate(ctx, []any{"events", e.SectionID}, []any{"event", e.SectionID, e.ID})
	}
	return updated, nil
}

func saveNotepads(ctx context.Context, a *API, e *models.Event, notepad, public bool) (bool, error) {
	type save struct {
		action, field, value string
	}
	var saves []save
	if notepad {
		saves = append(saves, save{"saveNotepad", "notepad", e.Notepad})
	}
	if public {
		saves = append(saves, save{"savePublicNotepad", "pnnotepad", e.PublicNotepad})
	}

	for _, s := range saves {
		data, err := a.Post(ctx, endpoint("events.php?action=%s&sectionid=%d", s.action, e.SectionID), formOf(map[string]string{
			"eventid": fmt.Sprint(e.ID),
			s.field:   s.value,
		}))
		if err != nil {
			return false, err
		}
		if _, ok := data.(map[string]any); !ok {
			return false, nil
		}
	}
	return true, nil
}

func DeleteEvent(ctx context.Context, a *API, e *models.Event) (bool, error) {
	if err := requireEvents(ctx, a, models.PermissionWrite, e.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("events.php?action=deleteEvent&sectionid=%d&eventid=%d", e.SectionID, e.ID), nil)
	if err != nil {
		return false, err
	}
	if !util.ToBool(util.Map(data)["ok"]) {
		return false, nil
	}
	a.invalidate(ctx, []any{"events", e.SectionID}, []any{"event", e.SectionID, e.ID})
	return true, nil
}

// columnsFromConfig reads the "config" JSON string OSM returns after a column change.
func columnsFromConfig(sectionID, eventID int, data any) []models.EventColumn {
	var columns []models.EventColumn
	for _, c := range util.Maps(util.DecodeJSONString(util.Map(data)["config"])) {
		columns = append(columns, models.ParseEventColumn(sectionID, eventID, c))
	}
	return columns
}

// AddEventColumn adds a question to the event and appends it to e.Columns.
func AddEventColumn(ctx context.Context, a *API, e *models.Event, name, parentLabel string, parentRequired bool) (bool, error) {
	column := models.EventColumn{
		SectionID:      e.SectionID,
		EventID:        e.ID,
		Name:           name,
		ParentLabel:    parentLabel,
		ParentRequired: parentRequired,
	}
	if err := models.Validate(column); err != nil {
		return false, err
	}
	if err := requireEvents(ctx, a, models.PermissionWrite, e.SectionID); err != nil {
		return false, err
	}

	data, err := a.Post(ctx, endpoint("events.php?action=addColumn&sectionid=%d&eventid=%d", e.SectionID, e.ID), formOf(column.Fields()))
	if err != nil {
		return false, err
	}
	columns := columnsFromConfig(e.SectionID, e.ID, data)
	for _, c := range columns {
		if c.Name == name {
			e.Columns = columns
			a.invalidate(ctx, []any{"events", e.SectionID}, []any{"event", e.SectionID, e.ID})
			return true, nil
		}
	}
	return false, nil
}

// UpdateEventColumn renames the column and sets what parents see.
func UpdateEventColumn(ctx context.Context, a *API, c *models.EventColumn) (bool, error) {
	if c.ID == "" {
		return false, fmt.Errorf("event column has no id: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(c); err != nil {
		return false, err
	}
	if err := requireEvents(ctx, a, models.PermissionWrite, c.SectionID); err != nil {
		return false, err
	}

	data, err := a.Post(ctx, endpoint("events.php?action=renameColumn&sectionid=%d&eventid=%d", c.SectionID, c.EventID), formOf(map[string]string{
		"columnId":   c.ID,
		"columnName": c.Name,
		"pL":         c.ParentLabel,
		"pR":         fmt.Sprint(boolInt(c.ParentRequired)),
	}))
	if err != nil {
		return false, err
	}
	for _, got := range columnsFromConfig(c.SectionID, c.EventID, data) {
		if got.ID == c.ID && got.Name == c.Name {
			c.MarkClean()
			a.invalidate(ctx, []any{"events", c.SectionID}, []any{"event", c.SectionID, c.EventID})
			return true, nil
		}
	}
	return false, nil
}

// DeleteEventColumn removes the column and every answer given to it.
func DeleteEventColumn(ctx context.Context, a *API, c models.EventColumn) (bool, error) {
	if err := requireEvents(ctx, a, models.PermissionWrite, c.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("events.php?action=deleteColumn&sectionid=%d&eventid=%d", c.SectionID, c.EventID), formOf(map[string]string{
		"columnId": c.ID,
	}))
	if err != nil {
		return false, err
	}
	if util.Map(data)["config"] == nil {
		return false, nil
	}
	for _, got := range columnsFromConfig(c.SectionID, c.EventID, data) {
		if got.ID == c.ID {
			return false, nil
		}
	}
	a.invalidate(ctx, []any{"events", c.SectionID}, []any{"event", c.SectionID, c.EventID})
	return true, nil
}

// GetEventAttendance lists who is invited to or attending the event; termID 0 means the current term.
func GetEventAttendance(ctx context.Context, a *API, e models.Event, termID int, opts ...Option) ([]models.EventAttendance, error) {
	if err := requireEvents(ctx, a, models.PermissionRead, e.SectionID, opts...); err != nil {
		return nil, err
	}
	termID, err := a.termOrCurrent(ctx, e.SectionID, termID)
	if err != nil {
		return nil, err
	}

	attendance, err := fetch(ctx, a, opts, func() ([]models.EventAttendance, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("events.php?action=getEventAttendance&eventid=%d&sectionid=%d&termid=%d", e.ID, e.SectionID, termID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.EventAttendance
		for row, item := range util.Maps(data["items"]) {
			out = append(out, models.ParseEventAttendance(e.SectionID, e.ID, termID, row, item))
		}
		return out, nil
	}, "event-attendance", e.SectionID, e.ID, termID)
	for i := range attendance {
		attendance[i].MarkClean()
	}
	return attendance, err
}

// UpdateEventAttendance sends one request per changed field.
func UpdateEventAttendance(ctx context.Context, a *API, att *models.EventAttendance) (bool, error) {
	if err := models.Validate(att); err != nil {
		return false, err
	}
	if err := requireEvents(ctx, a, models.PermissionWrite, att.SectionID); err != nil {
		return false, err
	}

	updated := true
	for _, field := range att.Changed() {
		value := att.Value(field)
		data, err := postInto[map[string]any](ctx, a, "events.php?action=updateScout", formOf(map[string]string{
			"scoutid":   fmt.Sprint(att.MemberID),
			"column":    field,
			"value":     value,
			"sectionid": fmt.Sprint(att.SectionID),
			"row":       fmt.Sprint(att.Row),
			"eventid":   fmt.Sprint(att.EventID),
		}))
		if err != nil {
			return false, err
		}
		if util.ToString(data[field]) != value {
			updated = false
		}
	}

	if updated {
		att.MarkClean()
		a.invalidateTerms(ctx, att.SectionID, "event-attendance", att.EventID)
		a.invalidate(ctx, []any{"events", att.SectionID})
	}
	return updated, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

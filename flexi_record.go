package osm

import (
	"context"
	"fmt"
	"strings"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetFlexiColumns lists the columns of a flexi record, system columns first.
func GetFlexiColumns(ctx context.Context, a *API, record models.FlexiRecord, opts ...Option) ([]models.FlexiColumn, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaFlexi, record.SectionID, opts...); err != nil {
		return nil, err
	}
	return fetch(ctx, a, opts, func() ([]models.FlexiColumn, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("extras.php?action=getExtra&sectionid=%d&extraid=%d", record.SectionID, record.ID), nil)
		if err != nil {
			return nil, err
		}
		var columns []models.FlexiColumn
		for _, block := range util.Maps(data["structure"]) {
			for _, row := range util.Maps(block["rows"]) {
				columns = append(columns, models.ParseFlexiColumn(record, row))
			}
		}
		models.SortFlexiColumns(columns)
		return columns, nil
	}, "flexi-columns", record.SectionID, record.ID)
}

// flexiConfig reads the column list OSM sends back after a column change.
func flexiConfig(data any) map[string]string {
	out := map[string]string{}
	for _, c := range util.Maps(util.DecodeJSONString(util.Map(data)["config"])) {
		out[util.ToString(c["id"])] = util.ToString(c["name"])
	}
	return out
}

func (a *API) invalidateFlexi(ctx context.Context, record models.FlexiRecord) {
	a.invalidate(ctx, []any{"flexi-columns", record.SectionID, record.ID})
	a.invalidateTerms(ctx, record.SectionID, "flexi-data", record.ID)
}

func AddFlexiColumn(ctx context.Context, a *API, record models.FlexiRecord, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("column name is required: %w", constants.ErrInvalidObject)
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFlexi, record.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("extras.php?action=addColumn&sectionid=%d&extraid=%d", record.SectionID, record.ID), formOf(map[string]string{
		"columnName": name,
	}))
	if err != nil {
		return false, err
	}
	for _, got := range flexiConfig(data) {
		if got == name {
			a.invalidateFlexi(ctx, record)
			return true, nil
		}
	}
	return false, nil
}

func RenameFlexiColumn(ctx context.Context, a *API, c *models.FlexiColumn) (bool, error) {
	if c.System() {
		return false, fmt.Errorf("%s is a system column: %w", c.ID, constants.ErrInvalidObject)
	}
	if err := models.Validate(c); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFlexi, c.FlexiRecord.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("extras.php?action=renameColumn&sectionid=%d&extraid=%d", c.FlexiRecord.SectionID, c.FlexiRecord.ID), formOf(map[string]string{
		"columnId":   c.ID,
		"columnName": c.Name,
	}))
	if err != nil {
		return false, err
	}
	if flexiConfig(data)[c.ID] != c.Name {
		return false, nil
	}
	a.invalidateFlexi(ctx, c.FlexiRecord)
	return true, nil
}

func DeleteFlexiColumn(ctx context.Context, a *API, c models.FlexiColumn) (bool, error) {
	if c.System() {
		return false, fmt.Errorf("%s is a system column: %w", c.ID, constants.ErrInvalidObject)
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFlexi, c.FlexiRecord.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("extras.php?action=deleteColumn&sectionid=%d&extraid=%d", c.FlexiRecord.SectionID, c.FlexiRecord.ID), formOf(map[string]string{
		"columnId": c.ID,
	}))
	if err != nil {
		return false, err
	}
	if util.Map(data)["config"] == nil {
		return false, nil
	}
	if _, still := flexiConfig(data)[c.ID]; still {
		return false, nil
	}
	a.invalidateFlexi(ctx, c.FlexiRecord)
	return true, nil
}

// GetFlexiData lists every member's row of the record; termID 0 means the current term.
func GetFlexiData(ctx context.Context, a *API, record models.FlexiRecord, termID int, opts ...Option) ([]models.FlexiData, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaFlexi, record.SectionID, opts...); err != nil {
		return nil, err
	}
	section, err := GetSection(ctx, a, record.SectionID, opts...)
	if err != nil {
		return nil, err
	}
	termID, err = a.termOrCurrent(ctx, record.SectionID, termID)
	if err != nil {
		return nil, err
	}

	data, err := fetch(ctx, a, opts, func() ([]models.FlexiData, error) {
		res, err := postInto[map[string]any](ctx, a, endpoint("extras.php?action=getExtraRecords&sectionid=%d&extraid=%d&termid=%d&section=%s",
			record.SectionID, record.ID, termID, section.Type), nil)
		if err != nil {
			return nil, err
		}
		var out []models.FlexiData
		for _, item := range util.Maps(res["items"]) {
			out = append(out, models.ParseFlexiData(record, item))
		}
		return out, nil
	}, "flexi-data", record.SectionID, record.ID, termID)
	for i := range data {
		data[i].MarkClean()
	}
	return data, err
}

// UpdateFlexiData sends each changed user column ("f_" ids) of the member's row.
func UpdateFlexiData(ctx context.Context, a *API, d *models.FlexiData, termID int) (bool, error) {
	if err := models.Validate(d); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFlexi, d.FlexiRecord.SectionID); err != nil {
		return false, err
	}
	termID, err := a.termOrCurrent(ctx, d.FlexiRecord.SectionID, termID)
	if err != nil {
		return false, err
	}

	updated := true
	for _, column := range d.Changed() {
		if !strings.HasPrefix(column, "f_") {
			continue
		}
		value := d.Fields[column]
		res, err := postInto[map[string]any](ctx, a, "extras.php?action=updateScout", formOf(map[string]string{
			"termid":    fmt.Sprint(termID),
			"scoutid":   fmt.Sprint(d.MemberID),
			"column":    column,
			"value":     value,
			"sectionid": fmt.Sprint(d.FlexiRecord.SectionID),
			"extraid":   fmt.Sprint(d.FlexiRecord.ID),
		}))
		if err != nil {
			return false, err
		}
		confirmed := false
		for _, item := range util.Maps(res["items"]) {
			if util.ToInt(item["scoutid"]) == d.MemberID {
				confirmed = util.ToString(item[column]) == value
				break
			}
		}
		updated = updated && confirmed
	}

	if updated {
		d.MarkClean()
		a.invalidateFlexi(ctx, d.FlexiRecord)
	}
	return updated, nil
}

package osm

import (
	"context"
	"fmt"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

func GetBudgets(ctx context.Context, a *API, sectionID int, opts ...Option) ([]models.Budget, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionRead, models.AreaFinance, sectionID, opts...); err != nil {
		return nil, err
	}
	budgets, err := fetch(ctx, a, opts, func() ([]models.Budget, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("finances.php?action=getCategories&sectionid=%d", sectionID), nil)
		if err != nil {
			return nil, err
		}
		var out []models.Budget
		for _, item := range util.Maps(data["items"]) {
			b := models.ParseBudget(sectionID, item)
			if b.ID > 0 {
				out = append(out, b)
			}
		}
		models.SortBudgets(out)
		return out, nil
	}, "budgets", sectionID)
	for i := range budgets {
		budgets[i].MarkClean()
	}
	return budgets, err
}

// CreateBudget adds an unnamed budget, finds it in a fresh listing and renames it.
func CreateBudget(ctx context.Context, a *API, b *models.Budget) (bool, error) {
	if b.ID != 0 {
		return false, fmt.Errorf("budget %d already exists: %w", b.ID, constants.ErrInvalidObject)
	}
	if err := models.Validate(b); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, b.SectionID); err != nil {
		return false, err
	}

	before, err := GetBudgets(ctx, a, b.SectionID, NoReadCache())
	if err != nil {
		return false, err
	}
	known := map[int]bool{}
	for _, old := range before {
		known[old.ID] = true
	}

	if _, err := a.Post(ctx, endpoint("finances.php?action=addCategory&sectionid=%d", b.SectionID), formOf(map[string]string{
		"section_id": fmt.Sprint(b.SectionID),
	})); err != nil {
		return false, err
	}

	after, err := GetBudgets(ctx, a, b.SectionID, NoReadCache())
	if err != nil {
		return false, err
	}
	for _, got := range after {
		if !known[got.ID] && got.Name == models.BudgetUnnamed {
			b.ID = got.ID
			return UpdateBudget(ctx, a, b)
		}
	}
	return false, nil
}

func UpdateBudget(ctx context.Context, a *API, b *models.Budget) (bool, error) {
	if b.ID <= 0 {
		return false, fmt.Errorf("budget has no id: %w", constants.ErrInvalidObject)
	}
	if err := models.Validate(b); err != nil {
		return false, err
	}
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, b.SectionID); err != nil {
		return false, err
	}

	data, err := postInto[map[string]any](ctx, a, endpoint("finances.php?action=updateCategory&sectionid=%d", b.SectionID), formOf(map[string]string{
		"section_id": fmt.Sprint(b.SectionID),
		"categoryid": fmt.Sprint(b.ID),
		"column":     "name",
		"value":      b.Name,
		"row":        "0",
	}))
	if err != nil {
		return false, err
	}
	if util.ToString(data["name"]) != b.Name {
		return false, nil
	}
	b.MarkClean()
	a.invalidate(ctx, []any{"budgets", b.SectionID})
	return true, nil
}

func DeleteBudget(ctx context.Context, a *API, b *models.Budget) (bool, error) {
	if err := RequireAbilityTo(ctx, a, models.PermissionWrite, models.AreaFinance, b.SectionID); err != nil {
		return false, err
	}
	data, err := a.Post(ctx, endpoint("finances.php?action=deleteCategory&sectionid=%d", b.SectionID), formOf(map[string]string{
		"categoryid": fmt.Sprint(b.ID),
	}))
	if err != nil {
		return false, err
	}
	if !util.ToBool(util.Map(data)["ok"]) {
		return false, nil
	}
	a.invalidate(ctx, []any{"budgets", b.SectionID})
	return true, nil
}

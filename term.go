package osm

import (
	"context"
	"fmt"
	"time"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// now is replaced in tests
var now = time.Now

// GetTerms lists the terms of every section the user has a role in.
func GetTerms(ctx context.Context, a *API, opts ...Option) ([]models.Term, error) {
	terms, err := fetch(ctx, a, opts, func() ([]models.Term, error) {
		data, err := postInto[map[string]any](ctx, a, "api.php?action=getTerms", nil)
		if err != nil {
			return nil, err
		}

		var terms []models.Term
		for _, sectionID := range util.SortedKeys(data) {
			for _, item := range util.Maps(data[sectionID]) {
				t := models.ParseTerm(item)
				if t.SectionID == 0 {
					t.SectionID = util.ToInt(sectionID)
				}
				terms = append(terms, t)
			}
		}
		models.SortTerms(terms)
		return terms, nil
	}, "terms", a.userID)
	for i := range terms {
		terms[i].MarkClean()
	}
	return terms, err
}

func GetTermsForSection(ctx context.Context, a *API, sectionID int, opts ...Option) ([]models.Term, error) {
	terms, err := GetTerms(ctx, a, opts...)
	if err != nil {
		return nil, err
	}
	var out []models.Term
	for _, t := range terms {
		if t.SectionID == sectionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func GetTerm(ctx context.Context, a *API, termID int, opts ...Option) (models.Term, error) {
	terms, err := GetTerms(ctx, a, opts...)
	if err != nil {
		return models.Term{}, err
	}
	for _, t := range terms {
		if t.ID == termID {
			return t, nil
		}
	}
	return models.Term{}, fmt.Errorf("term %d: %w", termID, constants.ErrNotFound)
}

// GetCurrentTerm returns the section's term containing today, or ErrNotFound.
func GetCurrentTerm(ctx context.Context, a *API, sectionID int, opts ...Option) (models.Term, error) {
	terms, err := GetTermsForSection(ctx, a, sectionID, opts...)
	if err != nil {
		return models.Term{}, err
	}
	today := now()
	for _, t := range terms {
		if t.Current(today) {
			return t, nil
		}
	}
	return models.Term{}, fmt.Errorf("current term for section %d: %w", sectionID, constants.ErrNotFound)
}

// CreateTerm adds a term to its section.
func CreateTerm(ctx context.Context, a *API, term *models.Term) (bool, error) {
	if term.ID != 0 {
		return false, fmt.Errorf("term %d already exists: %w", term.ID, constants.ErrInvalidObject)
	}
	return saveTerm(ctx, a, term)
}

// UpdateTerm sends the term's name and dates if they changed.
func UpdateTerm(ctx context.Context, a *API, term *models.Term) (bool, error) {
	if term.ID <= 0 {
		return false, fmt.Errorf("term has no id: %w", constants.ErrInvalidObject)
	}
	if len(term.Changed()) == 0 {
		return true, nil
	}
	return saveTerm(ctx, a, term)
}

func saveTerm(ctx context.Context, a *API, term *models.Term) (bool, error) {
	if err := models.Validate(term); err != nil {
		return false, err
	}
	if err := RequireAccessToSection(ctx, a, term.SectionID); err != nil {
		return false, err
	}

	f := formOf(term.Fields())
	f.Set("termid", fmt.Sprint(term.ID))
	data, err := a.Post(ctx, endpoint("users.php?action=addTerm&sectionid=%d", term.SectionID), f)
	if err != nil {
		return false, err
	}
	if _, ok := data.(map[string]any); !ok {
		return false, nil
	}

	term.MarkClean()
	a.invalidate(ctx, []any{"terms", a.userID})
	return true, nil
}

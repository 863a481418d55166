package osm

import (
	"context"
	"fmt"
	"sort"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetSections lists the sections the user has a role in.
func GetSections(ctx context.Context, a *API, opts ...Option) ([]models.Section, error) {
	return fetch(ctx, a, opts, func() ([]models.Section, error) {
		data, err := a.Post(ctx, "api.php?action=getUserRoles", nil)
		if err != nil {
			return nil, err
		}

		var sections []models.Section
		for _, role := range util.Maps(data) {
			s := models.ParseSection(role)
			if s.ID <= 0 {
				continue
			}
			sections = append(sections, s)
		}
		if len(sections) == 0 {
			return nil, constants.ErrNoActiveRoles
		}
		sort.SliceStable(sections, func(i, j int) bool { return sections[i].Less(sections[j]) })
		return sections, nil
	}, "sections", a.userID)
}

func GetSection(ctx context.Context, a *API, sectionID int, opts ...Option) (models.Section, error) {
	sections, err := GetSections(ctx, a, opts...)
	if err != nil {
		return models.Section{}, err
	}
	for _, s := range sections {
		if s.ID == sectionID {
			return s, nil
		}
	}
	return models.Section{}, fmt.Errorf("section %d: %w", sectionID, constants.ErrNotFound)
}

// GetDefaultSection returns the section OSM opens first for the user.
func GetDefaultSection(ctx context.Context, a *API, opts ...Option) (models.Section, error) {
	sections, err := GetSections(ctx, a, opts...)
	if err != nil {
		return models.Section{}, err
	}
	for _, s := range sections {
		if s.Default {
			return s, nil
		}
	}
	return sections[0], nil
}

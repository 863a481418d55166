package osm

import (
	"context"
	"errors"

	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetUserPermissions maps section id to what the user may do there.
func GetUserPermissions(ctx context.Context, a *API, opts ...Option) (map[int]models.Permissions, error) {
	return fetch(ctx, a, opts, func() (map[int]models.Permissions, error) {
		sections, err := GetSections(ctx, a, opts...)
		if err != nil {
			return nil, err
		}
		out := make(map[int]models.Permissions, len(sections))
		for _, s := range sections {
			out[s.ID] = s.Permissions
		}
		return out, nil
	}, "permissions", a.userID)
}

// GetAPIPermissions returns what the section has granted to this API application.
func GetAPIPermissions(ctx context.Context, a *API, sectionID int, opts ...Option) (models.Permissions, error) {
	return fetch(ctx, a, opts, func() (models.Permissions, error) {
		data, err := postInto[map[string]any](ctx, a, endpoint("ext/settings/access/?action=getAPIAccess&sectionid=%d", sectionID), nil)
		if err != nil {
			return nil, err
		}
		for _, access := range models.ParseAPIAccess(data) {
			if access.APIID == a.apiID {
				return access.Permissions, nil
			}
		}
		return models.Permissions{}, nil
	}, "api-permissions", a.apiID, sectionID)
}

// UserCan reports whether the user holds ability on area in the section.
func UserCan(ctx context.Context, a *API, ability models.Permission, area string, sectionID int, opts ...Option) (bool, error) {
	perms, err := GetUserPermissions(ctx, a, opts...)
	if err != nil {
		return false, err
	}
	return perms[sectionID].Can(ability, area), nil
}

// APICan reports whether the section granted ability on area to the API application.
func APICan(ctx context.Context, a *API, ability models.Permission, area string, sectionID int, opts ...Option) (bool, error) {
	perms, err := GetAPIPermissions(ctx, a, sectionID, opts...)
	if err != nil {
		return false, err
	}
	return perms.Can(ability, area), nil
}

// RequireAbilityTo returns a ForbiddenError unless both the user and the API
// application may do ability on area in the section.
func RequireAbilityTo(ctx context.Context, a *API, ability models.Permission, area string, sectionID int, opts ...Option) error {
	section, err := requireSection(ctx, a, sectionID, opts)
	if err != nil {
		return err
	}

	userCan, err := UserCan(ctx, a, ability, area, sectionID, opts...)
	if err != nil {
		return err
	}
	if !userCan {
		return forbidden("Your OSM user does not have permission to %s on %s for %s.", ability, area, section.Name)
	}

	apiCan, err := APICan(ctx, a, ability, area, sectionID, opts...)
	if err != nil {
		return err
	}
	if !apiCan {
		return forbidden("You have not granted the %s permissions on %s to the API for %s.", ability, area, section.Name)
	}
	return nil
}

// RequireAccessToSection returns a ForbiddenError unless the user has a role in the section.
func RequireAccessToSection(ctx context.Context, a *API, sectionID int, opts ...Option) error {
	_, err := requireSection(ctx, a, sectionID, opts)
	return err
}

// RequireSubscription returns a ForbiddenError if the section's subscription is below level.
func RequireSubscription(ctx context.Context, a *API, level models.SubscriptionLevel, sectionID int, opts ...Option) error {
	section, err := requireSection(ctx, a, sectionID, opts)
	if err != nil {
		return err
	}
	if !section.SubscriptionAtLeast(level) {
		return forbidden("%s must have a %s subscription or better (it has %s).", section.Name, level, section.SubscriptionLevel)
	}
	return nil
}

func requireSection(ctx context.Context, a *API, sectionID int, opts []Option) (models.Section, error) {
	section, err := GetSection(ctx, a, sectionID, opts...)
	if errors.Is(err, constants.ErrNotFound) || errors.Is(err, constants.ErrNoActiveRoles) {
		return section, forbidden("You do not have access to section %d.", sectionID)
	}
	return section, err
}

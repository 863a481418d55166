package osm

import (
	"context"
	"fmt"

	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
)

// GetActivity fetches an activity from the library; version 0 means the latest.
func GetActivity(ctx context.Context, a *API, activityID, version int, opts ...Option) (models.Activity, error) {
	return fetch(ctx, a, opts, func() (models.Activity, error) {
		path := endpoint("programme.php?action=getActivity&id=%d", activityID)
		if version > 0 {
			path += fmt.Sprintf("&version=%d", version)
		}
		data, err := postInto[map[string]any](ctx, a, path, nil)
		if err != nil {
			return models.Activity{}, err
		}
		activity := models.ParseActivity(data)
		if activity.ID != activityID {
			return models.Activity{}, fmt.Errorf("activity %d: %w", activityID, constants.ErrNotFound)
		}
		return activity, nil
	}, "activity", activityID, version)
}

package osmctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gofrs/flock"
	"github.com/osmx/osm-go"
	"gopkg.in/yaml.v3"
)

// SaveCredentials writes the user's id and secret into the yaml file at path,
// keeping whatever else it holds. The file is locked while it is rewritten.
func SaveCredentials(path string, creds *osm.Credentials) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	settings := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if settings == nil {
			settings = map[string]any{}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	settings[keyUserID] = creds.UserID
	settings[keySecret] = creds.Secret

	out, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

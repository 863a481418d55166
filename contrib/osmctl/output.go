package osmctl

import (
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Write renders v in format. YAML goes through JSON first so field names
// follow the json tags.
func Write(w io.Writer, format string, v any) error {
	if format == FormatYAML {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

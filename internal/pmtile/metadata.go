package pmtile

import "encoding/json"

// MetadataOverrides holds the optional name/description/attribution values
// a run can stamp onto the output archive's metadata JSON.
type MetadataOverrides struct {
	Name        string
	Description string
	Attribution string
}

// ApplyOverrides merges non-empty override fields into base, a PMTiles
// metadata JSON document. If base does not parse as a JSON object, the
// overrides are merged into an empty object instead.
func ApplyOverrides(base []byte, overrides MetadataOverrides) ([]byte, error) {
	obj := map[string]interface{}{}
	var parsed map[string]interface{}
	if len(base) > 0 && json.Unmarshal(base, &parsed) == nil {
		obj = parsed
	}

	if overrides.Name != "" {
		obj["name"] = overrides.Name
	}
	if overrides.Description != "" {
		obj["description"] = overrides.Description
	}
	if overrides.Attribution != "" {
		obj["attribution"] = overrides.Attribution
	}

	return json.Marshal(obj)
}

package model

import (
	"encoding/json"
	"fmt"
)

// RadarRow is one metric of the comparison radar chart with a value per spec id
type RadarRow struct {
	Metric string
	Values map[string]int
	// Order keeps the column order of the selection
	Order []string
}

// MarshalJSON flattens the row into {"metric": "eco", "<id>": value, ...}
func (r RadarRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	for id, v := range r.Values {
		flat[id] = v
	}
	flat["metric"] = r.Metric
	return json.Marshal(flat)
}

// UnmarshalJSON reads the flat form written by MarshalJSON
func (r *RadarRow) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	raw, ok := flat["metric"]
	if !ok {
		return fmt.Errorf("radar row without metric")
	}
	if err := json.Unmarshal(raw, &r.Metric); err != nil {
		return fmt.Errorf("failed to parse radar metric: %w", err)
	}
	delete(flat, "metric")

	r.Values = make(map[string]int, len(flat))
	for id, raw := range flat {
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("failed to parse radar value for %s: %w", id, err)
		}
		r.Values[id] = v
	}
	return nil
}

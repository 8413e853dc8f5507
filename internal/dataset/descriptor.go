package dataset

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// AllKey is the time key used by datasets without a time dimension.
const AllKey = "all"

// Descriptor is a region-indexed dataset as produced by the ingestion
// worker. Its JSON form matches the stored choropleth payload.
type Descriptor struct {
	Name             string                         `json:"name"`
	Type             string                         `json:"type,omitempty"`
	TimeKeys         []string                       `json:"years,omitempty"`
	ValueColumnLabel string                         `json:"value_column,omitempty"`
	Values           map[string]map[string]*float64 `json:"data"`
	MinValue         *float64                       `json:"min_value,omitempty"`
	MaxValue         *float64                       `json:"max_value,omitempty"`
	GeometryRef      string                         `json:"geojson_file,omitempty"`
}

// LayerName implements region.Descriptor.
func (d *Descriptor) LayerName() string { return d.Name }

// GeometryReference implements region.Descriptor.
func (d *Descriptor) GeometryReference() string { return d.GeometryRef }

// DecodeDescriptor parses a choropleth payload. name overrides the payload's
// own name when non-empty.
func DecodeDescriptor(name string, data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, eris.Wrapf(err, "dataset: decode %s", name)
	}
	if name != "" {
		d.Name = name
	}
	if d.Values == nil {
		return nil, eris.Errorf("dataset: %s has no data", d.Name)
	}
	return &d, nil
}

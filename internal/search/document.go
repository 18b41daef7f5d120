// Package search defines the engine-independent search model: documents,
// filters, aggregations, requests and results. Provider adapters translate
// between this model and a concrete engine's native protocol.
package search

// ValueType is the declared type of a document field. A field without a
// declared type (TypeUnspecified) has its native type inferred from the
// runtime type of its first value.
type ValueType string

const (
	TypeUnspecified ValueType = ""
	TypeString      ValueType = "string"
	TypeChar        ValueType = "char"
	TypeGUID        ValueType = "guid"
	TypeInteger     ValueType = "integer"
	TypeShort       ValueType = "short"
	TypeByte        ValueType = "byte"
	TypeLong        ValueType = "long"
	TypeFloat       ValueType = "float"
	TypeDouble      ValueType = "double"
	TypeDecimal     ValueType = "decimal"
	TypeDateTime    ValueType = "datetime"
	TypeBoolean     ValueType = "boolean"
	TypeGeoPoint    ValueType = "geopoint"
	TypeComplex     ValueType = "complex"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Field is one named value set of a document. Field names are
// case-insensitive; adapters normalize them before any lookup. A field with
// IsCollection set, or carrying more than one value, is always indexed as a
// list and never flattened to a scalar.
type Field struct {
	Name      string    `json:"name"`
	Values    []any     `json:"values"`
	ValueType ValueType `json:"valueType,omitempty"`

	IsFilterable  bool `json:"isFilterable,omitempty"`
	IsSearchable  bool `json:"isSearchable,omitempty"`
	IsRetrievable bool `json:"isRetrievable,omitempty"`
	IsSuggestable bool `json:"isSuggestable,omitempty"`
	IsCollection  bool `json:"isCollection,omitempty"`
}

// Value returns the field's first value, or nil when the field is empty.
func (f Field) Value() any {
	if len(f.Values) == 0 {
		return nil
	}
	return f.Values[0]
}

// Document is one unit of indexable content.
type Document struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// AddField appends a field to the document.
func (d *Document) AddField(f Field) {
	d.Fields = append(d.Fields, f)
}

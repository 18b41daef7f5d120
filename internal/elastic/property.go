package elastic

import (
	"fmt"
	"time"

	"github.com/utafrali/elasticbridge/internal/search"
)

// Native mapping property types.
const (
	PropertyKeyword      = "keyword"
	PropertyText         = "text"
	PropertyInteger      = "integer"
	PropertyShort        = "short"
	PropertyByte         = "byte"
	PropertyLong         = "long"
	PropertyFloat        = "float"
	PropertyDouble       = "double"
	PropertyDate         = "date"
	PropertyBoolean      = "boolean"
	PropertyGeoPoint     = "geo_point"
	PropertyNested       = "nested"
	PropertySparseVector = "sparse_vector"
	PropertyDenseVector  = "dense_vector"
	PropertyCompletion   = "completion"
)

// Property is one native mapping property. It marshals directly to the
// engine's mapping JSON and is decoded from live mappings; unknown mapping
// attributes are ignored on decode. A property's type is never changed in
// place once created; the schema is additive-only.
type Property struct {
	Type           string               `json:"type"`
	Store          bool                 `json:"store,omitempty"`
	Index          *bool                `json:"index,omitempty"`
	Analyzer       string               `json:"analyzer,omitempty"`
	Normalizer     string               `json:"normalizer,omitempty"`
	Fields         map[string]*Property `json:"fields,omitempty"`
	Dims           int                  `json:"dims,omitempty"`
	Similarity     string               `json:"similarity,omitempty"`
	MaxInputLength int                  `json:"max_input_length,omitempty"`
}

// hasRawSubField reports whether the property exposes a "raw" keyword
// sub-field, used to keep faceting untouched by the primary normalizer.
func (p *Property) hasRawSubField() bool {
	if p == nil || p.Type != PropertyKeyword {
		return false
	}
	_, ok := p.Fields[rawSubFieldName]
	return ok
}

// createProperty resolves a field to its native property. A declared value
// type is mapped through a fixed table; otherwise the type is inferred from
// the runtime type of the first value. Unsupported types are an error,
// never a best guess: a wrong native type corrupts filtering and sorting
// for the field's lifetime.
func createProperty(field search.Field) (*Property, error) {
	switch field.ValueType {
	case search.TypeUnspecified:
		return inferProperty(field)
	case search.TypeComplex:
		return &Property{Type: PropertyNested}, nil
	case search.TypeString:
		if field.IsFilterable {
			return &Property{Type: PropertyKeyword}, nil
		}
		return &Property{Type: PropertyText}, nil
	case search.TypeChar, search.TypeGUID:
		return &Property{Type: PropertyKeyword}, nil
	case search.TypeInteger:
		return &Property{Type: PropertyInteger}, nil
	case search.TypeShort:
		return &Property{Type: PropertyShort}, nil
	case search.TypeByte:
		return &Property{Type: PropertyByte}, nil
	case search.TypeLong:
		return &Property{Type: PropertyLong}, nil
	case search.TypeFloat:
		return &Property{Type: PropertyFloat}, nil
	case search.TypeDecimal, search.TypeDouble:
		return &Property{Type: PropertyDouble}, nil
	case search.TypeDateTime:
		return &Property{Type: PropertyDate}, nil
	case search.TypeBoolean:
		return &Property{Type: PropertyBoolean}, nil
	case search.TypeGeoPoint:
		return &Property{Type: PropertyGeoPoint}, nil
	default:
		return nil, fmt.Errorf("field %q has unsupported type %q", field.Name, field.ValueType)
	}
}

// inferProperty maps the runtime type of the field's first value through the
// same shape of table as the declared-type path.
func inferProperty(field search.Field) (*Property, error) {
	value := field.Value()
	if value == nil {
		return nil, fmt.Errorf("field %q has no value to infer a type from", field.Name)
	}

	switch v := value.(type) {
	case string:
		if field.IsFilterable {
			return &Property{Type: PropertyKeyword}, nil
		}
		return &Property{Type: PropertyText}, nil
	case int, int32, uint16:
		return &Property{Type: PropertyInteger}, nil
	case int16:
		return &Property{Type: PropertyShort}, nil
	case int8, uint8:
		return &Property{Type: PropertyByte}, nil
	case int64, uint32, time.Duration:
		return &Property{Type: PropertyLong}, nil
	case float32:
		return &Property{Type: PropertyFloat}, nil
	case float64, uint64:
		return &Property{Type: PropertyDouble}, nil
	case time.Time:
		return &Property{Type: PropertyDate}, nil
	case bool:
		return &Property{Type: PropertyBoolean}, nil
	case search.GeoPoint, *search.GeoPoint:
		return &Property{Type: PropertyGeoPoint}, nil
	case map[string]any, search.Document, *search.Document:
		return &Property{Type: PropertyNested}, nil
	default:
		return nil, fmt.Errorf("field %q has unsupported value type %T", field.Name, v)
	}
}

// configureProperty applies the field's flags to a freshly created property:
// storage follows IsRetrievable, indexing and analysis follow the
// filterable/searchable flags, and keyword fields grow a raw sub-field so
// aggregations see the unnormalized value.
func configureProperty(p *Property, field search.Field, analyzer string) {
	if p == nil {
		return
	}

	switch p.Type {
	case PropertyInteger, PropertyShort, PropertyByte, PropertyLong,
		PropertyFloat, PropertyDouble, PropertyDate, PropertyBoolean, PropertyGeoPoint:
		p.Store = field.IsRetrievable
	case PropertyText:
		p.Store = field.IsRetrievable
		p.Index = boolPtr(field.IsSearchable)
		if field.IsSearchable {
			p.Analyzer = analyzer
		}
	case PropertyKeyword:
		p.Store = field.IsRetrievable
		p.Index = boolPtr(field.IsFilterable)
		p.Normalizer = "lowercase"
		p.Fields = map[string]*Property{
			rawSubFieldName: {Type: PropertyKeyword},
		}
	}
}

func boolPtr(b bool) *bool {
	return &b
}

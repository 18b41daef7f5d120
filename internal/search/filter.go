package search

// Filter is a node of the filter expression tree. The variant set is closed:
// adapters compile filters with an exhaustive type switch, and new variants
// are added by extending this union, not by subclassing. Trees are immutable
// value objects; compiling the same tree twice yields equivalent queries.
type Filter interface {
	isFilter()
}

// IDsFilter matches documents by their identifiers.
type IDsFilter struct {
	Values []string
}

// TermFilter matches documents whose field holds any of the given values.
// Value encoding is type-sensitive: adapters consult the index schema so a
// term filter on a boolean field with value "1" matches boolean true.
type TermFilter struct {
	FieldName string
	Values    []string
}

// RangeValue is one bound pair of a range filter. Bounds are carried as
// strings and parsed by the adapter according to the field's native type;
// an unparsable or empty bound is open on that side.
type RangeValue struct {
	Lower        string
	Upper        string
	IncludeLower bool
	IncludeUpper bool
}

// RangeFilter matches documents whose field falls into any of the windows.
type RangeFilter struct {
	FieldName string
	Values    []RangeValue
}

// GeoDistanceFilter matches documents within Distance kilometers of Location.
type GeoDistanceFilter struct {
	FieldName string
	Location  GeoPoint
	Distance  float64
}

// WildcardFilter matches documents by a wildcard pattern, used as-is.
type WildcardFilter struct {
	FieldName string
	Value     string
}

// NotFilter negates its child. A nil child compiles to no filter.
type NotFilter struct {
	Child Filter
}

// AndFilter is the conjunction of its children. Nil children are skipped;
// an empty child list compiles to no filter.
type AndFilter struct {
	Children []Filter
}

// OrFilter is the disjunction of its children. Nil children are skipped;
// an empty child list compiles to no filter.
type OrFilter struct {
	Children []Filter
}

func (*IDsFilter) isFilter()         {}
func (*TermFilter) isFilter()        {}
func (*RangeFilter) isFilter()       {}
func (*GeoDistanceFilter) isFilter() {}
func (*WildcardFilter) isFilter()    {}
func (*NotFilter) isFilter()         {}
func (*AndFilter) isFilter()         {}
func (*OrFilter) isFilter()          {}

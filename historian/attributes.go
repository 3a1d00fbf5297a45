package historian

import (
	"maps"
	"slices"
)

// Native column names of the InfoPlus.21 record tables.
const (
	NativeName        = "NAME"
	NativeTagType     = "IP_TAG_TYPE"
	NativeDescription = "IP_DESCRIPTION"
	NativeEngUnits    = "IP_ENG_UNITS"
	NativePath        = "IP_DCS_NAME"
	NativeTrendTime   = "IP_TREND_TIME"
	NativeTrendValue  = "IP_TREND_VALUE"
)

// Canonical attribute names, stable across historian backends.
const (
	CanonicalName        = "Name"
	CanonicalType        = "Type"
	CanonicalDescription = "Description"
	CanonicalEngUnits    = "EngUnits"
	CanonicalPath        = "Path"
	CanonicalTimestamp   = "Timestamp"
	CanonicalValue       = "Value"
)

// AttributeMap is the bidirectional dictionary between canonical attribute
// names and native historian column names. It is immutable after
// construction: operations that translate names never modify the map.
type AttributeMap struct {
	toNative    map[string]string
	toCanonical map[string]string
}

// DefaultAttributeMap returns the attribute dictionary for the standard
// InfoPlus.21 record tables.
func DefaultAttributeMap() AttributeMap {
	attributeMap, _ := NewAttributeMap(map[string]string{
		NativeName:        CanonicalName,
		NativeTagType:     CanonicalType,
		NativeDescription: CanonicalDescription,
		NativeEngUnits:    CanonicalEngUnits,
		NativePath:        CanonicalPath,
		NativeTrendTime:   CanonicalTimestamp,
		NativeTrendValue:  CanonicalValue,
	})

	return attributeMap
}

// NewAttributeMap builds an AttributeMap from a native-to-canonical name
// mapping, for backends with renamed or customized record tables.
// The mapping must be invertible: two native names must not share a
// canonical name, or translated rows could not be keyed unambiguously.
func NewAttributeMap(nativeToCanonical map[string]string) (AttributeMap, error) {
	toNative := make(map[string]string, len(nativeToCanonical))
	toCanonical := make(map[string]string, len(nativeToCanonical))

	for native, canonical := range nativeToCanonical {
		if _, exists := toNative[canonical]; exists {
			return AttributeMap{}, ErrDuplicateCanonicalName
		}

		toNative[canonical] = native
		toCanonical[native] = canonical
	}

	return AttributeMap{toNative: toNative, toCanonical: toCanonical}, nil
}

// ToNative translates a list of attribute names to native column names.
// Names outside the canonical vocabulary pass through unchanged, so ad-hoc
// native column names stay queryable.
func (am AttributeMap) ToNative(names []string) []string {
	native := make([]string, 0, len(names))

	for _, name := range names {
		if nativeName, found := am.toNative[name]; found {
			native = append(native, nativeName)
		} else {
			native = append(native, name)
		}
	}

	return native
}

// NativeFor returns the native column name for a canonical attribute name.
func (am AttributeMap) NativeFor(canonical string) (string, bool) {
	native, found := am.toNative[canonical]
	return native, found
}

// CanonicalFor returns the canonical attribute name for a native column name.
func (am AttributeMap) CanonicalFor(native string) (string, bool) {
	canonical, found := am.toCanonical[native]
	return canonical, found
}

// CanonicalNames returns all canonical attribute names, sorted for
// deterministic iteration.
func (am AttributeMap) CanonicalNames() []string {
	return slices.Sorted(maps.Keys(am.toNative))
}

// Len returns the number of name pairs in the map.
func (am AttributeMap) Len() int {
	return len(am.toNative)
}

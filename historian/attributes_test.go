package historian_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prochist/ip21-connector-go/historian"
)

func Test_DefaultAttributeMap_CoversTheStandardVocabulary(t *testing.T) {
	// setup
	attributeMap := historian.DefaultAttributeMap()

	// assert
	assert.Equal(t, 7, attributeMap.Len())
	assert.Equal(t, []string{
		historian.CanonicalDescription,
		historian.CanonicalEngUnits,
		historian.CanonicalName,
		historian.CanonicalPath,
		historian.CanonicalTimestamp,
		historian.CanonicalType,
		historian.CanonicalValue,
	}, attributeMap.CanonicalNames())
}

func Test_AttributeMap_ToNative_TranslatesCanonicalNames(t *testing.T) {
	// setup
	attributeMap := historian.DefaultAttributeMap()

	// act
	native := attributeMap.ToNative([]string{
		historian.CanonicalName,
		historian.CanonicalDescription,
		historian.CanonicalEngUnits,
	})

	// assert
	assert.Equal(t, []string{
		historian.NativeName,
		historian.NativeDescription,
		historian.NativeEngUnits,
	}, native)
}

func Test_AttributeMap_ToNative_PassesUnknownNamesThrough(t *testing.T) {
	// setup
	attributeMap := historian.DefaultAttributeMap()

	// act
	native := attributeMap.ToNative([]string{"IP_DESCRIPTION", "SOME_VENDOR_COLUMN", historian.CanonicalEngUnits})

	// assert
	assert.Equal(t, []string{"IP_DESCRIPTION", "SOME_VENDOR_COLUMN", historian.NativeEngUnits}, native)
}

func Test_AttributeMap_RoundTripsOnTheStandardSubset(t *testing.T) {
	// setup
	attributeMap := historian.DefaultAttributeMap()

	// act + assert
	for _, canonical := range attributeMap.CanonicalNames() {
		native, found := attributeMap.NativeFor(canonical)
		require.True(t, found, "no native name for %s", canonical)

		back, found := attributeMap.CanonicalFor(native)
		require.True(t, found, "no canonical name for %s", native)
		assert.Equal(t, canonical, back)
	}
}

func Test_AttributeMap_CanonicalFor_UnknownNativeName(t *testing.T) {
	// setup
	attributeMap := historian.DefaultAttributeMap()

	// act
	_, found := attributeMap.CanonicalFor("IP_UNKNOWN_COLUMN")

	// assert
	assert.False(t, found)
}

func Test_NewAttributeMap_WithCustomMapping(t *testing.T) {
	// setup
	attributeMap, err := historian.NewAttributeMap(map[string]string{
		"TAGNAME": historian.CanonicalName,
		"DESCR":   historian.CanonicalDescription,
	})

	// assert
	require.NoError(t, err)

	native, found := attributeMap.NativeFor(historian.CanonicalName)
	assert.True(t, found)
	assert.Equal(t, "TAGNAME", native)
}

func Test_NewAttributeMap_RejectsAmbiguousCanonicalNames(t *testing.T) {
	// setup
	_, err := historian.NewAttributeMap(map[string]string{
		"NAME":    historian.CanonicalName,
		"TAGNAME": historian.CanonicalName,
	})

	// assert
	assert.ErrorIs(t, err, historian.ErrDuplicateCanonicalName)
}

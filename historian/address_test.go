package historian_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prochist/ip21-connector-go/historian"
)

//nolint:funlen
func Test_NewAddressResolver_ValidatesConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		delimiter    string
		defaultGroup string
		expectedErr  error
	}{
		{
			name:         "colon_delimiter_is_accepted",
			delimiter:    ":",
			defaultGroup: "IP_AIDef",
			expectedErr:  nil,
		},
		{
			name:         "slash_delimiter_is_accepted",
			delimiter:    "/",
			defaultGroup: "",
			expectedErr:  nil,
		},
		{
			name:         "empty_delimiter_is_rejected",
			delimiter:    "",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "multi_character_delimiter_is_rejected",
			delimiter:    "::",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "letter_delimiter_is_rejected",
			delimiter:    "g",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "digit_delimiter_is_rejected",
			delimiter:    "7",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "dot_delimiter_collides_with_tag_names",
			delimiter:    ".",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "underscore_delimiter_collides_with_sql_wildcard",
			delimiter:    "_",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "client_wildcard_delimiter_is_rejected",
			delimiter:    "*",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "pattern_wildcard_delimiter_is_rejected",
			delimiter:    "%",
			defaultGroup: "",
			expectedErr:  historian.ErrInvalidDelimiter,
		},
		{
			name:         "default_group_containing_delimiter_is_rejected",
			delimiter:    ":",
			defaultGroup: "IP:AIDef",
			expectedErr:  historian.ErrInvalidDefaultGroup,
		},
		{
			name:         "default_group_containing_wildcard_is_rejected",
			delimiter:    ":",
			defaultGroup: "IP_AIDef*",
			expectedErr:  historian.ErrInvalidDefaultGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := historian.NewAddressResolver(tt.delimiter, tt.defaultGroup)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.delimiter, resolver.Delimiter())
			assert.Equal(t, tt.defaultGroup, resolver.DefaultGroup())
		})
	}
}

func Test_AddressResolver_Split_WithDelimiter_UsesGroupBeforeDelimiter(t *testing.T) {
	// setup
	resolver, err := historian.NewAddressResolver(":", "IP_AIDef")
	require.NoError(t, err)

	// act
	group, name, splitErr := resolver.Split("IP_DIDef:sp001.pv")

	// assert
	require.NoError(t, splitErr)
	assert.Equal(t, "IP_DIDef", group)
	assert.Equal(t, "sp001.pv", name)
}

func Test_AddressResolver_Split_WithoutDelimiter_FallsBackToDefaultGroup(t *testing.T) {
	// setup
	resolver, err := historian.NewAddressResolver(":", "IP_AIDef")
	require.NoError(t, err)

	// act
	group, name, splitErr := resolver.Split("fc001.pv")

	// assert
	require.NoError(t, splitErr)
	assert.Equal(t, "IP_AIDef", group)
	assert.Equal(t, "fc001.pv", name)
}

func Test_AddressResolver_Split_WithoutDelimiterAndWithoutDefaultGroup_Fails(t *testing.T) {
	// setup
	resolver, err := historian.NewAddressResolver(":", "")
	require.NoError(t, err)

	// act
	_, _, splitErr := resolver.Split("fc001.pv")

	// assert
	assert.ErrorIs(t, splitErr, historian.ErrNoGroupInAddress)
}

func Test_AddressResolver_Split_OnlySplitsAtFirstDelimiter(t *testing.T) {
	// setup
	resolver, err := historian.NewAddressResolver(":", "")
	require.NoError(t, err)

	// act
	group, name, splitErr := resolver.Split("IP_AIDef:fc001:raw")

	// assert
	require.NoError(t, splitErr)
	assert.Equal(t, "IP_AIDef", group)
	assert.Equal(t, "fc001:raw", name)
}

func Test_AddressResolver_Qualify_IsInverseOfSplit(t *testing.T) {
	// setup
	resolver, err := historian.NewAddressResolver(":", "IP_AIDef")
	require.NoError(t, err)

	// act
	group, name, splitErr := resolver.Split("IP_DIDef:sp001.pv")
	require.NoError(t, splitErr)
	qualified := resolver.Qualify(group, name)

	// assert
	assert.Equal(t, "IP_DIDef:sp001.pv", qualified)
}

func Test_AddressResolver_NormalizePattern_RewritesClientWildcards(t *testing.T) {
	// setup
	resolver, err := historian.NewAddressResolver(":", "")
	require.NoError(t, err)

	// act + assert
	assert.Equal(t, "fc%", resolver.NormalizePattern("fc*"))
	assert.Equal(t, "%.pv", resolver.NormalizePattern("*.pv"))
	assert.Equal(t, "%", resolver.NormalizePattern("*"))
	assert.Equal(t, "fc001.pv", resolver.NormalizePattern("fc001.pv"))
}

//nolint:funlen
func Test_AddressResolver_Resolve(t *testing.T) {
	tests := []struct {
		name             string
		defaultGroup     string
		tags             []string
		expectedGroups   []string
		expectedPatterns map[string][]string
		expectedErr      error
	}{
		{
			name:           "qualified_tags_group_by_prefix",
			defaultGroup:   "",
			tags:           []string{"G1:fc001.pv", "G2:sp001.pv", "G1:tc001.pv"},
			expectedGroups: []string{"G1", "G2"},
			expectedPatterns: map[string][]string{
				"G1": {"fc001.pv", "tc001.pv"},
				"G2": {"sp001.pv"},
			},
		},
		{
			name:           "unqualified_tags_use_the_default_group",
			defaultGroup:   "IP_AIDef",
			tags:           []string{"fc001.pv", "tc001.pv"},
			expectedGroups: []string{"IP_AIDef"},
			expectedPatterns: map[string][]string{
				"IP_AIDef": {"fc001.pv", "tc001.pv"},
			},
		},
		{
			name:           "mixed_tags_keep_first_seen_group_order",
			defaultGroup:   "IP_AIDef",
			tags:           []string{"G2:sp001.pv", "fc001.pv", "G2:sp002.pv"},
			expectedGroups: []string{"G2", "IP_AIDef"},
			expectedPatterns: map[string][]string{
				"G2":       {"sp001.pv", "sp002.pv"},
				"IP_AIDef": {"fc001.pv"},
			},
		},
		{
			name:           "wildcards_are_normalized_in_the_name_part_only",
			defaultGroup:   "",
			tags:           []string{"G1:fc*", "G1:*"},
			expectedGroups: []string{"G1"},
			expectedPatterns: map[string][]string{
				"G1": {"fc%", "%"},
			},
		},
		{
			name:           "duplicate_patterns_are_preserved_in_input_order",
			defaultGroup:   "",
			tags:           []string{"G1:fc001.pv", "G1:fc001.pv"},
			expectedGroups: []string{"G1"},
			expectedPatterns: map[string][]string{
				"G1": {"fc001.pv", "fc001.pv"},
			},
		},
		{
			name:         "unqualified_tag_without_default_group_fails",
			defaultGroup: "",
			tags:         []string{"G1:fc001.pv", "orphan.pv"},
			expectedErr:  historian.ErrNoGroupInAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// setup
			resolver, err := historian.NewAddressResolver(":", tt.defaultGroup)
			require.NoError(t, err)

			// act
			groupMap, resolveErr := resolver.Resolve(tt.tags)

			// assert
			if tt.expectedErr != nil {
				assert.ErrorIs(t, resolveErr, tt.expectedErr)
				return
			}

			require.NoError(t, resolveErr)
			assert.Equal(t, tt.expectedGroups, groupMap.Groups())
			assert.Equal(t, len(tt.expectedGroups), groupMap.Len())

			for group, patterns := range tt.expectedPatterns {
				assert.Equal(t, patterns, groupMap.Patterns(group))
			}
		})
	}
}

func Test_AddressResolver_Resolve_IsDeterministic(t *testing.T) {
	// setup
	resolver, err := historian.NewAddressResolver(":", "IP_AIDef")
	require.NoError(t, err)
	tags := []string{"G2:sp001.pv", "fc001.pv", "G1:tc*", "G2:sp002.pv"}

	// act
	first, firstErr := resolver.Resolve(tags)
	second, secondErr := resolver.Resolve(tags)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, first.Groups(), second.Groups())

	for _, group := range first.Groups() {
		assert.Equal(t, first.Patterns(group), second.Patterns(group))
	}
}

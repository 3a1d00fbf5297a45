package historian

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// GroupMap holds the result of resolving a batch of tag addresses: for every
// backend group it keeps the tag name patterns requested for that group, in
// the order they were first seen.
type GroupMap struct {
	order    []GroupNameString
	patterns map[GroupNameString][]TagPatternString
}

// Groups returns the resolved group names in first-seen order.
func (gm GroupMap) Groups() []GroupNameString {
	return gm.order
}

// Patterns returns the tag name patterns resolved for the given group.
func (gm GroupMap) Patterns(group GroupNameString) []TagPatternString {
	return gm.patterns[group]
}

// Len returns the number of distinct groups.
func (gm GroupMap) Len() int {
	return len(gm.order)
}

func (gm *GroupMap) add(group GroupNameString, pattern TagPatternString) {
	if gm.patterns == nil {
		gm.patterns = make(map[GroupNameString][]TagPatternString)
	}

	if _, seen := gm.patterns[group]; !seen {
		gm.order = append(gm.order, group)
	}

	gm.patterns[group] = append(gm.patterns[group], pattern)
}

// AddressResolver splits tag addresses of the form "group<delimiter>name"
// into their group and tag name parts. Addresses without a delimiter fall
// back to the configured default group.
type AddressResolver struct {
	delimiter    string
	defaultGroup string
}

// NewAddressResolver creates an AddressResolver with a validated delimiter.
// The delimiter must be a single character and must not collide with
// characters that are legal in tag names or patterns. The default group may
// be empty, in which case addresses without a group part are rejected.
func NewAddressResolver(delimiter string, defaultGroup string) (AddressResolver, error) {
	if utf8.RuneCountInString(delimiter) != 1 {
		return AddressResolver{}, ErrInvalidDelimiter
	}

	r, _ := utf8.DecodeRuneInString(delimiter)
	if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(".-_"+ClientWildcard+PatternWildcard, r) {
		return AddressResolver{}, ErrInvalidDelimiter
	}

	if strings.ContainsAny(defaultGroup, delimiter+ClientWildcard+PatternWildcard) {
		return AddressResolver{}, ErrInvalidDefaultGroup
	}

	return AddressResolver{delimiter: delimiter, defaultGroup: defaultGroup}, nil
}

// Delimiter returns the configured group/tag delimiter.
func (ar AddressResolver) Delimiter() string {
	return ar.delimiter
}

// DefaultGroup returns the configured default group, empty if none.
func (ar AddressResolver) DefaultGroup() string {
	return ar.defaultGroup
}

// Split resolves a single tag address into its group and tag name parts.
// Only the first delimiter occurrence splits, so tag names may contain the
// delimiter character themselves. Addresses without a delimiter resolve to
// the default group, or fail with ErrNoGroupInAddress if none is configured.
func (ar AddressResolver) Split(tagAddress string) (group string, name string, err error) {
	before, after, found := strings.Cut(tagAddress, ar.delimiter)
	if found {
		return before, after, nil
	}

	if ar.defaultGroup == "" {
		return "", "", ErrNoGroupInAddress
	}

	return ar.defaultGroup, tagAddress, nil
}

// Qualify builds the fully qualified address for a group and tag name.
// It is the inverse of Split for addresses that carry a group part.
func (ar AddressResolver) Qualify(group string, name string) string {
	return group + ar.delimiter + name
}

// NormalizePattern rewrites client wildcards in a tag name into the wildcard
// the backend understands in LIKE predicates. Only the tag name part of an
// address is ever a pattern, the group part is used verbatim.
func (ar AddressResolver) NormalizePattern(name string) TagPatternString {
	return strings.ReplaceAll(name, ClientWildcard, PatternWildcard)
}

// Resolve splits a batch of tag addresses and groups the normalized name
// patterns by backend group, preserving first-seen group order. It fails on
// the first address that cannot be resolved.
func (ar AddressResolver) Resolve(tagAddresses []string) (GroupMap, error) {
	var groupMap GroupMap

	for _, tagAddress := range tagAddresses {
		group, name, err := ar.Split(tagAddress)
		if err != nil {
			return GroupMap{}, err
		}

		groupMap.add(group, ar.NormalizePattern(name))
	}

	return groupMap, nil
}

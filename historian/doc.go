// Package historian provides the core abstractions and types for addressing
// and querying tags in a process-data historian.
//
// This package defines the fundamental value objects used across historian
// engine implementations, including tag address resolution, attribute name
// translation, and result shapes.
//
// Tag addressing follows the form "group<delimiter>name":
//   - The group identifies the backend record table holding the tag.
//   - Addresses without a group part fall back to a configured default group.
//   - The client wildcard "*" in the name part is rewritten to the backend
//     pattern wildcard "%" before matching.
//
// Key types:
//   - AddressResolver: splits and groups tag addresses by backend table
//   - AttributeMap: translates between canonical and native attribute names
//   - TagSet: a tag listing keyed by fully qualified address
//   - Frame: a wide, time-indexed table of measurement values
//
// Common usage pattern:
//
//	resolver, err := historian.NewAddressResolver(":", "IP_AIDef")
//	if err != nil {
//		// handle error
//	}
//
//	groupMap, err := resolver.Resolve([]string{"fc001.pv", "IP_DIDef:sp001.*"})
//	if err != nil {
//		// handle error
//	}
//
//	for _, group := range groupMap.Groups() {
//		patterns := groupMap.Patterns(group)
//		// build and execute one query per group
//	}
package historian

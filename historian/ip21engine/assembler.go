package ip21engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/prochist/ip21-connector-go/historian"
)

// timestampLayouts are the text shapes backends return for time columns when
// the driver does not surface a native time type. The historian's own text
// form ("19-AUG-09 10:59:59.9") is tried after the ODBC canonical forms.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"02-Jan-06 15:04:05.9",
	"02-Jan-06 15:04:05",
}

// resultAssembler turns native row sets into the canonical result shapes.
// All transforms are pure: no backend access, no mutation of inputs other
// than the destination TagSet.
type resultAssembler struct {
	resolver   historian.AddressResolver
	attributes historian.AttributeMap
}

// mergeListing merges one group's rows into the TagSet, keyed by fully
// qualified address. Tags with equal names in different groups produce
// distinct keys, so the union never collides.
func (ra resultAssembler) mergeListing(into historian.TagSet, group string, rows []historian.Row, proj projection) {
	for _, row := range rows {
		name := coerceString(row[historian.NativeName])

		entry := make(historian.Row, len(row)+1)
		for column, value := range row {
			entry[column] = value
		}
		entry[historian.FieldHasChildren] = false

		switch proj.mode {
		case projectAttributeList:
			entry = ra.selectRequested(entry, proj.attributes)

		case projectAllColumns:
			ra.enrichAllCanonical(entry)

		case projectNameOnly:
			// the native row already holds just the name column
		}

		into[ra.resolver.Qualify(group, name)] = entry
	}
}

// selectRequested enriches the row with the canonical names the caller asked
// for, then strips every attribute that was not requested. The HasChildren
// marker always survives.
func (ra resultAssembler) selectRequested(row historian.Row, requested []string) historian.Row {
	for _, name := range requested {
		if native, found := ra.attributes.NativeFor(name); found {
			row[name] = row[native]
		}
	}

	selected := make(historian.Row, len(requested)+1)
	selected[historian.FieldHasChildren] = row[historian.FieldHasChildren]

	for _, name := range requested {
		if value, present := row[name]; present {
			selected[name] = value
		}
	}

	return selected
}

// enrichAllCanonical adds every canonical attribute to the row, nil when the
// backing native column was not part of the result set.
func (ra resultAssembler) enrichAllCanonical(row historian.Row) {
	for _, canonical := range ra.attributes.CanonicalNames() {
		native, _ := ra.attributes.NativeFor(canonical)

		if value, present := row[native]; present {
			row[canonical] = value
		} else {
			row[canonical] = nil
		}
	}
}

// normalizeSamples converts native trend rows into canonical samples,
// parsing the time column into a genuine temporal value.
func (ra resultAssembler) normalizeSamples(rows []historian.Row) ([]historian.Sample, error) {
	samples := make([]historian.Sample, 0, len(rows))

	for _, row := range rows {
		timestamp, parseErr := coerceTimestamp(row[historian.NativeTrendTime])
		if parseErr != nil {
			return nil, errors.Join(historian.ErrInvalidTimestamp, parseErr)
		}

		samples = append(samples, historian.Sample{
			Name:      coerceString(row[historian.NativeName]),
			Timestamp: timestamp,
			Value:     row[historian.NativeTrendValue],
		})
	}

	return samples, nil
}

// coerceString renders a scanned cell as a string. Drivers without type
// information hand text columns back as byte slices.
func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// coerceTimestamp reads a scanned time cell, accepting native time values
// and the known text layouts.
func coerceTimestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTimestampText(v)
	case []byte:
		return parseTimestampText(string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot read %T as a timestamp", value)
	}
}

func parseTimestampText(text string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if timestamp, parseErr := time.Parse(layout, text); parseErr == nil {
			return timestamp, nil
		}
	}

	return time.Time{}, fmt.Errorf("no known timestamp layout matches %q", text)
}

package helper

import (
	"time"
)

// Seeded tag fixtures mirroring a small InfoPlus.21 installation: two analog
// controller tags in IP_AIDef and one discrete tag in IP_DIDef.
const (
	AnalogGroup   = "IP_AIDef"
	DiscreteGroup = "IP_DIDef"

	// TrendPointCount is the number of trend samples seeded per tag.
	TrendPointCount = 100

	// TrendStepSeconds is the spacing of seeded trend samples.
	TrendStepSeconds = 1
)

// TagFixture describes one seeded historian tag with its attribute values.
type TagFixture struct {
	Group       string
	Name        string
	Description string
	EngUnits    string
}

// Address returns the fully qualified address of the fixture tag.
func (f TagFixture) Address(delimiter string) string {
	return f.Group + delimiter + f.Name
}

// FixtureTemperatureTag returns the analog temperature controller tag.
func FixtureTemperatureTag() TagFixture {
	return TagFixture{
		Group:       AnalogGroup,
		Name:        "tc001.pv",
		Description: "Temp Controller",
		EngUnits:    "DEG",
	}
}

// FixtureFlowTag returns the analog flow controller tag, which has no
// engineering units configured.
func FixtureFlowTag() TagFixture {
	return TagFixture{
		Group:       AnalogGroup,
		Name:        "fc001.pv",
		Description: "Flow Controller",
		EngUnits:    "",
	}
}

// FixtureValveTag returns the discrete valve tag.
func FixtureValveTag() TagFixture {
	return TagFixture{
		Group:       DiscreteGroup,
		Name:        "sp001.pv",
		Description: "Valve",
		EngUnits:    "",
	}
}

// AllFixtureTags returns every seeded tag.
func AllFixtureTags() []TagFixture {
	return []TagFixture{FixtureTemperatureTag(), FixtureFlowTag(), FixtureValveTag()}
}

// FixtureTrendStart returns the timestamp of the first seeded trend sample.
func FixtureTrendStart() time.Time {
	return time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// FixtureTrendTime returns the timestamp of the i-th seeded trend sample.
func FixtureTrendTime(i int) time.Time {
	return FixtureTrendStart().Add(time.Duration(i) * TrendStepSeconds * time.Second)
}

// FixtureTrendEnd returns the timestamp of the last seeded trend sample.
func FixtureTrendEnd() time.Time {
	return FixtureTrendTime(TrendPointCount - 1)
}

// FixtureTrendValue returns the value of the i-th seeded trend sample.
// The series is deterministic so tests can assert exact cells.
func FixtureTrendValue(i int) float64 {
	return float64(i) / 2
}

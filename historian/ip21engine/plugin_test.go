package ip21engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prochist/ip21-connector-go/historian"
	"github.com/prochist/ip21-connector-go/historian/ip21engine"
)

func Test_Plugin_ConnectorIdentity(t *testing.T) {
	assert.Equal(t, "aspen-ip21", ip21engine.ConnectorType)
	assert.Equal(t, "historian", ip21engine.ConnectorCategory)
}

func Test_Plugin_SupportedOperations_NameThePeriodAndMetadataReads(t *testing.T) {
	// scalar reads and writes are deliberately absent, the archive is read over periods
	assert.Equal(t,
		[]string{ip21engine.OperationNameReadTagPeriod, ip21engine.OperationNameReadTagMeta},
		ip21engine.SupportedOperations())
}

func Test_Plugin_SupportedFilters_CoverTheListingDimensions(t *testing.T) {
	assert.Equal(t,
		[]string{ip21engine.FilterName, ip21engine.FilterTagsFile, ip21engine.FilterTime},
		ip21engine.SupportedFilters())
}

func Test_Plugin_DefaultAttributeSpecs_DescribeTheBrowsableAttributes(t *testing.T) {
	// act
	specs := ip21engine.DefaultAttributeSpecs()

	// assert
	assert.Len(t, specs, 5)
	assert.Equal(t, historian.CanonicalName, specs[0].Attribute)
	assert.Equal(t, "Tag Name", specs[0].DisplayName)

	for _, spec := range specs {
		assert.Equal(t, "str", spec.Type)
		assert.NotEmpty(t, spec.DisplayName)
	}
}

func Test_Plugin_ListConnectionFields_DescribesTheConnectionForm(t *testing.T) {
	// act
	fields := ip21engine.ListConnectionFields()

	// assert
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		keys = append(keys, field.Key)
	}
	assert.Equal(t, []string{"server_host", "odbc_driver", "connection_string", "default_group"}, keys)

	assert.False(t, fields[0].Optional, "the server host is mandatory")
	assert.Equal(t, ip21engine.DefaultODBCDriverName, fields[1].DefaultValue)
	assert.True(t, fields[2].Optional)
	assert.True(t, fields[3].Optional)
}

func Test_Plugin_ListRegisteredTargets_IsEmptyWithoutADiscoveryProtocol(t *testing.T) {
	assert.Empty(t, ip21engine.ListRegisteredTargets())
}

func Test_Plugin_TargetInfoFor_NamesTheTargetAfterItsHost(t *testing.T) {
	info := ip21engine.TargetInfoFor("histsrv")

	assert.Equal(t, "histsrv", info.Name)
	assert.Empty(t, info.Endpoints)
}

func Test_Plugin_BuildConnectionString_AssemblesTheODBCDescriptor(t *testing.T) {
	// act
	descriptor := ip21engine.BuildConnectionString("histsrv", 10020, 60)

	// assert
	assert.Equal(t, "DRIVER=AspenTech SQLplus;HOST=histsrv;PORT=10020;TIMEOUT=60;MAX_ROWS=10", descriptor)
}

func Test_Plugin_BuildConnectionString_FallsBackToTheServiceDefaults(t *testing.T) {
	// act
	descriptor := ip21engine.BuildConnectionString("histsrv", 0, 0)

	// assert
	assert.Equal(t, "DRIVER=AspenTech SQLplus;HOST=histsrv;PORT=10014;TIMEOUT=128;MAX_ROWS=10", descriptor)
}

func Test_Plugin_BuildConnectionString_ProducesANativeDialectDescriptor(t *testing.T) {
	// act
	descriptor := ip21engine.BuildConnectionString("histsrv", 0, 0)

	// assert
	assert.Equal(t, ip21engine.DialectNativeHistorian, ip21engine.DetectDialect(descriptor))
}

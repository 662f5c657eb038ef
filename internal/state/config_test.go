package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbus/ppsmon/log2"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{
		"ppsmon.hcl": `
serial { device = "/dev/ttyAMA0" baud = 4800 }
power { enable = true chip = "/dev/gpiochip0" line = 17 }
monitor { nmessage = 100 record_size = 11 }
output {
  csv { enable = true header = true path = "/tmp/pps.csv" }
  mqtt { enable = true broker = "tcp://broker:1883" }
}
`,
	})
	c, err := ReadConfig(log, fs, "ppsmon.hcl")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", c.Serial.Device)
	assert.Equal(t, 4800, c.Serial.Baud)
	assert.True(t, c.Power.Enable)
	assert.Equal(t, 17, c.Power.Line)
	assert.Equal(t, 100, c.Monitor.NMessage)
	assert.Equal(t, 11, c.Monitor.RecordSize)
	assert.True(t, c.Output.CSV.Enable)
	assert.Equal(t, "/tmp/pps.csv", c.Output.CSV.Path)
	assert.Equal(t, "tcp://broker:1883", c.Output.Mqtt.Broker)
	// defaults fill what the file left out
	assert.Equal(t, DefaultNetdataEverySec, c.Output.Netdata.UpdateEverySec)
	assert.Equal(t, "pps", c.Output.Mqtt.TopicPrefix)
}

func TestReadConfigDefaults(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{"empty.hcl": ""})
	c, err := ReadConfig(log, fs, "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, DefaultDevice, c.Serial.Device)
	assert.Equal(t, DefaultBaud, c.Serial.Baud)
	assert.False(t, c.Power.Enable)
}

func TestReadConfigInclude(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{
		"base.hcl": `
include "site.hcl" {}
include "absent.hcl" { optional = true }
serial { baud = 2400 }
`,
		"site.hcl": `serial { device = "/dev/ttyUSB0" }`,
	})
	c, err := ReadConfig(log, fs, "base.hcl")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", c.Serial.Device)
	assert.Equal(t, 2400, c.Serial.Baud)
}

func TestReadConfigRequiredMissing(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{
		"base.hcl": `include "absent.hcl" {}`,
	})
	_, err := ReadConfig(log, fs, "base.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.hcl")
}

func TestReadConfigIncludeLoop(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{
		"a.hcl": `include "b.hcl" {}`,
		"b.hcl": `include "a.hcl" {}`,
	})
	_, err := ReadConfig(log, fs, "a.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loop")
}
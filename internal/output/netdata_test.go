package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbus/ppsmon/hardware/pps"
)

func fullRecord() pps.Record {
	return pps.Record{
		"Set room temp":          {String: "21.0", Raw: 0x0540},
		"Actual room temp":       {String: "25.0", Raw: 0x0640},
		"Outside temp":           {String: "10.0", Raw: 0x0280},
		"Set DHW temp":           {String: "50.0", Raw: 0x0c80},
		"Actual DHW temp":        {String: "55.0", Raw: 0x0dc0},
		"Set present room temp":  {String: "20.0", Raw: 0x0500},
		"Set absent room temp":   {String: "16.0", Raw: 0x0400},
		"Present":                {String: "true", Raw: 1},
		"Mode":                   {String: "timed", Raw: 0},
		"Authority":              {String: "remote", Raw: 0},
		"Remaining absence days": {String: "0", Raw: 0},
	}
}

func TestNetdataConfigure(t *testing.T) {
	t.Parallel()
	b := bytes.NewBuffer(nil)
	e := NewNetdata(b, 20*time.Second)
	require.NoError(t, e.Configure())
	assert.Contains(t, b.String(), "CHART Heating.ambient")
	assert.Contains(t, b.String(), "DIMENSION t_outside 'Outside temperature' absolute 1 64")
}

func TestNetdataRecord(t *testing.T) {
	t.Parallel()
	b := bytes.NewBuffer(nil)
	e := NewNetdata(b, 20*time.Second)
	now := time.Unix(1700000000, 0)
	e.now = func() time.Time { return now }

	require.NoError(t, e.Record(fullRecord()))
	out := b.String()
	// first run has no previous interval
	assert.Contains(t, out, "BEGIN Heating.ambient 0\n")
	assert.Contains(t, out, "SET t_room_actual = 1600\n")
	assert.Contains(t, out, "SET t_outside = 640\n")
	assert.Contains(t, out, "SET present = 1\n")
	assert.Contains(t, out, "SET mode = 0\n")
	// no flow/boiler reading in this cycle, whole charts are skipped
	assert.NotContains(t, out, "Heating.flow")
	assert.NotContains(t, out, "Heating.boiler")
	assert.Equal(t, 6, strings.Count(out, "BEGIN "))
	assert.Equal(t, 6, strings.Count(out, "END\n"))
}

func TestNetdataRateLimit(t *testing.T) {
	t.Parallel()
	b := bytes.NewBuffer(nil)
	e := NewNetdata(b, 20*time.Second)
	now := time.Unix(1700000000, 0)
	e.now = func() time.Time { return now }

	require.NoError(t, e.Record(fullRecord()))
	first := b.Len()

	now = now.Add(5 * time.Second)
	require.NoError(t, e.Record(fullRecord()))
	assert.Equal(t, first, b.Len(), "within the interval records are dropped")

	now = now.Add(15 * time.Second)
	require.NoError(t, e.Record(fullRecord()))
	assert.Contains(t, b.String()[first:], "BEGIN Heating.ambient 20000000\n")
}

func TestNetdataOptionalCharts(t *testing.T) {
	t.Parallel()
	b := bytes.NewBuffer(nil)
	e := NewNetdata(b, time.Second)
	e.now = time.Now

	rec := fullRecord()
	rec["Actual flow temp"] = pps.Value{String: "80.0", Raw: 0x1400}
	rec["Actual boiler temp"] = pps.Value{String: "84.0", Raw: 0x1500}
	require.NoError(t, e.Record(rec))
	assert.Contains(t, b.String(), "SET t_heating = 5120\n")
	assert.Contains(t, b.String(), "SET t_boiler = 5376\n")
}

package monitor

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbus/ppsmon/hardware/pps"
	"github.com/hbus/ppsmon/helpers"
	"github.com/hbus/ppsmon/internal/state"
	"github.com/hbus/ppsmon/log2"
)

type captureEmitter struct {
	readings []pps.Reading
	records  []pps.Record
	closed   bool
}

func (ce *captureEmitter) Reading(r *pps.Reading) error {
	ce.readings = append(ce.readings, *r)
	return nil
}
func (ce *captureEmitter) Record(rec pps.Record) error {
	ce.records = append(ce.records, rec)
	return nil
}
func (ce *captureEmitter) Close() error { ce.closed = true; return nil }

// frames joins payload hexes into a mock port script, appending checksum and
// inter-frame silence to each. A bare "17" stays the one-byte idle frame.
func frames(payloads ...string) string {
	ss := make([]string, 0, len(payloads)*2)
	for _, p := range payloads {
		if p == "17" {
			ss = append(ss, p, "-")
			continue
		}
		ss = append(ss, fmt.Sprintf("%s%02x", p, pps.Checksum(helpers.MustHex(p))), "-")
	}
	return strings.Join(ss, " ")
}

func testMonitor(t testing.TB, script string, tune func(c *state.Config)) (context.Context, *Monitor, *captureEmitter, *state.Global) {
	log := log2.NewTest(t, log2.LDebug)
	ctx, g := state.NewContext(log)
	c := &state.Config{}
	if tune != nil {
		tune(c)
	}
	g.MustInit(ctx, c)
	ce := &captureEmitter{}
	return ctx, New(g, pps.NewMockPort(script), ce), ce, g
}

func TestRunMessageBudget(t *testing.T) {
	t.Parallel()
	script := frames(
		"17",
		"fd28000000000640",
		"fdee000000000640",
		"1d49000000000001",
	)
	ctx, m, ce, _ := testMonitor(t, script, func(c *state.Config) {
		c.Monitor.NMessage = 3
	})
	require.NoError(t, m.Run(ctx))

	require.Len(t, ce.readings, 3)
	assert.Equal(t, "Actual room temp", ce.readings[0].Label)
	assert.False(t, ce.readings[1].Known)
	assert.Equal(t, "Mode", ce.readings[2].Label)

	stat := m.Stat()
	assert.Equal(t, int64(3), stat.Telegram.Value())
	assert.Equal(t, int64(1), stat.Idle.Value())
	assert.Equal(t, int64(1), stat.Unknown.Value())
}

func TestRunDiagnostics(t *testing.T) {
	t.Parallel()
	script := strings.Join([]string{
		frames("fd28000000000640"),
		"fd280000000006 -",     // short frame
		"fd280000000006400f -", // bad checksum
		frames("1d49000000000001"),
	}, " ")
	ctx, m, ce, _ := testMonitor(t, script, func(c *state.Config) {
		c.Monitor.NMessage = 2
	})
	require.NoError(t, m.Run(ctx))

	require.Len(t, ce.readings, 2, "rejected frames are not messages")
	stat := m.Stat()
	assert.Equal(t, int64(1), stat.LengthError.Value())
	assert.Equal(t, int64(1), stat.ChecksumError.Value())
	assert.Equal(t, int64(2), stat.Telegram.Value())
}

func TestRunCompleteRecord(t *testing.T) {
	t.Parallel()
	payloads := []string{
		"fd08000000000500",
		"fd09000000000400",
		"fd0b000000000c80",
		"1d19000000000540",
		"fd28000000000640",
		"1d29000000000280",
		"1d2b000000000dc0",
		"1d2e000000001500",
		"fd48000000000000",
		"1d49000000000000",
		"fd4c000000000001",
	}
	ctx, m, ce, _ := testMonitor(t, frames(payloads...), func(c *state.Config) {
		c.Monitor.NMessage = len(payloads)
	})
	require.NoError(t, m.Run(ctx))

	require.Len(t, ce.records, 1)
	rec := ce.records[0]
	assert.Len(t, rec, pps.DefaultRecordSize)
	assert.Equal(t, "25.0", rec["Actual room temp"].String)
	assert.Equal(t, "timed", rec["Mode"].String)
	assert.Equal(t, int64(1), m.Stat().Record.Value())
}

func TestRunStop(t *testing.T) {
	t.Parallel()
	t.Run("before-start", func(t *testing.T) {
		ctx, m, ce, g := testMonitor(t, frames("fd28000000000640"), nil)
		g.Stop()
		assert.NoError(t, m.Run(ctx))
		assert.Len(t, ce.readings, 0)
	})
	t.Run("while-idle", func(t *testing.T) {
		// silent line, only stop gets us out
		ctx, m, _, g := testMonitor(t, "...", nil)
		done := make(chan error, 1)
		go func() { done <- m.Run(ctx) }()
		g.Stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("monitor did not stop")
		}
	})
}

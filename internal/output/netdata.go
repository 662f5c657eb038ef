package output

import (
	"fmt"
	"io"
	"time"

	"github.com/hbus/ppsmon/hardware/pps"
)

// Netdata speaks the netdata external-plugin line protocol: a CHART
// configuration block once on start, then BEGIN/SET/END value blocks per
// completed record, at most once per update interval. Temperatures are sent
// raw (units of 1/64) with the divisor declared in the DIMENSION lines.
type Netdata struct {
	W           io.Writer
	UpdateEvery time.Duration
	now         func() time.Time

	lastRun time.Time
}

func NewNetdata(w io.Writer, updateEvery time.Duration) *Netdata {
	return &Netdata{W: w, UpdateEvery: updateEvery, now: time.Now}
}

const netdataCharts = `
CHART Heating.ambient 'Ambient T' 'Ambient temperature' 'Celsius' Temperatures Heating line 110
DIMENSION t_room_set 'Set room temperature' absolute 1 64
DIMENSION t_room_actual 'Actual room temperature' absolute 1 64
DIMENSION t_outside 'Outside temperature' absolute 1 64

CHART Heating.dhw 'Domestic hot water T' 'DHW temperature' 'Celsius' Temperatures Heating line 120
DIMENSION t_dhw_set 'Set DHW temperature' absolute 1 64
DIMENSION t_dhw_actual 'Actual DHW temperature' absolute 1 64

CHART Heating.flow 'Heating water T' 'Heating temperature' 'Celsius' Temperatures Heating line 130
DIMENSION t_heating 'Heating temperature' absolute 1 64

CHART Heating.boiler 'Boiler T' 'Boiler temperature' 'Celsius' Temperatures Heating line 135
DIMENSION t_boiler 'Heating temperature' absolute 1 64

CHART Heating.set_point 'Set temperatures' 'Set temperatures' 'Celsius' Temperatures Heating line 140
DIMENSION t_present 'Present room temperature' absolute 1 64
DIMENSION t_absent 'Absent room temperature' absolute 1 64

CHART Heating.present 'Present' 'Present' 'False/True' Control Heating line 150
DIMENSION present 'Present' absolute

CHART Heating.authority 'Authority' 'Authority' 'Remote/Controller' Control Heating line 160
DIMENSION authority 'Authority' absolute

CHART Heating.mode 'Mode' 'Mode' 'Timed/Manual/Off' Control Heating line 170
DIMENSION mode 'Mode' 'Mode' 'Timed/Manual/Off'
`

// Configure writes the supported chart definitions. Call once before the
// first record.
func (n *Netdata) Configure() error {
	_, err := io.WriteString(n.W, netdataCharts)
	return err
}

func (n *Netdata) Reading(r *pps.Reading) error { return nil }

func (n *Netdata) Record(rec pps.Record) error {
	now := n.now()
	var sinceLast time.Duration
	if !n.lastRun.IsZero() {
		sinceLast = now.Sub(n.lastRun)
		if sinceLast < n.UpdateEvery {
			return nil
		}
	}
	n.lastRun = now

	// netdata wants the elapsed interval in integer microseconds
	dt := sinceLast.Microseconds()

	charts := []struct {
		name     string
		optional bool
		dims     [][2]string // dimension, record label
	}{
		{"Heating.ambient", false, [][2]string{
			{"t_room_set", "Set room temp"},
			{"t_room_actual", "Actual room temp"},
			{"t_outside", "Outside temp"},
		}},
		{"Heating.dhw", false, [][2]string{
			{"t_dhw_set", "Set DHW temp"},
			{"t_dhw_actual", "Actual DHW temp"},
		}},
		{"Heating.flow", true, [][2]string{
			{"t_heating", "Actual flow temp"},
		}},
		{"Heating.boiler", true, [][2]string{
			{"t_boiler", "Actual boiler temp"},
		}},
		{"Heating.set_point", false, [][2]string{
			{"t_present", "Set present room temp"},
			{"t_absent", "Set absent room temp"},
		}},
		{"Heating.present", false, [][2]string{
			{"present", "Present"},
		}},
		{"Heating.mode", false, [][2]string{
			{"mode", "Mode"},
		}},
		{"Heating.authority", false, [][2]string{
			{"authority", "Authority"},
		}},
	}

	for _, chart := range charts {
		if chart.optional {
			// flow/boiler readings can be sentinel-suppressed a whole cycle
			if _, ok := rec[chart.dims[0][1]]; !ok {
				continue
			}
		}
		if _, err := fmt.Fprintf(n.W, "BEGIN %s %d\n", chart.name, dt); err != nil {
			return err
		}
		for _, dim := range chart.dims {
			v, ok := rec[dim[1]]
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(n.W, "SET %s = %d\n", dim[0], v.Raw); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(n.W, "END\n"); err != nil {
			return err
		}
	}
	return nil
}

func (n *Netdata) Close() error { return nil }

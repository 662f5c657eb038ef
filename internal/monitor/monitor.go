// Package monitor runs the acquisition pipeline: read frame, validate,
// decode, emit, aggregate. One goroutine owns the whole chain; the record
// handoff to emitters is a move, never shared state.
package monitor

import (
	"context"

	"github.com/juju/errors"

	"github.com/hbus/ppsmon/hardware/pps"
	"github.com/hbus/ppsmon/internal/output"
	"github.com/hbus/ppsmon/internal/state"
	"github.com/hbus/ppsmon/log2"
)

type Monitor struct {
	log  *log2.Log
	fr   *pps.FrameReader
	agg  *pps.Aggregator
	emit output.Stack
	stat pps.Stat

	// 0 = run until stopped
	nmessage int
	stop     <-chan struct{}
}

func New(g *state.Global, port pps.Porter, emitters ...output.Emitter) *Monitor {
	stop := g.Alive.StopChan()
	return &Monitor{
		log:      g.Log,
		fr:       pps.NewFrameReader(port, stop),
		agg:      pps.NewAggregator(g.Config.Monitor.RecordSize),
		emit:     output.Stack(emitters),
		nmessage: g.Config.Monitor.NMessage,
		stop:     stop,
	}
}

func (m *Monitor) Stat() *pps.Stat { return &m.stat }

// Run processes telegrams until the message budget is spent or stop is
// requested. Framing problems are diagnostics, not failures; only a broken
// byte source ends the loop with an error.
func (m *Monitor) Run(ctx context.Context) error {
	count := 0
	for {
		select {
		case <-m.stop:
			m.log.Debugf("monitor stop requested stat=%s", m.stat.String())
			return nil
		default:
		}

		frame, err := m.fr.ReadFrame()
		if err != nil {
			if errors.Cause(err) == pps.ErrStopped {
				return nil
			}
			return errors.Annotate(err, "pps source")
		}

		t, err := pps.ParseFrame(frame)
		if err != nil {
			switch err.(type) {
			case pps.ErrInvalidLength:
				m.stat.LengthError.Add(1)
			case pps.ErrInvalidChecksum:
				m.stat.ChecksumError.Add(1)
			}
			m.log.Errorf("%v", err)
			continue
		}
		if t == nil {
			m.stat.Idle.Add(1)
			continue
		}
		m.stat.Telegram.Add(1)

		r := pps.Decode(t)
		if !r.Known {
			m.stat.Unknown.Add(1)
		}
		if err = m.emit.Reading(&r); err != nil {
			m.log.Errorf("emit reading label=%s: %v", r.Label, err)
		}
		if rec, complete := m.agg.Offer(&r); complete {
			m.stat.Record.Add(1)
			if err = m.emit.Record(rec); err != nil {
				m.log.Errorf("emit record: %v", err)
			}
		}

		count++
		if m.nmessage > 0 && count >= m.nmessage {
			m.log.Debugf("monitor nmessage=%d done stat=%s", m.nmessage, m.stat.String())
			return nil
		}
	}
}

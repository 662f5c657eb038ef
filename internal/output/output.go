// Package output renders decoded bus readings for its consumers: operator
// text, CSV rows, netdata external-plugin protocol, MQTT. Emitters contain
// no protocol logic; they only format what the pipeline hands them.
package output

import (
	"github.com/hbus/ppsmon/hardware/pps"
	"github.com/hbus/ppsmon/helpers"
)

// Emitter receives every decoded reading and every completed record. An
// emitter ignores the shape it does not render.
type Emitter interface {
	Reading(r *pps.Reading) error
	Record(rec pps.Record) error
	Close() error
}

// Stack fans out to multiple emitters, folding their errors.
type Stack []Emitter

func (s Stack) Reading(r *pps.Reading) error {
	errs := make([]error, 0, len(s))
	for _, e := range s {
		errs = append(errs, e.Reading(r))
	}
	return helpers.FoldErrors(errs)
}

func (s Stack) Record(rec pps.Record) error {
	errs := make([]error, 0, len(s))
	for _, e := range s {
		errs = append(errs, e.Record(rec))
	}
	return helpers.FoldErrors(errs)
}

func (s Stack) Close() error {
	errs := make([]error, 0, len(s))
	for _, e := range s {
		errs = append(errs, e.Close())
	}
	return helpers.FoldErrors(errs)
}

package pps

import "sort"

// DefaultRecordSize is the number of distinct known labels that together
// make one full telemetry cycle of the bus. The protocol has no explicit
// end-of-cycle marker; completeness is inferred by label-set cardinality,
// which is best-effort if the bus ever reorders or drops a label.
const DefaultRecordSize = 11

type Value struct {
	String string
	Raw    int32
}

// Record maps reading label to its most recent value within one cycle.
type Record map[string]Value

// Labels in deterministic (lexicographic) order, for stable column output.
func (r Record) Labels() []string {
	ls := make([]string, 0, len(r))
	for label := range r {
		ls = append(ls, label)
	}
	sort.Strings(ls)
	return ls
}

// Aggregator accumulates known readings into a Record, overwriting by label,
// and yields the record once the configured cardinality is reached. The
// yielded record is a move: the aggregator starts the next cycle empty.
type Aggregator struct {
	size int
	m    Record
}

func NewAggregator(size int) *Aggregator {
	if size <= 0 {
		size = DefaultRecordSize
	}
	return &Aggregator{size: size, m: make(Record, size)}
}

func (a *Aggregator) Len() int { return len(a.m) }

func (a *Aggregator) Offer(r *Reading) (Record, bool) {
	if !r.Known {
		return nil, false
	}
	a.m[r.Label] = Value{String: r.Value, Raw: r.Raw}
	if len(a.m) < a.size {
		return nil, false
	}
	complete := a.m
	a.m = make(Record, a.size)
	return complete, true
}

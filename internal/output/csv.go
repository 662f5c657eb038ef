package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/juju/errors"

	"github.com/hbus/ppsmon/hardware/pps"
)

// CSV writes one row per completed record: unix time, then values over the
// record's lexicographically sorted labels for stable column order.
type CSV struct {
	W      io.Writer
	Header bool
	now    func() time.Time

	// set only by NewCSVFile; Close must not touch writers it did not open
	f           *os.File
	wroteHeader bool
}

func NewCSV(w io.Writer, header bool) *CSV {
	return &CSV{W: w, Header: header, now: time.Now}
}

// NewCSVFile appends to path and owns the file handle.
func NewCSVFile(path string, header bool) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Annotatef(err, "csv output path=%s", path)
	}
	c := NewCSV(f, header)
	c.f = f
	return c, nil
}

func (c *CSV) Reading(r *pps.Reading) error { return nil }

func (c *CSV) Record(rec pps.Record) error {
	labels := rec.Labels()
	if c.Header && !c.wroteHeader {
		if _, err := fmt.Fprintf(c.W, "time,%s\n", strings.Join(labels, ",")); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	row := make([]string, 0, len(labels)+1)
	row = append(row, fmt.Sprintf("%d", c.now().Unix()))
	for _, label := range labels {
		row = append(row, rec[label].String)
	}
	_, err := fmt.Fprintf(c.W, "%s\n", strings.Join(row, ","))
	return err
}

func (c *CSV) Close() error {
	if c.f != nil {
		return c.f.Close()
	}
	return nil
}

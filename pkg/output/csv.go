package output

import (
	"encoding/csv"
	"io"
	"strconv"
)

type csvWriter struct {
	w      *csv.Writer
	closer io.Closer
}

func newCSVWriter(w io.Writer, closer io.Closer) *csvWriter {
	return &csvWriter{w: csv.NewWriter(w), closer: closer}
}

func (c *csvWriter) WriteHeader() error {
	return c.w.Write([]string{"ipv4", "mac", "vendor", "hostname", "latency_ms"})
}

func (c *csvWriter) WriteEntry(entry Entry) error {
	return c.w.Write([]string{
		entry.IP,
		entry.MAC,
		entry.Vendor,
		entry.Hostname,
		strconv.FormatFloat(millis(entry.Latency), 'f', 3, 64),
	})
}

func (c *csvWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *csvWriter) Close() error {
	return closeIf(c.closer)
}

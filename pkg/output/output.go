// Package output renders scan results as a plain table, JSON, YAML or CSV.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Format is an output format name
type Format string

const (
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// Formats lists the supported formats
var Formats = []Format{FormatPlain, FormatJSON, FormatYAML, FormatCSV}

// ParseFormat returns the format named s, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (supported: plain, json, yaml, csv)", s)
}

// Entry is one answered host with the details attached after the scan
type Entry struct {
	IP       string        `json:"ipv4" yaml:"ipv4"`
	MAC      string        `json:"mac" yaml:"mac"`
	Vendor   string        `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Hostname string        `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Latency  time.Duration `json:"-" yaml:"-"`
}

// Stats summarizes a scan
type Stats struct {
	ID             string
	Interface      string
	Network        string
	Duration       time.Duration
	RequestsSent   uint64
	RepliesMatched uint64
	FramesFiltered uint64
	Interrupted    bool
	TimedOut       bool
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader() error
	WriteEntry(entry Entry) error
	WriteFooter(stats Stats) error
	Close() error
}

// Options tunes the writers
type Options struct {
	NoColor bool
	// Numeric marks hostnames as disabled in the plain table
	Numeric bool
	// ShowVendor adds the vendor column to the plain table
	ShowVendor bool
}

// New returns a writer for format writing to w. Closing the writer closes w
// when it is an io.Closer other than os.Stdout.
func New(format Format, w io.Writer, options Options) (Writer, error) {
	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stdout {
		closer = c
	}
	switch format {
	case FormatPlain, "":
		return newPlainWriter(w, closer, options), nil
	case FormatJSON:
		return &jsonWriter{w: w, closer: closer}, nil
	case FormatYAML:
		return &yamlWriter{w: w, closer: closer}, nil
	case FormatCSV:
		return newCSVWriter(w, closer), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// Open returns the destination for path, or os.Stdout when path is empty
func Open(path string) (io.Writer, error) {
	if path == "" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func closeIf(c io.Closer) error {
	if c != nil {
		return c.Close()
	}
	return nil
}

package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlEntry struct {
	Entry     `yaml:",inline"`
	LatencyMs float64 `yaml:"latency_ms"`
}

type yamlReport struct {
	ID             string      `yaml:"id"`
	Interface      string      `yaml:"interface"`
	Network        string      `yaml:"network"`
	DurationMs     int64       `yaml:"duration_ms"`
	RequestsSent   uint64      `yaml:"requests_sent"`
	RepliesMatched uint64      `yaml:"replies_matched"`
	FramesFiltered uint64      `yaml:"frames_filtered"`
	Interrupted    bool        `yaml:"interrupted"`
	TimedOut       bool        `yaml:"timed_out"`
	Results        []yamlEntry `yaml:"results"`
}

type yamlWriter struct {
	w       io.Writer
	closer  io.Closer
	entries []yamlEntry
}

func (y *yamlWriter) WriteHeader() error { return nil }

func (y *yamlWriter) WriteEntry(entry Entry) error {
	y.entries = append(y.entries, yamlEntry{Entry: entry, LatencyMs: millis(entry.Latency)})
	return nil
}

func (y *yamlWriter) WriteFooter(stats Stats) error {
	report := yamlReport{
		ID:             stats.ID,
		Interface:      stats.Interface,
		Network:        stats.Network,
		DurationMs:     stats.Duration.Milliseconds(),
		RequestsSent:   stats.RequestsSent,
		RepliesMatched: stats.RepliesMatched,
		FramesFiltered: stats.FramesFiltered,
		Interrupted:    stats.Interrupted,
		TimedOut:       stats.TimedOut,
		Results:        y.entries,
	}
	if report.Results == nil {
		report.Results = []yamlEntry{}
	}
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func (y *yamlWriter) Close() error {
	return closeIf(y.closer)
}

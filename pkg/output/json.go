package output

import (
	"encoding/json"
	"io"
)

type jsonEntry struct {
	Entry
	LatencyMs float64 `json:"latency_ms"`
}

type jsonReport struct {
	ID             string      `json:"id"`
	Interface      string      `json:"interface"`
	Network        string      `json:"network"`
	DurationMs     int64       `json:"duration_ms"`
	RequestsSent   uint64      `json:"requests_sent"`
	RepliesMatched uint64      `json:"replies_matched"`
	FramesFiltered uint64      `json:"frames_filtered"`
	Interrupted    bool        `json:"interrupted"`
	TimedOut       bool        `json:"timed_out"`
	Results        []jsonEntry `json:"results"`
}

// jsonWriter buffers entries and writes a single document on the footer
type jsonWriter struct {
	w       io.Writer
	closer  io.Closer
	entries []jsonEntry
}

func (j *jsonWriter) WriteHeader() error { return nil }

func (j *jsonWriter) WriteEntry(entry Entry) error {
	j.entries = append(j.entries, jsonEntry{Entry: entry, LatencyMs: millis(entry.Latency)})
	return nil
}

func (j *jsonWriter) WriteFooter(stats Stats) error {
	report := jsonReport{
		ID:             stats.ID,
		Interface:      stats.Interface,
		Network:        stats.Network,
		DurationMs:     stats.Duration.Milliseconds(),
		RequestsSent:   stats.RequestsSent,
		RepliesMatched: stats.RepliesMatched,
		FramesFiltered: stats.FramesFiltered,
		Interrupted:    stats.Interrupted,
		TimedOut:       stats.TimedOut,
		Results:        j.entries,
	}
	if report.Results == nil {
		report.Results = []jsonEntry{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (j *jsonWriter) Close() error {
	return closeIf(j.closer)
}

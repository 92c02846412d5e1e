package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

var (
	testEntries = []Entry{
		{IP: "192.168.1.1", MAC: "02:00:00:00:00:01", Vendor: "IGT", Hostname: "router.lan", Latency: 1500 * time.Microsecond},
		{IP: "192.168.1.7", MAC: "02:00:00:00:00:07", Latency: 3 * time.Millisecond},
	}
	testStats = Stats{
		ID:             "cs2d1s3ndkq8e6sj0lmg",
		Interface:      "eth0",
		Network:        "192.168.1.0/24",
		Duration:       2500 * time.Millisecond,
		RequestsSent:   254,
		RepliesMatched: 3,
		FramesFiltered: 12,
	}
)

func render(t *testing.T, format Format, options Options) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := New(format, &buf, options)
	if err != nil {
		t.Fatalf("New(%s) error = %v", format, err)
	}
	if err := w.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	for _, entry := range testEntries {
		if err := w.WriteEntry(entry); err != nil {
			t.Fatalf("WriteEntry() error = %v", err)
		}
	}
	if err := w.WriteFooter(testStats); err != nil {
		t.Fatalf("WriteFooter() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.String()
}

func TestJSONWriter(t *testing.T) {
	out := render(t, FormatJSON, Options{})
	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON: %s", out)
	}

	tests := []struct {
		path string
		want string
	}{
		{path: "id", want: testStats.ID},
		{path: "network", want: "192.168.1.0/24"},
		{path: "duration_ms", want: "2500"},
		{path: "requests_sent", want: "254"},
		{path: "frames_filtered", want: "12"},
		{path: "interrupted", want: "false"},
		{path: "results.#", want: "2"},
		{path: "results.0.ipv4", want: "192.168.1.1"},
		{path: "results.0.vendor", want: "IGT"},
		{path: "results.0.latency_ms", want: "1.5"},
		{path: "results.1.mac", want: "02:00:00:00:00:07"},
	}
	for _, tt := range tests {
		if got := gjson.Get(out, tt.path).String(); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.path, got, tt.want)
		}
	}
	if gjson.Get(out, "results.1.hostname").Exists() {
		t.Error("empty hostname should be omitted")
	}
}

func TestYAMLWriter(t *testing.T) {
	out := render(t, FormatYAML, Options{})

	var report struct {
		Network string `yaml:"network"`
		Results []struct {
			IP        string  `yaml:"ipv4"`
			Hostname  string  `yaml:"hostname"`
			LatencyMs float64 `yaml:"latency_ms"`
		} `yaml:"results"`
	}
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v\n%s", err, out)
	}
	if report.Network != testStats.Network || len(report.Results) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.Results[0].Hostname != "router.lan" || report.Results[1].LatencyMs != 3 {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestCSVWriter(t *testing.T) {
	out := render(t, FormatCSV, Options{})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and two rows:\n%s", len(lines), out)
	}
	if lines[0] != "ipv4,mac,vendor,hostname,latency_ms" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "192.168.1.1,02:00:00:00:00:01,IGT,router.lan,1.500" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestPlainWriter(t *testing.T) {
	out := render(t, FormatPlain, Options{NoColor: true, Numeric: true})
	if !strings.Contains(out, "| 192.168.1.7     | 02:00:00:00:00:07 | (disabled)            |") {
		t.Errorf("numeric row missing:\n%s", out)
	}
	if !strings.Contains(out, "2 hosts in 2s") {
		t.Errorf("footer missing:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("escape codes written with NoColor")
	}

	withVendor := render(t, FormatPlain, Options{NoColor: true, ShowVendor: true})
	if !strings.Contains(withVendor, "| IGT ") {
		t.Errorf("vendor column missing:\n%s", withVendor)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"plain", "JSON", " yaml ", "csv"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) error = nil")
	}
}

package output

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/arpscan/pkg/pacing"
)

const disabledHostname = "(disabled)"

type plainWriter struct {
	w       io.Writer
	closer  io.Closer
	au      *aurora.Aurora
	options Options
	rows    int
}

func newPlainWriter(w io.Writer, closer io.Closer, options Options) *plainWriter {
	return &plainWriter{
		w:       w,
		closer:  closer,
		au:      aurora.New(aurora.WithColors(!options.NoColor)),
		options: options,
	}
}

func (p *plainWriter) WriteHeader() error {
	if p.options.ShowVendor {
		_, err := fmt.Fprintf(p.w, "\n| %-15s | %-17s | %-21s | %-28s |\n|-----------------|-------------------|-----------------------|------------------------------|\n",
			"IPv4", "MAC", "Hostname", "Vendor")
		return err
	}
	_, err := fmt.Fprintf(p.w, "\n| %-15s | %-17s | %-21s |\n|-----------------|-------------------|-----------------------|\n",
		"IPv4", "MAC", "Hostname")
	return err
}

func (p *plainWriter) WriteEntry(entry Entry) error {
	p.rows++
	hostname := entry.Hostname
	if hostname == "" && p.options.Numeric {
		hostname = disabledHostname
	}
	// padding is applied before coloring so escape codes do not skew columns
	ip := p.au.Green(fmt.Sprintf("%-15s", entry.IP))
	if p.options.ShowVendor {
		_, err := fmt.Fprintf(p.w, "| %s | %-17s | %-21s | %-28s |\n", ip, entry.MAC, hostname, entry.Vendor)
		return err
	}
	_, err := fmt.Fprintf(p.w, "| %s | %-17s | %-21s |\n", ip, entry.MAC, hostname)
	return err
}

func (p *plainWriter) WriteFooter(stats Stats) error {
	status := ""
	switch {
	case stats.Interrupted:
		status = p.au.Yellow(" (interrupted, partial results)").String()
	case stats.TimedOut:
		status = p.au.Yellow(" (deadline reached)").String()
	}
	_, err := fmt.Fprintf(p.w, "\nARP scan finished, %s in %s%s\n%d requests sent, %d replies, %d frames filtered\n",
		p.au.Bold(hostCount(p.rows)), pacing.FormatDuration(stats.Duration), status,
		stats.RequestsSent, stats.RepliesMatched, stats.FramesFiltered)
	return err
}

func (p *plainWriter) Close() error {
	return closeIf(p.closer)
}

func hostCount(n int) string {
	if n == 1 {
		return "1 host"
	}
	return fmt.Sprintf("%d hosts", n)
}

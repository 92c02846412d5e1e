package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/projectdiscovery/arpscan/pkg/capture"
	"github.com/projectdiscovery/arpscan/pkg/netif"
	"github.com/projectdiscovery/arpscan/pkg/output"
	"github.com/projectdiscovery/arpscan/pkg/pacing"
	"github.com/projectdiscovery/arpscan/pkg/resolver"
	"github.com/projectdiscovery/arpscan/pkg/scanner"
	"github.com/projectdiscovery/arpscan/pkg/vendor"
	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	if err := options.ValidateOptions(); err != nil {
		return nil, err
	}
	return &Runner{options: options}, nil
}

// Run the instance. Cancelling ctx stops the scan with partial results.
func (r *Runner) Run(ctx context.Context) error {
	if r.options.List {
		return r.listInterfaces(os.Stdout)
	}

	iface, err := r.selectInterface()
	if err != nil {
		return err
	}
	if !isPrivileged() {
		gologger.Warning().Msgf("arpscan should run as root or with the CAP_NET_RAW capability")
	}

	opts, err := r.options.scanOptions()
	if err != nil {
		return err
	}
	cfg, err := scanner.NewConfig(iface, opts...)
	if err != nil {
		return err
	}

	handle, err := capture.Open(iface.Name)
	if err != nil {
		return err
	}
	defer handle.Close()

	s, err := scanner.New(cfg, handle)
	if err != nil {
		return err
	}
	r.showPrescan(cfg, s)

	result, err := s.Run(ctx)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("scan on %s aborted", iface.Name)
	}
	if result.Interrupted {
		gologger.Warning().Msgf("Received halt signal, ending scan with partial results")
	}

	entries := r.enrich(context.WithoutCancel(ctx), cfg, result)
	return r.write(result, entries)
}

func (r *Runner) selectInterface() (netif.Interface, error) {
	if r.options.Interface == "" {
		iface, err := netif.Default()
		if err != nil {
			return netif.Interface{}, &scanner.InterfaceError{Interface: "(default)", Reason: scanner.ReasonNotFound, Err: err}
		}
		gologger.Verbose().Msgf("Using default interface %s", iface.Name)
		return iface, nil
	}
	iface, err := netif.Lookup(r.options.Interface)
	if err != nil {
		return netif.Interface{}, &scanner.InterfaceError{Interface: r.options.Interface, Reason: scanner.ReasonNotFound, Err: err}
	}
	return iface, nil
}

func (r *Runner) listInterfaces(w io.Writer) error {
	interfaces, err := netif.List()
	if err != nil {
		return err
	}
	for _, iface := range interfaces {
		fmt.Fprintln(w, formatInterface(iface))
	}
	return nil
}

func formatInterface(iface netif.Interface) string {
	state := "DOWN"
	if iface.Up {
		state = "UP"
	}
	mac := "No MAC address"
	if len(iface.MAC) > 0 {
		mac = iface.MAC.String()
	}
	networks := make([]string, 0, len(iface.Networks))
	for _, network := range iface.Networks {
		networks = append(networks, network.String())
	}
	return strings.TrimRight(fmt.Sprintf("%-17s %-7s %-17s %s", iface.Name, state, mac, strings.Join(networks, ", ")), " ")
}

func (r *Runner) showPrescan(cfg scanner.Config, s *scanner.Scanner) {
	pacer := s.Pacer()
	gologger.Info().Msgf("Selected interface %s with IP %s and MAC %s", au.Bold(cfg.Interface.Name), cfg.SourceIP, cfg.SourceMAC)
	gologger.Info().Msgf("Estimated scan time %s (%d bytes, %s/s)",
		pacing.FormatDuration(s.Estimate()), cfg.RequestSize(), humanize.Bytes(pacer.Bandwidth()/8))
	gologger.Info().Msgf("Sending %d ARP requests to %s (waiting at least %s, %s request interval)",
		s.Targets(), cfg.Network, pacing.FormatDuration(cfg.Timeout), pacing.FormatDuration(pacer.Delay()))
}

// enrich attaches vendors and hostnames to the answered hosts
func (r *Runner) enrich(ctx context.Context, cfg scanner.Config, result *scanner.Result) []output.Entry {
	var vendors *vendor.Database
	if r.options.OUIFile != "" {
		db, err := vendor.Load(r.options.OUIFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			gologger.Verbose().Msgf("OUI database %s not found, vendors disabled", r.options.OUIFile)
		case err != nil:
			gologger.Warning().Msgf("%s", err)
		default:
			vendors = db
		}
	}

	var names map[netip.Addr]string
	if !cfg.Numeric && len(result.Hosts) > 0 {
		ips := make([]netip.Addr, 0, len(result.Hosts))
		for _, host := range result.Hosts {
			ips = append(ips, host.IP)
		}
		var err error
		names, err = resolver.New(resolver.Options{}).ResolveAll(ctx, ips)
		if err != nil {
			gologger.Warning().Msgf("Could not resolve hostnames: %s", err)
		}
	}
	return buildEntries(result.Hosts, vendors, names)
}

func buildEntries(hosts []scanner.Host, vendors *vendor.Database, names map[netip.Addr]string) []output.Entry {
	entries := make([]output.Entry, 0, len(hosts))
	for _, host := range hosts {
		entry := output.Entry{
			IP:       host.IP.String(),
			MAC:      host.MAC.String(),
			Hostname: names[host.IP],
			Latency:  host.Latency,
		}
		if name, ok := vendors.Lookup(host.MAC); ok {
			entry.Vendor = name
		}
		entries = append(entries, entry)
	}
	return entries
}

func (r *Runner) write(result *scanner.Result, entries []output.Entry) error {
	format, err := output.ParseFormat(r.options.Format)
	if err != nil {
		return err
	}
	dest, err := output.Open(r.options.Output)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not create output file %s", r.options.Output)
	}
	w, err := output.New(format, dest, output.Options{
		NoColor:    r.options.NoColor || r.options.Output != "",
		Numeric:    r.options.Numeric,
		ShowVendor: hasVendor(entries),
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := w.WriteEntry(entry); err != nil {
			return err
		}
	}
	return w.WriteFooter(statsOf(result))
}

func statsOf(result *scanner.Result) output.Stats {
	return output.Stats{
		ID:             result.ID,
		Interface:      result.Interface,
		Network:        result.Network.String(),
		Duration:       result.Duration,
		RequestsSent:   result.RequestsSent,
		RepliesMatched: result.RepliesMatched,
		FramesFiltered: result.FramesFiltered,
		Interrupted:    result.Interrupted,
		TimedOut:       result.TimedOut,
	}
}

func hasVendor(entries []output.Entry) bool {
	for _, entry := range entries {
		if entry.Vendor != "" {
			return true
		}
	}
	return false
}

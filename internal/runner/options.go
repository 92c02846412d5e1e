package runner

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/arpscan/pkg/output"
	"github.com/projectdiscovery/arpscan/pkg/scanner"
	"github.com/projectdiscovery/arpscan/pkg/vendor"
	"github.com/projectdiscovery/arpscan/pkg/version"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"
)

var au = aurora.New(aurora.WithColors(true))

var (
	InterfaceEnv = envutil.GetEnvOrDefault("ARPSCAN_INTERFACE", "")
	OUIFileEnv   = envutil.GetEnvOrDefault("ARPSCAN_OUI_FILE", vendor.DefaultFile)
)

// Options contains the configuration options of a scan
type Options struct {
	ConfigFile string `yaml:"-"`

	Interface string `yaml:"interface"`
	Network   string `yaml:"network"`
	List      bool   `yaml:"-"`

	SourceIP     string `yaml:"source-ip"`
	SourceMAC    string `yaml:"source-mac"`
	DestMAC      string `yaml:"dest-mac"`
	VLAN         string `yaml:"vlan"`
	HardwareType int    `yaml:"hw-type"`
	ProtocolType int    `yaml:"proto-type"`
	HardwareLen  int    `yaml:"hw-len"`
	ProtocolLen  int    `yaml:"proto-len"`
	Opcode       int    `yaml:"opcode"`

	Timeout    time.Duration `yaml:"timeout"`
	Interval   time.Duration `yaml:"interval"`
	Bandwidth  string        `yaml:"bandwidth"`
	Retry      int           `yaml:"retry"`
	RetryDelay time.Duration `yaml:"retry-delay"`
	Random     bool          `yaml:"random"`
	Seed       int           `yaml:"seed"`

	Output  string `yaml:"output"`
	Format  string `yaml:"format"`
	Numeric bool   `yaml:"numeric"`
	OUIFile string `yaml:"oui-file"`
	NoColor bool   `yaml:"no-color"`
	Silent  bool   `yaml:"silent"`
	Verbose bool   `yaml:"verbose"`
	Debug   bool   `yaml:"debug"`
	Version bool   `yaml:"-"`
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`arpscan discovers live hosts on a local IPv4 network with ARP requests`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Interface, "interface", "i", InterfaceEnv, "network interface to scan on (default: first usable interface)"),
		flagSet.StringVarP(&options.Network, "network", "n", "", "IPv4 network to scan in CIDR notation (default: interface network)"),
		flagSet.BoolVarP(&options.List, "list", "l", false, "list network interfaces and exit"),
	)

	flagSet.CreateGroup("packet", "Packet",
		flagSet.StringVarP(&options.SourceIP, "source-ip", "S", "", "sender IPv4 address of requests"),
		flagSet.StringVar(&options.SourceMAC, "source-mac", "", "sender MAC address of requests"),
		flagSet.StringVarP(&options.DestMAC, "dest-mac", "M", "", "destination MAC address of requests (default: broadcast)"),
		flagSet.StringVarP(&options.VLAN, "vlan", "Q", "", "tag requests with an 802.1Q VLAN identifier (0-4094)"),
		flagSet.IntVar(&options.HardwareType, "hw-type", 1, "ARP hardware type"),
		flagSet.IntVar(&options.ProtocolType, "proto-type", 0x0800, "ARP protocol type"),
		flagSet.IntVar(&options.HardwareLen, "hw-len", 6, "ARP hardware address length"),
		flagSet.IntVar(&options.ProtocolLen, "proto-len", 4, "ARP protocol address length"),
		flagSet.IntVar(&options.Opcode, "opcode", 1, "ARP operation of requests"),
	)

	flagSet.CreateGroup("timing", "Timing",
		flagSet.DurationVarP(&options.Timeout, "timeout", "t", scanner.DefaultTimeout, "reply window after the last request to a host"),
		flagSet.DurationVarP(&options.Interval, "interval", "I", 0, "delay between two requests (default 10ms)"),
		flagSet.StringVarP(&options.Bandwidth, "bandwidth", "B", "", "bandwidth limit in bits per second (e.g. 100K, 1M)"),
		flagSet.IntVarP(&options.Retry, "retry", "r", scanner.DefaultRetries, "number of requests sent to each host"),
		flagSet.DurationVar(&options.RetryDelay, "retry-delay", scanner.DefaultRetryDelay, "minimum delay between two requests to the same host"),
		flagSet.BoolVarP(&options.Random, "random", "R", false, "randomize the target order"),
		flagSet.IntVar(&options.Seed, "seed", 0, "seed of the random target order"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to write results to"),
		flagSet.StringVarP(&options.Format, "format", "f", string(output.FormatPlain), "output format (plain, json, yaml, csv)"),
		flagSet.BoolVar(&options.Numeric, "numeric", false, "disable hostname resolution"),
		flagSet.StringVar(&options.OUIFile, "oui-file", OUIFileEnv, "IEEE OUI database in CSV format"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results in output"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show every sent and received frame"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "cli flag configuration file"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	if options.ConfigFile != "" {
		if err := options.loadConfigFrom(options.ConfigFile); err != nil {
			gologger.Fatal().Msgf("Could not read config file %s: %s\n", options.ConfigFile, err)
		}
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if err := options.ValidateOptions(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}
	return options
}

// ValidateOptions checks the literals given on the command line. Settings
// depending on the interface are validated when the scan is configured.
func (options *Options) ValidateOptions() error {
	if _, err := output.ParseFormat(options.Format); err != nil {
		return err
	}
	if options.Interval > 0 && options.Bandwidth != "" {
		return &scanner.ConfigError{Field: "interval", Message: "interval and bandwidth are mutually exclusive"}
	}
	if _, err := options.scanOptions(); err != nil {
		return err
	}
	return nil
}

// scanOptions converts the flags into scanner options
func (options *Options) scanOptions() ([]scanner.Option, error) {
	opts := []scanner.Option{
		scanner.WithRetries(options.Retry),
		scanner.WithTimeout(options.Timeout),
		scanner.WithRetryDelay(options.RetryDelay),
	}

	if options.Network != "" {
		network, err := netip.ParsePrefix(options.Network)
		if err != nil {
			return nil, &scanner.ConfigError{Field: "network", Message: err.Error()}
		}
		opts = append(opts, scanner.WithNetwork(network))
	}
	if options.SourceIP != "" {
		ip, err := netip.ParseAddr(options.SourceIP)
		if err != nil {
			return nil, &scanner.ConfigError{Field: "source-ip", Message: err.Error()}
		}
		opts = append(opts, scanner.WithSourceIP(ip))
	}
	if options.SourceMAC != "" {
		mac, err := net.ParseMAC(options.SourceMAC)
		if err != nil {
			return nil, &scanner.ConfigError{Field: "source-mac", Message: err.Error()}
		}
		opts = append(opts, scanner.WithSourceMAC(mac))
	}
	if options.DestMAC != "" {
		mac, err := net.ParseMAC(options.DestMAC)
		if err != nil {
			return nil, &scanner.ConfigError{Field: "dest-mac", Message: err.Error()}
		}
		opts = append(opts, scanner.WithDestinationMAC(mac))
	}
	if options.VLAN != "" {
		id, err := strconv.ParseUint(options.VLAN, 10, 16)
		if err != nil {
			return nil, &scanner.ConfigError{Field: "vlan", Message: fmt.Sprintf("invalid VLAN identifier %q", options.VLAN)}
		}
		opts = append(opts, scanner.WithVLAN(uint16(id)))
	}

	for _, field := range []struct {
		name  string
		value int
		max   int
	}{
		{"hw-type", options.HardwareType, 0xffff},
		{"proto-type", options.ProtocolType, 0xffff},
		{"hw-len", options.HardwareLen, 0xff},
		{"proto-len", options.ProtocolLen, 0xff},
		{"opcode", options.Opcode, 0xffff},
	} {
		if field.value < 0 || field.value > field.max {
			return nil, &scanner.ConfigError{Field: field.name, Message: fmt.Sprintf("value %d out of range (0-%d)", field.value, field.max)}
		}
	}
	opts = append(opts,
		scanner.WithHardwareType(uint16(options.HardwareType)),
		scanner.WithProtocolType(uint16(options.ProtocolType)),
		scanner.WithHardwareLen(uint8(options.HardwareLen)),
		scanner.WithProtocolLen(uint8(options.ProtocolLen)),
		scanner.WithOpcode(uint16(options.Opcode)),
	)

	if options.Interval > 0 {
		opts = append(opts, scanner.WithInterval(options.Interval))
	}
	if options.Bandwidth != "" {
		bandwidth, err := humanize.ParseBytes(options.Bandwidth)
		if err != nil || bandwidth == 0 {
			return nil, &scanner.ConfigError{Field: "bandwidth", Message: fmt.Sprintf("invalid bandwidth %q", options.Bandwidth)}
		}
		opts = append(opts, scanner.WithBandwidth(bandwidth))
	}
	if options.Random {
		seed := int64(options.Seed)
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		opts = append(opts, scanner.WithRandomize(seed))
	}
	if options.Numeric {
		opts = append(opts, scanner.WithNumeric())
	}
	return opts, nil
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	au = aurora.New(aurora.WithColors(!options.NoColor))
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) loadConfigFrom(location string) error {
	return fileutil.Unmarshal(fileutil.YAML, []byte(location), options)
}

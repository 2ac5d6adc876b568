package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ofprobe/internal/config"
	"ofprobe/internal/controller"
	"ofprobe/internal/harness"
	"ofprobe/internal/platform"
	"ofprobe/internal/profile"
	"ofprobe/pkg/logging"
)

var (
	flagTestSpec          string
	flagTestDir           string
	flagPriority          int
	flagProfile           string
	flagPlatform          string
	flagSwitchAddr        string
	flagDefaultTimeout    time.Duration
	flagFailSkipped       bool
	flagList              bool
	flagListTestNames     bool
	flagLogLevel          string
	flagReportPath        string
	flagQuiet             bool
	flagJSON              bool
	flagVerbose           bool
	flagAllowUnprivileged bool
)

// rootCmd represents the base command. Running it executes the selected
// test suite; --list and --list-test-names only introspect.
var rootCmd = &cobra.Command{
	Use:   "ofprobe",
	Short: "Select and execute dataplane test suites",
	Long: `ofprobe discovers declarative test modules under a test directory,
selects tests with a spec mini-language, resolves priorities against a skip
profile, and executes the resulting suite one test at a time against a
device agent.

Test spec elements are comma-separated; each is "all", a lowercase-leading
module name, an uppercase-leading test name, or an exact "module.test" pair:

  ofprobe                          # run every discovered test
  ofprobe -T basic                 # all tests in module "basic"
  ofprobe -T Echo                  # test "Echo" in any module
  ofprobe -T basic.Echo,flows      # one exact pair plus a whole module
  ofprobe --list                   # show the selection, run nothing`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. bad specs, failed discovery)
	SilenceUsage: true,
	RunE:         runHarness,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ofprobe version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	// Test selection
	rootCmd.Flags().StringVarP(&flagTestSpec, "test-spec", "T", "", `Test spec mini-language (default "all")`)
	rootCmd.Flags().IntVar(&flagPriority, "priority", 0, "Minimum priority threshold (negative includes skip-listed tests)")
	rootCmd.Flags().StringVar(&flagProfile, "profile", "", "Path to skip-profile YAML file")
	rootCmd.Flags().StringVar(&flagTestDir, "test-dir", "", `Discovery root for test modules (default "tests")`)

	// Introspection
	rootCmd.Flags().BoolVar(&flagList, "list", false, "List selected tests with priorities and descriptions, run nothing")
	rootCmd.Flags().BoolVar(&flagListTestNames, "list-test-names", false, "List discovered test names, run nothing")

	// Execution
	rootCmd.Flags().BoolVar(&flagFailSkipped, "fail-skipped", false, "Count runtime-skipped tests as failures")
	rootCmd.Flags().StringVar(&flagPlatform, "platform", "", "Path to platform YAML file (default: built-in local platform)")
	rootCmd.Flags().StringVar(&flagSwitchAddr, "switch-addr", "", "Device agent endpoint (host:port)")
	rootCmd.Flags().DurationVar(&flagDefaultTimeout, "default-timeout", 0, "Shared per-test timeout handed to collaborators")
	rootCmd.Flags().BoolVar(&flagAllowUnprivileged, "allow-unprivileged", false, "Bypass the platform privilege check")

	// Output
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flagReportPath, "report", "", "Directory to save detailed JSON test reports")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Only report failures and the final summary")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "Emit machine-readable JSON results")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose test output")

	rootCmd.MarkFlagsMutuallyExclusive("list", "list-test-names")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "json")
}

// effectiveConfig layers flags over the file-backed configuration.
func effectiveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("test-spec") {
		cfg.TestSpec = flagTestSpec
	}
	if flags.Changed("test-dir") {
		cfg.TestDir = flagTestDir
	}
	if flags.Changed("priority") {
		cfg.Priority = flagPriority
	}
	if flags.Changed("profile") {
		cfg.Profile = flagProfile
	}
	if flags.Changed("platform") {
		cfg.Platform = flagPlatform
	}
	if flags.Changed("switch-addr") {
		cfg.SwitchAddr = flagSwitchAddr
	}
	if flags.Changed("default-timeout") {
		cfg.DefaultTimeout = flagDefaultTimeout
	}
	if flags.Changed("fail-skipped") {
		cfg.FailSkipped = flagFailSkipped
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("report") {
		cfg.ReportPath = flagReportPath
	}
	if flags.Changed("allow-unprivileged") {
		cfg.AllowUnprivileged = flagAllowUnprivileged
	}
	return cfg, nil
}

// fatal logs a fatal setup error at the highest severity before it is
// surfaced to the operator and mapped to a non-zero exit status.
func fatal(err error) error {
	logging.Error("setup", err, "fatal setup error")
	return err
}

func runHarness(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	// An invalid level string is recovered locally: warn and fall back.
	level, levelErr := logging.ParseLevel(cfg.LogLevel)
	logging.Init(level, os.Stderr)
	if levelErr != nil {
		logging.Warn("setup", "invalid log level %q, falling back to %s", cfg.LogLevel, level)
	}

	elements, err := harness.ParseSpec(cfg.TestSpec)
	if err != nil {
		return fatal(err)
	}

	registry, err := harness.NewDiscovery(cfg.TestDir).Discover()
	if err != nil {
		return fatal(err)
	}

	var prof *profile.Profile
	if cfg.Profile != "" {
		prof, err = profile.Load(cfg.Profile)
		if err != nil {
			return fatal(err)
		}
	}

	filtered, err := harness.Prune(elements, registry)
	if err != nil {
		return fatal(err)
	}

	if flagList {
		printTestList(filtered, prof, cfg.Priority)
		return nil
	}
	if flagListTestNames {
		for _, name := range harness.ListTestNames(filtered) {
			fmt.Println(name)
		}
		return nil
	}

	plat := platform.Default()
	if cfg.Platform != "" {
		plat, err = platform.Load(cfg.Platform)
		if err != nil {
			return fatal(err)
		}
	}
	if err := plat.CheckPrivilege(cfg.AllowUnprivileged); err != nil {
		return fatal(err)
	}

	client := controller.New(cfg.SwitchAddr, cfg.DefaultTimeout)
	defer client.Close()

	framework, err := harness.NewFramework(harness.Options{
		TestDir:       cfg.TestDir,
		FailOnSkipped: cfg.FailSkipped,
		Verbose:       flagVerbose,
		ReportPath:    cfg.ReportPath,
		Quiet:         flagQuiet,
		JSON:          flagJSON,
		Out:           os.Stdout,
		Env: harness.RunEnv{
			Exec:    client,
			PortMap: plat.PortMap,
			Timeout: cfg.DefaultTimeout,
		},
	})
	if err != nil {
		return fatal(err)
	}

	suite := harness.BuildSuite(filtered, prof, cfg.Priority)
	logging.Info("harness", "suite built: %d of %d discovered tests selected",
		len(suite), registry.TestCount())

	// Operator interrupts intentionally keep the default signal disposition:
	// dying immediately is safer for half-open per-test network resources
	// than unwinding through an in-flight blocking call.
	result := framework.Runner.Run(cmd.Context(), suite)

	if framework.Runner.Outcome(result) == harness.OutcomeFailure {
		os.Exit(1)
	}
	return nil
}

func printTestList(registry harness.ModuleRegistry, prof *profile.Profile, threshold int) {
	for _, info := range harness.ListTests(registry, prof, threshold) {
		fmt.Printf("%-40s %5d  %s\n", info.Module+"."+info.Name, info.Priority, info.Description)
	}
}

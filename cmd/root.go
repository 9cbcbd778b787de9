/*
Copyright © 2025 Jon Knox <jon@k2x.io>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonknoxdotcom/shaman-av/internal/avcore"
	"github.com/jonknoxdotcom/shaman-av/internal/avlog"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shaman-av",
	Short: "host-based anti-malware scanner",
	Long: `shaman-av scans files against a signature database and a set of
heuristics (entropy, PE header inspection, packer and suspicious-string
detection), quarantines what it finds, and can watch a directory tree in
real time for ransomware-like behavior.`,
}

// Flags shared across subcommands, following the same package-level
// pattern the rest of this tool uses for cobra flag binding.
var (
	cliSignatureDB string
	cliQuarantine  string
	cliScanLog     string
	cliVerbose     bool
)

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cliSignatureDB, "signatures", "", "path to signature database (default data/signatures.db)")
	rootCmd.PersistentFlags().StringVar(&cliQuarantine, "quarantine", "", "path to quarantine vault directory (default data/quarantine)")
	rootCmd.PersistentFlags().StringVar(&cliScanLog, "scan-log", "", "path to plain-text scan audit log (default logs/scan_results.log)")
	rootCmd.PersistentFlags().BoolVarP(&cliVerbose, "verbose", "v", false, "enable debug-level logging")

	rootCmd.AddGroup(&cobra.Group{ID: "G1", Title: "Scanning:"})
	rootCmd.AddGroup(&cobra.Group{ID: "G2", Title: "Quarantine:"})
}

// buildConfig assembles an avcore.Config from the persistent flags,
// falling back to DefaultConfig's paths when a flag was left unset.
func buildConfig() avcore.Config {
	var opts []avcore.Option
	if cliSignatureDB != "" {
		opts = append(opts, avcore.WithSignatureDBPath(cliSignatureDB))
	}
	if cliQuarantine != "" {
		opts = append(opts, avcore.WithQuarantineDir(cliQuarantine))
	}
	if cliScanLog != "" {
		opts = append(opts, avcore.WithScanLogPath(cliScanLog))
	}
	return avcore.NewConfig(opts...)
}

// buildLogger wires up the slog JSON handler and plain-text audit log
// described in spec §6, bailing out to stderr and os.Exit(1) on failure
// since nothing downstream can run without logging.
func buildLogger(cfg avcore.Config) *avlog.Logger {
	level := slog.LevelInfo
	if cliVerbose {
		level = slog.LevelDebug
	}
	logger, err := avlog.New(os.Stdout, level, cfg.ScanLogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "shaman-av: unable to initialize logging:", err)
		os.Exit(1)
	}
	return logger
}

// buildCore opens the signature store and quarantine vault shared by
// every subcommand that touches the detection pipeline.
func buildCore(cfg avcore.Config, log *avlog.Logger) (*avcore.SignatureStore, *avcore.Vault) {
	sigs, err := avcore.NewSignatureStore(cfg.SignatureDBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "shaman-av: unable to load signature database:", err)
		os.Exit(1)
	}
	vault, err := avcore.NewVault(cfg.QuarantineDir, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "shaman-av: unable to open quarantine vault:", err)
		os.Exit(1)
	}
	return sigs, vault
}

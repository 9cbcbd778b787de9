/*
Copyright © 2025 Jon Knox <jon@k2x.io>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jonknoxdotcom/shaman-av/internal/avcore"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:     "scan [path]",
	Short:   "Scan a file or directory tree against signatures and heuristics",
	Aliases: []string{"sc"},
	Args:    cobra.MaximumNArgs(1),
	GroupID: "G1",
	Run: func(cmd *cobra.Command, args []string) {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		runScan(target)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// runScan dispatches to a single-file or recursive scan depending on
// what target is, quarantining anything the pipeline flags Malicious.
func runScan(target string) {
	cfg := buildConfig()
	log := buildLogger(cfg)
	defer log.Close()

	sigs, vault := buildCore(cfg, log)
	pipeline := avcore.NewPipeline(sigs, vault, cfg, log)

	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "shaman-av: cannot stat target:", err)
		os.Exit(1)
	}

	if info.IsDir() {
		summary, err := pipeline.ScanDirectory(target)
		if err != nil {
			fmt.Fprintln(os.Stderr, "shaman-av: scan failed:", err)
			os.Exit(1)
		}
		fmt.Printf("scanned %s files, %s threats found\n",
			humanize.Comma(int64(summary.FilesScanned)), humanize.Comma(int64(summary.ThreatsFound)))
		if summary.ThreatsFound > 0 {
			os.Exit(1)
		}
		return
	}

	verdict := pipeline.ScanFile(target)
	switch verdict.Status {
	case avcore.Malicious:
		fmt.Printf("MALICIOUS: %s (%s: %s)\n", target, verdict.Tag.String(), verdict.Reason)
		if _, err := vault.Quarantine(target); err != nil {
			fmt.Fprintln(os.Stderr, "shaman-av: quarantine failed:", err)
		}
		os.Exit(1)
	case avcore.Error:
		fmt.Fprintln(os.Stderr, "shaman-av: scan error:", verdict.Err)
		os.Exit(1)
	default:
		fmt.Printf("clean: %s\n", target)
	}
}

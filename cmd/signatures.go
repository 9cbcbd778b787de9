/*
Copyright © 2025 Jon Knox <jon@k2x.io>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonknoxdotcom/shaman-av/internal/avcore"
)

// signaturesAddCmd represents the signatures add command
var signaturesAddCmd = &cobra.Command{
	Use:     "add [file...]",
	Short:   "Hash one or more files and add them to the signature database",
	Args:    cobra.MinimumNArgs(1),
	GroupID: "G1",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig()
		log := buildLogger(cfg)
		defer log.Close()

		sigs, err := avcore.NewSignatureStore(cfg.SignatureDBPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "shaman-av: unable to load signature database:", err)
			os.Exit(1)
		}

		for _, path := range args {
			fp, err := avcore.HashFile(path, avcore.SHA256, cfg.ScanBufferSize)
			if err != nil {
				fmt.Fprintf(os.Stderr, "shaman-av: hash %s failed: %v\n", path, err)
				continue
			}
			if err := sigs.Add(fp); err != nil {
				fmt.Fprintf(os.Stderr, "shaman-av: add signature for %s failed: %v\n", path, err)
				continue
			}
			fmt.Printf("added %s (%s)\n", path, fp)
		}
	},
}

// signaturesReloadCmd represents the signatures reload command. Useful
// after editing the signature database file externally, or on SIGHUP in
// a future long-running daemon mode.
var signaturesReloadCmd = &cobra.Command{
	Use:     "reload",
	Short:   "Reload the signature database from disk",
	GroupID: "G1",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig()
		log := buildLogger(cfg)
		defer log.Close()

		sigs, err := avcore.NewSignatureStore(cfg.SignatureDBPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "shaman-av: unable to load signature database:", err)
			os.Exit(1)
		}
		if err := sigs.Reload(); err != nil {
			fmt.Fprintln(os.Stderr, "shaman-av: reload failed:", err)
			os.Exit(1)
		}
		fmt.Printf("reloaded %d signatures\n", sigs.Count())
	},
}

func init() {
	rootCmd.AddCommand(signaturesAddCmd)
	rootCmd.AddCommand(signaturesReloadCmd)
}

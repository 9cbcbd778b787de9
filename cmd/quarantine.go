/*
Copyright © 2025 Jon Knox <jon@k2x.io>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// quarantineListCmd represents the quarantine list command
var quarantineListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List entries currently held in the quarantine vault",
	Aliases: []string{"ls"},
	GroupID: "G2",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig()
		log := buildLogger(cfg)
		defer log.Close()

		_, vault := buildCore(cfg, log)
		names, err := vault.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, "shaman-av: unable to list vault:", err)
			os.Exit(1)
		}
		if len(names) == 0 {
			fmt.Println("quarantine vault is empty")
			return
		}
		for _, name := range names {
			size := "-"
			if info, err := os.Stat(filepath.Join(vault.Dir, name)); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			fmt.Printf("%s\t%s\n", name, size)
		}
	},
}

// quarantineRestoreCmd represents the quarantine restore command
var quarantineRestoreCmd = &cobra.Command{
	Use:     "restore [name...]",
	Short:   "Restore one or more quarantined entries to their original location",
	Args:    cobra.MinimumNArgs(1),
	GroupID: "G2",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig()
		log := buildLogger(cfg)
		defer log.Close()

		_, vault := buildCore(cfg, log)
		failed := false
		for _, name := range args {
			dest, err := vault.Restore(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "shaman-av: restore %s failed: %v\n", name, err)
				failed = true
				continue
			}
			fmt.Printf("restored %s -> %s\n", name, dest)
		}
		if failed {
			os.Exit(1)
		}
	},
}

// quarantineRestoreAllCmd represents the quarantine restore-all command
var quarantineRestoreAllCmd = &cobra.Command{
	Use:     "restore-all",
	Short:   "Restore every entry currently held in the quarantine vault",
	GroupID: "G2",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := buildConfig()
		log := buildLogger(cfg)
		defer log.Close()

		_, vault := buildCore(cfg, log)
		ok, errs := vault.RestoreAll()
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "shaman-av:", err)
		}
		if !ok {
			os.Exit(1)
		}
		fmt.Println("all quarantined entries restored")
	},
}

func init() {
	rootCmd.AddCommand(quarantineListCmd)
	rootCmd.AddCommand(quarantineRestoreCmd)
	rootCmd.AddCommand(quarantineRestoreAllCmd)
}

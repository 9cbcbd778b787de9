/*
Copyright © 2025 Jon Knox <jon@k2x.io>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonknoxdotcom/shaman-av/internal/avcore"
	"github.com/jonknoxdotcom/shaman-av/internal/avmonitor"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:     "watch [path]",
	Short:   "Watch a directory tree in real time and quarantine threats as they appear",
	Long: `shaman-av watch keeps a directory tree under continuous observation.
New and modified files are hashed and run through the same signature and
heuristic checks as "scan", plus an entropy gate and a ransomware-style
burst detector across related files in a directory. Runs until
interrupted (Ctrl-C / SIGTERM).`,
	Aliases: []string{"w"},
	Args:    cobra.MaximumNArgs(1),
	GroupID: "G1",
	Run: func(cmd *cobra.Command, args []string) {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		runWatch(target)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(target string) {
	cfg := buildConfig()
	log := buildLogger(cfg)
	defer log.Close()

	sigs, vault := buildCore(cfg, log)
	pipeline := avcore.NewPipeline(sigs, vault, cfg, log)
	monitor := avmonitor.NewMonitor(pipeline, vault, cfg, log)

	if err := monitor.Start(target); err != nil {
		fmt.Fprintln(os.Stderr, "shaman-av: unable to start monitor:", err)
		os.Exit(1)
	}
	fmt.Println("watching", target, "- press Ctrl-C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	if err := monitor.Stop(); err != nil {
		fmt.Fprintln(os.Stderr, "shaman-av: error stopping monitor:", err)
	}
}

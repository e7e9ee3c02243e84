package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// presetsCmd lists the named presets in the defaults file
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the named presets in the defaults file",
	Run: func(cmd *cobra.Command, args []string) {
		presets, err := loadPresets(defaultsFilePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printPresets(os.Stdout, presets)
	},
}

func printPresets(w io.Writer, p Presets) {
	fmt.Fprintf(w, "version: %s\n", p.Version)
	for _, name := range sortedKeys(p.Relocation) {
		c := p.Relocation[name]
		fmt.Fprintf(w, "relocation/%s: capacity=%d max_action=%d discount=%g rates=%v expectation=%s\n",
			name, c.Capacity, c.MaxAction, c.Discount, c.Rates(), c.Expectation)
	}
	for _, name := range sortedKeys(p.Gambler) {
		c := p.Gambler[name]
		fmt.Fprintf(w, "gambler/%s: goal=%d heads_prob=%g\n", name, c.Goal, c.HeadsProb)
	}
	for _, name := range sortedKeys(p.LightsOut) {
		fmt.Fprintf(w, "lightsout/%s: size=%d\n", name, p.LightsOut[name].Size)
	}
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

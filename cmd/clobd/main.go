package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/goblin-trade/goblin-core-v1/cmd/clobd/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("failure running clobd", "err", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/vcell/cmd/reg"
	"github.com/ValentinKolb/vcell/cmd/serve"
	"github.com/ValentinKolb/vcell/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.2"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "vcell",
		Short: "concurrent latest-value cell store",
		Long: fmt.Sprintf(`vcell (v%s)

A concurrent latest-value register store written in Go, built on
lock-free append-only cells with cooperative memory reclamation.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of vcell",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vcell v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(reg.RegisterCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"github.com/ValentinKolb/japi/cmd/records"
	"github.com/ValentinKolb/japi/cmd/serve"
	"github.com/ValentinKolb/japi/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "japi",
		Short: "JSON:API record store",
		Long: fmt.Sprintf(`japi (v%s)

A client-side record store for JSON:API services written in Go. It fetches
documents, normalizes them into an identity map and resolves the declared
relationships between records.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of japi",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("japi v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(records.RecordCommands)
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

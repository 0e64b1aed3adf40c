// Command ripsim runs a discrete-event simulation of a small network of
// distance-vector routers described by a topology file.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ripsim",
	Short: "ripsim simulates a network of distance-vector routers.",
	Long: `ripsim reads a topology file that lists up to nine routers, their ` +
		`input ports, and their links, then simulates the periodic and ` +
		`triggered advertisement exchange between them. Every time a ` +
		`router's table gains new information, a snapshot of the table is ` +
		`written out.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func main() {
	// A .env file can predefine any RIPSIM_* variable used as a flag
	// default. Missing files are fine.
	_ = godotenv.Load()

	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	Execute()
}

// envOr returns the value of the environment variable or the fallback.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

// Command weavesim simulates a small network of accounts forming, growing
// and mutating an encrypted group over the in-memory channel provider. It
// exercises the full protocol path end to end and prints the state every
// account converges to.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var conf simConfig

	cmd := &cobra.Command{
		Use:   "weavesim",
		Short: "simulate encrypted group formation across in-process accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("loglevel")))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()

			conf.members = viper.GetInt("members")
			conf.addMembers = viper.GetInt("add-members")
			conf.rounds = viper.GetInt("rounds")
			conf.rateLimitEvery = viper.GetInt("rate-limit-every")
			conf.retryAfter = viper.GetDuration("retry-after")

			return runSimulation(log, conf)
		},
	}

	flags := cmd.Flags()
	flags.Int("members", 4, "group size including the owner")
	flags.Int("add-members", 1, "members added after the group converges")
	flags.Int("rounds", 200, "maximum scheduler rounds before giving up")
	flags.Int("rate-limit-every", 0, "rate limit every n-th channel handshake (0 disables)")
	flags.Duration("retry-after", 0, "flood-wait window advertised on rate-limited handshakes")
	flags.String("loglevel", "info", "log level (trace, debug, info, warn, error)")

	bindFlags(flags)

	return cmd
}

// bindFlags exposes every flag through viper, with WEAVESIM_ prefixed
// environment variables as fallback.
func bindFlags(flags *pflag.FlagSet) {
	err := viper.BindPFlags(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	viper.SetEnvPrefix("weavesim")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

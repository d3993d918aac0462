// Package cli implements the bufstress command tree.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/NetPo4ki/go-buffer/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// NewRootCommand builds the bufstress command tree around its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "bufstress",
		Short: "Stress a bounded message buffer with concurrent producers and consumers",
		Long: `bufstress runs a configurable producer/consumer workload through a bounded
message buffer, then verifies that every message sent was received.

Settings come from defaults, an optional YAML file (--config), BUFSTRESS_*
environment variables and flags, in increasing order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Prepare(v, cfgFile)
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")

	root.AddCommand(newRunCommand(v))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

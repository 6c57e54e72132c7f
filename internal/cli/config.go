package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bookstore/internal/config"
)

// resolvedConfig prints as YAML in text mode. JSON output sees the
// embedded fields directly.
type resolvedConfig struct {
	config.Config
}

func (c resolvedConfig) String() string {
	data, err := yaml.Marshal(c.Config)
	if err != nil {
		return err.Error()
	}
	return strings.TrimSuffix(string(data), "\n")
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after schema defaults, the --config file,
BOOKSTORE_* environment variables and flags have been applied.
The root password is masked.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			cfg.Root.Password = "******"
			return rootOpts.formatter(cmd).Success(resolvedConfig{cfg})
		},
	}
}

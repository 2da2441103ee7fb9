package shell

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"proto-matcher/internal/config"
	"proto-matcher/internal/logging"
)

// NewRootCommand builds the command-line interface. Flags can also be set
// through the environment, e.g. PROTOMATCHER_LOG_LEVEL=debug.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	s := New(nil, nil, in, out)

	rootCmd := &cobra.Command{
		Use:   "proto-matcher",
		Short: "Match obfuscated protobuf types to reference types by structure",
		Long: `proto-matcher compares two protobuf descriptor sets (protoc --descriptor_set_out)
and pairs their messages and enums by structural signature, ignoring names and
field numbers. Run without a subcommand for an interactive shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags := viper.New()
			flags.SetEnvPrefix(config.EnvPrefix)
			flags.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			flags.AutomaticEnv()

			if err := flags.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			logger, err := logging.New(cmd.ErrOrStderr(), flags.GetString("log-level"), flags.GetBool("json-logs"))
			if err != nil {
				return err
			}

			s.store = config.NewStore(flags.GetString("config"))
			s.log = logger

			// Commands needing schemas fail with ErrNotLoaded, the shell stays usable for reload.
			if err := s.Load(); err != nil {
				logger.WithError(err).Error("Failed to load schemas")
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.Run(cmd.Context())
		},
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().String("config", config.DefaultFile, "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", logrus.InfoLevel.String(), "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Use JSON log format")

	rootCmd.AddCommand(s.Commands()...)

	return rootCmd
}

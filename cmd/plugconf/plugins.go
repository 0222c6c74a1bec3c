package plugconf

import (
	"github.com/spf13/cobra"

	"github.com/varalys/plugconf/internal/loader"
	"github.com/varalys/plugconf/internal/report"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "plugins",
		Short: "List plugin registrations and the configuration each was handed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			sess, err := resolve(cmd.Context(), s, newLogger(cmd, s))
			if err != nil {
				return err
			}
			return report.PrintRegistrations(cmd.OutOrStdout(), sess.framework.Registrations())
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "modules",
		Short: "List the plugin modules found under the module roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			mods, err := loader.NewFileLoader(s.Modules, newLogger(cmd, s)).Modules()
			if err != nil {
				return err
			}
			return report.PrintModules(cmd.OutOrStdout(), mods)
		},
	})
}

package plugconf

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDir        string
	flagConfigFile string
	flagModules    []string
	flagPlugins    []string
	flagAppConfigs []string
	flagEnvPrefix  string
	flagEnvFiles   []string
	flagFormat     string
	flagNoColor    bool
	flagLogLevel   string
	flagLogJSON    bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the plugconf CLI.
var rootCmd = &cobra.Command{
	Use:           "plugconf",
	Short:         "Merge plugin configuration",
	Long:          "plugconf loads plugin modules, merges their default configuration with plugin overrides and app configs, and shows what each plugin is handed.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the plugconf CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDir, "dir", "C", ".", "project directory holding the local config")
	pf.StringVar(&flagConfigFile, "config", "", "config file to use instead of the local one")
	pf.StringSliceVarP(&flagModules, "modules", "m", nil, "module root directories, searched in order")
	pf.StringSliceVarP(&flagPlugins, "plugin", "p", nil, `plugin module ids, in order; prefix with "root:" to register with the whole tree`)
	pf.StringSliceVar(&flagAppConfigs, "app-config", nil, "app config files merged after the plugins, in order")
	pf.StringVar(&flagEnvPrefix, "env-prefix", "", "merge environment variables with this prefix as the last app config")
	pf.StringSliceVar(&flagEnvFiles, "env-file", nil, "dotenv files read before the environment (needs --env-prefix)")
	pf.StringVar(&flagFormat, "format", "", "output format: json | yaml")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug | info | warn | error")
	pf.BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")
}

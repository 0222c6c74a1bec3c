package plugconf

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/varalys/plugconf/internal/config"
	"github.com/varalys/plugconf/internal/plugin"
)

var (
	cfgOutput    string
	cfgModules   []string
	cfgPlugins   []string
	cfgConfigs   []string
	cfgEnvPrefix string
	cfgFormat    string
	cfgNoColor   bool
	cfgForce     bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .plugconf.yml listing module roots, plugins and app configs",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".plugconf.yml", "output file path")
	initCmd.Flags().StringSliceVar(&cfgModules, "modules", []string{"modules"}, "module root directories")
	initCmd.Flags().StringSliceVar(&cfgPlugins, "plugins", nil, "plugin module ids")
	initCmd.Flags().StringSliceVar(&cfgConfigs, "configs", nil, "app config files")
	initCmd.Flags().StringVar(&cfgEnvPrefix, "env-prefix", "", "environment variable prefix for the last app config")
	initCmd.Flags().StringVar(&cfgFormat, "format", "json", "default output format: json | yaml")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if !cfgForce {
		if _, err := os.Stat(cfgOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
		}
	}

	fc := config.FileConfig{
		Modules:   cfgModules,
		Plugins:   plugin.IDs(cfgPlugins...),
		Configs:   cfgConfigs,
		EnvPrefix: optStrPtr(cfgEnvPrefix),
		Format:    strPtr(cfgFormat),
		NoColor:   boolPtr(cfgNoColor),
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func boolPtr(v bool) *bool { return &v }

package plugconf

import (
	"fmt"
	"runtime/debug"

	semver "github.com/blang/semver/v4"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the plugconf version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "plugconf v%s\n", currentVersion())
			return err
		},
	})
}

// currentVersion parses the build version tolerantly. A build without a
// usable version reports 0.0.0 plus the VCS revision when known.
func currentVersion() semver.Version {
	ver, err := semver.ParseTolerant(version)
	if err == nil {
		return ver
	}
	ver = semver.MustParse("0.0.0")
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				if pre, err := semver.NewBuildVersion(s.Value); err == nil {
					ver.Build = []string{pre}
				}
			}
		}
	}
	return ver
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

func pickSlice[T any](cli, local, global []T) []T {
	if len(cli) > 0 {
		return cli
	}
	if len(local) > 0 {
		return local
	}
	return global
}

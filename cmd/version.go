package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepository is the GitHub repository publishing CLI releases
const releaseRepository = "smarterqueue/threads-go"

var forceUpdate bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipConfig: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "threads %s (built %s, %s %s/%s)\n",
			appVersion, appBuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

var updateCmd = &cobra.Command{
	Use:         "update",
	Short:       "Update threads to the latest release",
	Annotations: map[string]string{skipConfig: "true"},
	RunE:        runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd, updateCmd)

	updateCmd.Flags().BoolVar(&forceUpdate, "force", false, "update development builds and reinstall the current release")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	newer, err := isNewer(appVersion, latest.Version())
	if err != nil && !forceUpdate {
		return fmt.Errorf("%w (use --force to update anyway)", err)
	}
	if !newer && !forceUpdate {
		fmt.Fprintf(cmd.OutOrStdout(), "threads %s is up to date\n", appVersion)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated threads %s -> %s\n", appVersion, latest.Version())
	return nil
}

// isNewer reports whether latest is a newer version than current. Both accept
// an optional v prefix.
func isNewer(current, latest string) (bool, error) {
	currentVersion, err := semver.ParseTolerant(current)
	if err != nil {
		return false, fmt.Errorf("current version %q is not a release version", current)
	}
	latestVersion, err := semver.ParseTolerant(latest)
	if err != nil {
		return false, fmt.Errorf("latest version %q is not a valid version: %w", latest, err)
	}
	return latestVersion.GT(currentVersion), nil
}

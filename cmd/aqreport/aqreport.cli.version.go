package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = VersionUnknown
	commit  = VersionUnknown
)

// versionInfo holds version information
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// versionsYAML is the subset of versions.yaml read as a fallback
type versionsYAML struct {
	Project struct {
		Version string `yaml:"version"`
	} `yaml:"project"`
	Git struct {
		Commit string `yaml:"commit"`
	} `yaml:"git"`
}

// versionsFile is looked up in the working directory when ldflags are unset
const versionsFile = "versions.yaml"

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   CmdNameVersion,
		Short: HelpVersionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != OutputFormatText && format != OutputFormatJSON {
				return newUsageError(ErrMsgInvalidFormat, nil)
			}
			info := getVersionInfo()
			if format == OutputFormatJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), FmtVersion, CLIName, info.Version, info.Commit, info.GoVersion)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, FlagFormat, OutputFormatText, HelpFlagFormat)
	return cmd
}

func getVersionInfo() versionInfo {
	info := versionInfo{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
	}
	if info.Version != VersionUnknown {
		return info
	}

	data, err := os.ReadFile(versionsFile)
	if err != nil {
		return info
	}
	var vy versionsYAML
	if err := yaml.Unmarshal(data, &vy); err != nil {
		return info
	}
	if vy.Project.Version != "" {
		info.Version = vy.Project.Version
	}
	if vy.Git.Commit != "" {
		info.Commit = vy.Git.Commit
	}
	return info
}

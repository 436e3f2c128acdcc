package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mdnspanel/internal/version"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.jsonOut {
				return printJSON(cmd.OutOrStdout(), versionInfo{
					Version:   version.Version,
					Commit:    version.Commit,
					BuildDate: version.BuildDate,
					GoVersion: version.GoVersion,
				})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "mdnspanel "+version.String())
			return err
		},
	}
}

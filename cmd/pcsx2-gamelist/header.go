package main

import (
	"github.com/spf13/cobra"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
)

type headerReport struct {
	Path       string          `json:"path" yaml:"path"`
	Size       int             `json:"size" yaml:"size"`
	Header     gamelist.Header `json:"header" yaml:"header"`
	Supported  bool            `json:"supported" yaml:"supported"`
	Mismatches []string        `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

func newHeaderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "header",
		Short: "Print the cache header and whether it is supported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, path, err := a.readCache()
			if err != nil {
				return err
			}
			h, err := gamelist.ReadHeader(data)
			if err != nil {
				return err
			}

			report := headerReport{
				Path:      path,
				Size:      len(data),
				Header:    h,
				Supported: h.Supported(),
			}
			for _, m := range h.Mismatches() {
				report.Mismatches = append(report.Mismatches, m.String())
			}
			return writeOutput(cmd.OutOrStdout(), a.flags.format, report)
		},
	}
}

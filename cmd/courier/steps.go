package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kode4food/courier/internal/screens"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

type catalogDump struct {
	Namespaces []api.NamespaceInfo  `json:"namespaces" yaml:"namespaces"`
	Coverage   api.CoverageResponse `json:"coverage" yaml:"coverage"`
}

var ErrUnknownFormat = errors.New("unknown output format")

func stepsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Print the step catalog and its screen coverage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dump, err := catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer func() { _ = enc.Close() }()
				return enc.Encode(dump)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(dump)
			default:
				return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml",
		"output format (yaml, json)")
	return cmd
}

func catalog() (*catalogDump, error) {
	reg, err := screens.Default()
	if err != nil {
		return nil, err
	}

	res := &catalogDump{}
	for _, ns := range steps.Namespaces() {
		f, _ := steps.Lookup(ns)
		res.Namespaces = append(res.Namespaces, api.NamespaceInfo{
			Role:      ns.Role,
			Service:   ns.Service,
			Steps:     f.Sequence(),
			Cancelled: f.Cancelled,
			Search:    f.Search,
		})
	}

	required := steps.Required()
	cov := reg.ValidateCoverage(required)
	res.Coverage = api.CoverageResponse{
		Complete: cov.Complete,
		Missing:  cov.Missing,
		Count:    len(required),
	}
	return res, nil
}

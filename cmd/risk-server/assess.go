package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ehr/healthrisk/internal/domain/assessment"
)

const allModules = "all"

func assessCmd() *cobra.Command {
	var module, input string
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score an input file offline without a database",
		Long: `Reads a YAML or JSON file of factor values and prints the computed results.
With --module all the file maps module tags to their inputs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()
			svc := assessment.NewService(assessment.DefaultRegistry(), nil, zerolog.Nop(), nil)
			return runAssess(cmd.OutOrStdout(), svc, module, f)
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "module tag, or \"all\"")
	cmd.Flags().StringVar(&input, "input", "", "path to a .yaml or .json input file")
	_ = cmd.MarkFlagRequired("module")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type offlineResult struct {
	assessment.Summary
	Discrepancy string `json:"discrepancy,omitempty"`
}

// runAssess decodes r and writes one summary per module to w as JSON.
// JSON documents are valid YAML, so one decoder serves both formats.
func runAssess(w io.Writer, svc *assessment.Service, module string, r io.Reader) error {
	var raw map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	inputs := map[string]map[string]interface{}{}
	if module == allModules {
		for tag, v := range raw {
			fields, ok := v.(map[string]interface{})
			if !ok {
				return fmt.Errorf("input for module %q must be a mapping", tag)
			}
			inputs[tag] = fields
		}
	} else {
		inputs[module] = raw
	}

	tags := make([]string, 0, len(inputs))
	for tag := range inputs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	results := make([]offlineResult, 0, len(tags))
	for _, tag := range tags {
		fs, err := svc.ExtractFactors(tag, inputs[tag])
		if err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
		res, err := svc.ComputeAssessment(tag, fs)
		if err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
		results = append(results, offlineResult{Summary: assessment.Summarize(res), Discrepancy: res.Discrepancy})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

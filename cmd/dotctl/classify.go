package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/internal/filing"
)

type classifyOutput struct {
	Classification classification.Result  `json:"classification"`
	Signals        classification.Signals `json:"signals"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var (
		rulesOnly bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "classify [request.json|-]",
		Short: "Classify a filing request without moving anything",
		Long: "Reads a filing request in the same shape the /file endpoint accepts " +
			"and prints the signals and the classification it would receive.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cfg, err := ctx.config()
			if err != nil {
				return err
			}

			logger := ctx.logger()
			var fallback classification.Fallback
			if !rulesOnly {
				inferer, err := classification.NewAgentInferer(&cfg.Agent)
				if err != nil {
					return fmt.Errorf("model classifier: %w", err)
				}
				fallback = classification.NewModelClassifier(inferer, cfg.Filing.ModelTimeoutDuration(), logger)
			}

			classifier := classification.New(cfg.Filing.Policy(), fallback, logger)
			result, signals := classifier.Classify(cmd.Context(), req.Message())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(classifyOutput{Classification: result, Signals: signals})
			}
			printClassification(out, result, signals)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rulesOnly, "rules-only", false, "Skip the model for inconclusive messages")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func readRequest(stdin io.Reader, args []string) (filing.Request, error) {
	var req filing.Request

	r := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func printClassification(w io.Writer, r classification.Result, s classification.Signals) {
	rows := [][]string{
		{"sender internal", mark(s.SenderInternal)},
		{"external recipient", mark(s.RecipientExternal)},
		{"filename has job", mark(s.FilenameHasJob)},
		{"deliverable attachment", mark(s.Deliverable)},
		{"outgoing keywords", mark(s.Keywords.Outgoing)},
		{"brief keywords", mark(s.Keywords.Brief)},
		{"feedback keywords", mark(s.Keywords.Feedback)},
		{"outgoing signals", strconv.Itoa(s.OutgoingCount()) + "/5"},
	}
	fmt.Fprintln(w, renderTable([]string{"Signal", "Value"}, rows))

	fmt.Fprintf(w, "folder:     %s\n", categoryColor(r.Category).Sprint(r.Category))
	fmt.Fprintf(w, "confidence: %s\n", r.Confidence)
	fmt.Fprintf(w, "source:     %s\n", r.Source)
	if r.Reasoning != "" {
		fmt.Fprintf(w, "reasoning:  %s\n", r.Reasoning)
	}
}

func mark(b bool) string {
	if b {
		return color.New(color.FgGreen).Sprint("yes")
	}
	return "no"
}

func categoryColor(c classification.Category) *color.Color {
	switch c {
	case classification.Round:
		return color.New(color.FgGreen, color.Bold)
	case classification.Other:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgCyan)
}

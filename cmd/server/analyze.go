package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
	"github.com/codebuildervaibhav/speech-insights/internal/handlers"
)

// fileReport is one entry of the analyze command's output.
type fileReport struct {
	File    string                    `json:"file"`
	Metrics analytics.DeliveryMetrics `json:"metrics"`
}

func newAnalyzeCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Compute delivery metrics for word-level transcript files",
		Long: `Reads JSON transcripts of the form {"text": "...", "words": [{"start", "end", "text", ...}]}
and prints the delivery metrics of each, in argument order. Use "-" to read stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := analyzeFiles(cmd, args)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(reports)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print single-line JSON")
	return cmd
}

// analyzeFiles reads and analyses every file concurrently. The first failure
// cancels the rest.
func analyzeFiles(cmd *cobra.Command, paths []string) ([]fileReport, error) {
	reports := make([]fileReport, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			req, err := readTranscript(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			if err := analytics.CheckOrder(req.Words); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = fileReport{File: path, Metrics: analytics.Compute(req.Words, req.Text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func readTranscript(stdin io.Reader, path string) (*handlers.AnalyzeRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var req handlers.AnalyzeRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("%s: decode transcript: %w", path, err)
	}
	return &req, nil
}

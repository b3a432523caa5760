package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"blueprint/internal/domain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// blueprintReport is what analyze prints for one idea.
type blueprintReport struct {
	Scores   domain.ValidationScores `yaml:"validation_scores"`
	Features []string                `yaml:"features"`
	Backlog  []domain.TaskTemplate   `yaml:"backlog"`
	Flow     domain.Flow             `yaml:"flow"`
}

func analyzeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "analyze [description]",
		Short: "Print the blueprint for an idea as YAML",
		Long: `Analyze scores an idea, extracts its features and prints the generated
backlog and user flow. The description is taken from the argument, from
--file, or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, err := readDescription(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(buildReport(description)); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the description from a file")
	return cmd
}

func readDescription(stdin io.Reader, args []string, file string) (string, error) {
	var raw string
	switch {
	case len(args) == 1:
		raw = args[0]
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		raw = string(b)
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("description is required")
	}
	return raw, nil
}

func buildReport(description string) blueprintReport {
	features := domain.ExtractFeatures(description)
	return blueprintReport{
		Scores:   domain.ScoreIdea(description),
		Features: features,
		Backlog:  domain.GenerateBacklog(features),
		Flow:     domain.ComposeFlow(features),
	}
}

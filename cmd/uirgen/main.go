package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	cli "github.com/unigen-dev/uirgen/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "uirgen",
		Short: "Normalize provider API descriptions and generate typed models",
	}

	root.AddCommand(newParseCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newGenerateCmd())

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func newParseCmd() *cobra.Command {
	var provider string
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a source document into the canonical schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunParse(cli.RunParseParams{
				Provider: provider,
				Spec:     input,
				Output:   output,
			})
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "openapi", "Frontend to use (openapi, llm-dialect)")
	cmd.Flags().StringVar(&input, "input", "", "Source document file or URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write schema JSON to this file instead of stdout")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var provider string
	var input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a source document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(provider, input)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "openapi", "Frontend to use (openapi, llm-dialect)")
	cmd.Flags().StringVar(&input, "input", "", "Source document file or URL")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var configPath string
	var onlyTarget string
	var input string
	var provider string
	var language string
	var outDir string
	var packageName string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate typed models for configured targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerate(cli.RunGenerateParams{
				ConfigPath: configPath,
				OnlyTarget: onlyTarget,
				Fallback: cli.FallbackParams{
					Spec:        input,
					Provider:    provider,
					Language:    language,
					OutDir:      outDir,
					PackageName: packageName,
				},
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to uirgen.yaml config")
	cmd.Flags().StringVar(&onlyTarget, "target", "", "Generate only the named target language from config")
	// Fallback single-target flags
	cmd.Flags().StringVar(&input, "input", "", "Source document file or URL")
	cmd.Flags().StringVar(&provider, "provider", "", "Frontend to use (openapi, llm-dialect)")
	cmd.Flags().StringVar(&language, "language", "", "Target language (typescript, go, python)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&packageName, "package-name", "", "Package name")

	return cmd
}

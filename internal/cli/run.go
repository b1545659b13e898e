package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	uirgen "github.com/unigen-dev/uirgen"
	"github.com/unigen-dev/uirgen/pkg/config"
	"github.com/unigen-dev/uirgen/pkg/generator"
)

type FallbackParams struct {
	Spec        string
	Provider    string
	Language    string
	OutDir      string
	PackageName string
}

type RunGenerateParams struct {
	ConfigPath string
	OnlyTarget string
	Fallback   FallbackParams
}

type RunParseParams struct {
	Provider string
	Spec     string
	Output   string
}

// RunParse parses a source document and prints the canonical schema as
// JSON, or writes it to the output path when one is given.
func RunParse(p RunParseParams) error {
	result, err := uirgen.Parse(p.Provider, p.Spec)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("parsing %s failed", p.Spec)
	}

	data, err := json.MarshalIndent(result.Schema, "", "  ")
	if err != nil {
		return err
	}
	if p.Output == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(p.Output, append(data, '\n'), 0o644)
}

// RunValidate parses a source document and reports diagnostics without
// emitting the schema.
func RunValidate(provider, spec string) error {
	result, err := uirgen.Parse(provider, spec)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("%s is not valid", spec)
	}
	fmt.Printf("%s is valid (%d types, %d endpoints)\n", spec, len(result.Schema.Types), len(result.Schema.Endpoints))
	return nil
}

func RunGenerate(p RunGenerateParams) error {
	if p.ConfigPath == "" {
		f := p.Fallback
		if f.Spec == "" || f.Language == "" || f.OutDir == "" || f.PackageName == "" {
			return errors.New("either --config or all of --input, --language, --out, --package-name must be provided")
		}
		provider := f.Provider
		if provider == "" {
			provider = "openapi"
		}
		cfg := &config.Config{
			Provider: provider,
			Spec:     f.Spec,
			Targets: []config.Target{
				{
					Language:       f.Language,
					OutputDir:      absPath(f.OutDir),
					PackageName:    f.PackageName,
					PackageVersion: "0.1.0",
				},
			},
		}
		return generateFromConfig(cfg, "")
	}

	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return err
	}
	return generateFromConfig(cfg, p.OnlyTarget)
}

func generateFromConfig(cfg *config.Config, onlyLanguage string) error {
	result, err := uirgen.Parse(cfg.Provider, cfg.Spec)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("parsing %s failed", cfg.Spec)
	}

	gens := uirgen.DefaultGenerators()
	for _, target := range cfg.Targets {
		if onlyLanguage != "" && target.Language != onlyLanguage {
			continue
		}
		gen, ok := gens.Get(target.Language)
		if !ok {
			return fmt.Errorf("unsupported target language: %s", target.Language)
		}
		files, err := gen.Generate(target, result.Schema)
		if err != nil {
			return err
		}
		if err := writeFiles(target.OutputDir, files); err != nil {
			return err
		}
		fmt.Printf("generated %d file(s) for %s in %s\n", len(files), target.Language, target.OutputDir)
	}
	return nil
}

// writeFiles persists generated files under outDir. The core pipeline
// never touches the filesystem; this is the only write site.
func writeFiles(outDir string, files []generator.GeneratedFile) error {
	for _, f := range files {
		dest := filepath.Join(outDir, f.Path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		mode := os.FileMode(0o644)
		if f.Executable {
			mode = 0o755
		}
		if err := os.WriteFile(dest, []byte(f.Content), mode); err != nil {
			return err
		}
	}
	return nil
}

func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, _ := filepath.Abs(p)
	return abs
}

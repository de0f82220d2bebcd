package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tuanknguyen/dynagen/internal/cli/config"
	"github.com/tuanknguyen/dynagen/internal/cli/ui"
	"github.com/tuanknguyen/dynagen/internal/generate"
	"github.com/tuanknguyen/dynagen/internal/schema"
	"github.com/tuanknguyen/dynagen/internal/validate"
	"github.com/tuanknguyen/dynagen/internal/watch"
)

var (
	generateLanguage string
	generateOutput   string
	generateVerbose  bool
	generateWatch    bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateLanguage, "language", "l", "", "Target language (go or python)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory")
	generateCmd.Flags().BoolVar(&generateVerbose, "verbose", false, "Show detailed generation output")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate whenever the schema file changes")
}

var generateCmd = &cobra.Command{
	Use:   "generate [schema file]",
	Short: "Generate entity and repository sources from a schema document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(generateVerbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if generateLanguage != "" {
			cfg.Language = generateLanguage
		}
		if generateOutput != "" {
			cfg.Output.Dir = generateOutput
		}
		schemaPath := cfg.SchemaPath
		if len(args) == 1 {
			schemaPath = args[0]
		}

		lang, err := generate.LanguageByName(cfg.Language)
		if err != nil {
			return err
		}
		generator, err := generate.New(lang)
		if err != nil {
			return err
		}

		valid, err := runGeneration(logger, generator, lang, schemaPath, cfg.Output.Dir)
		if err != nil {
			return err
		}

		if generateWatch {
			return watchAndRegenerate(logger, generator, lang, schemaPath, cfg.Output.Dir)
		}

		if !valid {
			os.Exit(1)
		}
		return nil
	},
}

// runGeneration executes one full generation pass: read, validate, emit,
// write. It reports whether the schema validated.
func runGeneration(logger *zap.Logger, generator *generate.Generator, lang *generate.Language, schemaPath, outputDir string) (bool, error) {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return false, fmt.Errorf("failed to read schema: %w", err)
	}
	doc, err := schema.Load(data)
	if err != nil {
		// A wrong-typed field reads like any other validation failure; in
		// watch mode it must not tear the loop down.
		if structural := validate.FromDecodeError(err); structural != nil {
			if werr := ui.WriteResult(os.Stderr, structural, ui.ReportOptions{}); werr != nil {
				return false, werr
			}
			return false, nil
		}
		return false, err
	}

	result, err := generator.Generate(doc)
	if err != nil {
		return false, err
	}

	logger.Info("generation run",
		zap.String("run_id", result.RunID),
		zap.String("language", result.Language),
		zap.Int("errors", len(result.Validation.Errors)),
		zap.Int("warnings", len(result.Validation.Warnings)),
	)

	if err := ui.WriteResult(os.Stderr, result.Validation, ui.ReportOptions{}); err != nil {
		return false, err
	}
	if !result.Validation.IsValid {
		return false, nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}

	ext := ".py"
	if lang == generate.Go {
		ext = ".go"
	}
	for tableName, source := range result.Tables {
		path := filepath.Join(outputDir, fileName(tableName)+ext)
		if err := os.WriteFile(path, []byte(source), 0644); err != nil {
			return false, fmt.Errorf("writing %s: %w", path, err)
		}
		logger.Info("wrote table sources", zap.String("table", tableName), zap.String("path", path))

		tablePath := filepath.Join(outputDir, fileName(tableName)+".create_table.json")
		if err := os.WriteFile(tablePath, []byte(result.TableInputs[tableName]), 0644); err != nil {
			return false, fmt.Errorf("writing %s: %w", tablePath, err)
		}
		logger.Info("wrote table definition", zap.String("table", tableName), zap.String("path", tablePath))
	}

	for entityName, output := range result.Entities {
		for _, dropped := range output.Dropped {
			logger.Debug("pattern absorbed into CRUD surface",
				zap.String("entity", entityName),
				zap.String("pattern", dropped.Pattern.Name),
				zap.String("reason", dropped.Reason),
			)
		}
	}

	fmt.Printf("Generated %d table file(s), %d access pattern(s)\n",
		len(result.Tables), len(result.AccessPatternMapping))
	return true, nil
}

// watchAndRegenerate blocks, re-running generation on every schema change
// until interrupted. A schema that fails validation mid-edit only logs; the
// watch keeps running.
func watchAndRegenerate(logger *zap.Logger, generator *generate.Generator, lang *generate.Language, schemaPath, outputDir string) error {
	watcher, err := watch.NewSchemaWatcher(schemaPath,
		func() error {
			logger.Info("schema changed, regenerating", zap.String("path", schemaPath))
			_, err := runGeneration(logger, generator, lang, schemaPath, outputDir)
			return err
		},
		func(err error) {
			logger.Error("watch error", zap.Error(err))
		},
	)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	logger.Info("watching schema for changes", zap.String("path", schemaPath))
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// fileName flattens a table name into a safe file stem.
func fileName(table string) string {
	out := make([]rune, 0, len(table))
	for _, r := range table {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

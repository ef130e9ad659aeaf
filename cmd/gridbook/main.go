// Package main provides the CLI entry point for gridbook-go.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridbook/gridbook-go/pkg/gridbook"
	"github.com/gridbook/gridbook-go/pkg/gridbook/codec"
)

var (
	configPath string
	outputPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridbook",
		Short: "Work with gridbook spreadsheet documents",
		Long: `gridbook-go reads and writes YAML spreadsheet documents: key-value
row records grouped into named sheets, with per-cell functions.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ./gridbook.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	fmtCmd := &cobra.Command{
		Use:   "fmt [input.yaml]",
		Short: "Parse a document and print its canonical serialization",
		Args:  cobra.ExactArgs(1),
		RunE:  runFmt,
	}
	fmtCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	convertCmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert between YAML documents and XLSX workbooks",
		Long: `convert picks the direction from the file extensions: a .yaml or .yml
input with an .xlsx output exports, an .xlsx input with a .yaml output
imports.`,
		Args: cobra.ExactArgs(2),
		RunE: runConvert,
	}

	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "List registered cell functions, including configured macros",
		Args:  cobra.NoArgs,
		RunE:  runFunctions,
	}

	rootCmd.AddCommand(fmtCmd, convertCmd, functionsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// config is the CLI configuration loaded through viper.
type config struct {
	Macros []gridbook.MacroRef `mapstructure:"macros"`
}

func loadConfig() (*config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("gridbook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath == "" && errors.As(err, &notFound) {
			return &config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(logLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func newSession(ctx context.Context, logger *log.Logger) (*gridbook.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := gridbook.New(ctx, gridbook.Options{Logger: logger})
	if err := s.LoadMacros(ctx, cfg.Macros); err != nil {
		return nil, fmt.Errorf("failed to load macros: %w", err)
	}
	return s, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	sheets, err := codec.ParseWorkbook(string(data))
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	out, err := codec.SerializeWorkbook(sheets)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		return os.WriteFile(outputPath, []byte(out), 0644)
	}
	fmt.Print(out)
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	inPath, outPath := args[0], args[1]
	inExt := strings.ToLower(filepath.Ext(inPath))
	outExt := strings.ToLower(filepath.Ext(outPath))

	switch {
	case isYAMLExt(inExt) && outExt == ".xlsx":
		data, err := os.ReadFile(inPath)
		if err != nil {
			return err
		}
		sheets, err := codec.ParseWorkbook(string(data))
		if err != nil {
			return fmt.Errorf("parse failed: %w", err)
		}
		file, err := codec.ExportXLSX(sheets)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return file.SaveAs(outPath)

	case inExt == ".xlsx" && isYAMLExt(outExt):
		f, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		sheets, err := codec.ImportXLSX(f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		out, err := codec.SerializeWorkbook(sheets)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		return os.WriteFile(outPath, []byte(out), 0644)

	default:
		return fmt.Errorf("unsupported conversion: %s to %s", inExt, outExt)
	}
}

func runFunctions(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	s, err := newSession(cmd.Context(), logger)
	if err != nil {
		return err
	}

	for _, fn := range s.Registry.List() {
		if fn.Meta.Module != "" {
			fmt.Printf("%s\t%s\t%s (module %s)\n", fn.ID, fn.Meta.Kind, fn.Label, fn.Meta.Module)
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", fn.ID, fn.Meta.Kind, fn.Label)
	}
	return nil
}

func isYAMLExt(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// Package main provides the CLI entry point for the fleet spreadsheet
// enrichment service.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/classify"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/config"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/logging"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/rules"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sheetName  string
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "modifier",
		Short: "Enrich fleet spreadsheets with insurance coverage columns",
		Long: `modifier classifies each vehicle row of a fleet spreadsheet into a
coverage category and appends insurance limit/deductible columns, preserving
the original workbook formatting.`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP enrichment service",
		RunE:  runServe,
	}

	processCmd := &cobra.Command{
		Use:   "process [input.xlsx]",
		Short: "Enrich a single spreadsheet file",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}
	processCmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet name to enrich (required)")
	processCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: modified_<input>)")
	processCmd.MarkFlagRequired("sheet")

	rootCmd.AddCommand(serveCmd, processCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newService wires the enrichment pipeline from the environment.
func newService() (*enrich.Service, *config.Config, *zap.Logger, error) {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	ruleSet := rules.Default()
	provider, err := classify.NewProvider(cfg.GeminiAPIKey, cfg.GeminiModel, ruleSet, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("configure classifier: %w", err)
	}

	opts := enrich.Options{
		TargetColumn:     cfg.TargetColumn,
		HeaderSearchRows: cfg.HeaderSearchRows,
		DefaultHeaderRow: cfg.DefaultHeaderRow,
		NewColumnWidth:   cfg.NewColumnWidth,
		Workers:          cfg.MaxWorkers,
		CallTimeout:      cfg.CallTimeout,
	}
	return enrich.NewService(opts, ruleSet, provider, log), cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, cfg, log, err := newService()
	if err != nil {
		return err
	}
	defer log.Sync()

	cors := server.CORSConfig{
		Origins:     cfg.CORSOrigins,
		Methods:     cfg.CORSMethods,
		Headers:     cfg.CORSHeaders,
		Credentials: cfg.CORSCredentials,
	}

	log.Info("starting enrichment service",
		zap.Int("port", cfg.Port),
		zap.Bool("ai_configured", svc.Provider().Remote))
	return server.New(svc, cors, log).ListenAndServe(cfg.Port)
}

func runProcess(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}
	if err := enrich.ValidateFilename(inputPath); err != nil {
		return err
	}

	svc, _, log, err := newService()
	if err != nil {
		return err
	}
	defer log.Sync()

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	tmpPath, err := svc.Export(cmd.Context(), content, sheetName)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}
	defer os.Remove(tmpPath)

	dest := outputPath
	if dest == "" {
		dest = filepath.Join(filepath.Dir(inputPath), "modified_"+filepath.Base(inputPath))
	}
	if err := copyFile(tmpPath, dest); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %s\n", dest)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

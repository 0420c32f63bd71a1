package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/aqlanhadi/stmtx/export"
	"github.com/aqlanhadi/stmtx/extractor"
	"github.com/aqlanhadi/stmtx/extractor/common"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts statement(s)",
	Long: `Extracts a given statement or every PDF in a folder using the layout of
the selected bank, then writes statement_<account>.<format> files.`,
	RunE: handler,
}

func handler(cmd *cobra.Command, args []string) error {
	target := viper.GetString("target")
	if len(args) == 1 {
		target = args[0]
	}

	bank, err := selectedBank()
	if err != nil {
		return err
	}

	formats, err := export.ParseFormats(viper.GetStringSlice("export.formats"))
	if err != nil {
		return err
	}

	results, err := extractor.ProcessPath(context.Background(), target, bank, viper.GetInt("workers"))
	if err != nil {
		return err
	}

	if viper.GetBool("json") {
		return printJSON(results)
	}

	opts := export.WorkbookOptions{Header: viper.GetBool("export.header")}
	output := viper.GetString("export.output")
	if output == "" {
		output = "."
	}
	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
		case r.Statement.Outcome != common.OutcomeOK:
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Path, r.Statement.Outcome.Message())
		default:
			paths, err := export.WriteStatement(output, r.Statement, formats, opts)
			if err != nil {
				failed++
				log.WithField("file", r.Path).Errorf("❌ %v", err)
				continue
			}
			for _, p := range paths {
				fmt.Println(p)
			}
		}
	}

	if report := viper.GetString("report"); report != "" {
		if err := writeReport(report, results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func selectedBank() (common.Bank, error) {
	name := viper.GetString("bank")
	if name == "" {
		return "", fmt.Errorf("--bank is required")
	}
	return common.ParseBank(name)
}

func printJSON(results []extractor.Result) error {
	out := make([]interface{}, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			out = append(out, map[string]string{"file": r.Path, "error": r.Err.Error()})
			continue
		}
		out = append(out, extractor.CreateFinalOutput(r.Statement, false, false))
	}

	var v interface{} = out
	if len(out) == 1 {
		v = out[0]
	}
	asJSON, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(asJSON))
	return nil
}

func writeReport(path string, results []extractor.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return export.WriteReport(file, results)
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("folder", "f", ".", "File or folder in which stmtx will scan for PDFs")
	extractCmd.Flags().StringP("output", "o", "", "Directory for the exported files (default from config)")
	extractCmd.Flags().StringSlice("format", nil, "Output formats: xlsx, csv, json")
	extractCmd.Flags().Bool("header", false, "Write the column names above the rows in the workbook")
	extractCmd.Flags().Bool("json", false, "Print the extracted statements to stdout instead of writing files")
	extractCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Files processed in parallel")
	extractCmd.Flags().String("report", "", "Write a CSV line per processed file to this path")

	viper.BindPFlag("target", extractCmd.Flags().Lookup("folder"))
	viper.BindPFlag("export.output", extractCmd.Flags().Lookup("output"))
	viper.BindPFlag("export.formats", extractCmd.Flags().Lookup("format"))
	viper.BindPFlag("export.header", extractCmd.Flags().Lookup("header"))
	viper.BindPFlag("json", extractCmd.Flags().Lookup("json"))
	viper.BindPFlag("workers", extractCmd.Flags().Lookup("workers"))
	viper.BindPFlag("report", extractCmd.Flags().Lookup("report"))
}

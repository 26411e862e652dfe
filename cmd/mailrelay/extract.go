package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/mailrelay/internal/extract"
	"github.com/hyperifyio/mailrelay/internal/normalize"
)

var (
	extractHTML bool
	extractText bool
)

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&extractHTML, "html", false, "Force the structural (HTML tree) strategy")
	extractCmd.Flags().BoolVar(&extractText, "text", false, "Force the line strategy on plain text")
}

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract fields from an email body and print them as JSON",
	Long:  "Reads an email body from a file (or stdin when no file is given), runs the extractor and prints the result.\nUseful for checking new upstream templates without posting anything.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

type extractOutput struct {
	Strategy string `json:"strategy"`
	extract.Result
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractHTML && extractText {
		return fmt.Errorf("--html and --text are mutually exclusive")
	}
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	raw := string(b)

	var ex extract.Extractor
	switch {
	case extractHTML:
		ex = extract.StructuralExtractor{}
	case extractText:
		ex = extract.LineExtractor{Normalizer: normalize.PlainText{}}
	default:
		ex = extract.For(raw)
	}
	res := ex.Extract(raw)
	if res.Fields == nil {
		res.Fields = []extract.Field{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(extractOutput{Strategy: extract.StrategyName(ex), Result: res})
}

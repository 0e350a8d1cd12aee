package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yegors/rwy-watch/internal/config"
	"github.com/yegors/rwy-watch/internal/runway"
	"github.com/yegors/rwy-watch/pkg/logger"
)

var parseAirport string

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Parse broadcast text and print the extracted configuration",
	Long: `Parses one broadcast given as an argument or on stdin and prints the
extracted runway configuration with validation findings as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseAirport, "airport", "KXXX", "airport code of the broadcast")
}

func runParse(_ *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(b)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	p := runway.NewParser(cfg.Parser.ArrivalOnlyAirports, cfg.Parser.AirportConfigs, logger.Nop())
	parsed := p.Parse(parseAirport, text, "")

	out := struct {
		*runway.Configuration
		Issues []runway.Issue `json:"issues"`
	}{parsed, p.Validate(parsed)}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lexintake/intake-cli/internal/asr"
	"github.com/lexintake/intake-cli/internal/config"
	"github.com/lexintake/intake-cli/internal/model"
	"github.com/lexintake/intake-cli/internal/ocr"
	"github.com/lexintake/intake-cli/internal/pipeline"
	"github.com/lexintake/intake-cli/pkg/anthropic"
)

var runClientsFile string

var runCmd = &cobra.Command{
	Use:   "run <request.json>",
	Short: "Process a single intake request",
	Long:  "Reads an intake request from a JSON file, runs the extraction graph, and prints the proposed tasks as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadRequest(args[0])
		if err != nil {
			return err
		}

		if runClientsFile != "" {
			clients, err := loadClientRoster(runClientsFile)
			if err != nil {
				return err
			}
			req.ClientList = append(req.ClientList, clients...)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		result, err := p.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runClientsFile, "clients", "", "YAML file with the known-client roster to merge into the request")
	rootCmd.AddCommand(runCmd)
}

// loadRequest reads one intake request from a JSON file.
func loadRequest(path string) (model.IntakeRequest, error) {
	var req model.IntakeRequest

	data, err := os.ReadFile(path)
	if err != nil {
		return req, eris.Wrapf(err, "cmd: read request file %s", path)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, eris.Wrapf(err, "cmd: parse request file %s", path)
	}
	return req, nil
}

// loadClientRoster reads a known-client list from a YAML file.
func loadClientRoster(path string) ([]model.KnownClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: read clients file %s", path)
	}

	var roster struct {
		Clients []model.KnownClient `yaml:"clients"`
	}
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, eris.Wrapf(err, "cmd: parse clients file %s", path)
	}
	return roster.Clients, nil
}

// buildPipeline wires the gateways and the rate-limited inference client.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	if cfg.Anthropic.Key == "" {
		return nil, fmt.Errorf("anthropic.key is required")
	}

	aiClient := anthropic.NewRateLimited(
		anthropic.NewClient(cfg.Anthropic.Key),
		cfg.Anthropic.RequestsPerSecond,
	)

	extractor, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		return nil, err
	}
	ocrGateway := ocr.NewGateway(extractor, cfg.OCR.MaxConcurrency)

	speech, err := asr.NewSpeechClient(cfg.ASR)
	if err != nil {
		return nil, err
	}
	asrGateway := asr.NewGateway(speech, cfg.ASR.MaxConcurrency)

	return pipeline.New(cfg, aiClient, ocrGateway, asrGateway), nil
}

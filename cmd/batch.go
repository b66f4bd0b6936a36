package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexintake/intake-cli/internal/model"
)

var batchOutFile string

var batchCmd = &cobra.Command{
	Use:   "batch <requests.jsonl>",
	Short: "Process many intake requests concurrently",
	Long:  "Reads one intake request per line from a JSONL file and processes them with bounded concurrency. Each request owns an isolated run; one failure never aborts the batch.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requests, err := loadRequestLines(args[0])
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return eris.New("cmd: no requests found in batch file")
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		out := os.Stdout
		if batchOutFile != "" {
			f, err := os.Create(batchOutFile)
			if err != nil {
				return eris.Wrapf(err, "cmd: create output file %s", batchOutFile)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		var mu sync.Mutex
		enc := json.NewEncoder(out)

		g, gCtx := errgroup.WithContext(cmd.Context())
		g.SetLimit(cfg.Batch.MaxConcurrentRequests)

		for i, req := range requests {
			g.Go(func() error {
				result, runErr := p.Run(gCtx, req)
				if runErr != nil {
					// Pre-flight rejection of one request; record and move on.
					zap.L().Error("batch: request rejected",
						zap.Int("line", i+1),
						zap.Error(runErr),
					)
					mu.Lock()
					defer mu.Unlock()
					return enc.Encode(map[string]any{
						"line":  i + 1,
						"error": runErr.Error(),
					})
				}

				mu.Lock()
				defer mu.Unlock()
				return enc.Encode(result)
			})
		}

		return g.Wait()
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutFile, "out", "o", "", "write JSONL results to a file instead of stdout")
	rootCmd.AddCommand(batchCmd)
}

// loadRequestLines reads one JSON request per non-blank line.
func loadRequestLines(path string) ([]model.IntakeRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: open batch file %s", path)
	}
	defer f.Close() //nolint:errcheck

	var requests []model.IntakeRequest
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var req model.IntakeRequest
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return nil, eris.Wrapf(err, "cmd: parse batch line %d", line)
		}
		requests = append(requests, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "cmd: scan batch file %s", path)
	}

	return requests, nil
}

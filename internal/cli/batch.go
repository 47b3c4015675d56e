package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nleskov/modelscout/internal/model"
	"github.com/nleskov/modelscout/internal/pipeline"
	"github.com/nleskov/modelscout/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run multiple queries from a file in parallel",
	Long: `Batch processes queries concurrently, one query per line.

A line is a product category, optionally followed by "|" and a
comma-separated attribute list:

  vacuum cleaner | cordless, cheap
  graphics card
  laptop | lightweight

Each query writes a JSON result file into the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./modelscout-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := resolveLLMKey(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	queries, err := readQueries(args[0])
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries in %s", args[0])
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting batch",
		zap.Int("queries", len(queries)),
		zap.Int("workers", concurrency))

	pool := worker.NewPool(concurrency)
	pool.Start()
	for _, q := range queries {
		pool.Submit(&queryJob{pipeline: p, query: q, ctx: ctx})
	}

	var failed int
	for _, res := range pool.Wait() {
		qr, ok := res.(*queryResult)
		if !ok {
			continue
		}
		if qr.err != nil {
			failed++
			logger.Error("query failed",
				zap.String("product", qr.query.Product),
				zap.Error(qr.err))
			continue
		}
		if err := writeResult(outputDir, qr); err != nil {
			failed++
			logger.Error("write result failed",
				zap.String("product", qr.query.Product),
				zap.Error(err))
		}
	}

	logger.Info("batch complete",
		zap.Int("total", len(queries)),
		zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(queries))
	}
	return nil
}

// readQueries parses the batch input file. Blank lines and lines starting
// with # are skipped.
func readQueries(path string) ([]model.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var queries []model.Query
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		product, attrPart, _ := strings.Cut(line, "|")
		var attrs []string
		for _, a := range strings.Split(attrPart, ",") {
			if a = strings.TrimSpace(a); a != "" {
				attrs = append(attrs, a)
			}
		}

		q, err := model.NewQuery(product, attrs)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		queries = append(queries, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries file: %w", err)
	}
	return queries, nil
}

type queryJob struct {
	pipeline *pipeline.Pipeline
	query    model.Query
	ctx      context.Context
}

type queryResult struct {
	query  model.Query
	result model.PipelineResult
	err    error
}

func (r *queryResult) GetError() error { return r.err }

func (j *queryJob) Execute(_ context.Context) worker.Result {
	result, err := j.pipeline.HandleQuery(j.ctx, j.query.Product, j.query.Attributes)
	return &queryResult{query: j.query, result: result, err: err}
}

func writeResult(dir string, qr *queryResult) error {
	data, err := json.MarshalIndent(qr.result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	name := slugify(qr.query.Product) + ".json"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
}

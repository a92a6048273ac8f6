package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/poiesic/netsight"
	"github.com/poiesic/netsight/config"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/search"
	"github.com/urfave/cli/v2"
)

// runner carries what every command needs to open the database and print.
type runner struct {
	out     io.Writer
	options []netsight.AnalyzerOption
}

func (r *runner) open(c *cli.Context) (*netsight.Analyzer, error) {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	analyzer, err := netsight.NewAnalyzer(cfg, r.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return analyzer, nil
}

func (r *runner) ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("ingest needs exactly one CSV file")
	}
	path := c.Args().First()

	analyzer, err := r.open(c)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	pipeline, err := analyzer.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Ingesting %s\n", path)
	result, err := pipeline.IngestFile(c.Context, path)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	renderIngestion(r.out, result)
	return nil
}

func (r *runner) queryCommand(c *cli.Context) error {
	after, err := parseDateFlag(c, "after")
	if err != nil {
		return err
	}
	before, err := parseDateFlag(c, "before")
	if err != nil {
		return err
	}

	req := search.Request{
		Text: strings.Join(c.Args().Slice(), " "),
		Filter: search.Filter{
			Company:         c.String("company"),
			NameContains:    c.String("name"),
			ConnectedAfter:  after,
			ConnectedBefore: before,
		},
		Summarize: c.Bool("summary"),
		Limit:     c.Int("limit"),
	}
	if strings.TrimSpace(req.Text) == "" && req.Filter.IsEmpty() {
		return errors.New("query needs text, a filter flag, or both")
	}

	analyzer, err := r.open(c)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	orchestrator, err := analyzer.NewOrchestrator()
	if err != nil {
		return err
	}
	resp, err := orchestrator.Query(c.Context, req)
	if err != nil {
		return err
	}
	renderResponse(r.out, resp)
	return nil
}

func (r *runner) detailsCommand(c *cli.Context) error {
	name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if name == "" {
		return errors.New("details needs a contact name")
	}

	analyzer, err := r.open(c)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	orchestrator, err := analyzer.NewOrchestrator()
	if err != nil {
		return err
	}
	details, err := orchestrator.Details(c.Context, name)
	if err != nil {
		return fmt.Errorf("looking up %q: %w", name, err)
	}
	renderDetails(r.out, details)
	return nil
}

func (r *runner) statusCommand(c *cli.Context) error {
	analyzer, err := r.open(c)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	status, err := analyzer.Status(c.Context)
	if err != nil {
		return err
	}
	renderStatus(r.out, analyzer.Config(), status)
	return nil
}

func (r *runner) reembedCommand(c *cli.Context) error {
	analyzer, err := r.open(c)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	reembedder, err := analyzer.NewReembedder(os.Stderr)
	if err != nil {
		return err
	}

	cfg := analyzer.Config()
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	result, err := reembedder.Run(c.Context)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	fmt.Fprintf(r.out, "%s %d people, %d embeddings in %s\n",
		okStyle.Render("Reembedded"), result.People, result.Embeddings, result.Elapsed.Round(time.Millisecond))
	return nil
}

func parseDateFlag(c *cli.Context, name string) (time.Time, error) {
	t, err := core.ParseConnectedOn(c.String(name))
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

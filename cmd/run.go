package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medatlas/provider-cli/internal/adapter"
	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/ocr"
	"github.com/medatlas/provider-cli/internal/pipeline"
	"github.com/medatlas/provider-cli/internal/scrape"
	"github.com/medatlas/provider-cli/internal/store"
	"github.com/medatlas/provider-cli/pkg/npi"
)

var (
	runID          string
	runStatus      string
	runState       string
	runLimit       int
	runOffset      int
	runConcurrency int
)

var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"validate"},
	Short:   "Validate, reconcile, and merge imported provider records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		records, err := selectRecords(cmd, st)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			zap.L().Info("no records match, nothing to do")
			return nil
		}

		orchestrator, err := buildOrchestrator(st)
		if err != nil {
			return err
		}

		zap.L().Info("pipeline starting",
			zap.Int("records", len(records)),
			zap.Int("concurrency", cfg.Pipeline.Concurrency),
		)

		stats, err := orchestrator.Run(ctx, records)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("pipeline complete",
			zap.Int("processed", stats.TotalProcessed),
			zap.Int("validated", stats.ValidatedCount),
			zap.Int("needs_review", stats.NeedsReviewCount),
			zap.Int("errored", stats.ErroredCount),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

// selectRecords resolves the run scope from flags: one record by id, or a
// filtered listing.
func selectRecords(cmd *cobra.Command, st store.Store) ([]model.ProviderRecord, error) {
	ctx := cmd.Context()

	if runID != "" {
		rec, err := st.GetProvider(ctx, runID)
		if err != nil {
			return nil, eris.Wrap(err, "get provider")
		}
		return []model.ProviderRecord{*rec}, nil
	}

	records, err := st.ListProviders(ctx, store.ProviderFilter{
		Status: model.ReviewStatus(runStatus),
		State:  runState,
		Limit:  runLimit,
		Offset: runOffset,
	})
	if err != nil {
		return nil, eris.Wrap(err, "list providers")
	}
	return records, nil
}

// buildOrchestrator wires the validation sources, enrichment sources, and
// store into a pipeline orchestrator.
func buildOrchestrator(st store.Store) (*pipeline.Orchestrator, error) {
	registryTimeout := time.Duration(cfg.Registry.TimeoutSecs) * time.Second
	scrapeTimeout := time.Duration(cfg.Scrape.TimeoutSecs) * time.Second

	npiClient := npi.NewClient(
		npi.WithBaseURL(cfg.Registry.BaseURL),
		npi.WithHTTPClient(&http.Client{Timeout: registryTimeout}),
	)

	scraper := scrape.NewWebsiteScraper(
		scrape.WithRateLimit(cfg.Scrape.RateLimit),
		scrape.WithClient(&http.Client{Timeout: scrapeTimeout}),
	)

	specialties := adapter.NewSpecialtyNormalizer()
	if path := cfg.Pipeline.SpecialtyMapPath; path != "" {
		if err := specialties.LoadOverrides(path); err != nil {
			return nil, eris.Wrap(err, "load specialty map")
		}
	}

	extractor, err := ocr.NewExtractor(cfg.OCR.Provider, cfg.OCR.PdfToTextPath)
	if err != nil {
		return nil, eris.Wrap(err, "init ocr extractor")
	}

	validation := pipeline.NewValidationStage(
		adapter.NewPhoneAdapter(),
		adapter.NewAddressAdapter(),
		adapter.NewRegistryAdapter(npiClient, registryTimeout),
		adapter.NewWebAdapter(scraper, specialties, scrapeTimeout),
	)
	enrichment := pipeline.NewEnrichmentStage(
		adapter.NewDocumentAdapter(extractor, scrapeTimeout),
	)

	concurrency := cfg.Pipeline.Concurrency
	if runConcurrency > 0 {
		concurrency = runConcurrency
	}

	return pipeline.NewOrchestrator(validation, enrichment, st, concurrency), nil
}

func init() {
	runCmd.Flags().StringVar(&runID, "id", "", "process a single provider by id")
	runCmd.Flags().StringVar(&runStatus, "status", string(model.StatusPending), "process records with this validation status")
	runCmd.Flags().StringVar(&runState, "state", "", "restrict to providers in this state")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max records to process (0 = all)")
	runCmd.Flags().IntVar(&runOffset, "offset", 0, "records to skip")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "override configured worker count")
	rootCmd.AddCommand(runCmd)
}

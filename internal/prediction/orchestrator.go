package prediction

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"fluxgallery/internal/domain"
	"fluxgallery/internal/identity"
	"fluxgallery/internal/modelcfg"
	"fluxgallery/internal/providers/azure"
	"fluxgallery/internal/ratelimit"
	"fluxgallery/internal/safety"
)

// ProviderClient is the single-image generation call the orchestrator fans
// out over.
type ProviderClient interface {
	Generate(ctx context.Context, p azure.Params) (*azure.Response, error)
}

// ModelSource resolves model configurations.
type ModelSource interface {
	GetByID(id string) (*modelcfg.Model, error)
}

// Orchestrator runs the prediction pipeline: precondition checks, concurrent
// variation fan-out, safety filtering, ingest and persistence.
type Orchestrator struct {
	models    ModelSource
	limiter   ratelimit.Limiter
	client    ProviderClient
	ingestor  *Ingestor
	records   domain.GenerationRepository
	allowlist *identity.Allowlist
	logger    zerolog.Logger
}

// NewOrchestrator wires the pipeline's collaborators.
func NewOrchestrator(
	models ModelSource,
	limiter ratelimit.Limiter,
	client ProviderClient,
	ingestor *Ingestor,
	records domain.GenerationRepository,
	allowlist *identity.Allowlist,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		models:    models,
		limiter:   limiter,
		client:    client,
		ingestor:  ingestor,
		records:   records,
		allowlist: allowlist,
		logger:    logger,
	}
}

// Generate executes one full orchestration run. It returns a RequestError
// only for precondition failures or when every variation was dropped;
// individual variation failures are soft and never surface to the caller.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Prediction, error) {
	model, err := o.models.GetByID(req.ModelID)
	if err != nil || model == nil || !model.Enabled {
		return nil, errModelUnavailable()
	}
	if model.Provider != modelcfg.ProviderAzure {
		return nil, errUnsupportedProvider()
	}
	if model.Endpoint == "" || model.APIKey == "" {
		return nil, errModelMisconfigured()
	}

	unlimited := o.allowlist.IsUnlimited(req.Requester)
	if !o.limiter.Allow(ctx, req.Requester.ID, unlimited) {
		return nil, errRateLimited()
	}

	count := clampVariations(req.VariationCount, unlimited)
	responses := fanOut(count, func(int) variationResult {
		resp, err := o.client.Generate(ctx, azure.Params{
			Endpoint: model.Endpoint,
			APIKey:   model.APIKey,
			Prompt:   req.Prompt,
			Ratio:    req.AspectRatio,
			Quality:  model.Quality,
		})
		return variationResult{resp: resp, err: err}
	})

	predictionID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	urls := o.collectSurvivors(ctx, req, predictionID, count, responses)
	if len(urls) == 0 {
		return nil, errAllVariationsFailed()
	}

	var output any = urls
	if len(urls) == 1 {
		output = urls[0]
	}
	return &Prediction{
		ID:     predictionID,
		Status: StatusSucceeded,
		Output: output,
		DataID: predictionID,
	}, nil
}

type variationResult struct {
	resp *azure.Response
	err  error
}

// fanOut runs count calls concurrently and joins on all of them. Every call
// is captured in the slot of its originating index, so the returned slice is
// in index order no matter which call finishes last. A failed call never
// cancels its siblings.
func fanOut(count int, call func(i int) variationResult) []variationResult {
	results := make([]variationResult, count)

	var g errgroup.Group
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			results[i] = call(i)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// collectSurvivors applies safety filtering and ingest per variation, in
// index order, and persists each survivor. Persistence failures are logged
// but never discard an already-generated image.
func (o *Orchestrator) collectSurvivors(ctx context.Context, req Request, predictionID string, total int, results []variationResult) []string {
	urls := make([]string, 0, len(results))

	for i, result := range results {
		log := o.logger.With().Int("variation", i).Str("prediction_id", predictionID).Logger()

		if result.err != nil {
			log.Warn().Err(result.err).Msg("prediction: variation failed")
			continue
		}

		verdict := safety.Evaluate(result.resp)
		if verdict.Filtered {
			log.Warn().Str("reason", verdict.Reason).Msg("prediction: variation filtered")
			continue
		}

		url, err := o.ingestor.Ingest(ctx, result.resp.First(), req.Requester, req.ModelID)
		if err != nil {
			log.Warn().Err(err).Msg("prediction: variation ingest failed")
			continue
		}
		urls = append(urls, url)

		record := &domain.Generation{
			ID:              uuid.NewString(),
			Prompt:          req.Prompt,
			AspectRatio:     req.AspectRatio,
			IsPublic:        req.IsPublic,
			ModelID:         req.ModelID,
			AssetURL:        url,
			PredictionID:    predictionID,
			VariationIndex:  i,
			TotalVariations: total,
		}
		if !req.Requester.IsAnonymous() {
			userID := req.Requester.ID
			record.UserID = &userID
		}
		if err := o.records.Insert(ctx, record); err != nil {
			log.Error().Err(err).Msg("prediction: failed to persist generation record")
		}
	}

	return urls
}

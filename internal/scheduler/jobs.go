package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"
	"signaldesk.com/internal/catalog"
)

// Sweeper drops expired editing sessions and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// DraftSweepJob evicts drafts whose session expired from an in-memory store.
type DraftSweepJob struct {
	store Sweeper
	log   zerolog.Logger
}

func NewDraftSweepJob(store Sweeper, log zerolog.Logger) *DraftSweepJob {
	return &DraftSweepJob{
		store: store,
		log:   log.With().Str("job", "draft_sweep").Logger(),
	}
}

func (j *DraftSweepJob) Name() string {
	return "draft_sweep"
}

func (j *DraftSweepJob) Run() error {
	if removed := j.store.Sweep(); removed > 0 {
		j.log.Info().Int("removed", removed).Msg("Expired drafts swept")
	}
	return nil
}

// CatalogCheckJob reports contracts whose point value disagrees with
// tickValue * ticksPerPoint.
type CatalogCheckJob struct {
	log zerolog.Logger
}

func NewCatalogCheckJob(log zerolog.Logger) *CatalogCheckJob {
	return &CatalogCheckJob{log: log.With().Str("job", "catalog_check").Logger()}
}

func (j *CatalogCheckJob) Name() string {
	return "catalog_check"
}

func (j *CatalogCheckJob) Run() error {
	violations := catalog.Validate()
	for _, v := range violations {
		j.log.Warn().Str("symbol", v.Symbol).Msg(v.String())
	}
	if len(violations) > 0 {
		return fmt.Errorf("%d catalog entries violate pointValue = tickValue * ticksPerPoint", len(violations))
	}
	return nil
}

// Package maintenance runs background housekeeping. The only job today is
// the failed-document sweeper: FAILED uploads are terminal and useless, so
// they are purged after a retention window.
package maintenance

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/interfaces"
)

// Sweeper periodically removes FAILED documents older than the retention
// window, together with any chunks or messages left behind.
type Sweeper struct {
	documents interfaces.DocumentStorage
	chunks    interfaces.ChunkStorage
	messages  interfaces.MessageStorage
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    arbor.ILogger
}

// NewSweeper creates a sweeper with the given cron schedule and retention.
func NewSweeper(
	documents interfaces.DocumentStorage,
	chunks interfaces.ChunkStorage,
	messages interfaces.MessageStorage,
	schedule string,
	retention time.Duration,
	logger arbor.ILogger,
) *Sweeper {
	return &Sweeper{
		documents: documents,
		chunks:    chunks,
		messages:  messages,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
	}
}

// Start registers the cron job and begins scheduling.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(); err != nil {
			s.logger.Error().Err(err).Msg("Failed-document sweep errored")
		}
	}); err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()

	s.logger.Info().
		Str("schedule", s.schedule).
		Dur("retention", s.retention).
		Msg("Failed-document sweeper started")

	return nil
}

// Stop halts scheduling. A sweep already in flight finishes.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep removes all FAILED documents last updated before the retention
// cutoff. Per-document failures are logged and skipped so one bad record
// cannot stall the sweep.
func (s *Sweeper) Sweep() error {
	cutoff := time.Now().Add(-s.retention)

	docs, err := s.documents.ListFailedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to list expired documents: %w", err)
	}

	removed := 0
	for _, doc := range docs {
		if err := s.chunks.DeleteByDocument(doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to delete chunks during sweep")
			continue
		}
		if err := s.messages.DeleteByDocument(doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to delete messages during sweep")
			continue
		}
		if err := s.documents.DeleteDocument(doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to delete document during sweep")
			continue
		}
		removed++
	}

	if removed > 0 || len(docs) > 0 {
		s.logger.Info().
			Int("expired", len(docs)).
			Int("removed", removed).
			Msg("Failed-document sweep completed")
	}

	return nil
}

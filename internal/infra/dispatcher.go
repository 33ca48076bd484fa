package infra

import (
	"github.com/rs/zerolog"
	"signaldesk.com/internal/domain"
)

// PreviewDispatcher delivers relayed preview updates to local watchers.
type PreviewDispatcher struct {
	notifier domain.Notifier
	log      zerolog.Logger
}

func NewPreviewDispatcher(notifier domain.Notifier, log zerolog.Logger) *PreviewDispatcher {
	return &PreviewDispatcher{
		notifier: notifier,
		log:      log.With().Str("component", "preview_dispatcher").Logger(),
	}
}

// Run consumes in until it is closed. Run it in its own goroutine.
func (d *PreviewDispatcher) Run(in <-chan DraftMessage) {
	d.log.Info().Msg("Dispatching relayed preview updates")
	for msg := range in {
		d.safePush(msg)
	}
	d.log.Info().Msg("Relay channel closed, stopping")
}

func (d *PreviewDispatcher) safePush(msg DraftMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("draft_id", msg.DraftID).Msg("Panic while pushing preview")
		}
	}()
	d.notifier.PushToDraft(msg.DraftID, msg.Payload)
}

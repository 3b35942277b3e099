// Package handler routes raw NATS messages to PostHog captures.
// Each function corresponds to one analytics.scrape.* subject.
package handler

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// serviceDistinctID groups all server-side scrape events in PostHog.
// There is no end-user identity on this path.
const serviceDistinctID = "scraper"

// Capturer is the slice of the PostHog client the dispatcher uses.
type Capturer interface {
	Capture(distinctID, event string, props map[string]any)
}

// Dispatcher routes incoming NATS messages to the correct PostHog capture call.
type Dispatcher struct {
	ph  Capturer
	log *zap.Logger
}

// New creates a Dispatcher.
func New(ph Capturer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{ph: ph, log: log}
}

// scrapeEvent is the envelope the scraper publishes on every analytics.scrape.* subject.
type scrapeEvent struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	Catalog    string         `json:"catalog"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties"`
}

// Dispatch routes msg to the correct handler based on its subject.
// Unknown subjects are logged and dropped; the caller still Acks to avoid replay.
func (d *Dispatcher) Dispatch(msg *nats.Msg) {
	switch msg.Subject {
	case "analytics.scrape.fetched":
		d.handleScrape(msg, "metadata_fetched")
	case "analytics.scrape.missed":
		d.handleScrape(msg, "metadata_missed")
	case "analytics.scrape.searched":
		d.handleScrape(msg, "metadata_searched")
	default:
		d.log.Debug("analytics: unhandled subject", zap.String("subject", msg.Subject))
	}
}

func (d *Dispatcher) handleScrape(msg *nats.Msg, event string) {
	var ev scrapeEvent
	if !unmarshal(d.log, msg, &ev) {
		return
	}
	props := map[string]any{
		"event_id": ev.EventID,
		"catalog":  ev.Catalog,
	}
	for k, v := range ev.Properties {
		props[k] = v
	}
	d.ph.Capture(serviceDistinctID, event, props)
}

func unmarshal(log *zap.Logger, msg *nats.Msg, dst any) bool {
	if err := json.Unmarshal(msg.Data, dst); err != nil {
		log.Error("analytics: unmarshal message",
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return false
	}
	return true
}

package ws

import (
	"context"
	"encoding/json"
	"time"

	"placement-watch/internal/notify"
)

type digestEvent struct {
	Type      string          `json:"type"`
	ChatID    int64           `json:"chat_id"`
	Text      string          `json:"text"`
	Postings  []digestPosting `json:"postings"`
	Timestamp string          `json:"timestamp"`
}

type digestPosting struct {
	ID          string `json:"id"`
	ExternalUID string `json:"external_uid"`
	Title       string `json:"title"`
	EndDate     string `json:"end_date,omitempty"`
	PostedDate  string `json:"posted_date"`
}

// DigestDeliverer mirrors every digest onto the ws hub so connected
// dashboards see what students are being sent.
type DigestDeliverer struct {
	hub *Hub
}

func NewDigestDeliverer(hub *Hub) *DigestDeliverer {
	return &DigestDeliverer{hub: hub}
}

func (d *DigestDeliverer) Deliver(_ context.Context, dg notify.Digest) error {
	if d == nil || d.hub == nil {
		return nil
	}

	evt := digestEvent{
		Type:      "digest",
		ChatID:    dg.ChatID,
		Text:      dg.Text,
		Postings:  make([]digestPosting, 0, len(dg.Postings)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, p := range dg.Postings {
		dp := digestPosting{
			ID:          p.ID.String(),
			ExternalUID: p.ExternalUID,
			Title:       p.Title,
			PostedDate:  p.PostedDate.Format("2006-01-02"),
		}
		if p.EndDate != nil {
			dp.EndDate = p.EndDate.Format("2006-01-02")
		}
		evt.Postings = append(evt.Postings, dp)
	}

	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	d.hub.Broadcast(b)
	return nil
}

var _ notify.Deliverer = (*DigestDeliverer)(nil)

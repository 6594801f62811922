package worker

// stock_alert_worker.go
// Turns low_stock jobs into entries of the capped notification feed that the
// dashboard polls.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	FeedStockNotifications = "notifications:stock"
	feedCapacity           = 100
)

// StockAlert is the payload of a low_stock job.
type StockAlert struct {
	MedicineID   uint   `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Unit         string `json:"unit"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	Source       string `json:"source"` // sale | movement
	ReferenceID  uint   `json:"reference_id,omitempty"`
	RaisedAt     string `json:"raised_at"` // RFC 3339
}

// Notification is one rendered feed entry.
type Notification struct {
	Kind    string     `json:"kind"`
	Message string     `json:"message"`
	Alert   StockAlert `json:"alert"`
}

// AlertFeed is the Redis list holding the most recent notifications, newest
// first. A nil *AlertFeed is an always-empty feed.
type AlertFeed struct {
	rdb *redis.Client
}

func NewAlertFeed(rdb *redis.Client) *AlertFeed {
	if rdb == nil {
		return nil
	}
	return &AlertFeed{rdb: rdb}
}

// Push prepends n and trims the feed to its capacity in one round trip.
func (f *AlertFeed) Push(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	pipe := f.rdb.TxPipeline()
	pipe.LPush(ctx, FeedStockNotifications, data)
	pipe.LTrim(ctx, FeedStockNotifications, 0, feedCapacity-1)
	_, err = pipe.Exec(ctx)
	return err
}

// List returns up to limit notifications, newest first.
func (f *AlertFeed) List(ctx context.Context, limit int) ([]Notification, error) {
	out := []Notification{}
	if f == nil {
		return out, nil
	}
	if limit <= 0 || limit > feedCapacity {
		limit = feedCapacity
	}
	raw, err := f.rdb.LRange(ctx, FeedStockNotifications, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	for _, r := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			log.Warn().Err(err).Msg("notifications: skipping malformed entry")
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// StockAlertWorker processes low_stock jobs from QueueStockAlert.
type StockAlertWorker struct {
	feed *AlertFeed
}

func NewStockAlertWorker(feed *AlertFeed) *StockAlertWorker {
	return &StockAlertWorker{feed: feed}
}

// Process renders the alert and appends it to the feed.
func (w *StockAlertWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var alert StockAlert
	if err := json.Unmarshal(raw, &alert); err != nil {
		return fmt.Errorf("stock_alert_worker: invalid payload: %w", err)
	}
	n := Notification{
		Kind:    JobLowStock,
		Message: RenderAlert(alert),
		Alert:   alert,
	}
	if err := w.feed.Push(ctx, n); err != nil {
		return err
	}
	log.Info().Uint("medicine_id", alert.MedicineID).Int("current_stock", alert.CurrentStock).Msg("stock_alert_worker: notification stored")
	return nil
}

// RenderAlert formats the human readable line shown in the feed.
func RenderAlert(a StockAlert) string {
	if a.CurrentStock == 0 {
		return fmt.Sprintf("%s is out of stock (minimum %d %s)", a.MedicineName, a.MinStock, a.Unit)
	}
	return fmt.Sprintf("%s is low on stock: %d %s left (minimum %d)", a.MedicineName, a.CurrentStock, a.Unit, a.MinStock)
}

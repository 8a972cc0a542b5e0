package analytics

import (
	"log"
	"time"

	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amora_push_attempts_total",
		Help: "Push dispatch attempts by notification type and outcome.",
	}, []string{"type", "status"})

	clicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amora_push_clicks_total",
		Help: "Notification clicks reported by receiving clients.",
	})
)

// Recorder writes one DeliveryRecord per dispatch attempt and serves the
// trailing-window rollups. The record log is authoritative; the
// prometheus counters are observability only and never feed the rollups.
type Recorder struct {
	records repository.DeliveryRecordRepositoryInterface
}

func NewRecorder(records repository.DeliveryRecordRepositoryInterface) *Recorder {
	return &Recorder{records: records}
}

// Record logs one attempt. A failed insert is logged and swallowed:
// analytics must never fail a dispatch.
func (r *Recorder) Record(notificationID string, typ models.NotificationType, endpoint string, status models.DeliveryStatus, at time.Time) {
	record := &models.DeliveryRecord{
		NotificationID:   notificationID,
		NotificationType: typ,
		Endpoint:         endpoint,
		Status:           status,
		SentAt:           at,
	}
	if err := r.records.Create(record); err != nil {
		log.Printf("Failed to record delivery attempt for %s: %v", notificationID, err)
	}
	attemptsTotal.WithLabelValues(string(typ), string(status)).Inc()
}

// RecordClick stamps the notification's records as clicked, once.
func (r *Recorder) RecordClick(notificationID string) error {
	stamped, err := r.records.SetClicked(notificationID, time.Now())
	if err != nil {
		return err
	}
	if stamped > 0 {
		clicksTotal.Inc()
	}
	return nil
}

// Summary is the rollup over a trailing window.
type Summary struct {
	WindowStart  time.Time                     `json:"window_start"`
	Sent         int64                         `json:"sent"`
	Delivered    int64                         `json:"delivered"`
	Failed       int64                         `json:"failed"`
	Clicked      int64                         `json:"clicked"`
	DeliveryRate float64                       `json:"delivery_rate"`
	ClickRate    float64                       `json:"click_rate"`
	ByType       []repository.TypeBreakdownRow `json:"by_type"`
}

// Summarize computes the rollup for the trailing window from the record
// log. Nothing is pre-aggregated; the answer is always derivable by
// re-reading the rows.
func (r *Recorder) Summarize(window time.Duration) (Summary, error) {
	since := time.Now().Add(-window)

	counts, err := r.records.CountByStatus(since)
	if err != nil {
		return Summary{}, err
	}
	byType, err := r.records.CountByType(since)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		WindowStart: since,
		Sent:        counts.Sent,
		Delivered:   counts.Delivered,
		Failed:      counts.Failed,
		Clicked:     counts.Clicked,
		ByType:      byType,
	}
	if s.Sent > 0 {
		s.DeliveryRate = float64(s.Delivered) / float64(s.Sent)
	}
	if s.Delivered > 0 {
		s.ClickRate = float64(s.Clicked) / float64(s.Delivered)
	}
	return s, nil
}

package ledgerevents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// RetryPolicy controls how many times BigQuery inserts are retried before the
// message is handed back to Pub/Sub.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

// Archiver flattens inventory event envelopes into the inventory_events
// BigQuery table.
type Archiver struct {
	client tableInserter
	table  string
	retry  RetryPolicy
	logg   *logger.Logger
}

// NewArchiver builds an archiver writing to the given table.
func NewArchiver(client tableInserter, table string, retry RetryPolicy, logg *logger.Logger) (*Archiver, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("bigquery table name required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}

	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = retry.InitialBackoff
	}

	return &Archiver{
		client: client,
		table:  table,
		retry:  retry,
		logg:   logg,
	}, nil
}

// Handle flattens the envelope and appends it to the archive table.
func (a *Archiver) Handle(ctx context.Context, envelope Envelope) error {
	row, err := buildRow(envelope)
	if err != nil {
		return fmt.Errorf("build inventory event row: %w", err)
	}

	if err := a.insertWithRetry(ctx, []any{row}); err != nil {
		return err
	}

	a.logg.Info(a.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": envelope.EventType,
	}), "inventory event archived")
	return nil
}

func (a *Archiver) insertWithRetry(ctx context.Context, rows []any) error {
	attempts := 0
	backoff := a.retry.InitialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := a.client.InsertRows(ctx, a.table, rows)
		if err == nil {
			return nil
		}

		attempts++
		if attempts >= a.retry.MaxAttempts || !isRetryableInsertError(err) {
			return fmt.Errorf("insert %s rows: %w", a.table, err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		timer.Stop()

		backoff = minDuration(backoff*2, a.retry.MaximumBackoff)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// inventoryEventRow mirrors the inventory_events BigQuery schema.
type inventoryEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	AggregateType string             `bigquery:"aggregate_type"`
	AggregateID   string             `bigquery:"aggregate_id"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	ReservationID *string            `bigquery:"reservation_id"`
	OrderID       *string            `bigquery:"order_id"`
	SKUs          []string           `bigquery:"skus"`
	TotalQty      *int64             `bigquery:"total_qty"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}

func buildRow(envelope Envelope) (*inventoryEventRow, error) {
	payload, err := envelope.PayloadMap()
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	payloadJSON := cbigquery.NullJSON{}
	if len(envelope.Payload) > 0 {
		payloadJSON.Valid = true
		payloadJSON.JSONVal = string(envelope.Payload)
	}

	skus, totalQty := lineSummary(payload)

	return &inventoryEventRow{
		EventID:       envelope.EventID,
		EventType:     string(envelope.EventType),
		AggregateType: string(envelope.AggregateType),
		AggregateID:   envelope.AggregateID,
		OccurredAt:    envelope.OccurredAt,
		ReservationID: stringValue(payload, "reservation_id"),
		OrderID:       stringValue(payload, "order_id"),
		SKUs:          skus,
		TotalQty:      totalQty,
		Payload:       payloadJSON,
	}, nil
}

// lineSummary extracts the SKUs touched by the event and the total quantity
// moved. Reservation events carry an items list; stock events carry a single
// sku plus the signed delta.
func lineSummary(payload map[string]any) ([]string, *int64) {
	if raw, ok := payload["items"]; ok {
		lines, ok := raw.([]any)
		if !ok {
			return nil, nil
		}
		var skus []string
		var total int64
		counted := false
		for _, line := range lines {
			entry, ok := line.(map[string]any)
			if !ok {
				continue
			}
			if sku := stringValue(entry, "sku"); sku != nil {
				skus = append(skus, *sku)
			}
			if qty, ok := entry["qty"].(float64); ok {
				total += int64(qty)
				counted = true
			}
		}
		if !counted {
			return skus, nil
		}
		return skus, &total
	}

	sku := stringValue(payload, "sku")
	if sku == nil {
		return nil, nil
	}
	if delta, ok := payload["delta"].(float64); ok {
		qty := int64(delta)
		return []string{*sku}, &qty
	}
	return []string{*sku}, nil
}

func stringValue(payload map[string]any, key string) *string {
	if payload == nil {
		return nil
	}
	raw, ok := payload[key]
	if !ok {
		return nil
	}
	str, ok := raw.(string)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isRetryableInsertError(err error) bool {
	if err == nil {
		return false
	}

	var multi cbigquery.PutMultiError
	if errors.As(err, &multi) {
		if len(multi) == 0 {
			return false
		}
		for _, rowErr := range multi {
			if !retryableBigQueryErrors(rowErr.Errors) {
				return false
			}
		}
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableHTTPCode(apiErr.Code)
	}

	var statusErr interface{ GRPCStatus() *status.Status }
	if errors.As(err, &statusErr) {
		if st := statusErr.GRPCStatus(); st != nil {
			return isRetryableGRPCCode(st.Code())
		}
	}

	return false
}

func retryableBigQueryErrors(errs cbigquery.MultiError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, inner := range errs {
		if !isRetryableInsertError(inner) {
			return false
		}
	}
	return true
}

func isRetryableHTTPCode(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isRetryableGRPCCode(code codes.Code) bool {
	switch code {
	case codes.Aborted,
		codes.DeadlineExceeded,
		codes.Internal,
		codes.ResourceExhausted,
		codes.Unavailable:
		return true
	default:
		return false
	}
}

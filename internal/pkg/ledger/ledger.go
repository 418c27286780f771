package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/amirulizwan/KedaiKit/app/models"
	"github.com/amirulizwan/KedaiKit/app/repository"
	"github.com/amirulizwan/KedaiKit/internal/pkg/alert"
	"gorm.io/gorm"
)

// Service is the webhook idempotency ledger: it records every inbound
// delivery keyed by (provider, event id), answers "have I seen this before",
// and marks completion. A row that is never marked processed (crash
// mid-flight) is reprocessed on the provider's next retry; that is the
// intended at-least-once-until-marked behavior.
type Service struct {
	repo     repository.WebhookLogRepository
	notifier alert.Notifier
}

// NewService creates a ledger service from an injected repository and alert
// notifier. The notifier may be nil.
func NewService(repo repository.WebhookLogRepository, notifier alert.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// CheckResult reports a prior delivery of the same event.
type CheckResult struct {
	IsDuplicate      bool
	ExistingResponse string
}

// CheckIdempotency reports whether (provider, eventID) has already been fully
// processed. An unprocessed row does not count: it either belongs to a
// concurrent delivery (caught later by the unique constraint) or to a crashed
// attempt that should be reprocessed.
func (s *Service) CheckIdempotency(ctx context.Context, provider, eventID string) (CheckResult, error) {
	_ = ctx
	entry, err := s.repo.FindByProviderEvent(provider, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckResult{}, nil
		}
		return CheckResult{}, err
	}
	if entry.Processed {
		return CheckResult{IsDuplicate: true, ExistingResponse: entry.RawPayload}, nil
	}
	return CheckResult{}, nil
}

// Record durably logs the delivery before any business logic runs, so a
// concurrent duplicate landing mid-processing hits the uniqueness constraint
// instead of racing. The boolean reports whether this caller owns the event;
// false means someone else already logged it.
func (s *Service) Record(ctx context.Context, provider, eventID, endpoint, rawPayload string) (bool, *models.WebhookLog, error) {
	_ = ctx
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" || strings.TrimSpace(eventID) == "" {
		return false, nil, errors.New("provider and event id are required")
	}

	entry := &models.WebhookLog{
		Provider:        provider,
		ProviderEventID: eventID,
		Endpoint:        endpoint,
		RawPayload:      rawPayload,
	}
	return s.repo.CreateIfNotExists(entry)
}

// MarkProcessed closes the ledger row with an optional error. When an error
// message is recorded, the ops alert hook fires: the webhook endpoint answers
// the provider success-shaped regardless of outcome, so this is the only push
// signal operators get.
func (s *Service) MarkProcessed(ctx context.Context, entry *models.WebhookLog, processingErr error) error {
	if entry == nil {
		return errors.New("ledger entry is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	if err := s.repo.MarkProcessed(entry.ID, errMsg); err != nil {
		return err
	}

	if errMsg != "" && s.notifier != nil {
		s.notifier.Notify(ctx, "webhook processing error", map[string]string{
			"provider": entry.Provider,
			"event_id": entry.ProviderEventID,
			"endpoint": entry.Endpoint,
			"error":    errMsg,
		})
	}
	return nil
}

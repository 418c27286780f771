package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/amirulizwan/KedaiKit/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLedgerRepo struct {
	entries map[string]*models.WebhookLog
	nextID  uint
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: make(map[string]*models.WebhookLog)}
}

func (f *fakeLedgerRepo) key(provider, eventID string) string {
	return provider + "|" + eventID
}

func (f *fakeLedgerRepo) FindByProviderEvent(provider, eventID string) (*models.WebhookLog, error) {
	if entry, ok := f.entries[f.key(provider, eventID)]; ok {
		copied := *entry
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedgerRepo) CreateIfNotExists(entry *models.WebhookLog) (bool, *models.WebhookLog, error) {
	k := f.key(entry.Provider, entry.ProviderEventID)
	if existing, ok := f.entries[k]; ok {
		copied := *existing
		return false, &copied, nil
	}
	f.nextID++
	entry.ID = f.nextID
	stored := *entry
	f.entries[k] = &stored
	copied := stored
	return true, &copied, nil
}

func (f *fakeLedgerRepo) MarkProcessed(id uint, errorMessage string) error {
	for _, entry := range f.entries {
		if entry.ID == id {
			entry.Processed = true
			entry.ErrorMessage = errorMessage
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type recordingNotifier struct {
	subjects []string
	fields   []map[string]string
}

func (r *recordingNotifier) Notify(_ context.Context, subject string, fields map[string]string) {
	r.subjects = append(r.subjects, subject)
	r.fields = append(r.fields, fields)
}

func TestRecord_FirstDeliveryOwnsEvent(t *testing.T) {
	svc := NewService(newFakeLedgerRepo(), nil)

	created, entry, err := svc.Record(context.Background(), "toyyibpay", "bill1:ref1", "/api/webhooks/toyyibpay", `{"status":"1"}`)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, entry)
	assert.False(t, entry.Processed)
}

func TestRecord_DuplicateInsertIsNotAnError(t *testing.T) {
	svc := NewService(newFakeLedgerRepo(), nil)

	created, _, err := svc.Record(context.Background(), "toyyibpay", "bill1:ref1", "/api/webhooks/toyyibpay", "{}")
	require.NoError(t, err)
	require.True(t, created)

	created, entry, err := svc.Record(context.Background(), "toyyibpay", "bill1:ref1", "/api/webhooks/toyyibpay", "{}")
	require.NoError(t, err)
	assert.False(t, created, "second insert for the same event pair must be treated as already seen")
	require.NotNil(t, entry)
}

func TestRecord_RequiresProviderAndEventID(t *testing.T) {
	svc := NewService(newFakeLedgerRepo(), nil)

	_, _, err := svc.Record(context.Background(), "", "bill1:ref1", "/x", "{}")
	assert.Error(t, err)

	_, _, err = svc.Record(context.Background(), "toyyibpay", " ", "/x", "{}")
	assert.Error(t, err)
}

func TestCheckIdempotency(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	// Unknown event: not a duplicate.
	res, err := svc.CheckIdempotency(ctx, "toyyibpay", "bill1:ref1")
	require.NoError(t, err)
	assert.False(t, res.IsDuplicate)

	// Recorded but unprocessed: still not a duplicate (crash mid-flight is
	// indistinguishable from not yet handled).
	_, entry, err := svc.Record(ctx, "toyyibpay", "bill1:ref1", "/x", `{"status":"1"}`)
	require.NoError(t, err)
	res, err = svc.CheckIdempotency(ctx, "toyyibpay", "bill1:ref1")
	require.NoError(t, err)
	assert.False(t, res.IsDuplicate)

	// Processed: duplicate from now on.
	require.NoError(t, svc.MarkProcessed(ctx, entry, nil))
	res, err = svc.CheckIdempotency(ctx, "toyyibpay", "bill1:ref1")
	require.NoError(t, err)
	assert.True(t, res.IsDuplicate)
	assert.Equal(t, `{"status":"1"}`, res.ExistingResponse)
}

func TestMarkProcessed_ErrorFiresAlert(t *testing.T) {
	repo := newFakeLedgerRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier)
	ctx := context.Background()

	_, entry, err := svc.Record(ctx, "toyyibpay", "bill1:ref1", "/api/webhooks/toyyibpay", "{}")
	require.NoError(t, err)

	require.NoError(t, svc.MarkProcessed(ctx, entry, errors.New("verification failed")))
	require.Len(t, notifier.subjects, 1)
	assert.Equal(t, "verification failed", notifier.fields[0]["error"])

	stored, err := repo.FindByProviderEvent("toyyibpay", "bill1:ref1")
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	assert.Equal(t, "verification failed", stored.ErrorMessage)
}

func TestMarkProcessed_SuccessDoesNotAlert(t *testing.T) {
	repo := newFakeLedgerRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier)
	ctx := context.Background()

	_, entry, err := svc.Record(ctx, "toyyibpay", "bill1:ref1", "/api/webhooks/toyyibpay", "{}")
	require.NoError(t, err)

	require.NoError(t, svc.MarkProcessed(ctx, entry, nil))
	assert.Empty(t, notifier.subjects)
}

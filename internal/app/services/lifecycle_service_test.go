package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/becas-core/internal/app/lifecycle"
	"github.com/dmorales/becas-core/internal/app/models"
	"github.com/dmorales/becas-core/internal/pkg/apperrors"
)

// fakeScholarshipStore keeps records in memory and enforces the same
// version check the real repository does in SQL.
type fakeScholarshipStore struct {
	mu      sync.Mutex
	records map[int64]*models.Scholarship
	// afterGet, when set, runs after every read. Tests use it to slip a
	// competing write between the service's read and its version-checked write.
	afterGet func()
}

func newFakeScholarshipStore(records ...*models.Scholarship) *fakeScholarshipStore {
	store := &fakeScholarshipStore{records: make(map[int64]*models.Scholarship)}
	for _, rec := range records {
		copied := *rec
		store.records[rec.ID] = &copied
	}
	return store
}

func (f *fakeScholarshipStore) GetByID(_ context.Context, id int64) (*models.Scholarship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, apperrors.ErrScholarshipNotFound
	}
	copied := *rec
	f.mu.Unlock()
	if f.afterGet != nil {
		f.afterGet()
	}
	f.mu.Lock()
	return &copied, nil
}

func (f *fakeScholarshipStore) UpdateWithVersion(_ context.Context, s *models.Scholarship, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.records[s.ID]
	if !ok {
		return apperrors.ErrScholarshipNotFound
	}
	if current.Version != expectedVersion {
		return apperrors.ErrConcurrentModification
	}
	copied := *s
	copied.Version = expectedVersion + 1
	copied.UpdatedAt = time.Now()
	f.records[s.ID] = &copied
	s.Version = copied.Version
	s.UpdatedAt = copied.UpdatedAt
	return nil
}

// fakeEvidenceStore records which guard method was consulted.
type fakeEvidenceStore struct {
	mu         sync.Mutex
	answer     bool
	plainCalls []models.DocumentType
	sinceCalls []time.Time
}

func (f *fakeEvidenceStore) HasEvidence(_ context.Context, _ int64, docType models.DocumentType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plainCalls = append(f.plainCalls, docType)
	return f.answer, nil
}

func (f *fakeEvidenceStore) HasEvidenceSince(_ context.Context, _ int64, _ models.DocumentType, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinceCalls = append(f.sinceCalls, since)
	return f.answer, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []lifecycle.TransitionEvent
}

func (f *fakePublisher) Publish(ev lifecycle.TransitionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakePublisher) published() []lifecycle.TransitionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]lifecycle.TransitionEvent(nil), f.events...)
}

func testRecord(status models.Status) *models.Scholarship {
	return &models.Scholarship{
		ID:        42,
		StudentID: 7,
		PeriodID:  1,
		Career:    "Systems Engineering",
		Status:    status,
		Version:   1,
		UpdatedAt: time.Now().Add(-time.Hour),
	}
}

func reviewerActor() Actor {
	return Actor{UserID: 100, Role: models.RoleReviewer}
}

func applicantActor(studentID int64) Actor {
	return Actor{UserID: 200, Role: models.RoleApplicant, StudentID: &studentID}
}

func TestTransitionAppliesAndPublishes(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusDocsUploaded))
	publisher := &fakePublisher{}
	svc := NewLifecycleService(store, &fakeEvidenceStore{answer: true}, publisher, zerolog.Nop())

	updated, err := svc.Transition(context.Background(), 42, lifecycle.EventApproveDocs, reviewerActor(), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, int64(2), updated.Version, "a successful write bumps the version")

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, int64(42), events[0].RecordID)
	assert.Equal(t, models.StatusDocsUploaded, events[0].From)
	assert.Equal(t, models.StatusApproved, events[0].To)
	require.NotNil(t, events[0].ActorID)
	assert.Equal(t, int64(100), *events[0].ActorID)
}

func TestTransitionRejectsUnknownEvent(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusDocsUploaded))
	publisher := &fakePublisher{}
	svc := NewLifecycleService(store, &fakeEvidenceStore{}, publisher, zerolog.Nop())

	_, err := svc.Transition(context.Background(), 42, lifecycle.Event("NOT_A_THING"), reviewerActor(), "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, publisher.published())
}

func TestTransitionDeniesForeignApplicant(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusSelected))
	publisher := &fakePublisher{}
	svc := NewLifecycleService(store, &fakeEvidenceStore{answer: true}, publisher, zerolog.Nop())

	// The record belongs to student 7; this applicant is student 99.
	_, err := svc.Transition(context.Background(), 42, lifecycle.EventSubmitDocs, applicantActor(99), "")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, publisher.published())
}

func TestTransitionAllowsOwningApplicant(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusSelected))
	evidence := &fakeEvidenceStore{answer: true}
	svc := NewLifecycleService(store, evidence, &fakePublisher{}, zerolog.Nop())

	updated, err := svc.Transition(context.Background(), 42, lifecycle.EventSubmitDocs, applicantActor(7), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocsUploaded, updated.Status)
	assert.Equal(t, []models.DocumentType{models.DocumentBankCert}, evidence.plainCalls)
	assert.Empty(t, evidence.sinceCalls)
}

func TestTransitionResubmitDemandsFreshEvidence(t *testing.T) {
	rec := testRecord(models.StatusChangesRequested)
	store := newFakeScholarshipStore(rec)
	evidence := &fakeEvidenceStore{answer: true}
	svc := NewLifecycleService(store, evidence, &fakePublisher{}, zerolog.Nop())

	_, err := svc.Transition(context.Background(), 42, lifecycle.EventResubmitDocs, applicantActor(7), "")
	require.NoError(t, err)

	// Resubmission consults the since-variant with the moment the record
	// entered its rejected state, never the plain existence check.
	require.Len(t, evidence.sinceCalls, 1)
	assert.Equal(t, rec.UpdatedAt, evidence.sinceCalls[0])
	assert.Empty(t, evidence.plainCalls)
}

func TestTransitionMissingEvidenceDoesNotWrite(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusSelected))
	publisher := &fakePublisher{}
	svc := NewLifecycleService(store, &fakeEvidenceStore{answer: false}, publisher, zerolog.Nop())

	_, err := svc.Transition(context.Background(), 42, lifecycle.EventSubmitDocs, applicantActor(7), "")
	assert.ErrorIs(t, err, apperrors.ErrMissingEvidence)
	assert.Empty(t, publisher.published())

	rec, err := store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSelected, rec.Status)
	assert.Equal(t, int64(1), rec.Version)
}

func TestTransitionConcurrentWritersOneWins(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusDocsUploaded))
	publisher := &fakePublisher{}
	svc := NewLifecycleService(store, &fakeEvidenceStore{answer: true}, publisher, zerolog.Nop())

	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Transition(context.Background(), 42, lifecycle.EventApproveDocs, reviewerActor(), "")
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.Transition(context.Background(), 42, lifecycle.EventRejectDocs, reviewerActor(), "certificate unreadable")
		results <- err
	}()
	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			failures++
		}
	}
	assert.Equal(t, 1, successes, "exactly one writer wins")
	assert.Equal(t, 1, failures, "the other writer is refused")
	assert.Len(t, publisher.published(), 1, "only the winning transition is published")

	rec, err := store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Version)
	assert.Contains(t, []models.Status{models.StatusApproved, models.StatusChangesRequested}, rec.Status)
}

func TestTransitionStaleVersionIsRefused(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusDocsUploaded))
	publisher := &fakePublisher{}
	svc := NewLifecycleService(store, &fakeEvidenceStore{answer: true}, publisher, zerolog.Nop())

	// A competing writer lands between the service's read and its write.
	fired := false
	store.afterGet = func() {
		if fired {
			return
		}
		fired = true
		store.mu.Lock()
		store.records[42].Version++
		store.mu.Unlock()
	}

	_, err := svc.Transition(context.Background(), 42, lifecycle.EventApproveDocs, reviewerActor(), "")
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
	assert.Empty(t, publisher.published(), "a refused write publishes nothing")
}

func TestTransitionUnknownRecord(t *testing.T) {
	store := newFakeScholarshipStore()
	svc := NewLifecycleService(store, &fakeEvidenceStore{}, &fakePublisher{}, zerolog.Nop())

	_, err := svc.Transition(context.Background(), 999, lifecycle.EventApproveDocs, reviewerActor(), "")
	assert.ErrorIs(t, err, apperrors.ErrScholarshipNotFound)
}

func TestActionsForEachRole(t *testing.T) {
	store := newFakeScholarshipStore(testRecord(models.StatusDocsUploaded))
	svc := NewLifecycleService(store, &fakeEvidenceStore{}, &fakePublisher{}, zerolog.Nop())

	resp, err := svc.Actions(context.Background(), 42, reviewerActor())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocsUploaded, resp.Status)
	assert.Equal(t, []lifecycle.Event{lifecycle.EventRejectDocs, lifecycle.EventApproveDocs}, resp.Actions)

	resp, err = svc.Actions(context.Background(), 42, applicantActor(7))
	require.NoError(t, err)
	assert.Empty(t, resp.Actions)

	_, err = svc.Actions(context.Background(), 42, applicantActor(99))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestActionsTerminalRecordHasNone(t *testing.T) {
	rec := testRecord(models.StatusPaid)
	store := newFakeScholarshipStore(rec)
	svc := NewLifecycleService(store, &fakeEvidenceStore{}, &fakePublisher{}, zerolog.Nop())

	resp, err := svc.Actions(context.Background(), 42, reviewerActor())
	require.NoError(t, err)
	assert.NotNil(t, resp.Actions)
	assert.Empty(t, resp.Actions)
}

package bookings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Booking
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Booking{}}
}

func (r *testRepo) Create(ctx context.Context, b Booking) error {
	if b.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[b.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[b.ID] = b
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return Booking{}, errRepoNotFound
	}
	return b, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Booking, error) {
	out := make([]Booking, 0)
	for _, b := range r.byID {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *testRepo) ListBySitter(ctx context.Context, sitterID string) ([]Booking, error) {
	out := make([]Booking, 0)
	for _, b := range r.byID {
		if b.SitterID == sitterID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *testRepo) UpdateStatusFrom(ctx context.Context, b Booking, expected Status) error {
	stored, ok := r.byID[b.ID]
	if !ok {
		return errRepoNotFound
	}
	if stored.Status != expected {
		return ErrStatusConflict
	}
	r.byID[b.ID] = b
	return nil
}

// -------------------------
// Test messenger
// -------------------------

type postedMessage struct {
	ConversationID string
	SenderID       string
	Text           string
	Metadata       map[string]string
}

type testMessenger struct {
	posted  []postedMessage
	failErr error // si != nil, PostSystemMessage falla
}

func (m *testMessenger) PostSystemMessage(ctx context.Context, conversationID, senderID, text string, metadata map[string]string) (string, error) {
	if m.failErr != nil {
		return "", m.failErr
	}
	m.posted = append(m.posted, postedMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Metadata:       metadata,
	})
	return "msg-1", nil
}

type testDirectory struct {
	titles map[string]string
}

func (d *testDirectory) ListingTitle(ctx context.Context, listingID string) (string, error) {
	title, ok := d.titles[listingID]
	if !ok {
		return "", errors.New("listing not found")
	}
	return title, nil
}

// -------------------------
// Helpers
// -------------------------

func newTestService(repo *testRepo, msgr *testMessenger) *Service {
	dir := &testDirectory{titles: map[string]string{"listing-1": "Cozy home with garden"}}
	return NewService(repo, msgr, dir)
}

func seedBooking(t *testing.T, repo *testRepo, status Status, start, end time.Time) Booking {
	t.Helper()

	b := Booking{
		ID:        "bk-" + string(status),
		ListingID: "listing-1",
		OwnerID:   "owner-1",
		SitterID:  "sitter-1",
		PetIDs:    []string{"pet-1"},
		StartDate: start,
		EndDate:   end,
		Status:    status,
		CreatedAt: start.Add(-48 * time.Hour),
	}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_StartsPending(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	b, err := svc.Create(context.Background(), CreateInput{
		ListingID: "listing-1",
		OwnerID:   "owner-1",
		SitterID:  "sitter-1",
		PetIDs:    []string{"pet-1", "pet-2"},
		StartDate: time.Date(2026, 3, 20, 15, 45, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	// Las fechas se normalizan a medianoche.
	if b.StartDate.Hour() != 0 || b.StartDate.Minute() != 0 {
		t.Fatalf("expected StartDate at midnight, got %v", b.StartDate)
	}
	if b.CreatedAt != now {
		t.Fatalf("expected CreatedAt = now")
	}
}

func TestService_Create_RejectsBadInput(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"no pets", CreateInput{ListingID: "listing-1", OwnerID: "owner-1", SitterID: "sitter-1", StartDate: start, EndDate: end}},
		{"owner is sitter", CreateInput{ListingID: "listing-1", OwnerID: "u-1", SitterID: "u-1", PetIDs: []string{"pet-1"}, StartDate: start, EndDate: end}},
		{"end before start", CreateInput{ListingID: "listing-1", OwnerID: "owner-1", SitterID: "sitter-1", PetIDs: []string{"pet-1"}, StartDate: end, EndDate: start}},
		{"zero dates", CreateInput{ListingID: "listing-1", OwnerID: "owner-1", SitterID: "sitter-1", PetIDs: []string{"pet-1"}}},
	}

	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.in); err != ErrInvalidInput {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestService_Accept_ConfirmsAndPostsNotice(t *testing.T) {
	repo := newTestRepo()
	msgr := &testMessenger{}
	svc := newTestService(repo, msgr)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))

	change, err := svc.Accept(context.Background(), b.ID, "sitter-1", "conv-1")
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if change.Booking.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", change.Booking.Status)
	}
	if change.Booking.ConfirmedAt == nil || *change.Booking.ConfirmedAt != now {
		t.Fatalf("expected ConfirmedAt = now")
	}
	if change.NotifyErr != nil {
		t.Fatalf("expected no notify error, got %v", change.NotifyErr)
	}

	if len(msgr.posted) != 1 {
		t.Fatalf("expected 1 chat message, got %d", len(msgr.posted))
	}
	msg := msgr.posted[0]
	if msg.ConversationID != "conv-1" || msg.SenderID != "sitter-1" {
		t.Fatalf("unexpected message routing: %+v", msg)
	}
	if !strings.Contains(msg.Text, "accepted") {
		t.Fatalf("expected acceptance text, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "Cozy home with garden") {
		t.Fatalf("expected listing title in text, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "Mar 20, 2026") || !strings.Contains(msg.Text, "Mar 25, 2026") {
		t.Fatalf("expected date range in text, got %q", msg.Text)
	}

	// El cambio quedó persistido.
	stored, _ := repo.GetByID(context.Background(), b.ID)
	if stored.Status != StatusConfirmed {
		t.Fatalf("expected confirmed persisted, got %s", stored.Status)
	}
}

func TestService_Accept_FailedNotice_IsDegradedSuccess(t *testing.T) {
	repo := newTestRepo()
	msgr := &testMessenger{failErr: errors.New("chat backend down")}
	svc := newTestService(repo, msgr)

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))

	change, err := svc.Accept(context.Background(), b.ID, "sitter-1", "conv-1")
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if change.Booking.Status != StatusConfirmed {
		t.Fatalf("expected confirmed despite failed notice, got %s", change.Booking.Status)
	}
	if change.NotifyErr == nil {
		t.Fatalf("expected NotifyErr reported")
	}

	// El status NO se revierte.
	stored, _ := repo.GetByID(context.Background(), b.ID)
	if stored.Status != StatusConfirmed {
		t.Fatalf("expected confirmed persisted, got %s", stored.Status)
	}
}

func TestService_Accept_OnlySitter(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))

	if _, err := svc.Accept(context.Background(), b.ID, "owner-1", "conv-1"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for owner, got %v", err)
	}
	if _, err := svc.Accept(context.Background(), b.ID, "stranger", "conv-1"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestService_Accept_RejectsNonPending(t *testing.T) {
	repo := newTestRepo()
	msgr := &testMessenger{}
	svc := newTestService(repo, msgr)

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	for _, status := range []Status{StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled} {
		b := seedBooking(t, repo, status, start, start.AddDate(0, 0, 5))
		if _, err := svc.Accept(context.Background(), b.ID, "sitter-1", "conv-1"); err != ErrBadState {
			t.Fatalf("status %s: expected ErrBadState, got %v", status, err)
		}
	}
	if len(msgr.posted) != 0 {
		t.Fatalf("expected no messages for rejected accepts, got %d", len(msgr.posted))
	}
}

func TestService_Accept_ConcurrentLoser_GetsConflict(t *testing.T) {
	repo := newTestRepo()
	msgr := &testMessenger{}
	svc := newTestService(repo, msgr)

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))

	// Simular la carrera: otro request ya confirmó entre la lectura y el update.
	stored := repo.byID[b.ID]
	loaded, _ := svc.GetByID(context.Background(), b.ID)
	stored.Status = StatusConfirmed
	repo.byID[b.ID] = stored

	loaded.Status = StatusConfirmed
	err := svc.repo.UpdateStatusFrom(context.Background(), loaded, StatusPending)
	if err != ErrStatusConflict {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}

func TestService_Decline_CancelsWithReason(t *testing.T) {
	repo := newTestRepo()
	msgr := &testMessenger{}
	svc := newTestService(repo, msgr)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))

	change, err := svc.Decline(context.Background(), b.ID, "sitter-1", "conv-1", "fully booked that week")
	if err != nil {
		t.Fatalf("Decline returned error: %v", err)
	}
	if change.Booking.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", change.Booking.Status)
	}
	if change.Booking.CancelledAt == nil || *change.Booking.CancelledAt != now {
		t.Fatalf("expected CancelledAt = now")
	}
	if change.Booking.CancellationReason != "fully booked that week" {
		t.Fatalf("expected reason stored, got %q", change.Booking.CancellationReason)
	}

	if len(msgr.posted) != 1 {
		t.Fatalf("expected 1 chat message, got %d", len(msgr.posted))
	}
	if !strings.Contains(msgr.posted[0].Text, "declined") {
		t.Fatalf("expected decline text, got %q", msgr.posted[0].Text)
	}
	if !strings.Contains(msgr.posted[0].Text, "fully booked that week") {
		t.Fatalf("expected reason in text, got %q", msgr.posted[0].Text)
	}
}

func TestService_Cancel_EitherParty_NonTerminal(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	b1 := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))
	if _, err := svc.Cancel(context.Background(), b1.ID, "owner-1", "changed plans"); err != nil {
		t.Fatalf("owner cancel pending: %v", err)
	}

	b2 := seedBooking(t, repo, StatusConfirmed, start, start.AddDate(0, 0, 5))
	if _, err := svc.Cancel(context.Background(), b2.ID, "sitter-1", ""); err != nil {
		t.Fatalf("sitter cancel confirmed: %v", err)
	}

	b3 := seedBooking(t, repo, StatusInProgress, start, start.AddDate(0, 0, 5))
	if _, err := svc.Cancel(context.Background(), b3.ID, "owner-1", "emergency"); err != nil {
		t.Fatalf("owner cancel in_progress: %v", err)
	}
}

func TestService_Cancel_TerminalStates_AreImmutable(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	for _, status := range []Status{StatusCompleted, StatusCancelled} {
		b := seedBooking(t, repo, status, start, start.AddDate(0, 0, 5))
		if _, err := svc.Cancel(context.Background(), b.ID, "owner-1", "too late"); err != ErrBadState {
			t.Fatalf("status %s: expected ErrBadState, got %v", status, err)
		}
	}
}

func TestService_Cancel_StrangerForbidden(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))

	if _, err := svc.Cancel(context.Background(), b.ID, "stranger", ""); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Start_NotBeforeStartDate(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusConfirmed, start, start.AddDate(0, 0, 5))

	// Un día antes: no arranca.
	svc.now = func() time.Time { return start.AddDate(0, 0, -1) }
	if _, err := svc.Start(context.Background(), b.ID, "sitter-1"); err != ErrBadState {
		t.Fatalf("expected ErrBadState before start date, got %v", err)
	}

	// El mismo día sí (aunque sea más tarde que medianoche).
	svc.now = func() time.Time { return start.Add(10 * time.Hour) }
	got, err := svc.Start(context.Background(), b.ID, "sitter-1")
	if err != nil {
		t.Fatalf("Start on start date: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}
}

func TestService_Complete_FromConfirmedOrInProgress(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &testMessenger{})

	now := time.Date(2026, 3, 26, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	b1 := seedBooking(t, repo, StatusInProgress, start, start.AddDate(0, 0, 5))
	got, err := svc.Complete(context.Background(), b1.ID, "sitter-1")
	if err != nil {
		t.Fatalf("Complete from in_progress: %v", err)
	}
	if got.Status != StatusCompleted || got.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", got)
	}

	b2 := seedBooking(t, repo, StatusConfirmed, start, start.AddDate(0, 0, 5))
	if _, err := svc.Complete(context.Background(), b2.ID, "sitter-1"); err != nil {
		t.Fatalf("Complete from confirmed: %v", err)
	}

	b3 := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))
	if _, err := svc.Complete(context.Background(), b3.ID, "sitter-1"); err != ErrBadState {
		t.Fatalf("Complete from pending: expected ErrBadState, got %v", err)
	}
}

func TestService_ListingTitleFallback_NoticeStillSent(t *testing.T) {
	repo := newTestRepo()
	msgr := &testMessenger{}
	// Directory vacío: no resuelve ningún título.
	svc := NewService(repo, msgr, &testDirectory{titles: map[string]string{}})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	b := seedBooking(t, repo, StatusPending, start, start.AddDate(0, 0, 5))

	change, err := svc.Accept(context.Background(), b.ID, "sitter-1", "conv-1")
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if change.NotifyErr != nil {
		t.Fatalf("expected notice sent despite missing title, got %v", change.NotifyErr)
	}
	if !strings.Contains(msgr.posted[0].Text, "your booking") {
		t.Fatalf("expected fallback title, got %q", msgr.posted[0].Text)
	}
}

func TestStatus_TransitionTable(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:    true,
		{StatusPending, StatusCancelled}:    true,
		{StatusConfirmed, StatusInProgress}: true,
		{StatusConfirmed, StatusCompleted}:  true,
		{StatusConfirmed, StatusCancelled}:  true,
		{StatusInProgress, StatusCompleted}: true,
		{StatusInProgress, StatusCancelled}: true,
	}

	all := []Status{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Fatalf("expected completed and cancelled to be terminal")
	}
	if StatusPending.Terminal() || StatusConfirmed.Terminal() || StatusInProgress.Terminal() {
		t.Fatalf("expected non-terminal statuses")
	}
}

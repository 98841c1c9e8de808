package newsletter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildercircle/server/internal/api/pagination"
)

type fakeRepo struct {
	byEmail map[string]*Subscriber
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*Subscriber{}}
}

func (f *fakeRepo) Create(ctx context.Context, sub *Subscriber) error {
	f.byEmail[sub.Email] = sub
	return nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*Subscriber, error) {
	if sub, ok := f.byEmail[email]; ok {
		return sub, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, status string, params pagination.Params) ([]Subscriber, int64, error) {
	items := make([]Subscriber, 0, len(f.byEmail))
	for _, sub := range f.byEmail {
		if status != "" && sub.Status != status {
			continue
		}
		items = append(items, *sub)
	}
	return items, int64(len(items)), nil
}

func (f *fakeRepo) Reactivate(ctx context.Context, id string, subscribedAt time.Time) (*Subscriber, error) {
	for _, sub := range f.byEmail {
		if sub.ID == id {
			sub.Status = StatusActive
			sub.SubscribedAt = subscribedAt
			sub.UnsubscribedAt = nil
			return sub, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Unsubscribe(ctx context.Context, email string, at time.Time) (*Subscriber, error) {
	sub, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	sub.Status = StatusUnsubscribed
	sub.UnsubscribedAt = &at
	return sub, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	for email, sub := range f.byEmail {
		if sub.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return ErrNotFound
}

type welcomeSend struct {
	email string
	back  bool
}

// fakeMailer records sends on a channel because the service dispatches them
// off the request goroutine.
type fakeMailer struct {
	welcomes    chan welcomeSend
	failWithErr error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{welcomes: make(chan welcomeSend, 4)}
}

func (f *fakeMailer) SendNewsletterWelcome(ctx context.Context, email, name string, welcomeBack bool) error {
	f.welcomes <- welcomeSend{email: email, back: welcomeBack}
	return f.failWithErr
}

func waitForWelcome(t *testing.T, mailer *fakeMailer) welcomeSend {
	t.Helper()
	select {
	case send := <-mailer.welcomes:
		return send
	case <-time.After(2 * time.Second):
		t.Fatal("expected a welcome email dispatch")
		return welcomeSend{}
	}
}

func assertNoWelcome(t *testing.T, mailer *fakeMailer) {
	t.Helper()
	select {
	case send := <-mailer.welcomes:
		t.Fatalf("unexpected welcome email to %s", send.email)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeNewAddress(t *testing.T) {
	mailer := newFakeMailer()
	service := NewService(newFakeRepo(), mailer, zerolog.Nop())

	sub, result, err := service.Subscribe(context.Background(), "Dev@Example.COM", "Dev", "")
	require.NoError(t, err)
	assert.Equal(t, Subscribed, result)
	assert.Equal(t, "dev@example.com", sub.Email)
	assert.Equal(t, StatusActive, sub.Status)
	// An empty source falls back to the website tag.
	assert.Equal(t, SourceWebsite, sub.Source)

	send := waitForWelcome(t, mailer)
	assert.Equal(t, "dev@example.com", send.email)
	assert.False(t, send.back)
}

func TestSubscribeActiveAddressIsNoOp(t *testing.T) {
	mailer := newFakeMailer()
	service := NewService(newFakeRepo(), mailer, zerolog.Nop())

	first, _, err := service.Subscribe(context.Background(), "dev@example.com", "Dev", SourceWebsite)
	require.NoError(t, err)
	waitForWelcome(t, mailer)

	second, result, err := service.Subscribe(context.Background(), "dev@example.com", "Dev", SourceWebsite)
	require.NoError(t, err)
	assert.Equal(t, AlreadySubscribed, result)
	assert.Equal(t, first.ID, second.ID)

	// No second welcome email.
	assertNoWelcome(t, mailer)
}

func TestSubscribeReactivatesUnsubscribed(t *testing.T) {
	mailer := newFakeMailer()
	service := NewService(newFakeRepo(), mailer, zerolog.Nop())

	sub, _, err := service.Subscribe(context.Background(), "dev@example.com", "Dev", SourceWebsite)
	require.NoError(t, err)
	waitForWelcome(t, mailer)

	_, err = service.Unsubscribe(context.Background(), "dev@example.com")
	require.NoError(t, err)

	back, result, err := service.Subscribe(context.Background(), "dev@example.com", "Dev", SourceWebsite)
	require.NoError(t, err)
	assert.Equal(t, Resubscribed, result)
	assert.Equal(t, sub.ID, back.ID)
	assert.Equal(t, StatusActive, back.Status)
	assert.Nil(t, back.UnsubscribedAt)
	assert.True(t, waitForWelcome(t, mailer).back)
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeMailer(), zerolog.Nop())

	_, _, err := service.Subscribe(context.Background(), "not-an-email", "", SourceWebsite)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSubscribeSurvivesMailerFailure(t *testing.T) {
	mailer := newFakeMailer()
	mailer.failWithErr = errors.New("smtp down")
	service := NewService(newFakeRepo(), mailer, zerolog.Nop())

	sub, result, err := service.Subscribe(context.Background(), "dev@example.com", "Dev", SourceWebsite)
	require.NoError(t, err)
	assert.Equal(t, Subscribed, result)
	assert.Equal(t, StatusActive, sub.Status)
	waitForWelcome(t, mailer)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeMailer(), zerolog.Nop())

	_, _, err := service.Subscribe(context.Background(), "dev@example.com", "Dev", SourceWebsite)
	require.NoError(t, err)

	first, err := service.Unsubscribe(context.Background(), "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusUnsubscribed, first.Status)

	second, err := service.Unsubscribe(context.Background(), "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusUnsubscribed, second.Status)

	_, err = service.Unsubscribe(context.Background(), "stranger@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

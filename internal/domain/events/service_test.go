package events

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildercircle/server/internal/api/pagination"
)

type fakeRepo struct {
	events  map[string]*Event
	slugs   map[string]string // slug -> id
	updated *UpdateParams
	newSlug string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: map[string]*Event{}, slugs: map[string]string{}}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters, params pagination.Params) ([]Event, int64, error) {
	items := make([]Event, 0, len(f.events))
	for _, e := range f.events {
		items = append(items, *e)
	}
	return items, int64(len(items)), nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	if id, ok := f.slugs[slug]; ok {
		return f.events[id], nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, event *Event) error {
	f.events[event.ID] = event
	f.slugs[event.Slug] = event.ID
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	f.updated = &params
	f.newSlug = newSlug
	if newSlug != "" {
		delete(f.slugs, event.Slug)
		event.Slug = newSlug
		f.slugs[newSlug] = id
	}
	if params.Title != nil {
		event.Title = *params.Title
	}
	return event, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	id, ok := f.slugs[slug]
	return ok && id != excludeID, nil
}

func validCreate() CreateParams {
	return CreateParams{
		Title:       "Builder Summit",
		Description: "<p>Two days of hacking</p>",
		Category:    "hackathon",
		Location:    "Lisbon",
		StartDate:   time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC),
	}
}

func TestCreateAssignsSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	event, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "builder-summit", event.Slug)
	assert.NotEmpty(t, event.ID)

	// A second event with the same title gets a suffixed slug.
	second, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "builder-summit-1", second.Slug)
}

func TestCreateValidation(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())

	params := validCreate()
	params.Title = ""
	_, err := service.Create(context.Background(), params)
	assert.Error(t, err)

	params = validCreate()
	params.Category = "festival"
	_, err = service.Create(context.Background(), params)
	assert.Error(t, err)

	params = validCreate()
	params.URL = "not-a-url"
	_, err = service.Create(context.Background(), params)
	assert.Error(t, err)
}

func TestCreateSanitizesInput(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	params := validCreate()
	params.Title = "Builder <script>x</script>Summit"
	params.Description = "<p>ok</p><script>bad()</script>"
	params.Tags = []string{"<i>defi</i>"}

	event, err := service.Create(context.Background(), params)
	require.NoError(t, err)
	assert.NotContains(t, event.Title, "script")
	assert.NotContains(t, event.Description, "script")
	assert.Equal(t, []string{"defi"}, event.Tags)
}

func TestUpdateTitleRegeneratesSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	event, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	title := "Builder Summit Europe"
	updated, err := service.Update(context.Background(), event.ID, UpdateParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "builder-summit-europe", updated.Slug)

	// Old slug no longer resolves.
	_, err = service.GetBySlug(context.Background(), "builder-summit")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWithoutTitleKeepsSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	event, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	location := "Berlin"
	_, err = service.Update(context.Background(), event.ID, UpdateParams{Location: &location})
	require.NoError(t, err)
	assert.Empty(t, repo.newSlug)
}

func TestDeleteNotFound(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())
	err := service.Delete(context.Background(), "01JDWX5A3V9T2K4M6P8R0S1T2V")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseFilters(t *testing.T) {
	filters, params, err := ParseFilters(url.Values{
		"category": {"Hackathon"},
		"q":        {" solidity "},
		"upcoming": {"true"},
		"page":     {"2"},
		"limit":    {"5"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hackathon", filters.Category)
	assert.Equal(t, "solidity", filters.Query)
	assert.True(t, filters.Upcoming)
	assert.Equal(t, pagination.Params{Page: 2, Limit: 5}, params)

	_, _, err = ParseFilters(url.Values{"category": {"festival"}})
	assert.Error(t, err)
}

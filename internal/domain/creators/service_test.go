package creators

import (
	"context"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildercircle/server/internal/api/pagination"
)

type fakeRepo struct {
	creators map[string]*Creator
	slugs    map[string]string // slug -> id
	updated  *UpdateParams
	newSlug  string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{creators: map[string]*Creator{}, slugs: map[string]string{}}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters, params pagination.Params) ([]Creator, int64, error) {
	items := make([]Creator, 0, len(f.creators))
	for _, c := range f.creators {
		items = append(items, *c)
	}
	return items, int64(len(items)), nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Creator, error) {
	if c, ok := f.creators[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (*Creator, error) {
	if id, ok := f.slugs[slug]; ok {
		return f.creators[id], nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, creator *Creator) error {
	f.creators[creator.ID] = creator
	f.slugs[creator.Slug] = creator.ID
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Creator, error) {
	creator, ok := f.creators[id]
	if !ok {
		return nil, ErrNotFound
	}
	f.updated = &params
	f.newSlug = newSlug
	if newSlug != "" {
		delete(f.slugs, creator.Slug)
		creator.Slug = newSlug
		f.slugs[newSlug] = id
	}
	if params.Name != nil {
		creator.Name = *params.Name
	}
	return creator, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.creators[id]; !ok {
		return ErrNotFound
	}
	delete(f.creators, id)
	return nil
}

func (f *fakeRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	id, ok := f.slugs[slug]
	return ok && id != excludeID, nil
}

func validCreate() CreateParams {
	return CreateParams{
		Name:     "Ada Lovelace",
		Bio:      "<p>Smart-contract auditor</p>",
		Category: "infrastructure",
		Twitter:  "ada_dev",
	}
}

func TestCreateAssignsSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	creator, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "ada-lovelace", creator.Slug)
	assert.NotEmpty(t, creator.ID)

	// A second profile with the same name gets a suffixed slug.
	second, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "ada-lovelace-1", second.Slug)
}

func TestCreateValidation(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())

	params := validCreate()
	params.Name = ""
	_, err := service.Create(context.Background(), params)
	assert.Error(t, err)

	params = validCreate()
	params.Category = "astrology"
	_, err = service.Create(context.Background(), params)
	assert.Error(t, err)

	params = validCreate()
	params.Website = "not-a-url"
	_, err = service.Create(context.Background(), params)
	assert.Error(t, err)
}

func TestCreateSanitizesInput(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	params := validCreate()
	params.Name = "Ada <script>x</script>Lovelace"
	params.Bio = "<p>ok</p><script>bad()</script>"
	params.Tags = []string{"<i>audits</i>"}

	creator, err := service.Create(context.Background(), params)
	require.NoError(t, err)
	assert.NotContains(t, creator.Name, "script")
	assert.NotContains(t, creator.Bio, "script")
	assert.Equal(t, []string{"audits"}, creator.Tags)
}

func TestUpdateNameRegeneratesSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	creator, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	name := "Ada King"
	updated, err := service.Update(context.Background(), creator.ID, UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "ada-king", updated.Slug)

	// Old slug no longer resolves.
	_, err = service.GetBySlug(context.Background(), "ada-lovelace")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWithoutNameKeepsSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	creator, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	bio := "<p>Auditor and educator</p>"
	_, err = service.Update(context.Background(), creator.ID, UpdateParams{Bio: &bio})
	require.NoError(t, err)
	assert.Empty(t, repo.newSlug)
}

func TestUpdateRejectsUnknownCategory(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	creator, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	category := "astrology"
	_, err = service.Update(context.Background(), creator.ID, UpdateParams{Category: &category})
	var filterErr FilterError
	assert.ErrorAs(t, err, &filterErr)
}

func TestDeleteNotFound(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())
	err := service.Delete(context.Background(), "01JDWX5A3V9T2K4M6P8R0S1T2V")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseFilters(t *testing.T) {
	filters, params, err := ParseFilters(url.Values{
		"category": {"DeFi"},
		"q":        {" lending "},
		"featured": {"true"},
		"page":     {"2"},
		"limit":    {"6"},
	})
	require.NoError(t, err)
	assert.Equal(t, "defi", filters.Category)
	assert.Equal(t, "lending", filters.Query)
	require.NotNil(t, filters.Featured)
	assert.True(t, *filters.Featured)
	assert.Equal(t, pagination.Params{Page: 2, Limit: 6}, params)

	_, _, err = ParseFilters(url.Values{"category": {"astrology"}})
	assert.Error(t, err)
}

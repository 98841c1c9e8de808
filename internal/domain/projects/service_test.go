package projects

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
	projects map[string]*Project
	slugs    map[string]string // slug -> id
	updated  *UpdateParams
	newSlug  string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{projects: map[string]*Project{}, slugs: map[string]string{}}
}

func (f *fakeRepo) List(ctx context.Context, filters Filters, params pagination.Params) ([]Project, int64, error) {
	items := make([]Project, 0, len(f.projects))
	for _, p := range f.projects {
		items = append(items, *p)
	}
	return items, int64(len(items)), nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Project, error) {
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	if id, ok := f.slugs[slug]; ok {
		return f.projects[id], nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, project *Project) error {
	f.projects[project.ID] = project
	f.slugs[project.Slug] = project.ID
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	f.updated = &params
	f.newSlug = newSlug
	if newSlug != "" {
		delete(f.slugs, project.Slug)
		project.Slug = newSlug
		f.slugs[newSlug] = id
	}
	if params.Title != nil {
		project.Title = *params.Title
	}
	if params.Status != nil {
		project.Status = *params.Status
	}
	return project, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	id, ok := f.slugs[slug]
	return ok && id != excludeID, nil
}

func validCreate() CreateParams {
	return CreateParams{
		Title:       "Lending Desk",
		Description: "<p>Undercollateralized lending pools</p>",
		Category:    "defi",
		RepoURL:     "https://github.com/example/lending-desk",
	}
}

func TestCreateAssignsSlugAndDefaultStatus(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	project, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "lending-desk", project.Slug)
	assert.Equal(t, "active", project.Status)
	assert.NotEmpty(t, project.ID)

	// A second project with the same title gets a suffixed slug.
	second, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "lending-desk-1", second.Slug)
}

func TestCreateValidation(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())

	params := validCreate()
	params.Title = ""
	_, err := service.Create(context.Background(), params)
	assert.Error(t, err)

	params = validCreate()
	params.Category = "astrology"
	_, err = service.Create(context.Background(), params)
	assert.Error(t, err)

	params = validCreate()
	params.Status = "abandoned"
	_, err = service.Create(context.Background(), params)
	assert.Error(t, err)

	params = validCreate()
	params.RepoURL = "not-a-url"
	_, err = service.Create(context.Background(), params)
	assert.Error(t, err)
}

func TestCreateSanitizesInput(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	params := validCreate()
	params.Title = "Lending <script>x</script>Desk"
	params.Description = "<p>ok</p><script>bad()</script>"
	params.Tags = []string{"<i>defi</i>"}

	project, err := service.Create(context.Background(), params)
	require.NoError(t, err)
	assert.NotContains(t, project.Title, "script")
	assert.NotContains(t, project.Description, "script")
	assert.Equal(t, []string{"defi"}, project.Tags)
}

func TestUpdateTitleRegeneratesSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	project, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	title := "Lending Desk Pro"
	updated, err := service.Update(context.Background(), project.ID, UpdateParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "lending-desk-pro", updated.Slug)

	// Old slug no longer resolves.
	_, err = service.GetBySlug(context.Background(), "lending-desk")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusKeepsSlug(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	project, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	status := "completed"
	updated, err := service.Update(context.Background(), project.ID, UpdateParams{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	assert.Empty(t, repo.newSlug)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	project, err := service.Create(context.Background(), validCreate())
	require.NoError(t, err)

	status := "abandoned"
	_, err = service.Update(context.Background(), project.ID, UpdateParams{Status: &status})
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
		"category": {"Gaming"},
		"status":   {"Active"},
		"q":        {" onchain "},
		"page":     {"3"},
		"limit":    {"4"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gaming", filters.Category)
	assert.Equal(t, "active", filters.Status)
	assert.Equal(t, "onchain", filters.Query)
	assert.Equal(t, pagination.Params{Page: 3, Limit: 4}, params)

	_, _, err = ParseFilters(url.Values{"status": {"abandoned"}})
	assert.Error(t, err)
}

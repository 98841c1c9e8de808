package blogs

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildercircle/server/internal/api/pagination"
)

type fakeRepo struct {
	mu    sync.Mutex
	blogs map[string]*Blog
	slugs map[string]string // slug -> id

	viewBumps chan string
	related   []Blog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		blogs:     map[string]*Blog{},
		slugs:     map[string]string{},
		viewBumps: make(chan string, 8),
	}
}

func (f *fakeRepo) Create(ctx context.Context, blog *Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blogs[blog.ID] = blog
	f.slugs[blog.Slug] = blog.ID
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.blogs[id]; ok {
		return b, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.slugs[slug]
	if !ok {
		return nil, ErrNotFound
	}
	blog := f.blogs[id]
	if publishedOnly && !blog.Published {
		return nil, ErrNotFound
	}
	return blog, nil
}

func (f *fakeRepo) List(ctx context.Context, filters Filters, params pagination.Params) ([]Blog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]Blog, 0, len(f.blogs))
	for _, b := range f.blogs {
		if filters.PublishedOnly && !b.Published {
			continue
		}
		items = append(items, *b)
	}
	return items, int64(len(items)), nil
}

func (f *fakeRepo) ListFeatured(ctx context.Context, limit int) ([]Blog, error) {
	return nil, nil
}

func (f *fakeRepo) ListRelated(ctx context.Context, id, category string, tags []string, limit int) ([]Blog, error) {
	return f.related, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, params UpdateParams, newSlug string) (*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blog, ok := f.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if newSlug != "" {
		delete(f.slugs, blog.Slug)
		blog.Slug = newSlug
		f.slugs[newSlug] = id
	}
	if params.Title != nil {
		blog.Title = *params.Title
	}
	if params.Published != nil {
		blog.Published = *params.Published
	}
	return blog, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blogs[id]; !ok {
		return ErrNotFound
	}
	delete(f.blogs, id)
	return nil
}

func (f *fakeRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.slugs[slug]
	return ok && id != excludeID, nil
}

func (f *fakeRepo) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	return []CategoryCount{
		{Category: "tutorials", Count: 7},
		{Category: "news", Count: 3},
	}, nil
}

func (f *fakeRepo) TrendingTags(ctx context.Context, limit int) ([]TagCount, error) {
	return []TagCount{{Tag: "solidity", Count: 4}}, nil
}

func (f *fakeRepo) IncrementViews(ctx context.Context, id string) error {
	f.viewBumps <- id
	return nil
}

func (f *fakeRepo) IncrementLikes(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blog, ok := f.blogs[id]
	if !ok {
		return 0, ErrNotFound
	}
	blog.Stats.Likes++
	return blog.Stats.Likes, nil
}

func (f *fakeRepo) IncrementBookmarks(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blog, ok := f.blogs[id]
	if !ok {
		return 0, ErrNotFound
	}
	blog.Stats.Bookmarks++
	return blog.Stats.Bookmarks, nil
}

func validCreate() CreateParams {
	return CreateParams{
		Title:     "Understanding Gas Optimization",
		Excerpt:   "A practical tour of gas costs.",
		Content:   "<p>Storage writes dominate.</p>",
		Category:  "tutorials",
		Author:    "Ada",
		Tags:      []string{"solidity", "gas"},
		Published: true,
	}
}

func mustCreate(t *testing.T, service *Service, params CreateParams) *Blog {
	t.Helper()
	blog, err := service.Create(context.Background(), params)
	require.NoError(t, err)
	return blog
}

func TestPublicSlugLookupBumpsViews(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())
	blog := mustCreate(t, service, validCreate())

	got, err := service.GetBySlug(context.Background(), blog.Slug, true)
	require.NoError(t, err)
	assert.Equal(t, blog.ID, got.ID)

	// The bump runs off the request path.
	select {
	case id := <-repo.viewBumps:
		assert.Equal(t, blog.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a view bump")
	}
}

func TestAdminSlugLookupSkipsViewBump(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())
	blog := mustCreate(t, service, validCreate())

	_, err := service.GetBySlug(context.Background(), blog.Slug, false)
	require.NoError(t, err)

	select {
	case <-repo.viewBumps:
		t.Fatal("admin lookup must not bump views")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDraftHiddenFromPublicSlugLookup(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())

	params := validCreate()
	params.Published = false
	blog := mustCreate(t, service, params)

	_, err := service.GetBySlug(context.Background(), blog.Slug, true)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := service.GetBySlug(context.Background(), blog.Slug, false)
	require.NoError(t, err)
	assert.Equal(t, blog.ID, got.ID)
}

func TestCategoriesPrependsAllBucket(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())

	counts, err := service.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, CategoryCount{Category: "all", Count: 10}, counts[0])
	assert.Equal(t, "tutorials", counts[1].Category)
}

func TestRelatedResolvesPublishedPostFirst(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())
	blog := mustCreate(t, service, validCreate())
	repo.related = []Blog{{ID: "other"}}

	related, err := service.Related(context.Background(), blog.Slug)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "other", related[0].ID)

	_, err = service.Related(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Resolving the anchor post for a related lookup is not a read of the
	// post itself and must not move the view counter.
	select {
	case id := <-repo.viewBumps:
		t.Fatalf("unexpected view bump for %s", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLikeAndBookmarkReturnNewCounts(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, zerolog.Nop())
	blog := mustCreate(t, service, validCreate())

	likes, err := service.Like(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	likes, err = service.Like(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), likes)

	bookmarks, err := service.Bookmark(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bookmarks)
}

func TestCreateAssignsUniqueSlug(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())

	first := mustCreate(t, service, validCreate())
	assert.Equal(t, "understanding-gas-optimization", first.Slug)

	second := mustCreate(t, service, validCreate())
	assert.Equal(t, "understanding-gas-optimization-1", second.Slug)
}

func TestCreateSanitizesContent(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())

	params := validCreate()
	params.Content = "<p>fine</p><script>steal()</script>"
	params.Title = "Safe <b>Title</b> Here"

	blog := mustCreate(t, service, params)
	assert.NotContains(t, blog.Content, "script")
	assert.NotContains(t, blog.Title, "<b>")
}

func TestUpdateTitleRederivesSlug(t *testing.T) {
	service := NewService(newFakeRepo(), zerolog.Nop())
	blog := mustCreate(t, service, validCreate())

	title := "Advanced Gas Optimization"
	updated, err := service.Update(context.Background(), blog.ID, UpdateParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "advanced-gas-optimization", updated.Slug)
}

func TestParseFiltersModes(t *testing.T) {
	filters, params, err := ParseFilters(url.Values{
		"filter":   {"Popular"},
		"category": {"tutorials"},
		"featured": {"true"},
		"page":     {"3"},
	})
	require.NoError(t, err)
	assert.Equal(t, ModePopular, filters.Mode)
	assert.Equal(t, "tutorials", filters.Category)
	require.NotNil(t, filters.Featured)
	assert.True(t, *filters.Featured)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, DefaultLimit, params.Limit)

	_, _, err = ParseFilters(url.Values{"filter": {"viral"}})
	assert.Error(t, err)
}

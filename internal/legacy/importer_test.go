package legacy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencysite/internal/database"
	"agencysite/internal/models"
	"agencysite/internal/roots"
	"agencysite/internal/store"
)

func testStore(t *testing.T) *store.ContentStore {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "data", "content.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	return store.NewContentStore(db)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestImportPosts_ColdStart(t *testing.T) {
	repo := t.TempDir()
	blog := filepath.Join(repo, "content", "blog")
	writeFile(t, filepath.Join(blog, "hello.md"), "# Hello\n\nWorld.")
	writeFile(t, filepath.Join(blog, "hello.en.md"), "# Hello EN\n\nWorld EN.")

	mtime := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(blog, "hello.md"), mtime, mtime))

	ctx := context.Background()
	s := testStore(t)
	im := NewImporter(s, roots.Roots{Repo: repo})

	n, err := im.ImportPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ru, err := s.GetPost(ctx, "hello", models.LangRU)
	require.NoError(t, err)
	require.NotNil(t, ru)
	assert.Equal(t, "Hello", ru.Title)
	assert.Equal(t, "World.", ru.Excerpt)
	assert.Equal(t, "1 мин", ru.ReadTime)
	assert.Equal(t, mtime.UnixMilli(), ru.CreatedAtMs)
	assert.Equal(t, mtime.UnixMilli(), ru.UpdatedAtMs)

	en, err := s.GetPost(ctx, "hello", models.LangEN)
	require.NoError(t, err)
	require.NotNil(t, en)
	assert.Equal(t, "Hello EN", en.Title)
	assert.Equal(t, "1 min", en.ReadTime)

	deleted, err := s.DeletePost(ctx, "hello", models.LangRU)
	require.NoError(t, err)
	assert.True(t, deleted)

	en, err = s.GetPost(ctx, "hello", models.LangEN)
	require.NoError(t, err)
	assert.NotNil(t, en, "deleting the ru post must not remove the en post")
}

func TestImportPosts_FrontMatterStripped(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "public", "content", "blog", "fm.md"),
		"---\ntitle: From FM\ntags: [go, sqlite]\n---\n# Heading\n\nBody.")

	ctx := context.Background()
	s := testStore(t)
	_, err := NewImporter(s, roots.Roots{Repo: repo}).ImportPosts(ctx)
	require.NoError(t, err)

	p, err := s.GetPost(ctx, "fm", models.LangRU)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "From FM", p.Title)
	assert.Equal(t, []string{"go", "sqlite"}, p.Tags)
	assert.Equal(t, "# Heading\n\nBody.", p.Content)
}

func TestImportPosts_NonDestructive(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.UpsertPost(ctx, &models.Post{
		Slug: "existing", Lang: models.LangRU, Title: "Kept",
		CreatedAtMs: 100, UpdatedAtMs: 100,
	})
	require.NoError(t, err)
	before, err := s.ListPostMetas(ctx, models.LangRU)
	require.NoError(t, err)

	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "content", "blog", "existing.md"), "# Replaced")
	writeFile(t, filepath.Join(repo, "content", "blog", "new.md"), "# New")

	n, err := NewImporter(s, roots.Roots{Repo: repo}).ImportPosts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	after, err := s.ListPostMetas(ctx, models.LangRU)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportPosts_FirstRootWins(t *testing.T) {
	dist := t.TempDir()
	repo := t.TempDir()
	// An empty candidate directory does not count as a match.
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "content", "blog"), 0o755))
	writeFile(t, filepath.Join(dist, "public", "content", "blog", "from-dist.md"), "# Dist")
	writeFile(t, filepath.Join(repo, "content", "blog", "from-repo.md"), "# Repo")

	ctx := context.Background()
	s := testStore(t)
	n, err := NewImporter(s, roots.Roots{Dist: dist, Repo: repo}).ImportPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := s.GetPost(ctx, "from-dist", models.LangRU)
	require.NoError(t, err)
	assert.NotNil(t, p)

	p, err = s.GetPost(ctx, "from-repo", models.LangRU)
	require.NoError(t, err)
	assert.Nil(t, p, "later roots must not be consulted")
}

func TestImportPosts_SkipsUnreadable(t *testing.T) {
	repo := t.TempDir()
	blog := filepath.Join(repo, "content", "blog")
	writeFile(t, filepath.Join(blog, "good.md"), "# Good")
	// A dangling symlink is listed as a file but cannot be read.
	require.NoError(t, os.Symlink(filepath.Join(repo, "nowhere.md"), filepath.Join(blog, "broken.md")))

	ctx := context.Background()
	s := testStore(t)
	n, err := NewImporter(s, roots.Roots{Repo: repo}).ImportPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := s.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportPosts_NoLegacyContent(t *testing.T) {
	s := testStore(t)
	n, err := NewImporter(s, roots.Roots{Repo: t.TempDir()}).ImportPosts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportProjects(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "content", "projects.ru.json"), `[
		// legacy files carry comments
		{"id": "shop", "title": "Магазин", "technologies": ["Go", "React"]},
		{"title": "Без id"},
	]`)
	writeFile(t, filepath.Join(repo, "public", "content", "projects.en.json"),
		`[{"id": "shop", "title": "Shop", "features": ["Cart"], "demoUrl": "https://demo.example"}]`)

	ctx := context.Background()
	s := testStore(t)
	n, err := NewImporter(s, roots.Roots{Repo: repo}).ImportProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ru, err := s.GetProjects(ctx, models.LangRU)
	require.NoError(t, err)
	require.Len(t, ru, 2)
	ids := []string{ru[0].ID, ru[1].ID}
	assert.ElementsMatch(t, []string{"shop", "bez-id"}, ids)

	en, err := s.GetProjects(ctx, models.LangEN)
	require.NoError(t, err)
	require.Len(t, en, 1)
	assert.Equal(t, "Shop", en[0].Title)
	assert.Equal(t, []string{"Cart"}, en[0].Features)
	assert.Equal(t, []string{}, en[0].Technologies)
	assert.Equal(t, "https://demo.example", en[0].DemoURL)
}

func TestImportProjects_MalformedFallsThrough(t *testing.T) {
	dist := t.TempDir()
	repo := t.TempDir()
	writeFile(t, filepath.Join(dist, "content", "projects.ru.json"), `{"not": "an array"}`)
	writeFile(t, filepath.Join(dist, "public", "content", "projects.ru.json"), `[{"id": "broken"`)
	writeFile(t, filepath.Join(repo, "content", "projects.ru.json"), `[{"id": "good", "title": "Good"}]`)
	writeFile(t, filepath.Join(repo, "public", "content", "projects.ru.json"), `[{"id": "later"}]`)

	ctx := context.Background()
	s := testStore(t)
	n, err := NewImporter(s, roots.Roots{Dist: dist, Repo: repo}).ImportProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ru, err := s.GetProjects(ctx, models.LangRU)
	require.NoError(t, err)
	require.Len(t, ru, 1)
	assert.Equal(t, "good", ru[0].ID)
}

func TestImportProjects_NonDestructive(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	_, err := s.ReplaceProjects(ctx, models.LangEN, []models.Project{{ID: "kept", Title: "Kept"}})
	require.NoError(t, err)

	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "content", "projects.ru.json"), `[{"id": "new"}]`)

	n, err := NewImporter(s, roots.Roots{Repo: repo}).ImportProjects(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	ru, err := s.GetProjects(ctx, models.LangRU)
	require.NoError(t, err)
	assert.Empty(t, ru)
}

func TestRun(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "content", "blog", "a.md"), "# A")
	writeFile(t, filepath.Join(repo, "content", "projects.en.json"), `[{"id": "p"}]`)

	ctx := context.Background()
	s := testStore(t)
	im := NewImporter(s, roots.Roots{Repo: repo})

	res, err := im.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Posts: 1, Projects: 1}, res)

	res, err = im.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res, "second run must be a no-op")
}

// failingStore reports empty tables and fails every write.
type failingStore struct {
	err     error
	upserts int
}

func (f *failingStore) CountPosts(context.Context) (int, error)    { return 0, nil }
func (f *failingStore) CountProjects(context.Context) (int, error) { return 0, nil }

func (f *failingStore) UpsertPost(context.Context, *models.Post) (*models.Post, error) {
	f.upserts++
	return nil, f.err
}

func (f *failingStore) ReplaceProjects(context.Context, models.Lang, []models.Project) ([]models.Project, error) {
	return nil, f.err
}

func TestImportPosts_StoreErrorPropagates(t *testing.T) {
	repo := t.TempDir()
	blog := filepath.Join(repo, "content", "blog")
	writeFile(t, filepath.Join(blog, "a.md"), "# A")
	writeFile(t, filepath.Join(blog, "b.md"), "# B")

	diskErr := errors.New("disk I/O error")
	st := &failingStore{err: diskErr}

	n, err := NewImporter(st, roots.Roots{Repo: repo}).ImportPosts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)
	assert.Contains(t, err.Error(), "a.md")
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, st.upserts, "import must stop at the first store failure")
}

func TestRun_StoreErrorPropagates(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, "content", "blog", "a.md"), "# A")

	diskErr := errors.New("disk I/O error")
	_, err := NewImporter(&failingStore{err: diskErr}, roots.Roots{Repo: repo}).Run(context.Background())
	assert.ErrorIs(t, err, diskErr)
}

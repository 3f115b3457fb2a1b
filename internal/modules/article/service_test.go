package article

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typograph/core/internal/config"
	"github.com/typograph/core/internal/database"
	"github.com/typograph/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewService(db, config.BlogConfig{
		Name:       "test blog",
		URL:        "http://blog.example",
		TextFilter: "markdown",
		PageSize:   10,
	})
	return svc, db
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{
		Title:  "Hello World",
		Body:   "some **bold** text",
		Author: "alice",
	})
	require.NoError(t, err)

	require.NotNil(t, a.Published)
	assert.True(t, *a.Published)
	assert.Equal(t, "markdown", a.TextFilter)
	assert.Equal(t, "hello-world", a.Permalink)
	assert.Len(t, a.GUID, 32)
	assert.Contains(t, a.BodyHTML, "<strong>bold</strong>")
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Create(&CreateArticleDTO{Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	var count int64
	require.NoError(t, db.Model(&models.ArticleModel{}).Count(&count).Error)
	assert.Zero(t, count, "failed save must persist nothing")
}

func TestCreateKeepsExplicitUnpublished(t *testing.T) {
	svc, _ := newTestService(t)

	unpublished := false
	a, err := svc.Create(&CreateArticleDTO{Title: "draft", Published: &unpublished})
	require.NoError(t, err)
	require.NotNil(t, a.Published)
	assert.False(t, *a.Published)
}

func TestFingerprintAssignedExactlyOnce(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "stable", Body: "v1"})
	require.NoError(t, err)
	guid := a.GUID
	require.NotEmpty(t, guid)

	body := "v2, long after"
	updated, err := svc.Update(a.ID, &UpdateArticleDTO{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, guid, updated.GUID, "a non-blank fingerprint is frozen")
}

func TestPermalinkImmutableOnceAssigned(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "First Title"})
	require.NoError(t, err)
	require.Equal(t, "first-title", a.Permalink)

	title := "Second Title"
	updated, err := svc.Update(a.ID, &UpdateArticleDTO{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "first-title", updated.Permalink)
}

func TestDuplicateFingerprintRejected(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "original"})
	require.NoError(t, err)

	clone := &models.ArticleModel{Title: "clone", GUID: a.GUID}
	err = svc.save(clone, nil)
	assert.ErrorIs(t, err, ErrDuplicateGUID)
}

func TestDuplicateFingerprintCountsDeletedArticles(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "original"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(a.ID))

	// the soft-deleted row still holds its slot in the unique index
	clone := &models.ArticleModel{Title: "clone", GUID: a.GUID}
	err = svc.save(clone, nil)
	assert.ErrorIs(t, err, ErrDuplicateGUID)
}

func TestTagReconciliation(t *testing.T) {
	svc, db := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "tagged", Keywords: "go rust go"})
	require.NoError(t, err)

	names := tagNames(a.Tags)
	assert.Equal(t, []string{"go", "rust"}, names)

	var joinRows int64
	require.NoError(t, db.Table("article_tags").Where("article_id = ?", a.ID).Count(&joinRows).Error)
	assert.EqualValues(t, 2, joinRows, "each tag associated exactly once")

	// reconciling again with the same keywords is a no-op set-replace
	keywords := "go rust go"
	a, err = svc.Update(a.ID, &UpdateArticleDTO{Keywords: &keywords})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, tagNames(a.Tags))

	require.NoError(t, db.Table("article_tags").Where("article_id = ?", a.ID).Count(&joinRows).Error)
	assert.EqualValues(t, 2, joinRows)

	var tagCount int64
	require.NoError(t, db.Model(&models.TagModel{}).Count(&tagCount).Error)
	assert.EqualValues(t, 2, tagCount, "tags are get-or-create, never duplicated")
}

func TestTagReconciliationReplacesOldSet(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "tagged", Keywords: "go rust"})
	require.NoError(t, err)

	keywords := "go sqlite"
	a, err = svc.Update(a.ID, &UpdateArticleDTO{Keywords: &keywords})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sqlite"}, tagNames(a.Tags))
}

func TestFailedSaveRollsBackTagReplacement(t *testing.T) {
	svc, db := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "tagged", Keywords: "go rust"})
	require.NoError(t, err)

	var cat models.CategoryModel
	cat.Name, cat.Slug = "general", "general"
	require.NoError(t, db.Create(&cat).Error)

	// make the category replace blow up after the tag set was swapped
	require.NoError(t, db.Migrator().DropTable("article_categories"))

	var stale models.ArticleModel
	require.NoError(t, db.First(&stale, "id = ?", a.ID).Error)
	stale.Keywords = "go sqlite"
	require.Error(t, svc.save(&stale, []string{cat.ID}))

	var names []string
	require.NoError(t, db.Table("article_tags").
		Joins("JOIN tags ON tags.id = article_tags.tag_id").
		Where("article_tags.article_id = ?", a.ID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error)
	assert.Equal(t, []string{"go", "rust"}, names, "the prior tag set survives the rollback")

	var reloaded models.ArticleModel
	require.NoError(t, db.First(&reloaded, "id = ?", a.ID).Error)
	assert.Equal(t, "go rust", reloaded.Keywords, "the row update rolls back too")
}

func TestBlankKeywordsLeaveTagsUntouched(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "tagged", Keywords: "go"})
	require.NoError(t, err)

	keywords := "   "
	_, err = svc.Update(a.ID, &UpdateArticleDTO{Keywords: &keywords})
	require.NoError(t, err)

	reloaded, err := svc.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, tagNames(reloaded.Tags))
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateArticleDTO{Title: "cat", Body: "a story about a dog"})
	require.NoError(t, err)
	_, err = svc.Create(&CreateArticleDTO{Title: "cat", Body: "nothing else"})
	require.NoError(t, err)
	unpublished := false
	_, err = svc.Create(&CreateArticleDTO{Title: "cat dog", Body: "hidden", Published: &unpublished})
	require.NoError(t, err)

	// tokens are ANDed, each may match a different field
	found, err := svc.Search("cat dog")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a story about a dog", found[0].Body)

	// case-insensitive
	found, err = svc.Search("CAT DoG")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// blank query short-circuits
	found, err = svc.Search("   \t ")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindAllByDate(t *testing.T) {
	svc, _ := newTestService(t)

	feb := mustSaveAt(t, svc, "in february", time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC))
	mustSaveAt(t, svc, "in march", time.Date(2020, 3, 15, 10, 0, 0, 0, time.UTC))
	later := mustSaveAt(t, svc, "late february", time.Date(2020, 2, 20, 10, 0, 0, 0, time.UTC))

	month := 2
	articles, err := svc.FindAllByDate(2020, &month, nil)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, later.ID, articles[0].ID, "newest first")
	assert.Equal(t, feb.ID, articles[1].ID)

	count, err := svc.CountByDate(2020, &month, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	articles, err = svc.FindAllByDate(2021, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFindAllByDateExcludesUnpublished(t *testing.T) {
	svc, _ := newTestService(t)

	unpublished := false
	a := &models.ArticleModel{Title: "hidden", Published: &unpublished}
	a.CreatedAt = time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.save(a, nil))

	articles, err := svc.FindAllByDate(2020, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFindByPermalink(t *testing.T) {
	svc, _ := newTestService(t)

	a := mustSaveAt(t, svc, "My Permalink Post", time.Date(2020, 2, 15, 10, 0, 0, 0, time.UTC))

	found, err := svc.FindByPermalink(2020, 2, 15, "my-permalink-post")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a.ID, found.ID)

	// wrong day misses the window
	found, err = svc.FindByPermalink(2020, 2, 16, "my-permalink-post")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = svc.FindByPermalink(2020, 2, 15, "no-such-slug")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindByTag(t *testing.T) {
	svc, _ := newTestService(t)

	older := &models.ArticleModel{Title: "older", Keywords: "shared"}
	older.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.save(older, nil))

	newer := &models.ArticleModel{Title: "newer", Keywords: "shared other"}
	newer.CreatedAt = time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.save(newer, nil))

	articles, err := svc.FindByTag("shared")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, newer.ID, articles[0].ID)
	assert.Equal(t, older.ID, articles[1].ID)

	articles, err = svc.FindByTag("other")
	require.NoError(t, err)
	require.Len(t, articles, 1)

	articles, err = svc.FindByTag("absent")
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestDeleteCascadesAndDetachesResources(t *testing.T) {
	svc, db := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "doomed", Keywords: "x"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.CommentModel{ArticleID: a.ID, Author: "bob", Body: "hi"}).Error)
	require.NoError(t, db.Create(&models.TrackbackModel{ArticleID: a.ID, URL: "http://elsewhere"}).Error)
	require.NoError(t, db.Create(&models.PingModel{ArticleID: a.ID, URL: "http://ping.example"}).Error)
	require.NoError(t, db.Create(&models.ResourceModel{ArticleID: &a.ID, Filename: "one.png"}).Error)
	require.NoError(t, db.Create(&models.ResourceModel{ArticleID: &a.ID, Filename: "two.png"}).Error)

	require.NoError(t, svc.Delete(a.ID))

	gone, err := svc.GetByID(a.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var count int64
	require.NoError(t, db.Model(&models.CommentModel{}).Where("article_id = ?", a.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.PingModel{}).Where("article_id = ?", a.ID).Count(&count).Error)
	assert.Zero(t, count)

	var resources []models.ResourceModel
	require.NoError(t, db.Find(&resources).Error)
	require.Len(t, resources, 2, "resources survive the delete")
	for _, r := range resources {
		assert.Nil(t, r.ArticleID, "resource is detached, not deleted")
	}
}

func TestFullHTMLJoinsHalves(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(&CreateArticleDTO{Title: "joined", Body: "first", Extended: "second"})
	require.NoError(t, err)
	assert.Equal(t, a.BodyHTML+"\n\n"+a.ExtendedHTML, a.FullHTML())

	empty, err := svc.Create(&CreateArticleDTO{Title: "half empty", Body: "only body"})
	require.NoError(t, err)
	assert.Equal(t, empty.BodyHTML+"\n\n", empty.FullHTML())
}

func TestSaveRejectsUnknownFilter(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Create(&CreateArticleDTO{Title: "bad filter", TextFilter: "textile"})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ArticleModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func mustSaveAt(t *testing.T, svc *Service, title string, at time.Time) *models.ArticleModel {
	t.Helper()
	a := &models.ArticleModel{Title: title}
	a.CreatedAt = at
	require.NoError(t, svc.save(a, nil))
	return a
}

func tagNames(tags []models.TagModel) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

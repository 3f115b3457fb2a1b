package article

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/modules/schema"
	"gorm.io/gorm"
)

// saveCapability is one schema-version-gated defaulting rule. Rules are
// cumulative: each applies at its version and all higher ones. Rules marked
// afterPersist need the article row to exist (association writes) and run
// right after the insert, still inside the save transaction.
type saveCapability struct {
	minVersion   int
	afterPersist bool
	apply        func(s *Service, tx *gorm.DB, a *models.ArticleModel) error
}

var saveCapabilities = []saveCapability{
	{minVersion: 0, apply: (*Service).defaultFlags},
	{minVersion: 7, apply: (*Service).defaultPermalink},
	{minVersion: 9, apply: (*Service).defaultFingerprint},
	{minVersion: 10, afterPersist: true, apply: (*Service).reconcileTags},
}

// applyDefaults runs the pre-persist defaulting rules and validations. The
// schema version comes from the store; if the lookup fails the legacy
// version is assumed and the save proceeds.
func (s *Service) applyDefaults(tx *gorm.DB, a *models.ArticleModel) (int, error) {
	if strings.TrimSpace(a.Title) == "" {
		return 0, ErrTitleRequired
	}

	version := schema.Version(tx)
	for _, c := range saveCapabilities {
		if c.afterPersist || version < c.minVersion {
			continue
		}
		if err := c.apply(s, tx, a); err != nil {
			return 0, err
		}
	}

	// soft-deleted rows still occupy the unique index, so they count too
	if a.GUID != "" {
		var count int64
		if err := tx.Unscoped().Model(&models.ArticleModel{}).
			Where("guid = ? AND id <> ?", a.GUID, a.ID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		if count > 0 {
			return 0, ErrDuplicateGUID
		}
	}
	return version, nil
}

func (s *Service) applyAfterPersist(tx *gorm.DB, a *models.ArticleModel, version int) error {
	for _, c := range saveCapabilities {
		if !c.afterPersist || version < c.minVersion {
			continue
		}
		if err := c.apply(s, tx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) defaultFlags(_ *gorm.DB, a *models.ArticleModel) error {
	if a.Published == nil {
		published := true
		a.Published = &published
	}
	if strings.TrimSpace(a.TextFilter) == "" {
		a.TextFilter = s.cfg.TextFilter
	}
	return nil
}

func (s *Service) defaultPermalink(_ *gorm.DB, a *models.ArticleModel) error {
	if strings.TrimSpace(a.Permalink) == "" {
		a.Permalink = slug.Make(a.Title)
	}
	return nil
}

// defaultFingerprint assigns the content hash exactly once. The current time
// is part of the input, so a non-blank fingerprint is frozen forever.
func (s *Service) defaultFingerprint(_ *gorm.DB, a *models.ArticleModel) error {
	if a.GUID != "" {
		return nil
	}
	sum := md5.Sum([]byte(
		a.Body + a.Extended + a.Title + a.Permalink + a.Author +
			strconv.FormatInt(time.Now().UnixNano(), 10),
	))
	a.GUID = hex.EncodeToString(sum[:])
	return nil
}

// reconcileTags replaces the article's tag set from the freeform keyword
// string: tokens are deduplicated case-sensitively preserving first
// occurrence, tags are looked up or created by exact name, and the
// association is swapped wholesale. Blank keywords leave the set untouched.
func (s *Service) reconcileTags(tx *gorm.DB, a *models.ArticleModel) error {
	if strings.TrimSpace(a.Keywords) == "" {
		return nil
	}

	tokens := dedupeTokens(strings.Fields(a.Keywords))
	tags := make([]models.TagModel, 0, len(tokens))
	for _, name := range tokens {
		var tag models.TagModel
		if err := tx.Where(models.TagModel{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	if err := tx.Model(a).Association("Tags").Replace(&tags); err != nil {
		return err
	}
	a.Tags = tags
	return nil
}

func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

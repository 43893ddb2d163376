package journal

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArchivedEvent is one journal event upserted into the archive database,
// keyed by the canonical event key so re-admitted duplicates collapse.
type ArchivedEvent struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"uniqueIndex;size:512"`
	Date      string `gorm:"index;size:16"`
	Time      string `gorm:"size:8"`
	Empire    string `gorm:"index;size:64"`
	Province  string `gorm:"index;size:128"`
	City      string `gorm:"index;size:128"`
	Text      string `gorm:"type:text"`
	FirstSeen time.Time
}

// Archive is the optional best-effort storage sink: one row per admitted
// event. Callers treat failures as warnings, never as run failures.
type Archive struct {
	db *gorm.DB
}

func OpenArchive(path string) (*Archive, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ArchivedEvent{}); err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record upserts one event. A duplicate-key conflict is a silent no-op, not
// a failure: the archive sees every admitted event again on re-scrapes.
func (a *Archive) Record(ev Event) error {
	row := ArchivedEvent{
		Key:       ev.Key,
		Date:      ev.Date,
		Time:      ev.Time,
		Empire:    ev.Empire,
		Province:  ev.Province,
		City:      ev.City,
		Text:      ev.Text,
		FirstSeen: ev.FirstSeen,
	}
	return a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row).Error
}

// Count returns the number of archived events.
func (a *Archive) Count() (int64, error) {
	var n int64
	err := a.db.Model(&ArchivedEvent{}).Count(&n).Error
	return n, err
}

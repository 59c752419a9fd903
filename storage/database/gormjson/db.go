// Package gormjson stores progress records as JSON blobs, with gorm.
// Every other table has the same shape as the relational schema.
package gormjson

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type (
	userModel struct {
		ID           string `gorm:"primaryKey;type:uuid"`
		Name         string
		Email        string `gorm:"uniqueIndex;not null"`
		Role         string `gorm:"not null;default:STUDENT"`
		IsActive     bool   `gorm:"not null"`
		PasswordHash []byte
		CreatedAt    time.Time
		UpdatedAt    time.Time
		LastLogin    *time.Time
	}

	courseModel struct {
		ID        string `gorm:"primaryKey;type:uuid"`
		Title     string `gorm:"not null"`
		Status    string `gorm:"not null;default:DRAFT"`
		CreatedAt time.Time
	}

	moduleModel struct {
		ID       string `gorm:"primaryKey;type:uuid"`
		CourseID string `gorm:"index;not null;type:uuid"`
		Title    string `gorm:"not null"`
		Position int    `gorm:"not null"`
	}

	lessonModel struct {
		ID       string `gorm:"primaryKey;type:uuid"`
		ModuleID string `gorm:"index;not null;type:uuid"`
		Title    string `gorm:"not null"`
		Position int    `gorm:"not null"`
	}

	enrollmentModel struct {
		ID         string `gorm:"primaryKey;type:uuid"`
		UserID     string `gorm:"uniqueIndex:idx_enrollments_user_course;not null;type:uuid"`
		CourseID   string `gorm:"uniqueIndex:idx_enrollments_user_course;not null;type:uuid"`
		EnrolledAt time.Time
	}

	progressBlobModel struct {
		ID                 string         `gorm:"primaryKey;type:uuid"`
		EnrollmentID       string         `gorm:"not null;type:uuid"`
		UserID             string         `gorm:"uniqueIndex:idx_course_progress_blobs_user_course;not null;type:uuid"`
		CourseID           string         `gorm:"uniqueIndex:idx_course_progress_blobs_user_course;not null;type:uuid"`
		ProgressPercentage float64        `gorm:"not null;default:0"`
		CompletedLessons   datatypes.JSON `gorm:"not null"`
		CreatedAt          time.Time
		UpdatedAt          time.Time
	}

	securityLogModel struct {
		ID           string `gorm:"primaryKey;type:uuid"`
		Event        string `gorm:"not null"`
		IPAddress    string `gorm:"not null"`
		EmailAttempt *string
		UserID       *string   `gorm:"type:uuid"`
		CreatedAt    time.Time `gorm:"index"`
	}
)

func (userModel) TableName() string         { return "users" }
func (courseModel) TableName() string       { return "courses" }
func (moduleModel) TableName() string       { return "modules" }
func (lessonModel) TableName() string       { return "lessons" }
func (enrollmentModel) TableName() string   { return "enrollments" }
func (progressBlobModel) TableName() string { return "course_progress_blobs" }
func (securityLogModel) TableName() string  { return "security_logs" }

// IsPostgresDSN reports whether dsn targets postgres rather than a sqlite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=")
}

// Open connects to the postgres or sqlite database at dsn.
// Sqlite access goes through a single connection, which serializes its transactions.
// The postgres schema is owned by the goose migrations; a sqlite schema is auto-migrated.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	gormConf := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if debug {
		gormConf.Logger = logger.Default.LogMode(logger.Info)
	}

	if IsPostgresDSN(dsn) {
		db, err := gorm.Open(postgres.Open(dsn), gormConf)
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres database")
		}
		return db, nil
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConf)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "getting sqlite connection pool")
	}
	// transactions on separate connections fail with SQLITE_BUSY when upgrading their read lock
	sqlDB.SetMaxOpenConns(1)
	if err = AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates the tables used by the repositories of this package.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&userModel{}, &courseModel{}, &moduleModel{}, &lessonModel{},
		&enrollmentModel{}, &progressBlobModel{}, &securityLogModel{},
	)
	return errors.Wrap(err, "migrating json-blob schema")
}

// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noisewatch/noisewatch-go/internal/conf"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ReadingFilters narrows reading and alert queries. Zero values mean
// "no filter". Dates are calendar dates in "2006-01-02" form.
type ReadingFilters struct {
	PointID   uint
	StartDate string
	EndDate   string
}

// Interface abstracts the underlying database implementation and defines the
// interface for database operations.
type Interface interface {
	Open() error
	Close() error

	// Readings
	SaveReading(reading *NoiseReading) error
	SearchReadings(filters *ReadingFilters, limit, offset int) ([]ReadingWithPoint, error)
	CountReadings(filters *ReadingFilters) (int64, error)
	RealtimeReadings(window time.Duration) ([]ReadingWithPoint, error)

	// Aggregations
	PointStatistics(filters *ReadingFilters) ([]PointStats, error)
	TrendAnalysis(filters *ReadingFilters, granularity string) ([]TrendBucket, error)
	DistributionAnalysis(filters *ReadingFilters) ([]DistributionBin, error)
	ComparisonAnalysis(filters *ReadingFilters) ([]PointStats, error)

	// Monitoring points
	GetAllPoints() ([]MonitoringPoint, error)
	GetPoint(id uint) (MonitoringPoint, error)
	SavePoint(point *MonitoringPoint) error
	UpdatePoint(point *MonitoringPoint) error
	DeletePoint(id uint) error

	// Alerts
	SaveAlert(alert *Alert) error
	SearchAlerts(status string, limit, offset int) ([]AlertWithContext, error)
	CountAlerts(status string) (int64, error)
	GetAlert(id uint) (AlertWithContext, error)
	HandleAlert(id, userID uint) error
	AlertStatistics(filters *ReadingFilters) (AlertStats, error)

	// Users
	GetAllUsers() ([]User, error)
	GetUser(id uint) (User, error)
	GetUserByUsername(username string) (User, error)
	SaveUser(user *User) error
	UpdateUser(user *User) error
	DeleteUser(id uint) error
	UpdateUserPassword(id uint, passwordHash string) error
	UpdateLastLogin(id uint) error
	CountUsers() (int64, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// Compile-time checks that every store satisfies the interface.
var (
	_ Interface = (*DataStore)(nil)
	_ Interface = (*SQLiteStore)(nil)
	_ Interface = (*MySQLStore)(nil)
)

// Open verifies the injected GORM handle. The concrete stores shadow this
// with real connection setup; a bare DataStore is constructed around an
// already-open handle.
func (ds *DataStore) Open() error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return nil
}

// Close releases the underlying connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}

	return sqlDB.Close()
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		// Settings validation rejects this case before the datastore is built
		return nil
	}
}

// rowExists reports whether a row of the given model with the given primary
// key exists. Used to tell an idempotent update apart from a missing record.
func (ds *DataStore) rowExists(model any, id uint) (bool, error) {
	var count int64
	if err := ds.DB.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&User{}, &MonitoringPoint{}, &NoiseReading{}, &Alert{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}

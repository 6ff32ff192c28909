package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"userapp/pkg/db"
)

const MemoryPath = ":memory:"

type Config struct {
	// Path is a file path or MemoryPath.
	Path string
	// SQLLogLevel filters the statement log written by sqldb-logger.
	SQLLogLevel zerolog.Level
}

// DB is the store connection shared by the repositories. It is built once at
// startup and handed to every repository that needs it.
type DB struct {
	*sql.DB
	ORM *gorm.DB
}

func NewDB(config Config) (*DB, error) {
	dsn := dataSourceName(config.Path)

	traced, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("userapp"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", config.Path, err)
	}

	driver := traced.Driver()
	traced.Close()

	sqlLogger := zerolog.New(os.Stdout).Level(config.SQLLogLevel).With().Timestamp().Logger()
	sqlDB := sqldblogger.OpenDriver(dsn, driver, zerologadapter.New(sqlLogger),
		sqldblogger.WithSQLQueryFieldname("query"),
		sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
	)

	if config.Path == MemoryPath {
		// each connection to :memory: would see its own empty database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite: pinging %s: %w", config.Path, err)
	}

	migrationDriver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})

	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite: creating migration driver: %w", err)
	}

	if err := db.RunMigrations(migrationDriver, "sqlite"); err != nil {
		sqlDB.Close()
		return nil, err
	}

	orm, err := gorm.Open(&sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})

	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite: opening orm: %w", err)
	}

	return &DB{
		DB:  sqlDB,
		ORM: orm,
	}, nil
}

func dataSourceName(path string) string {
	if path == MemoryPath {
		return path
	}

	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

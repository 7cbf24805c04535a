// database/bootstrap.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmtech/entities"
	profilerepo "farmtech/pkg/profile/repositoryImp"
	resourcerepo "farmtech/pkg/resource/repositoryImp"
)

// OpenSQLite opens the local store and brings its schema up to date.
func OpenSQLite(path string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := Migrate(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(
		&entities.Resource{},
		&entities.Profile{},
		&entities.KBDocument{},
		&entities.KBChunk{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	n, err := backfillResourceDefaults(db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if n > 0 {
		log.Info("backfilled legacy resource rows", zap.Int64("rows", n))
	}
	return nil
}

// backfillResourceDefaults repairs rows written before pricing units and
// ratings were tracked: the unit is taken from whichever price is set and
// unrated listings start at 5.0.
func backfillResourceDefaults(db *gorm.DB) (int64, error) {
	type colInfo struct {
		Cid       int
		Name      string
		Type      string
		NotNull   int
		DfltValue sql.NullString
		Pk        int
	}
	var cols []colInfo
	if err := db.Raw(`PRAGMA table_info(resources)`).Scan(&cols).Error; err != nil {
		return 0, fmt.Errorf("table_info: %w", err)
	}
	have := map[string]bool{}
	for _, c := range cols {
		have[strings.ToLower(c.Name)] = true
	}
	for _, want := range []string{"pricing_unit", "price_per_hour", "price_per_acre", "rating_average", "rating_count"} {
		if !have[want] {
			return 0, nil
		}
	}

	var total int64
	err := db.Transaction(func(tx *gorm.DB) error {
		stmts := []string{
			`UPDATE resources SET pricing_unit = 'per_acre', price_per_hour = NULL
			 WHERE (pricing_unit IS NULL OR pricing_unit = '') AND price_per_acre IS NOT NULL`,
			`UPDATE resources SET pricing_unit = 'per_hour'
			 WHERE (pricing_unit IS NULL OR pricing_unit = '') AND price_per_hour IS NOT NULL`,
			`UPDATE resources SET rating_average = 5
			 WHERE rating_count = 0 AND (rating_average IS NULL OR rating_average = 0)`,
		}
		for _, s := range stmts {
			res := tx.Exec(s)
			if res.Error != nil {
				return res.Error
			}
			total += res.RowsAffected
		}
		return nil
	})
	return total, err
}

// OpenMongo connects and pings; the caller owns Disconnect.
func OpenMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(dbName)
	if err := resourcerepo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return client, db, nil
}

// OpenPostgres connects to the profile store and creates its table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, profilerepo.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile schema: %w", err)
	}
	return db, nil
}

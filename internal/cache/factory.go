package cache

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Store kinds accepted by NewStore.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindMySQL  = "mysql"
)

// NewStore builds the store named by kind. sqliteDB is the application
// database and is used for the sqlite kind.
func NewStore(ctx context.Context, kind, mysqlDSN string, sqliteDB *sql.DB, logger *zap.Logger) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite, "":
		if sqliteDB == nil {
			return nil, fmt.Errorf("sqlite cache requires the application database")
		}
		return NewSQLStore(sqliteDB, logger), nil
	case KindMySQL:
		if mysqlDSN == "" {
			return nil, fmt.Errorf("mysql cache requires cache.mysql_dsn")
		}
		return OpenMySQL(ctx, mysqlDSN, logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", kind)
	}
}

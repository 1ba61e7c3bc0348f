// Package testutil provisions disposable databases and fixture data for
// tests. The MySQL harness mirrors a full integration run: create a uniquely
// named database, load the schema from the bucket, and drop the database when
// the run finishes.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gongmax/lexitrail/pkg/logger"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
)

const (
	mysqlHost        = "127.0.0.1"
	mysqlPort        = 3306
	schemaObjectName = "schema-tables.sql"
	bucketEnvVar     = "MYSQL_FILES_BUCKET"
	passwordEnvVar   = "DB_ROOT_PASSWORD"
)

// SchemaBaseURL is where schema objects are fetched from; bucket objects are
// addressed as <base>/<bucket>/<object>. Tests point this at a local server.
var SchemaBaseURL = "https://storage.googleapis.com"

// GenerateTempDBName returns a database name unique to this run. The random
// suffix keeps parallel runs against a shared MySQL instance from colliding
// on the same timestamp.
func GenerateTempDBName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("test_db_%d_%s", time.Now().Unix(), suffix)
	logger.Debug("generated temporary database name", "name", name)
	return name
}

// DownloadSQLScript fetches the schema script from the configured bucket and
// writes it to a temporary file, returning the local path.
func DownloadSQLScript(ctx context.Context) (string, error) {
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		logger.Error("bucket environment variable is not set", "var", bucketEnvVar)
		return "", fmt.Errorf("%s environment variable is required", bucketEnvVar)
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(SchemaBaseURL, "/"), bucket, schemaObjectName)
	logger.Debug("downloading schema script", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading schema script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading schema script: unexpected status %d", resp.StatusCode)
	}

	path := filepath.Join(os.TempDir(), schemaObjectName)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("writing schema script to %s: %w", path, err)
	}
	logger.Debug("schema script downloaded", "path", path)
	return path, nil
}

// RunSQLScript creates the database if needed and executes the schema script
// in it, statement by statement, over a single admin connection.
func RunSQLScript(ctx context.Context, scriptPath, dbName string) error {
	logger.Debug("executing schema script", "database", dbName)

	sqlDB, err := openRootDB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+dbName); err != nil {
		logger.Error("failed to create database", "database", dbName, "error", err)
		return err
	}
	if _, err := conn.ExecContext(ctx, "USE "+dbName); err != nil {
		return err
	}

	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	for _, stmt := range SplitStatements(string(script)) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			logger.Error("failed to execute schema statement", "database", dbName, "error", err)
			return err
		}
	}

	logger.Debug("schema script executed", "database", dbName)
	return nil
}

// SetupMySQLTestDB provisions a fresh temp database with the schema loaded
// and returns its name. Callers are expected to defer TeardownTestDB.
func SetupMySQLTestDB(ctx context.Context) (string, error) {
	dbName := GenerateTempDBName()
	scriptPath, err := DownloadSQLScript(ctx)
	if err != nil {
		return "", err
	}
	if err := RunSQLScript(ctx, scriptPath, dbName); err != nil {
		return "", err
	}
	return dbName, nil
}

// TeardownTestDB drops the temporary database unconditionally.
func TeardownTestDB(ctx context.Context, dbName string) error {
	logger.Debug("dropping temporary database", "database", dbName)

	sqlDB, err := openRootDB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if _, err := sqlDB.ExecContext(ctx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
		logger.Error("failed to drop database", "database", dbName, "error", err)
		return err
	}
	logger.Debug("temporary database dropped", "database", dbName)
	return nil
}

func openRootDB() (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = "root"
	cfg.Passwd = os.Getenv(passwordEnvVar)
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", mysqlHost, mysqlPort)
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	sqlDB, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		logger.Error("failed to open admin connection", "error", err)
		return nil, err
	}
	return sqlDB, nil
}

// Package store is the SQLite-backed auxiliary cache for neutral summaries and article bodies.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBFile is the cache database name inside the cache directory.
const DBFile = "topics.db"

// Store represents the SQLite-based caching store
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	// Neutral summaries keyed "{title}-{date}"
	topicsTable := `
	CREATE TABLE IF NOT EXISTS topics (
		key TEXT PRIMARY KEY,
		text TEXT,
		date_generated DATETIME
	);`

	// Extracted article bodies keyed by URL
	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		url TEXT PRIMARY KEY,
		content TEXT,
		date_fetched DATETIME
	);`

	for _, table := range []string{topicsTable, articlesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// TopicKey builds the cache key of a headline's summary for a date.
func TopicKey(title, date string) string {
	return title + "-" + date
}

// Topic is a cached piece of generated text.
type Topic struct {
	Key           string
	Text          string
	DateGenerated time.Time
}

// CacheTopic stores text under key, replacing any previous value.
func (s *Store) CacheTopic(key, text string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO topics (key, text, date_generated) VALUES (?, ?, ?)`,
		key, text, time.Now().UTC())
	return err
}

// GetCachedTopic returns the text stored under key if it is younger than maxAge.
// A miss returns nil, nil.
func (s *Store) GetCachedTopic(key string, maxAge time.Duration) (*Topic, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRow(`SELECT key, text, date_generated FROM topics WHERE key = ? AND date_generated > ?`, key, cutoff)

	var topic Topic
	err := row.Scan(&topic.Key, &topic.Text, &topic.DateGenerated)
	if err == sql.ErrNoRows {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic: %w", err)
	}
	return &topic, nil
}

// CacheArticle stores an extracted article body.
func (s *Store) CacheArticle(url, content string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO articles (url, content, date_fetched) VALUES (?, ?, ?)`,
		url, content, time.Now().UTC())
	return err
}

// GetCachedArticle returns the stored body of url if it is younger than maxAge.
// A miss returns "", false, nil.
func (s *Store) GetCachedArticle(url string, maxAge time.Duration) (string, bool, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRow(`SELECT content FROM articles WHERE url = ? AND date_fetched > ?`, url, cutoff)

	var content string
	err := row.Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to scan article: %w", err)
	}
	return content, true, nil
}

// CacheStats represents cache statistics
type CacheStats struct {
	TopicCount   int
	ArticleCount int
	CacheSize    int64
	LastUpdated  time.Time
}

// GetCacheStats returns statistics about the cache
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM topics":   &stats.TopicCount,
		"SELECT COUNT(*) FROM articles": &stats.ArticleCount,
	}

	for query, target := range queries {
		if err := s.db.QueryRow(query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes all cached data
func (s *Store) ClearCache() error {
	for _, table := range []string{"topics", "articles"} {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}

// CleanupOldCache removes topics and articles older than their max ages.
func (s *Store) CleanupOldCache(topicMaxAge, articleMaxAge time.Duration) error {
	now := time.Now().UTC()

	if _, err := s.db.Exec("DELETE FROM topics WHERE date_generated < ?", now.Add(-topicMaxAge)); err != nil {
		return fmt.Errorf("failed to clean old topics: %w", err)
	}

	if _, err := s.db.Exec("DELETE FROM articles WHERE date_fetched < ?", now.Add(-articleMaxAge)); err != nil {
		return fmt.Errorf("failed to clean old articles: %w", err)
	}

	return nil
}

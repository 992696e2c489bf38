package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteSettingsStore 按命名空间隔离的键值存储
type SQLiteSettingsStore struct {
	db        *sql.DB
	namespace string
	now       func() time.Time
}

// NewSQLiteSettingsStore 创建 SQLite 设置存储
func NewSQLiteSettingsStore(db *sql.DB, namespace string) *SQLiteSettingsStore {
	return &SQLiteSettingsStore{
		db:        db,
		namespace: namespace,
		now:       time.Now,
	}
}

// Get 读取键值，不存在时 ok=false
func (s *SQLiteSettingsStore) Get(key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE namespace = ? AND key = ?`

	var value string
	err := s.db.QueryRow(query, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s/%s: %w", s.namespace, key, err)
	}
	return value, true, nil
}

// Set 写入键值
func (s *SQLiteSettingsStore) Set(key, value string) error {
	query := `
		INSERT INTO settings (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`

	if _, err := s.db.Exec(query, s.namespace, key, value, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to set setting %s/%s: %w", s.namespace, key, err)
	}
	return nil
}

// Clear 删除当前命名空间下的所有键
func (s *SQLiteSettingsStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE namespace = ?`, s.namespace); err != nil {
		return fmt.Errorf("failed to clear settings %s: %w", s.namespace, err)
	}
	return nil
}

// Keys 当前命名空间下的所有键（按字母序）
func (s *SQLiteSettingsStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM settings WHERE namespace = ? ORDER BY key`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings %s: %w", s.namespace, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan setting key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

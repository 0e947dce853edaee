// Package store persists the small amount of state that outlives a session
// using a BoltDB database: the recently opened folders and a handful of
// named settings such as the thumbnail size.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileName     = "visualysium.db"
	RecentsBucket  = "RecentFolders" // Bucket holding the ordered recent folder list.
	SettingsBucket = "Settings"      // Bucket mapping setting names to string values.

	// recentsKey is the single key in RecentsBucket holding the JSON list.
	recentsKey = "folders"

	// MaxRecents caps the recent folder list, most recent first.
	MaxRecents = 10
)

// LoggerFunc defines a function signature for logging messages.
// This allows the caller to provide its logging mechanism.
type LoggerFunc func(message string)

// DB manages the settings database.
type DB struct {
	db     *bolt.DB
	logger LoggerFunc
}

// Open creates or opens the settings database file.
// dbDir specifies the directory where the db file should be stored; when
// empty the user config directory is used.
// logger is a function that will be used for logging messages.
func Open(dbDir string, logger LoggerFunc) (*DB, error) {
	if dbDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			log.Printf("Warning: Could not get user config dir: %v. Using current dir.", err)
			dbDir = "." // Fallback to current directory
		} else {
			appConfigDir := filepath.Join(configDir, "visualysium")
			if err := os.MkdirAll(appConfigDir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create config directory %s: %w", appConfigDir, err)
			}
			dbDir = appConfigDir
		}
	}

	dbPath := filepath.Join(dbDir, dbFileName)
	if logger != nil {
		logger(fmt.Sprintf("Using settings database at: %s", dbPath))
	}

	db, err := bolt.Open(dbPath, 0600, nil) // 0600 permissions: user read/write
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database %s: %w", dbPath, err)
	}

	// Ensure buckets exist
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{RecentsBucket, SettingsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close() // Close DB if bucket creation failed
		return nil, err
	}

	return &DB{db: db, logger: logger}, nil
}

// logMessage is a helper to use the configured logger or fallback to standard log.
func (s *DB) logMessage(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Close closes the database connection.
func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Helper Functions ---

// encodeList marshals a list of strings into a JSON byte slice.
func encodeList(list []string) ([]byte, error) {
	return json.Marshal(list)
}

func decodeList(data []byte) ([]string, error) {
	var list []string
	if data == nil { // Handle case where key doesn't exist yet
		return []string{}, nil
	}
	err := json.Unmarshal(data, &list)
	return list, err
}

// --- Recent Folders ---

// AddRecent puts folder at the front of the recent list, removing any older
// occurrence and trimming the list to MaxRecents.
func (s *DB) AddRecent(folder string) error {
	if folder == "" {
		return fmt.Errorf("folder cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RecentsBucket))
		current, err := decodeList(bucket.Get([]byte(recentsKey)))
		if err != nil {
			return fmt.Errorf("failed to decode recent folders: %w", err)
		}

		updated := make([]string, 0, len(current)+1)
		updated = append(updated, folder)
		for _, f := range current {
			if f != folder {
				updated = append(updated, f)
			}
		}
		if len(updated) > MaxRecents {
			updated = updated[:MaxRecents]
		}

		data, err := encodeList(updated)
		if err != nil {
			return fmt.Errorf("failed to encode recent folders: %w", err)
		}
		return bucket.Put([]byte(recentsKey), data)
	})
}

// Recents retrieves the recent folder list, most recent first.
func (s *DB) Recents() ([]string, error) {
	var folders []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(RecentsBucket))
		var err error
		folders, err = decodeList(bucket.Get([]byte(recentsKey)))
		if err != nil {
			return fmt.Errorf("failed to decode recent folders: %w", err)
		}
		return nil
	})
	return folders, err
}

// --- Settings ---

// SetSetting stores a string value under key.
func (s *DB) SetSetting(key, value string) error {
	if key == "" {
		return fmt.Errorf("setting key cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(SettingsBucket)).Put([]byte(key), []byte(value))
	})
}

// Setting retrieves the value stored under key, or "" when unset.
func (s *DB) Setting(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		value = string(tx.Bucket([]byte(SettingsBucket)).Get([]byte(key)))
		return nil
	})
	return value, err
}

// SettingInt retrieves an integer setting, falling back when the key is
// unset or does not parse.
func (s *DB) SettingInt(key string, fallback int) int {
	value, err := s.Setting(key)
	if err != nil || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		s.logMessage("Ignoring non-numeric setting %s=%q", key, value)
		return fallback
	}
	return n
}

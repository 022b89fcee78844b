package sxm

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a sqlite index of scanned images.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens or creates the catalog stored in file.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, recorded TIMESTAMP NOT NULL, bias REAL NOT NULL, direction TEXT NOT NULL, x_pixels INTEGER NOT NULL, y_pixels INTEGER NOT NULL, width REAL NOT NULL, height REAL NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS channel (image_id INTEGER NOT NULL, position INTEGER NOT NULL, name TEXT NOT NULL, unit TEXT NOT NULL, FOREIGN KEY(image_id) REFERENCES image(id))"); err != nil {
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func sha1File(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}

// Add records the image in the catalog. An existing entry for the
// same path is kept if the file contents are unchanged, otherwise it
// is replaced.
func (c *Catalog) Add(img *Image) error {
	sha, err := sha1File(img.Filename)
	if err != nil {
		return err
	}

	var id int64
	var existing string
	switch err := c.db.QueryRow("SELECT id, sha1 FROM image WHERE path = ?", img.Filename).Scan(&id, &existing); err {
	case sql.ErrNoRows:
	case nil:
		if existing == sha {
			return nil
		}
		if _, err := c.db.Exec("DELETE FROM channel WHERE image_id = ?", id); err != nil {
			return err
		}
		if _, err := c.db.Exec("DELETE FROM image WHERE id = ?", id); err != nil {
			return err
		}
	default:
		return err
	}

	m := img.Metadata

	result, err := c.db.Exec("INSERT INTO image (path, sha1, recorded, bias, direction, x_pixels, y_pixels, width, height) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		img.Filename, sha, m.Started, m.Bias, m.Direction, m.XPixels, m.YPixels, m.Width, m.Height)
	if err != nil {
		return err
	}

	if id, err = result.LastInsertId(); err != nil {
		return err
	}

	for i, ch := range m.Channels {
		if _, err := c.db.Exec("INSERT INTO channel (image_id, position, name, unit) VALUES (?, ?, ?, ?)", id, i, ch.Name, ch.Unit); err != nil {
			return err
		}
	}

	return nil
}

// Entry is one catalog row.
type Entry struct {
	Path      string
	Recorded  time.Time
	Bias      float64
	Direction string
	XPixels   int
	YPixels   int
	Channels  int
}

// Images lists the catalog ordered by recording time.
func (c *Catalog) Images() ([]Entry, error) {
	rows, err := c.db.Query("SELECT i.path, i.recorded, i.bias, i.direction, i.x_pixels, i.y_pixels, COUNT(ch.image_id) FROM image AS i LEFT JOIN channel AS ch ON ch.image_id = i.id GROUP BY i.id ORDER BY i.recorded")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Recorded, &e.Bias, &e.Direction, &e.XPixels, &e.YPixels, &e.Channels); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

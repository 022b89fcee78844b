/*
Package sxm is a library for reading Nanonis SXM scanning probe
microscopy images.
*/
package sxm

import "log"

// SxM ties a scan catalog to a logger on behalf of the management
// utility.
type SxM struct {
	db     *Catalog
	logger *log.Logger
}

// New opens or creates the catalog stored in file.
func New(file string, logger *log.Logger) (*SxM, error) {
	db, err := NewCatalog(file)
	if err != nil {
		return nil, err
	}
	return &SxM{
		db:     db,
		logger: logger,
	}, nil
}

// Images lists the catalog entries.
func (m *SxM) Images() ([]Entry, error) {
	return m.db.Images()
}

// Close releases the catalog.
func (m *SxM) Close() error {
	return m.db.Close()
}

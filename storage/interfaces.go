package storage

import "powerbi-scraper/models"

// DatasetLoader is the interface the ETL stage depends on for persisting
// normalized datasets. It is satisfied by PostgresWriter and by test doubles;
// the connection is always an explicitly constructed, passed-in handle.
type DatasetLoader interface {
	Load(ds *models.Dataset, baseName string) error
	Close() error
}

// RowSink receives extracted chart-table rows incrementally, one
// (segment, chart) combination at a time.
type RowSink interface {
	WriteHeader(tableHeader []string) error
	WriteRows(segment, chart string, rows [][]string) error
	Close() error
}

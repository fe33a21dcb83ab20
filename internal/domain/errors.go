package domain

import "fmt"

// LocationError reports coordinates or record fields that cannot form a valid location.
type LocationError struct {
	Message string
}

func (e *LocationError) Error() string { return e.Message }

func locationErrorf(format string, args ...any) error {
	return &LocationError{Message: fmt.Sprintf(format, args...)}
}

// DatabaseError reports a connection-level failure of the backing store.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// DataError reports a statement the store rejected (constraint or type violation).
type DataError struct {
	Op  string
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error: %s: %v", e.Op, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// ScrapeError reports a failure to download or parse the published open data.
type ScrapeError struct {
	Message string
	Err     error
}

func (e *ScrapeError) Error() string { return "scrape open data: " + e.Message }

func (e *ScrapeError) Unwrap() error { return e.Err }

// ServiceError reports an invalid request to the location service, such as a
// page number outside the result set.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

package database

import "errors"

var (
	// ErrNotReady indicates the startup ping could not reach the database.
	ErrNotReady = errors.New("database not ready")
	// ErrUnsupportedDriver indicates a driver other than postgres or sqlite.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

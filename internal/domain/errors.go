package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrStorageUnavailable indicates the durable store cannot be read or written
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrDeserialization indicates stored bytes do not decode into the expected shape
	ErrDeserialization = errors.New("stored data is malformed")

	// ErrNetwork indicates the remote catalog could not be reached or answered badly
	ErrNetwork = errors.New("movie catalog is unreachable")

	// ErrNotFound indicates the requested movie does not exist in the catalog
	ErrNotFound = errors.New("movie not found")

	// ErrInvalidMovie indicates a record failed validation at the repository boundary
	ErrInvalidMovie = errors.New("invalid movie record")

	// ErrUnknownList indicates a list name outside favorites/watchlist/watched
	ErrUnknownList = errors.New("unknown list")
)

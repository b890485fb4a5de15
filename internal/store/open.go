package store

import (
	"fmt"

	"github.com/amishk599/jobradar/internal/model"
)

// Store drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open returns the seen store for the given driver. The caller must Load it.
func Open(driver, path string) (model.SeenStore, error) {
	switch driver {
	case "", DriverFile:
		return NewFileStore(path)
	case DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// OpenReadOnly returns a store for inspection commands. The file driver takes
// no lock and never moves or rewrites the seen file. SQLite already allows
// concurrent readers, so it is opened normally.
func OpenReadOnly(driver, path string) (model.SeenStore, error) {
	switch driver {
	case "", DriverFile:
		return OpenFileReadOnly(path), nil
	case DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

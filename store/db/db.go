// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/reyharighy/cba/internal/profile"
	"github.com/reyharighy/cba/store"
	"github.com/reyharighy/cba/store/db/postgres"
	"github.com/reyharighy/cba/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "postgres":
		driver, err = postgres.NewDB(profile)
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}

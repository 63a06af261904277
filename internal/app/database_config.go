package app

import (
	"strings"

	"github.com/charlesng35/fitcentre/internal/database"
)

// ConnectionConfig converts DatabaseConfig into database.Open parameters.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	return database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:            c.Path,
		DSN:             strings.TrimSpace(c.DSN),
		Host:            c.Host,
		Port:            c.Port,
		Name:            c.Name,
		User:            c.User,
		Password:        c.Password,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		LogQueries:      c.LogQueries,
	}
}

// BootstrapAdmin converts the bootstrap section into a seed option value.
func (c BootstrapConfig) BootstrapAdmin() database.BootstrapAdmin {
	return database.BootstrapAdmin{
		Email:       strings.TrimSpace(c.Email),
		Password:    c.Password,
		FullName:    strings.TrimSpace(c.FullName),
		Username:    strings.TrimSpace(c.Username),
		PhoneNumber: strings.TrimSpace(c.PhoneNumber),
	}
}

package storage

import (
	"embed"
	"fmt"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// SchemaDDL returns the CREATE TABLE statement for the given driver.
func SchemaDDL(driver string) (string, error) {
	switch driver {
	case DriverMySQL, DriverPostgres:
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}

	b, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}
	return string(b), nil
}

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinnesia/domainform-backend/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: 5433, User: "app", Password: "secret", Name: "domainform"}
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=domainform sslmode=disable", DSN(cfg))

	cfg.DSN = "postgres://app:secret@db:5433/domainform"
	assert.Equal(t, "postgres://app:secret@db:5433/domainform", DSN(cfg))
}

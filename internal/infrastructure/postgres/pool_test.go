package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Expedientes-api/pkg/config"
)

func TestDatabaseURLWithIPv4_IPLiteral(t *testing.T) {
	got := databaseURLWithIPv4("postgres://u:p@127.0.0.1/exp?sslmode=disable")
	assert.Equal(t, "postgres://u:p@127.0.0.1:5432/exp?sslmode=disable", got)
}

func TestDatabaseURLWithIPv4_IPv6SeMantiene(t *testing.T) {
	in := "postgres://u:p@[::1]:5433/exp"
	assert.Equal(t, in, databaseURLWithIPv4(in))
}

func TestDsnFor_SinURL(t *testing.T) {
	cfg := config.DBConfig{Host: "10.0.0.5", Port: 5432, User: "u", Password: "p", DBName: "exp", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@10.0.0.5:5432/exp?sslmode=disable", dsnFor(cfg))
}

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"app:pw@tcp(db:3306)/restaurant?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		DSN("app", "pw", "db", "3306", "restaurant"))
	assert.Equal(t,
		"root@tcp(localhost:3306)/r?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		DSN("root", "", "localhost", "3306", "r"))
}

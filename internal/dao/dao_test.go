package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cases := []struct {
		dsn, password, want string
	}{
		{"postgres://app@db:5432/notes", "s3cret", "postgres://app:s3cret@db:5432/notes"},
		{"postgres://app:own@db:5432/notes", "s3cret", "postgres://app:own@db:5432/notes"},
		{"host=db user=app dbname=notes", "s3cret", "host=db user=app dbname=notes password=s3cret"},
		{"host=db user=app password=own", "s3cret", "host=db user=app password=own"},
		{"host=db", "", "host=db"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, postgresDSN(c.dsn, c.password), c.dsn)
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("app@tcp(db:3306)/notes", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, dsn, "app:s3cret@tcp(db:3306)/notes")
	assert.Contains(t, dsn, "parseTime=true")

	_, err = mysqlDSN("::not a dsn", "x")
	assert.Error(t, err)
}

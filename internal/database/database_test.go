package database

import (
	"testing"

	"moviecatalog/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithForeignKeys(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"moviecatalog.db", "moviecatalog.db?_pragma=foreign_keys(1)"},
		{"file:x?mode=memory&cache=shared", "file:x?mode=memory&cache=shared&_pragma=foreign_keys(1)"},
		{"file:x?_pragma=foreign_keys(0)", "file:x?_pragma=foreign_keys(0)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, withForeignKeys(tc.in))
	}
}

func TestSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := Connect("file:database_fk?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	orphan := &domain.Rating{MovieID: 404, UserID: 404, Score: decimal.RequireFromString("3.0")}
	assert.Error(t, db.Create(orphan).Error)

	u := &domain.User{Username: "fk", Email: "fk@example.com", PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, db.Create(u).Error)
	m := &domain.Movie{Title: "FK", Slug: "fk", Director: "D", ReleaseYear: 2000, Description: "d", Runtime: 90, Country: "C", Movement: "M"}
	require.NoError(t, db.Create(m).Error)
	require.NoError(t, db.Create(&domain.Rating{MovieID: m.ID, UserID: u.ID, Score: decimal.RequireFromString("3.0")}).Error)

	require.NoError(t, db.Delete(&domain.User{}, u.ID).Error)
	var n int64
	require.NoError(t, db.Model(&domain.Rating{}).Count(&n).Error)
	assert.Zero(t, n)
}

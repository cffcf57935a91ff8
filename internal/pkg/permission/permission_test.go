package permission

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	anon  = Principal{}
	user  = Principal{UserID: 2, Role: "user"}
	admin = Principal{UserID: 1, Role: "admin"}
)

func TestIsSafeMethod(t *testing.T) {
	assert.True(t, IsSafeMethod(http.MethodGet))
	assert.True(t, IsSafeMethod(http.MethodHead))
	assert.True(t, IsSafeMethod(http.MethodOptions))
	assert.False(t, IsSafeMethod(http.MethodPost))
	assert.False(t, IsSafeMethod(http.MethodDelete))
}

func TestAdminOrReadOnly(t *testing.T) {
	cases := []struct {
		name string
		safe bool
		p    Principal
		want bool
	}{
		{"anon read", true, anon, true},
		{"anon write", false, anon, false},
		{"user write", false, user, false},
		{"admin write", false, admin, true},
		{"admin role without id", false, Principal{Role: "admin"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdminOrReadOnly(tc.safe, tc.p))
		})
	}
}

func TestOwnerOrReadOnly(t *testing.T) {
	assert.True(t, OwnerOrReadOnly(true, anon, 2))
	assert.False(t, OwnerOrReadOnly(false, anon, 0))
	assert.True(t, OwnerOrReadOnly(false, user, 2))
	assert.False(t, OwnerOrReadOnly(false, user, 3))
	assert.False(t, OwnerOrReadOnly(false, admin, 2))
}

func TestOwnerOrAdmin(t *testing.T) {
	assert.True(t, OwnerOrAdmin(user, 2))
	assert.True(t, OwnerOrAdmin(admin, 2))
	assert.False(t, OwnerOrAdmin(user, 3))
	assert.False(t, OwnerOrAdmin(anon, 0))
}

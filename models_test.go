package credentials_test

import (
	"testing"

	credentials "github.com/goliatone/go-credentials"
	"github.com/stretchr/testify/assert"
)

func TestUserHasRole(t *testing.T) {
	user := &credentials.User{Roles: []string{credentials.RoleUser}}

	assert.True(t, user.HasRole(credentials.RoleUser))
	assert.False(t, user.HasRole(credentials.RoleAdmin))

	empty := &credentials.User{}
	assert.False(t, empty.HasRole(credentials.RoleUser))
}

func TestUserAddMetadata(t *testing.T) {
	user := &credentials.User{}

	user.AddMetadata("source", "signup-form").AddMetadata("campaign", "spring")

	assert.Equal(t, "signup-form", user.Metadata["source"])
	assert.Equal(t, "spring", user.Metadata["campaign"])
}

func TestNewIdentityFromUser(t *testing.T) {
	assert.Nil(t, credentials.NewIdentityFromUser(nil))
}

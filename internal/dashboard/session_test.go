package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_GateFlipsOnLoginAndLogout(t *testing.T) {
	var s Session
	assert.False(t, s.LoggedIn)

	s.Begin("tok-abc", "A", "a@x.com")
	assert.True(t, s.LoggedIn)
	assert.Equal(t, "tok-abc", s.Token)
	assert.Equal(t, "a@x.com", s.Email)

	s.End()
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.Token)
	assert.Empty(t, s.Email)
}

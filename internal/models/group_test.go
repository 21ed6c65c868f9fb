package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJoinCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateJoinCode()
		require.NoError(t, err)
		require.Len(t, code, JoinCodeLength)
		for _, ch := range code {
			assert.Contains(t, joinCodeAlphabet, string(ch))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestGroupDefaultsAndInviteLink(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	g := &Group{Name: "Family"}
	require.NoError(t, g.SetDefaults(now))
	assert.NotEmpty(t, g.ID)
	assert.Len(t, g.JoinCode, JoinCodeLength)
	assert.Equal(t, now, g.CreatedAt)

	g.WithInviteLink("https://hatirlat.io/")
	assert.Equal(t, "https://hatirlat.io/invite/"+g.JoinCode, g.InviteLink)

	code := g.JoinCode
	require.NoError(t, g.SetDefaults(now.Add(time.Hour)))
	assert.Equal(t, code, g.JoinCode, "defaults never replace an existing code")
	assert.Equal(t, GroupRef{ID: g.ID, Name: "Family"}, g.Ref())
}

func TestMemberRequests(t *testing.T) {
	m := (&JoinRequest{Name: " Elif ", Email: "ELIF@Example.com"}).ToMember("g1")
	assert.Equal(t, "Elif", m.Name)
	assert.Equal(t, "elif@example.com", m.Email)
	assert.Equal(t, MemberPending, m.Status)
	assert.Equal(t, RoleMember, m.Role)

	m.SetDefaults(time.Now())
	active := MemberActive
	(&UpdateMemberRequest{Status: &active}).ApplyTo(m)
	assert.Equal(t, MemberActive, m.Status)
	assert.Equal(t, "Elif", m.Name)
	assert.Equal(t, Contact{Name: "Elif", Email: "elif@example.com"}, m.Contact())
}

func TestAccountPassword(t *testing.T) {
	a := &Account{Username: "alice"}
	assert.False(t, a.VerifyPassword("anything"))
	require.NoError(t, a.SetPassword("correct-horse"))
	assert.NotEqual(t, "correct-horse", a.HashedPass)
	assert.True(t, a.VerifyPassword("correct-horse"))
	assert.False(t, a.VerifyPassword("wrong"))
}

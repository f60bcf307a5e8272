package oauth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateState_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		state, err := GenerateState()
		require.NoError(t, err)
		assert.False(t, seen[state], "state repeated: %s", state)
		seen[state] = true
	}
}

func TestGenerateState_Decodable(t *testing.T) {
	state, err := GenerateState()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(state)
	require.NoError(t, err)
	assert.Len(t, raw, stateBytes)
}

func TestPickEmail(t *testing.T) {
	tests := []struct {
		name    string
		emails  []githubEmail
		want    string
		wantErr bool
	}{
		{
			name:    "no emails",
			emails:  nil,
			wantErr: true,
		},
		{
			name: "primary verified wins",
			emails: []githubEmail{
				{Email: "old@example.com", Verified: true},
				{Email: "main@example.com", Primary: true, Verified: true},
			},
			want: "main@example.com",
		},
		{
			name: "unverified primary loses to verified",
			emails: []githubEmail{
				{Email: "new@example.com", Primary: true},
				{Email: "ok@example.com", Verified: true},
			},
			want: "ok@example.com",
		},
		{
			name: "nothing verified falls back to first",
			emails: []githubEmail{
				{Email: "a@example.com"},
				{Email: "b@example.com"},
			},
			want: "a@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickEmail(tt.emails)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

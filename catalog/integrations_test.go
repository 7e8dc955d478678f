package catalog

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntegrationsLayouts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want WbuyCredentials
	}{
		{
			name: "object keyed by provider",
			text: `{"Wbuy":{"apiUser":"loja","apiPassword":"s3cret","storeId":"77"},"meta":{"enabled":true}}`,
			want: WbuyCredentials{User: "loja", Password: "s3cret", StoreID: "77"},
		},
		{
			name: "array with nested config",
			text: `[{"type":"wbuy","config":{"username":"loja","password":"pw","token":"abc"}}]`,
			want: WbuyCredentials{User: "loja", Password: "pw", Token: "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseIntegrations(tt.text)
			require.NoError(t, err)

			creds, ok := in.Wbuy()
			require.True(t, ok)
			assert.Equal(t, tt.want, creds)
		})
	}
}

func TestParseIntegrationsEmptyAndInvalid(t *testing.T) {
	in, err := ParseIntegrations("")
	require.NoError(t, err)
	assert.Empty(t, in.Providers())
	_, ok := in.Wbuy()
	assert.False(t, ok)

	_, err = ParseIntegrations(`"just text"`)
	assert.Error(t, err)

	_, err = ParseIntegrations(`42`)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, err := WbuyCredentials{User: "loja", Password: "s3cret"}.BearerToken()
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("loja:s3cret")), token)

	token, err = WbuyCredentials{Token: "stored"}.BearerToken()
	require.NoError(t, err)
	assert.Equal(t, "stored", token)

	_, err = WbuyCredentials{User: "loja"}.BearerToken()
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestMasked(t *testing.T) {
	in, err := ParseIntegrations(`{"wbuy":{"apiUser":"loja","apiPassword":"s3cret-value","nested":{"token":"abcdef"}}}`)
	require.NoError(t, err)

	masked := in.Masked(false)["wbuy"].(map[string]interface{})
	assert.Equal(t, "loja", masked["apiUser"])
	assert.Equal(t, "s3****", masked["apiPassword"])
	assert.Equal(t, "ab****", masked["nested"].(map[string]interface{})["token"])

	revealed := in.Masked(true)["wbuy"].(map[string]interface{})
	assert.Equal(t, "s3cret-value", revealed["apiPassword"])
}

package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndExtractToken(t *testing.T) {
	t.Setenv("API_SECRET", "testsecret")

	token, err := CreateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	req, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	uid, err := ExtractTokenID(req)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
}

func TestExtractTokenID_FromQueryParam(t *testing.T) {
	t.Setenv("API_SECRET", "testsecret")

	token, err := CreateToken(7)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/whatever?token="+token, nil)
	uid, err := ExtractTokenID(req)
	require.NoError(t, err)
	assert.Equal(t, uint(7), uid)
}

func TestExtractTokenID_Rejections(t *testing.T) {
	t.Setenv("API_SECRET", "testsecret")

	req, _ := http.NewRequest(http.MethodGet, "/whatever", nil)
	_, err := ExtractTokenID(req)
	assert.Error(t, err)

	// Token signed with a different secret
	token, err := CreateToken(1)
	require.NoError(t, err)
	t.Setenv("API_SECRET", "othersecret")

	req, _ = http.NewRequest(http.MethodGet, "/whatever", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = ExtractTokenID(req)
	assert.Error(t, err)
}

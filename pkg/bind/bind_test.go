package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/clouddrive/config"
	"github.com/shashiranjanraj/clouddrive/pkg/bind"
)

type folderInput struct {
	FolderName string `json:"folderName" validate:"required"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestJSON_Valid(t *testing.T) {
	var in folderInput
	errs, err := bind.JSON(post(`{"folderName":"Docs"}`), &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Docs", in.FolderName)
}

func TestJSON_ValidationErrors(t *testing.T) {
	var in folderInput
	errs, err := bind.JSON(post(`{"folderName":"  "}`), &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "folderName")
}

func TestJSON_EmptyBody(t *testing.T) {
	var in folderInput
	_, err := bind.JSON(post(""), &in)
	assert.ErrorIs(t, err, bind.ErrEmptyBody)
}

func TestJSON_Malformed(t *testing.T) {
	var in folderInput
	_, err := bind.JSON(post(`{"folderName":`), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestJSON_TooLarge(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	var in folderInput
	_, err := bind.JSON(post(`{"folderName":"`+strings.Repeat("x", 64)+`"}`), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

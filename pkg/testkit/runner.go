package testkit

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Run loads the scenario array at path and executes each step, in order,
// as a subtest against handler. bot may be nil when no step mocks the Bot API.
//
// Per step:
//  1. Program the Bot API fake.
//  2. Build the request body (JSON, file or multipart upload).
//  3. Fire the request with httptest.
//  4. Assert status, then body.
//  5. Verify every programmed Bot API step was hit.
func Run(t *testing.T, handler http.Handler, bot *BotAPI, path string) {
	t.Helper()

	scenarios, err := LoadScenarios(path)
	require.NoError(t, err)

	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, bot, s)
		})
	}
}

func runScenario(t *testing.T, handler http.Handler, bot *BotAPI, s *Scenario) {
	t.Helper()

	if bot != nil {
		bot.Load(s)
	} else if len(s.BotAPIMockStep) > 0 {
		t.Fatalf("[%s] botApiMockStep set but no BotAPI fake was given", s.Name)
	}

	body, contentType := requestBody(t, s)

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)

	switch {
	case len(s.ResponseBody) > 0:
		AssertJSONBody(t, s, s.ResponseBody, rec.Body.Bytes())
	case s.ResponseFileName != "":
		expected, err := os.ReadFile(s.ResponseBodyPath())
		require.NoError(t, err, "[%s] read response file", s.Name)
		AssertJSONBody(t, s, expected, rec.Body.Bytes())
	case s.ResponseText != "":
		AssertText(t, s, rec.Body.String())
	}

	if bot != nil {
		AssertMocksAllCalled(t, s, bot)
	}
}

func requestBody(t *testing.T, s *Scenario) (io.Reader, string) {
	t.Helper()

	switch {
	case len(s.RequestBody) > 0:
		return bytes.NewReader(s.RequestBody), "application/json"

	case s.RequestFileName != "":
		data, err := os.ReadFile(s.RequestBodyPath())
		require.NoError(t, err, "[%s] read request file", s.Name)
		return bytes.NewReader(data), "application/json"

	case s.Upload != nil:
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		field := s.Upload.Field
		if field == "" {
			field = "file"
		}
		fw, err := mw.CreateFormFile(field, s.Upload.FileName)
		require.NoError(t, err)
		_, err = io.WriteString(fw, s.Upload.Content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return buf, mw.FormDataContentType()
	}
	return nil, ""
}

// Package testkit drives REST API tests from JSON scenario files.
//
// A scenario file holds an ordered array of steps. Each step describes the
// request to fire, the status it must produce, and optionally the response
// body it must contain. Steps in one file share the handler, so later steps
// see what earlier ones wrote:
//
//	[
//	  {"name": "create", "requestMethod": "POST", "requestUrl": "/api/create-folder",
//	   "requestBody": {"folderName": "Docs"}, "expectedCode": 200},
//	  {"name": "list", "requestUrl": "/api/files", "expectedCode": 200,
//	   "responseBody": [{"name": "Docs", "type": "folder", "id": "<any>"}]}
//	]
//
// Calls the server makes to the Telegram Bot API are answered by a BotAPI
// fake, programmed per step through botApiMockStep.
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one request/response step.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestBody     json.RawMessage   `json:"requestBody"`     // sent as application/json
	RequestFileName string            `json:"requestFileName"` // body read from a file next to the scenario
	Upload          *Upload           `json:"upload"`          // sent as multipart/form-data
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int             `json:"expectedCode"`
	ResponseBody     json.RawMessage `json:"responseBody"`     // subset match, "<any>" matches any value
	ResponseFileName string          `json:"responseFileName"` // same as responseBody, read from a file
	ResponseText     string          `json:"responseText"`     // exact plain-text body

	// IsMockRequired fails the step when the server calls a Bot API method
	// no mock step covers.
	IsMockRequired bool       `json:"isMockRequired"`
	BotAPIMockStep []MockStep `json:"botApiMockStep"`

	dir string
}

// Upload is a single-file multipart body.
type Upload struct {
	Field    string `json:"field"`
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

// MockStep answers one Bot API method.
type MockStep struct {
	// Method is the Bot API method name, e.g. "getMe".
	Method string `json:"method"`

	// Token restricts the step to one bot token. Empty matches any token.
	Token string `json:"token"`

	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic Bot API answer.
type MockReturnData struct {
	StatusCode int             `json:"statusCode"` // defaults to 200
	Body       json.RawMessage `json:"body"`
}

// LoadScenarios reads and validates a scenario array.
func LoadScenarios(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("testkit: %q holds no scenarios", abs)
	}

	dir := filepath.Dir(abs)
	for i, s := range scenarios {
		s.dir = dir
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario %d in %q: %w", i, abs, err)
		}
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("%s: requestUrl is required", s.Name)
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("%s: expectedCode is required", s.Name)
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)

	bodies := 0
	for _, set := range []bool{len(s.RequestBody) > 0, s.RequestFileName != "", s.Upload != nil} {
		if set {
			bodies++
		}
	}
	if bodies > 1 {
		return fmt.Errorf("%s: requestBody, requestFileName and upload are exclusive", s.Name)
	}
	if len(s.ResponseBody) > 0 && s.ResponseFileName != "" {
		return fmt.Errorf("%s: responseBody and responseFileName are exclusive", s.Name)
	}
	for i, step := range s.BotAPIMockStep {
		if step.Method == "" {
			return fmt.Errorf("%s: botApiMockStep[%d].method is required", s.Name, i)
		}
	}
	return nil
}

// RequestBodyPath resolves requestFileName against the scenario directory.
func (s *Scenario) RequestBodyPath() string { return s.resolve(s.RequestFileName) }

// ResponseBodyPath resolves responseFileName against the scenario directory.
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }

func (s *Scenario) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

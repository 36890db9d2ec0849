package testhelpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/keystonepm/mono-repo/backend/shared/go-middleware"
	"github.com/stretchr/testify/require"
)

// BuildAuthRequest sets standard headers for authenticated test requests.
// Web clients carry the token in the access cookie; everything else uses a bearer header.
func (h *TestHelper) BuildAuthRequest(method, reqURL, jwtString string, body []byte, platform string) *http.Request {
	req := httptest.NewRequest(method, reqURL, bytes.NewReader(body))
	req.Header.Set("X-Platform", platform)

	if jwtString != "" {
		if platform == "web" {
			req.AddCookie(&http.Cookie{
				Name:  middleware.AccessTokenCookieName,
				Value: jwtString,
				Path:  "/",
			})
		} else {
			req.Header.Set("Authorization", "Bearer "+jwtString)
		}
	}

	if (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) && len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// Serve runs req through handler and returns the recorded response.
func (h *TestHelper) Serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON unmarshals a recorded response body into out.
func (h *TestHelper) DecodeJSON(rec *httptest.ResponseRecorder, out any) {
	require.NoError(h.T, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
}

// MustJSON marshals v or fails the test.
func (h *TestHelper) MustJSON(v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(h.T, err)
	return b
}

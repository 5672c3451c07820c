// internal/engine/refdata/httploader_test.go
package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
)

func TestHTTPLoader_LoadState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ami/ca.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"state": "ca",
				"year": 2024,
				"counties": [
					{"county": "alameda", "amiByHouseholdSize": {"1": 109000, "2": 124600}}
				]
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	loader := NewHTTPLoader(server.URL+"/ami", logger.NewTestLogger(t))

	data, err := loader.LoadState(context.Background(), "CA")
	require.NoError(t, err)
	assert.Equal(t, "ca", data.State)
	assert.Equal(t, 2024, data.Year)
	require.Len(t, data.Counties, 1)
	assert.Equal(t, 109000.0, data.Counties[0].ByHouseholdSize[1])
}

func TestHTTPLoader_MissingState(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	loader := NewHTTPLoader(server.URL, logger.NewTestLogger(t))

	_, err := loader.LoadState(context.Background(), "zz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataNotFound)
}

func TestHTTPLoader_RejectsBadStateCode(t *testing.T) {
	loader := NewHTTPLoader("http://unused.invalid", logger.NewTestLogger(t))

	_, err := loader.LoadState(context.Background(), "california")
	assert.ErrorIs(t, err, ErrDataNotFound)
}

func TestHTTPLoader_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	loader := NewHTTPLoader(server.URL, logger.NewTestLogger(t))

	_, err := loader.LoadState(context.Background(), "ca")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDataNotFound)
}

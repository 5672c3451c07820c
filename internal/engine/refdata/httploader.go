// internal/engine/refdata/httploader.go
package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	commonhttp "github.com/jborgese/benefit-finder-sub003/internal/common/http"
	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

const httpLoaderTimeout = 10 * time.Second

// HTTPLoader fetches per-state AMI documents from a remote base URL
// (<baseURL>/<state>.json). Used where reference data is served by a
// central endpoint instead of shipped with the binary.
type HTTPLoader struct {
	baseURL string
	client  *commonhttp.Client
	logger  logger.Logger
}

func NewHTTPLoader(baseURL string, log logger.Logger) *HTTPLoader {
	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  commonhttp.NewClient(httpLoaderTimeout),
		logger:  log,
	}
}

func (l *HTTPLoader) LoadState(ctx context.Context, state string) (*models.StateAMIData, error) {
	state = strings.ToLower(strings.TrimSpace(state))
	if len(state) != 2 {
		return nil, fmt.Errorf("%w: invalid state code %q", ErrDataNotFound, state)
	}

	url := l.baseURL + "/" + state + ".json"
	resp, err := l.client.GetJSON(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch reference data for state %s: %w", state, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no reference data for state %s", ErrDataNotFound, state)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch reference data for state %s: status %d", state, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reference data for state %s: %w", state, err)
	}

	var data models.StateAMIData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse reference data for state %s: %w", state, err)
	}
	if data.State == "" {
		data.State = state
	}

	l.logger.Debug("state reference data fetched", map[string]interface{}{
		"state":    state,
		"url":      url,
		"counties": len(data.Counties),
	})
	return &data, nil
}

// internal/engine/refdata/loader.go
package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

var (
	ErrDataNotFound = errors.New("REFERENCE_DATA_NOT_FOUND")
)

// Loader loads the tabulated AMI data for one state. Implementations
// may block; the cache coalesces concurrent loads for the same state.
type Loader interface {
	LoadState(ctx context.Context, state string) (*models.StateAMIData, error)
}

// FileLoader reads per-state JSON files (<dir>/<state>.json, lowercase
// two-letter state code). The engine never writes to this source.
type FileLoader struct {
	dir    string
	logger logger.Logger
}

func NewFileLoader(dir string, log logger.Logger) *FileLoader {
	return &FileLoader{dir: dir, logger: log}
}

func (l *FileLoader) LoadState(ctx context.Context, state string) (*models.StateAMIData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state = strings.ToLower(strings.TrimSpace(state))
	if len(state) != 2 {
		return nil, fmt.Errorf("%w: invalid state code %q", ErrDataNotFound, state)
	}

	path := filepath.Join(l.dir, state+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no reference data for state %s", ErrDataNotFound, state)
		}
		return nil, fmt.Errorf("read reference data for state %s: %w", state, err)
	}

	var data models.StateAMIData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse reference data for state %s: %w", state, err)
	}
	if data.State == "" {
		data.State = state
	}

	l.logger.Debug("state reference data loaded", map[string]interface{}{
		"state":    state,
		"counties": len(data.Counties),
		"year":     data.Year,
	})
	return &data, nil
}

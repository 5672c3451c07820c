// internal/storage/results.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/jborgese/benefit-finder-sub003/internal/common/errors"
	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// ResultStore persists evaluation runs keyed by profile. Payloads go in
// verbatim as JSON; the engine output is the source of truth and the
// store never reinterprets it.
type ResultStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewResultStore(db *sql.DB, log logger.Logger) *ResultStore {
	return &ResultStore{db: db, logger: log}
}

// Save inserts one completed run.
func (s *ResultStore) Save(ctx context.Context, profileID string, results *models.EligibilityResults) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `INSERT INTO eligibility_results (run_id, profile_id, total_programs, payload, evaluated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, query,
		results.RunID, profileID, results.TotalPrograms, payload, results.EvaluatedAt,
	); err != nil {
		s.logger.Error("failed to persist evaluation run", map[string]interface{}{
			"runId":     results.RunID,
			"profileId": profileID,
			"error":     err.Error(),
		})
		return apperrors.NewResultStoreFailedError(results.RunID, err)
	}

	s.logger.Info("evaluation run persisted", map[string]interface{}{
		"runId":     results.RunID,
		"profileId": profileID,
	})
	return nil
}

// Latest returns the most recent run for a profile.
func (s *ResultStore) Latest(ctx context.Context, profileID string) (*models.EligibilityResults, error) {
	query := `SELECT payload FROM eligibility_results
	          WHERE profile_id = $1 ORDER BY evaluated_at DESC LIMIT 1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, profileID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewResultNotFoundError(profileID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("load results", err)
	}

	var results models.EligibilityResults
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("unmarshal stored results: %w", err)
	}
	return &results, nil
}

// History returns up to limit past runs for a profile, newest first.
func (s *ResultStore) History(ctx context.Context, profileID string, limit int) ([]*models.EligibilityResults, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT payload FROM eligibility_results
	          WHERE profile_id = $1 ORDER BY evaluated_at DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, profileID, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("load result history", err)
	}
	defer rows.Close()

	var history []*models.EligibilityResults
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan result row", err)
		}
		var results models.EligibilityResults
		if err := json.Unmarshal(payload, &results); err != nil {
			s.logger.Warn("skipping undecodable stored run", map[string]interface{}{
				"profileId": profileID,
				"error":     err.Error(),
			})
			continue
		}
		history = append(history, &results)
	}
	return history, rows.Err()
}

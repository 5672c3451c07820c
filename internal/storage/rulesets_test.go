// internal/storage/rulesets_test.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jborgese/benefit-finder-sub003/internal/common/errors"
	"github.com/jborgese/benefit-finder-sub003/internal/common/logger"
	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createRuleSet(programID string) *models.RuleSet {
	return &models.RuleSet{
		ProgramID: programID,
		Version:   "2026.1",
		Rules: []models.Rule{
			{
				ID:         programID + "-income-limit",
				ProgramID:  programID,
				Type:       models.RuleTypeIncome,
				Name:       "monthly income limit",
				Active:     true,
				Expression: &models.Expression{Op: "<=", Args: []*models.Expression{{Var: "monthlyIncome"}, {Value: 3000.0}}},
			},
		},
	}
}

// ==========================
// Get Tests
// ==========================

func TestRuleSetStore_GetCacheMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	ruleSet := createRuleSet("snap")
	document, _ := json.Marshal(ruleSet)

	redisMock.ExpectGet("ruleset:snap").RedisNil()
	mock.ExpectQuery(`SELECT document FROM rule_sets`).
		WithArgs("snap").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))
	redisMock.ExpectSet("ruleset:snap", document, ruleSetCacheTTL).SetVal("OK")

	store := NewRuleSetStore(db, redisClient, logger.NewTestLogger(t))
	loaded, err := store.Get(context.Background(), "snap")

	require.NoError(t, err)
	assert.Equal(t, "snap", loaded.ProgramID)
	assert.Equal(t, "2026.1", loaded.Version)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, "snap-income-limit", loaded.Rules[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRuleSetStore_GetCacheHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	document, _ := json.Marshal(createRuleSet("wic"))
	redisMock.ExpectGet("ruleset:wic").SetVal(string(document))

	store := NewRuleSetStore(db, redisClient, logger.NewTestLogger(t))
	loaded, err := store.Get(context.Background(), "wic")

	require.NoError(t, err)
	assert.Equal(t, "wic", loaded.ProgramID)

	// Database untouched on cache hit.
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRuleSetStore_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("ruleset:ghost").RedisNil()
	mock.ExpectQuery(`SELECT document FROM rule_sets`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	store := NewRuleSetStore(db, redisClient, logger.NewTestLogger(t))
	loaded, err := store.Get(context.Background(), "ghost")

	assert.Nil(t, loaded)
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeRuleSetNotFound, stdErr.Code)
}

func TestRuleSetStore_GetCorruptDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("ruleset:snap").RedisNil()
	mock.ExpectQuery(`SELECT document FROM rule_sets`).
		WithArgs("snap").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow([]byte("{broken")))

	store := NewRuleSetStore(db, redisClient, logger.NewTestLogger(t))
	_, err = store.Get(context.Background(), "snap")

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeRuleSetInvalid, stdErr.Code)
}

func TestRuleSetStore_GetWithoutRedis(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	document, _ := json.Marshal(createRuleSet("liheap"))
	mock.ExpectQuery(`SELECT document FROM rule_sets`).
		WithArgs("liheap").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))

	store := NewRuleSetStore(db, nil, logger.NewTestLogger(t))
	loaded, err := store.Get(context.Background(), "liheap")

	require.NoError(t, err)
	assert.Equal(t, "liheap", loaded.ProgramID)
}

// ==========================
// Put / List Tests
// ==========================

func TestRuleSetStore_PutInvalidatesCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	ruleSet := createRuleSet("tanf")
	document, _ := json.Marshal(ruleSet)

	mock.ExpectExec(`INSERT INTO rule_sets`).
		WithArgs("tanf", "2026.1", document, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	redisMock.ExpectDel("ruleset:tanf").SetVal(1)

	store := NewRuleSetStore(db, redisClient, logger.NewTestLogger(t))
	err = store.Put(context.Background(), ruleSet)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRuleSetStore_ListPrograms(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT program_id FROM rule_sets`).
		WillReturnRows(sqlmock.NewRows([]string{"program_id"}).
			AddRow("liheap").
			AddRow("snap").
			AddRow("wic"))

	store := NewRuleSetStore(db, nil, logger.NewTestLogger(t))
	ids, err := store.ListPrograms(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"liheap", "snap", "wic"}, ids)
}

func TestRuleSetStore_CacheRoundTrip(t *testing.T) {
	// The cached document must decode to the same rule set the database
	// produced.
	ruleSet := createRuleSet("snap")
	document, err := json.Marshal(ruleSet)
	require.NoError(t, err)

	var decoded models.RuleSet
	require.NoError(t, json.Unmarshal(document, &decoded))
	assert.Equal(t, ruleSet.ProgramID, decoded.ProgramID)
	require.Len(t, decoded.Rules, 1)
	assert.Equal(t, "<=", decoded.Rules[0].Expression.Op)
	assert.Equal(t, 3000.0, decoded.Rules[0].Expression.Args[1].Value)
}

// ==========================
// Integration-style Tests (miniredis)
// ==========================

func TestRuleSetStore_CachePopulationAgainstRealRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ruleSet := createRuleSet("wic")
	document, _ := json.Marshal(ruleSet)

	// First read misses the cache and hits the database.
	mock.ExpectQuery(`SELECT document FROM rule_sets`).
		WithArgs("wic").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))

	store := NewRuleSetStore(db, redisClient, logger.NewTestLogger(t))

	got, err := store.Get(context.Background(), "wic")
	require.NoError(t, err)
	assert.Equal(t, "wic", got.ProgramID)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Second read is served from redis; no further query is expected.
	got, err = store.Get(context.Background(), "wic")
	require.NoError(t, err)
	assert.Equal(t, "wic", got.ProgramID)

	// TTL expiry forces the database again.
	mr.FastForward(ruleSetCacheTTL + time.Second)
	mock.ExpectQuery(`SELECT document FROM rule_sets`).
		WithArgs("wic").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))

	_, err = store.Get(context.Background(), "wic")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// internal/engine/explain/legacy_test.go
package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jborgese/benefit-finder-sub003/internal/models"
)

func TestDecodeCanonicalDocument(t *testing.T) {
	data := []byte(`{"reason":"meets all criteria","details":["income within limit"],"rulesCited":["snap-income-limit"]}`)

	doc, err := DecodeDocument(data)

	require.NoError(t, err)
	require.NotNil(t, doc.Canonical)
	assert.Nil(t, doc.Legacy)

	normalized := doc.Normalize()
	assert.Equal(t, "meets all criteria", normalized.Reason)
	assert.Equal(t, []string{"income within limit"}, normalized.Details)
}

func TestDecodeLegacyDocument(t *testing.T) {
	data := []byte(`{"reasoning":"income too high","confidence":90,"criteria":["gross income above limit"],"rules":["snap-income-limit"]}`)

	doc, err := DecodeDocument(data)

	require.NoError(t, err)
	require.NotNil(t, doc.Legacy)
	assert.Nil(t, doc.Canonical)

	normalized := doc.Normalize()
	assert.Equal(t, "income too high", normalized.Reason)
	assert.Equal(t, []string{"gross income above limit"}, normalized.Details)
	assert.Equal(t, []string{"snap-income-limit"}, normalized.RulesCited)
}

func TestDecodeCanonicalWinsWhenBothPresent(t *testing.T) {
	data := []byte(`{"reason":"canonical","reasoning":"legacy"}`)

	doc, err := DecodeDocument(data)

	require.NoError(t, err)
	require.NotNil(t, doc.Canonical)
	assert.Equal(t, "canonical", doc.Normalize().Reason)
}

func TestDecodeRejectsUnrecognizedShape(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"something":"else"}`))
	assert.Error(t, err)

	_, err = DecodeDocument([]byte(`not json`))
	assert.Error(t, err)
}

func TestNormalizeEmptyDocument(t *testing.T) {
	assert.Equal(t, models.Explanation{}, Document{}.Normalize())
}

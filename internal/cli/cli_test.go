package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/chaintree/pkg/storage"
	"github.com/tcfw/chaintree/pkg/tx"
)

func TestParseValue(t *testing.T) {
	assert.Equal(t, "plain", parseValue("plain"))
	assert.Equal(t, int64(5), parseValue("5"))
	assert.Equal(t, 2.5, parseValue("2.5"))
	assert.Equal(t, map[string]interface{}{"n": int64(1), "l": []interface{}{int64(2), 0.5}}, parseValue(`{"n":1,"l":[2,0.5]}`))
	assert.Equal(t, "5 6", parseValue("5 6"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, map[string]interface{}{"a": "b"}, parseValue(`{"a":"b"}`))
	assert.Equal(t, "null", parseValue("null"))
}

func TestParsedValueMatchesLibraryValue(t *testing.T) {
	fromCLI, err := tx.NewSetData("a/b", parseValue("5"))
	require.NoError(t, err)
	fromLib, err := tx.NewSetData("a/b", 5)
	require.NoError(t, err)

	a, err := fromCLI.ID()
	require.NoError(t, err)
	b, err := fromLib.ID()
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestJSONValue(t *testing.T) {
	id, err := storage.Sum([]byte("x"))
	assert.NoError(t, err)

	v := jsonValue(map[string]interface{}{
		"link": id,
		"list": []interface{}{id, 1},
	})

	assert.Equal(t, map[string]interface{}{
		"link": map[string]string{"/": id.String()},
		"list": []interface{}{map[string]string{"/": id.String()}, 1},
	}, v)

	assert.Equal(t, "s", jsonValue("s"))
}

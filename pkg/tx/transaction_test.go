package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/chaintree/pkg/storage"
)

func TestNewSetData(t *testing.T) {
	tx, err := NewSetData("a/b", 5)
	require.NoError(t, err)

	assert.Equal(t, KindSetData, tx.Kind)
	assert.Equal(t, []string{"a", "b"}, tx.Path)
	assert.Equal(t, int64(5), tx.Value)
	assert.False(t, tx.ExpectedTip().Defined())
}

func TestNewSetDataRejectsBadInput(t *testing.T) {
	cases := map[string]func() (*Transaction, error){
		"empty path":     func() (*Transaction, error) { return NewSetData("", 1) },
		"only separator": func() (*Transaction, error) { return NewSetData("/", 1) },
		"empty segment":  func() (*Transaction, error) { return NewSetData("a//b", 1) },
		"no segments":    func() (*Transaction, error) { return NewSetDataPath([]string{}, 1) },
		"blank segment":  func() (*Transaction, error) { return NewSetDataPath([]string{"a", ""}, 1) },
		"nil value":      func() (*Transaction, error) { return NewSetData("a", nil) },
		"unencodable":    func() (*Transaction, error) { return NewSetData("a", func() {}) },
		"reserved":       func() (*Transaction, error) { return NewSetData("_chaintree/owners", []string{"x"}) },
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c()
			assert.ErrorIs(t, err, ErrInvalidTransaction)
		})
	}
}

func TestNewSetOwnership(t *testing.T) {
	tx, err := NewSetOwnership([]string{"0xabc", "0xdef"})
	require.NoError(t, err)

	owners, err := tx.Owners()
	require.NoError(t, err)
	assert.Equal(t, []string{"0xabc", "0xdef"}, owners)

	_, err = NewSetOwnership(nil)
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = NewSetOwnership([]string{""})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestExpectedParentTip(t *testing.T) {
	tip, _ := storage.Sum([]byte("tip"))

	tx, err := NewSetData("a", "v", WithExpectedParentTip(tip))
	require.NoError(t, err)
	assert.Equal(t, tip, tx.ExpectedTip())
}

func TestTransactionRoundTripAndID(t *testing.T) {
	tx1, err := NewSetData("a/b", map[string]interface{}{"x": 1, "y": "z"})
	require.NoError(t, err)
	tx2, err := NewSetData("a/b", map[string]interface{}{"y": "z", "x": 1})
	require.NoError(t, err)

	id1, err := tx1.ID()
	require.NoError(t, err)
	id2, err := tx2.ID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	b, err := tx1.Marshal()
	require.NoError(t, err)

	decoded := &Transaction{}
	require.NoError(t, decoded.Unmarshal(b))
	assert.Equal(t, tx1, decoded)
}

func TestUnmarshalValidates(t *testing.T) {
	bad := &Transaction{Version: Version1, Kind: KindSetData, Path: []string{""}, Value: 1}
	b, err := bad.Marshal()
	require.NoError(t, err)

	err = (&Transaction{}).Unmarshal(b)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestTypedMapValueIDStable(t *testing.T) {
	value := map[string]int{}
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		value[k] = len(value)
	}

	lit := &Transaction{Version: Version1, Kind: KindSetData, Path: []string{"a"}, Value: value}
	require.NoError(t, lit.Validate())

	built, err := NewSetData("a", value)
	require.NoError(t, err)

	want, err := built.ID()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		id, err := lit.ID()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	n, err := lit.Normalized()
	require.NoError(t, err)
	assert.Equal(t, built.Value, n.Value)
	assert.IsType(t, map[string]int{}, lit.Value)
}

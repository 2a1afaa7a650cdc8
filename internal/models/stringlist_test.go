package models

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestStringListScansArrayLiterals(t *testing.T) {
	// the raw string form the Postgres driver hands database/sql for text[]
	var interests StringList
	assert.Equal(t, interests.Scan("{hiking,coffee}"), nil)
	assert.Equal(t, interests, StringList{"hiking", "coffee"})

	assert.Equal(t, interests.Scan([]byte(`{"live music","rock \"n\" roll",NULL}`)), nil)
	assert.Equal(t, interests, StringList{"live music", `rock "n" roll`})

	assert.Equal(t, interests.Scan("{}"), nil)
	assert.Equal(t, interests, StringList{})

	assert.Equal(t, interests.Scan(nil), nil)
	assert.Equal(t, interests, StringList(nil))

	assert.NotEqual(t, interests.Scan(42), nil)
}

func TestStringListValueRoundTrip(t *testing.T) {
	original := StringList{"hiking", "live music", `rock "n" roll`, `back\slash`}

	value, err := original.Value()
	assert.Equal(t, err, nil)

	var scanned StringList
	assert.Equal(t, scanned.Scan(value), nil)
	assert.Equal(t, scanned, original)

	empty, err := StringList(nil).Value()
	assert.Equal(t, err, nil)
	assert.Equal(t, empty, "{}")
}

package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberAcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		A number `json:"a"`
		B number `json:"b"`
		C number `json:"c"`
		D number `json:"d"`
		E number `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": "4", "c": null, "d": " ", "e": 2.5}`), &payload))

	n, ok := payload.A.intOr(1, 100)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = payload.B.intOr(1, 100)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	n, ok = payload.C.intOr(1, 100)
	assert.True(t, ok)
	assert.Equal(t, 1, n, "null falls back")

	assert.False(t, payload.D.set)

	_, ok = payload.E.intOr(1, 100)
	assert.False(t, ok, "fractional quantities are rejected")
}

func TestNumberRejectsGarbage(t *testing.T) {
	var payload struct {
		A number `json:"a"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"a": "many"}`), &payload))
	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &payload))
}

func TestFirstSet(t *testing.T) {
	price := number{value: 5, set: true}
	unitPrice := number{value: 7, set: true}

	assert.Equal(t, 7.0, firstSet(unitPrice, price).value)
	assert.Equal(t, 5.0, firstSet(number{}, price).value)
	assert.False(t, firstSet(number{}, number{}).set)
}

func TestNumberRejectsNonFinite(t *testing.T) {
	for _, raw := range []string{`"NaN"`, `"Inf"`, `"-Inf"`, `"+Infinity"`} {
		var payload struct {
			A number `json:"a"`
		}
		err := json.Unmarshal([]byte(`{"a": `+raw+`}`), &payload)
		assert.Error(t, err, raw)
		assert.False(t, payload.A.set, raw)
	}
}

func TestIntOrRejectsOutOfRange(t *testing.T) {
	_, ok := number{value: 1e19, set: true}.intOr(1, 1000)
	assert.False(t, ok)

	_, ok = number{value: -1001, set: true}.intOr(1, 1000)
	assert.False(t, ok)

	n, ok := number{value: -1000, set: true}.intOr(1, 1000)
	assert.True(t, ok)
	assert.Equal(t, -1000, n)
}

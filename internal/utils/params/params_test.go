package params_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/utils/params"
)

func TestSet(t *testing.T) {
	tests := map[string]struct {
		params    string
		keys      []string
		values    map[string]any
		expParams string
		expErr    bool
	}{
		"Untouched members should keep their order and bytes.": {
			params:    `{"cmd":"a && b","seed":9007199254740993,"file":"FILEUPLOAD","opts":{"z":1, "a":[1e3]}}`,
			keys:      []string{"file"},
			values:    map[string]any{"file": int64(1)},
			expParams: `{"cmd":"a && b","seed":9007199254740993,"file":1,"opts":{"z":1, "a":[1e3]}}`,
		},

		"Missing keys should be appended in order.": {
			params:    `{"a":"<x>"}`,
			keys:      []string{"c", "b"},
			values:    map[string]any{"b": "2", "c": "<3>"},
			expParams: `{"a":"<x>","c":"<3>","b":"2"}`,
		},

		"An empty object should accept new keys.": {
			params:    `{}`,
			keys:      []string{"a"},
			values:    map[string]any{"a": true},
			expParams: `{"a":true}`,
		},

		"Keys without value should be ignored.": {
			params:    `{}`,
			keys:      []string{"a"},
			values:    map[string]any{},
			expParams: `{}`,
		},

		"A non object should fail.": {
			params: `["a"]`,
			expErr: true,
		},

		"Trailing data should fail.": {
			params: `{"a":1} {}`,
			expErr: true,
		},

		"Duplicated keys should fail.": {
			params: `{"a":1,"a":2}`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			got, err := params.Set(test.params, test.keys, test.values)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expParams, got)
		})
	}
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	obj, err := params.Decode(`{"id":1000000,"big":9007199254740993,"name":"x"}`)
	require.NoError(err)
	assert.Equal(json.Number("1000000"), obj["id"])
	assert.Equal("9007199254740993", params.String(obj["big"]))
	assert.Equal("x", params.String(obj["name"]))

	_, err = params.Decode(`"whoami"`)
	assert.Error(err)
}

func TestString(t *testing.T) {
	tests := map[string]struct {
		value  any
		expStr string
	}{
		"A string should not be quoted.":          {value: "a&b", expStr: "a&b"},
		"A null should be empty.":                 {value: nil, expStr: ""},
		"A number should be rendered as written.": {value: json.Number("1000000"), expStr: "1000000"},
		"A bool should be rendered as JSON.":      {value: false, expStr: "false"},
		"An object should be rendered as JSON.":   {value: map[string]any{"a": "<b>"}, expStr: `{"a":"<b>"}`},
		"A list should be rendered as JSON.":      {value: []any{json.Number("1"), "x"}, expStr: `[1,"x"]`},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expStr, params.String(test.value))
		})
	}
}

func TestID(t *testing.T) {
	tests := map[string]struct {
		value  any
		expID  int64
		expErr bool
	}{
		"A missing value should be zero.":    {value: nil, expID: 0},
		"A number should be the ID.":         {value: json.Number("42"), expID: 42},
		"A numeric string should be the ID.": {value: "7", expID: 7},
		"An empty string should be zero.":    {value: "", expID: 0},
		"A fractional number should fail.":   {value: json.Number("1.5"), expErr: true},
		"A non numeric string should fail.":  {value: "seven", expErr: true},
		"Other types should fail.":           {value: true, expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			id, err := params.ID(test.value)
			if test.expErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(test.expID, id)
		})
	}
}

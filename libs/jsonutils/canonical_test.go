package jsonutils_test

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"testing"
	"unicode"

	"github.com/shopspring/decimal"
	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agrojardin/checkout/libs/jsonutils"
)

func TestMarshalCanonical(t *testing.T) {
	type unsorted struct {
		Zeta  string          `json:"zeta"`
		Alpha int             `json:"alpha"`
		Mid   json.RawMessage `json:"mid"`
	}

	type tcExpected struct {
		out string
		err error
	}

	type testCase struct {
		name  string
		given interface{}
		exp   tcExpected
	}

	tests := []testCase{
		{
			name:  "nested_maps_sorted",
			given: map[string]interface{}{"b": 1, "a": map[string]interface{}{"y": true, "x": nil}},
			exp:   tcExpected{out: `{"a":{"x":null,"y":true},"b":1}`},
		},

		{
			name:  "array_order_kept",
			given: []interface{}{3, "a", 1, map[string]interface{}{"k": []interface{}{}}},
			exp:   tcExpected{out: `[3,"a",1,{"k":[]}]`},
		},

		{
			name:  "empty_containers",
			given: map[string]interface{}{"o": map[string]interface{}{}, "a": []interface{}{}},
			exp:   tcExpected{out: `{"a":[],"o":{}}`},
		},

		{
			name:  "code_point_order",
			given: map[string]interface{}{"b": 1, "B": 2, "á": 3, "a": 4, "_": 5},
			exp:   tcExpected{out: `{"B":2,"_":5,"a":4,"b":1,"á":3}`},
		},

		{
			name:  "struct_fields_sorted",
			given: unsorted{Zeta: "z", Alpha: 10, Mid: json.RawMessage(`{"q":1.50, "p": [ 1 , 2 ]}`)},
			exp:   tcExpected{out: `{"alpha":10,"mid":{"p":[1,2],"q":1.50},"zeta":"z"}`},
		},

		{
			name:  "strings_escaped_like_ecmascript",
			given: "a\"b\\c\n\t\b\f\r\x01 <&>\u2028\u00f1",
			exp:   tcExpected{out: `"a\"b\\c\n\t\b\f\r\u0001 <&>` + "\u2028\u00f1" + `"`},
		},

		{
			name:  "whitespace_inside_strings_kept",
			given: map[string]interface{}{"Name": "Juan Pérez"},
			exp:   tcExpected{out: `{"Name":"Juan Pérez"}`},
		},

		{
			name: "numbers_minimal",
			given: []interface{}{
				10.0, 10.5, 0.1, -0.0, 1e21, 1e-7, float32(1.5),
				int64(-3), uint8(7), decimal.RequireFromString("15.250"), json.Number("12"),
			},
			exp: tcExpected{out: `[10,10.5,0.1,0,1e+21,1e-7,1.5,-3,7,15.25,12]`},
		},

		{
			name:  "nan_rejected",
			given: map[string]interface{}{"x": math.NaN()},
			exp:   tcExpected{err: jsonutils.ErrUnsupportedFloat},
		},

		{
			name:  "bad_number_rejected",
			given: []interface{}{json.Number("01")},
			exp:   tcExpected{err: jsonutils.ErrInvalidNumber},
		},

		{
			name:  "invalid_utf8_rejected",
			given: map[string]interface{}{"x": "\xff"},
			exp:   tcExpected{err: jsonutils.ErrInvalidUTF8},
		},
	}

	for i := range tests {
		tc := tests[i]

		t.Run(tc.name, func(t *testing.T) {
			actual, err := jsonutils.MarshalCanonical(tc.given)
			if tc.exp.err != nil {
				should.ErrorIs(t, err, tc.exp.err)
				return
			}

			must.NoError(t, err)
			should.Equal(t, tc.exp.out, string(actual))
		})
	}
}

func TestMarshalCanonical_DeepNesting(t *testing.T) {
	var v interface{} = map[string]interface{}{}
	for i := 0; i < 200; i++ {
		v = map[string]interface{}{"n": []interface{}{v}}
	}

	actual, err := jsonutils.MarshalCanonical(v)
	must.NoError(t, err)

	expected := strings.Repeat(`{"n":[`, 200) + "{}" + strings.Repeat("]}", 200)
	should.Equal(t, expected, string(actual))
}

var runes = rapid.RuneFrom([]rune{'"', '\\', '\n', ' ', '<', '\u2028'}, unicode.Latin, unicode.Greek, unicode.Cc)

func drawValue(t *rapid.T, depth int) interface{} {
	kinds := 5
	if depth < 4 {
		kinds = 7
	}

	switch rapid.IntRange(0, kinds-1).Draw(t, "kind") {
	case 0:
		return nil
	case 1:
		return rapid.Bool().Draw(t, "bool")
	case 2:
		return rapid.StringOf(runes).Draw(t, "string")
	case 3:
		return json.Number(strconv.FormatInt(rapid.Int64().Draw(t, "int"), 10))
	case 4:
		return rapid.Float64Range(-1e25, 1e25).Draw(t, "float")
	case 5:
		n := rapid.IntRange(0, 4).Draw(t, "len")
		arr := make([]interface{}, 0, n)
		for i := 0; i < n; i++ {
			arr = append(arr, drawValue(t, depth+1))
		}
		return arr
	default:
		n := rapid.IntRange(0, 4).Draw(t, "size")
		obj := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			obj[rapid.StringOf(runes).Draw(t, "key")] = drawValue(t, depth+1)
		}
		return obj
	}
}

func TestMarshalCanonical_FixedPoint(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := drawValue(t, 0)

		first, err := jsonutils.MarshalCanonical(tree)
		must.NoError(t, err)

		second, err := jsonutils.MarshalCanonical(json.RawMessage(first))
		must.NoError(t, err)

		should.Equal(t, string(first), string(second))
	})
}

// The same object written with its members in any textual order
// canonicalizes to the same bytes.
func TestMarshalCanonical_KeyOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		obj, ok := drawValue(t, 3).(map[string]interface{})
		if !ok {
			obj = map[string]interface{}{"only": drawValue(t, 3)}
		}

		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		shuffled := rapid.Permutation(keys).Draw(t, "order")

		write := func(order []string) json.RawMessage {
			parts := make([]string, 0, len(order))
			for _, k := range order {
				kb, err := json.Marshal(k)
				must.NoError(t, err)
				vb, err := json.Marshal(obj[k])
				must.NoError(t, err)
				parts = append(parts, string(kb)+" : "+string(vb))
			}
			return json.RawMessage("{ " + strings.Join(parts, " , ") + " }")
		}

		a, err := jsonutils.MarshalCanonical(write(keys))
		must.NoError(t, err)

		b, err := jsonutils.MarshalCanonical(write(shuffled))
		must.NoError(t, err)

		should.Equal(t, string(a), string(b))
	})
}

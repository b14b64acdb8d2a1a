package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSNBT(t *testing.T) {
	v, err := ParseSNBT(`{Tags:["a","b"],n:3b,s:4s,i:5,neg:-3,l:7L,f:2.5f,d:1.5d,x:1.5,str:'q"x',ok:true,word:abcde}`)
	require.Nil(t, err)
	c, ok := v.(Compound)
	require.True(t, ok)

	tags, ok := c["Tags"].(*List)
	require.True(t, ok)
	require.Equal(t, []any{"a", "b"}, tags.Items)
	require.Equal(t, int8(3), c["n"])
	require.Equal(t, int16(4), c["s"])
	require.Equal(t, int32(5), c["i"])
	require.Equal(t, int32(-3), c["neg"])
	require.Equal(t, int64(7), c["l"])
	require.Equal(t, float32(2.5), c["f"])
	require.Equal(t, 1.5, c["d"])
	require.Equal(t, 1.5, c["x"])
	require.Equal(t, `q"x`, c["str"])
	require.Equal(t, int8(1), c["ok"])
	require.Equal(t, "abcde", c["word"])
}

func TestParseSNBTNested(t *testing.T) {
	v, err := ParseSNBT(`{ a : { b : [ {c:1}, {c:2} ] }, arr:[I;1,2] }`)
	require.Nil(t, err)
	c := v.(Compound)
	got, ok := getPath(c, mustPath(t, "a.b[1].c"))
	require.True(t, ok)
	require.Equal(t, int32(2), got)
	arr := c["arr"].(*List)
	require.Equal(t, []any{int32(1), int32(2)}, arr.Items)
}

func TestParseSNBTErrors(t *testing.T) {
	for _, input := range []string{`{a:1`, `{a:1} x`, `[1,2`, `"open`, `{:1}`, ``} {
		_, err := ParseSNBT(input)
		require.NotNil(t, err, input)
	}
}

func TestFormatSNBT(t *testing.T) {
	v := Compound{
		"c": "x",
		"a": int32(1),
		"b": &List{Items: []any{int8(1), int8(2)}},
		"d": 1.25,
		"f": float32(0.5),
		"l": int64(9),
		"s": int16(2),
	}
	require.Equal(t, `{a:1,b:[1b,2b],c:"x",d:1.25d,f:0.5f,l:9L,s:2s}`, FormatSNBT(v))

	parsed, err := ParseSNBT(FormatSNBT(v))
	require.Nil(t, err)
	require.Equal(t, FormatSNBT(v), FormatSNBT(parsed))
}

func mustPath(t *testing.T, s string) []pathNode {
	t.Helper()
	p, err := parsePath(s)
	require.Nil(t, err)
	return p
}

func TestPaths(t *testing.T) {
	root := Compound{}
	require.Nil(t, setPath(root, mustPath(t, "a.b.c"), int32(1)))
	got, ok := getPath(root, mustPath(t, "a.b.c"))
	require.True(t, ok)
	require.Equal(t, int32(1), got)

	require.Nil(t, appendPath(root, mustPath(t, "list"), "x"))
	require.Nil(t, appendPath(root, mustPath(t, "list"), "y"))
	got, ok = getPath(root, mustPath(t, "list[-1]"))
	require.True(t, ok)
	require.Equal(t, "y", got)
	got, ok = getPath(root, mustPath(t, "list[0]"))
	require.True(t, ok)
	require.Equal(t, "x", got)

	require.Nil(t, setPath(root, mustPath(t, "list[-1]"), "z"))
	got, _ = getPath(root, mustPath(t, "list[1]"))
	require.Equal(t, "z", got)

	require.True(t, removePath(root, mustPath(t, "list[-1]")))
	require.Len(t, root["list"].(*List).Items, 1)
	require.False(t, removePath(root, mustPath(t, "list[5]")))
	require.True(t, removePath(root, mustPath(t, "a.b")))
	_, ok = getPath(root, mustPath(t, "a.b.c"))
	require.False(t, ok)

	require.NotNil(t, setPath(root, mustPath(t, "list[3]"), "out of range"))
	_, err := parsePath("a[x]")
	require.NotNil(t, err)
	_, err = parsePath("")
	require.NotNil(t, err)

	p := mustPath(t, `data."odd key".v`)
	require.Equal(t, "odd key", p[1].key)
}

func TestMeasure(t *testing.T) {
	require.Equal(t, int32(15), measure(1.5, 10))
	require.Equal(t, int32(-2), measure(-1.5, 1))
	require.Equal(t, int32(2), measure("hi", 1))
	require.Equal(t, int32(3), measure(&List{Items: []any{1, 2, 3}}, 1))
	require.Equal(t, int32(1), measure(Compound{"a": int32(1)}, 1))
	require.Equal(t, int32(2147483647), measure(1e20, 1))
}

func TestClone(t *testing.T) {
	orig := Compound{"l": &List{Items: []any{Compound{"a": int32(1)}}}}
	cp := clone(orig).(Compound)
	cp["l"].(*List).Items[0].(Compound)["a"] = int32(2)
	require.Equal(t, int32(1), orig["l"].(*List).Items[0].(Compound)["a"])
}

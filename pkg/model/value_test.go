package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := Inspect(map[string]interface{}{
		"b":    []interface{}{1.0, "two"},
		"a":    true,
		"when": now,
		"raw":  []byte("xyz"),
	})
	require.Equal(t, KindObject, v.Kind)
	require.Len(t, v.Fields, 4)
	require.Equal(t, "a", v.Fields[0].Key)
	require.Equal(t, KindPrimitive, v.Fields[0].Value.Kind)
	require.Equal(t, true, v.Fields[0].Value.Primitive)

	require.Equal(t, "b", v.Fields[1].Key)
	require.Equal(t, KindArray, v.Fields[1].Value.Kind)
	require.Len(t, v.Fields[1].Value.Items, 2)

	require.Equal(t, "raw", v.Fields[2].Key)
	require.Equal(t, KindBuffer, v.Fields[2].Value.Kind)
	require.Equal(t, []byte("xyz"), v.Fields[2].Value.Buffer)

	require.Equal(t, "when", v.Fields[3].Key)
	require.Equal(t, KindDate, v.Fields[3].Value.Kind)
	require.True(t, now.Equal(v.Fields[3].Value.Date))
}

func TestRegionMeta(t *testing.T) {
	var r *Region
	_, ok := r.Meta("name")
	require.False(t, ok)

	r = &Region{MetaData: map[string]string{"save": ""}}
	v, ok := r.Meta("save")
	require.True(t, ok)
	require.Empty(t, v)
}

func TestRequestParsedURL(t *testing.T) {
	var r *Request
	_, ok := r.ParsedURL()
	require.False(t, ok)

	r = &Request{URL: "https://httpbin.org/image/png?x=1"}
	u, ok := r.ParsedURL()
	require.True(t, ok)
	require.Equal(t, "/image/png", u.Path)
}

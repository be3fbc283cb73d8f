package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_IsType(t *testing.T) {
	for _, k := range []Kind{KindPrimitiveType, KindSimpleType, KindParameterizedType, KindArrayType,
		KindUnionType, KindWildcardType, KindQualifiedType} {
		assert.True(t, k.IsType(), k.String())
	}
	for _, k := range []Kind{KindOther, KindParameter, KindSimpleName, KindQualifiedName, KindMethodInvocation} {
		assert.False(t, k.IsType(), k.String())
	}
}

func TestNode_Insert(t *testing.T) {
	host := &Node{Kind: KindOther}
	cond := host.Append(&Node{Kind: KindOther, Text: "cond"})

	first := host.Insert(0, &Node{Kind: KindParameter, Text: "a"})
	second := host.Insert(1, &Node{Kind: KindParameter, Text: "b"})
	last := host.Insert(10, &Node{Kind: KindBlock})

	require.Len(t, host.Children, 4)
	assert.Equal(t, []*Node{first, second, cond, last}, host.Children)
	for _, child := range host.Children {
		assert.Same(t, host, child.Parent)
	}
}

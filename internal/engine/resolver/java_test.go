package resolver

import (
	"testing"

	"javaindex/internal/engine/parser"
	"javaindex/internal/engine/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersSource = `package com.acme;

import java.util.List;
import java.util.Map;

class Orders {
    private List<String> names;

    int count(Map<String, Integer> totals) {
        int sum = 0;
        for (String key : totals.keySet()) {
            sum += totals.get(key);
        }
        names.add("x");
        return sum;
    }
}

enum Color { RED, GREEN }
`

func resolveJava(t *testing.T, src string) (*parser.File, *Result) {
	t.Helper()
	file, err := parser.NewParser(parser.DefaultJavaSpec()).ParseFile("Orders.java", []byte(src))
	require.NoError(t, err)
	require.Zero(t, file.ErrorCount)
	return file, resolve(t, file.Root)
}

func TestResolveJava_Declarations(t *testing.T) {
	_, res := resolveJava(t, ordersSource)

	assert.Equal(t, "com.acme", res.Package())
	assert.Equal(t, map[string]string{"List": "java.util.List", "Map": "java.util.Map"}, res.Imports())

	bindings := res.Bindings()
	require.Len(t, bindings, 6)
	var names []string
	for _, b := range bindings {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"names", "totals", "sum", "key", "RED", "GREEN"}, names)
	assert.Equal(t, map[BindingID]string{
		0: "java.util.List<java.lang.String>",
		1: "java.util.Map<java.lang.String,java.lang.Integer>",
		2: "int",
		3: "java.lang.String",
		4: "com.acme.Color.RED",
		5: "com.acme.Color.GREEN",
	}, res.DeclaredTypes())
}

func TestResolveJava_References(t *testing.T) {
	_, res := resolveJava(t, ordersSource)

	refs := res.References()
	// Each count includes the declaration name itself.
	assert.Len(t, refs[0], 2, "names")
	assert.Len(t, refs[1], 3, "totals")
	assert.Len(t, refs[2], 3, "sum")
	assert.Len(t, refs[3], 2, "key")
	assert.Len(t, refs[4], 1, "RED")

	for id, nodes := range refs {
		for _, n := range nodes {
			b, ok := res.BindingAt(n)
			require.True(t, ok)
			assert.Equal(t, id, b.ID)
		}
	}
}

func TestResolveJava_TypeNames(t *testing.T) {
	file, res := resolveJava(t, ordersSource)

	got := make(map[string][]string)
	syntax.Walk(file.Root, func(n *syntax.Node) bool {
		if name, ok := res.TypeNames()[n]; ok {
			got[n.Text] = append(got[n.Text], name)
		}
		return true
	})

	assert.Equal(t, []string{"java.util.List"}, got["List<String>"])
	assert.Equal(t, []string{"java.util.Map"}, got["Map<String,Integer>"])
	assert.Equal(t, []string{"java.util.List"}, got["List"])
	assert.Equal(t, []string{"java.lang.Integer"}, got["Integer"])
	assert.Equal(t, []string{"int", "int"}, got["int"])
	assert.Len(t, got["String"], 3)
	for _, name := range got["String"] {
		assert.Equal(t, "java.lang.String", name)
	}
}

func TestResolveJava_MethodNamesAreNotVariables(t *testing.T) {
	_, res := resolveJava(t, `class A {
    int size;
    int size() { return size; }
    void m() { size(); this.size(); }
}`)
	bindings := res.Bindings()
	require.Len(t, bindings, 1)
	// The declaration and the field read in the method body.
	assert.Len(t, bindings[0].References, 2)
}

func TestResolveJava_CatchAndResources(t *testing.T) {
	_, res := resolveJava(t, `package p;
import java.io.Reader;
class A {
    void m() {
        try (Reader r = open()) {
            r.read();
        } catch (java.io.IOException | RuntimeException e) {
            e.printStackTrace();
        }
    }
}`)
	types := res.DeclaredTypes()
	require.Len(t, types, 2)
	assert.Equal(t, "java.io.Reader", types[0])
	assert.Equal(t, "java.io.IOException", types[1])
	assert.Len(t, res.Bindings()[0].References, 2)
	assert.Len(t, res.Bindings()[1].References, 2)
}

func refLines(b *Binding) []int {
	lines := make([]int, 0, len(b.References))
	for _, ref := range b.References {
		lines = append(lines, ref.Start.Line)
	}
	return lines
}

func TestResolveJava_SwitchGroupsShareScope(t *testing.T) {
	_, res := resolveJava(t, `class A {
    int v;
    void m(int k) {
        switch (k) {
            case 1:
                int v = 1;
                break;
            default:
                v = 2;
        }
        v = 3;
    }
}`)
	bindings := res.Bindings()
	require.Len(t, bindings, 3)
	field, local := bindings[0], bindings[2]
	assert.Equal(t, "v", local.Name)
	assert.Equal(t, "int", local.DeclaredType)
	// The default group sees the local declared in the earlier case group;
	// the statement after the switch sees the field again.
	assert.Equal(t, []int{6, 9}, refLines(local))
	assert.Equal(t, []int{2, 11}, refLines(field))
}

func TestResolveJava_PatternVariableScope(t *testing.T) {
	_, res := resolveJava(t, `class A {
    int m(Object o, Object p) {
        if (o instanceof String s && !s.isEmpty()) {
            return s.length();
        }
        while (p instanceof Integer n) {
            p = n.toString();
        }
        return o instanceof CharSequence cs ? cs.length() : 0;
    }
}`)
	byName := make(map[string]*Binding)
	for _, b := range res.Bindings() {
		byName[b.Name] = b
	}
	require.Contains(t, byName, "s")
	assert.Equal(t, "java.lang.String", byName["s"].DeclaredType)
	assert.Equal(t, []int{3, 3, 4}, refLines(byName["s"]))

	require.Contains(t, byName, "n")
	assert.Equal(t, "java.lang.Integer", byName["n"].DeclaredType)
	assert.Equal(t, []int{6, 7}, refLines(byName["n"]))

	require.Contains(t, byName, "cs")
	assert.Equal(t, "java.lang.CharSequence", byName["cs"].DeclaredType)
	assert.Equal(t, []int{9, 9}, refLines(byName["cs"]))
}

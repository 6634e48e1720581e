package analyze

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsInString(t *testing.T) {
	cases := []struct {
		line   string
		column int
		want   bool
	}{
		{"const x = 'a,b';", 12, true},
		{"const x = 'a,b';", 5, false},
		// both quotes precede column 15, so parity is even again
		{"const x = 'a,b';", 15, false},
		{`x = 'it\'s' + y`, 9, true},
		{`x = 'it\'s' + y`, 14, false},
		{"say(\"hello world\")", 8, true},
		{"tpl = `a ${b}`", 10, true},
		{"mixed = \"it's\"", 12, true},
		{"", 0, false},
		{"no quotes here", 100, false},
		{"'open", -3, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, IsInString(tc.line, tc.column), "IsInString(%q, %d)", tc.line, tc.column)
	}
}

func TestIsInComment(t *testing.T) {
	cases := []struct {
		line   string
		column int
		want   bool
	}{
		{"// foo bar", 5, true},
		{"let x = 5; // trailing", 3, false},
		{"let x = 5; // trailing", 12, true},
		{"let x = 5; // trailing", 11, true},
		{"/* block foo */ bar", 9, true},
		{"/* block foo */ bar", 16, false},
		{"# python comment", 5, true},
		{"  #include <stdio.h>", 3, true},
		{"const url = 'http://example.com'; go()", 35, true},
		{"plain code", 3, false},
		{"", 0, false},
		{"x // y", 99, true},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, IsInComment(tc.line, tc.column), "IsInComment(%q, %d)", tc.line, tc.column)
	}
}

func TestFunctionContext(t *testing.T) {
	t.Run("function declaration", func(t *testing.T) {
		got := FunctionContext([]string{"function foo() {", "  return 1;", "}"}, 1)
		require.NotNil(t, got)
		assert.Equal(t, "foo", *got)
	})

	t.Run("async function", func(t *testing.T) {
		got := FunctionContext([]string{"async function load(id) {", "  return id;"}, 1)
		require.NotNil(t, got)
		assert.Equal(t, "load", *got)
	})

	t.Run("arrow function", func(t *testing.T) {
		got := FunctionContext([]string{"const handler = (e) => {", "  return e.value;", "}"}, 2)
		require.NotNil(t, got)
		assert.Equal(t, "handler", *got)
	})

	t.Run("control statements are skipped", func(t *testing.T) {
		lines := []string{"function outer() {", "  if (ready) {", "    x = 1;", "  }", "}"}
		got := FunctionContext(lines, 2)
		require.NotNil(t, got)
		assert.Equal(t, "outer", *got)
	})

	t.Run("keyword check is a plain substring test", func(t *testing.T) {
		got := FunctionContext([]string{"function outer() {", "  format(x);"}, 1)
		require.NotNil(t, got)
		assert.Equal(t, "outer", *got)
	})

	t.Run("match line itself participates", func(t *testing.T) {
		got := FunctionContext([]string{"render() {"}, 0)
		require.NotNil(t, got)
		assert.Equal(t, "render", *got)
	})

	t.Run("none found", func(t *testing.T) {
		assert.Nil(t, FunctionContext([]string{"let a = 1;", "let b = 2;"}, 1))
	})

	t.Run("out of range line numbers", func(t *testing.T) {
		got := FunctionContext([]string{"function only() {}"}, 10)
		require.NotNil(t, got)
		assert.Equal(t, "only", *got)
		assert.Nil(t, FunctionContext([]string{"function only() {}"}, -1))
		assert.Nil(t, FunctionContext(nil, 0))
	})
}

func TestClassContext(t *testing.T) {
	got := ClassContext([]string{"class Bar {", "  method() {}", "}"}, 1)
	require.NotNil(t, got)
	assert.Equal(t, "Bar", *got)

	got = ClassContext([]string{"export abstract class Base<T> {", "  run() {}"}, 1)
	require.NotNil(t, got)
	assert.Equal(t, "Base", *got)

	assert.Nil(t, ClassContext([]string{"function f() {}", "f();"}, 1))
}

func TestImportedItems(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"import { a, b } from 'm'", []string{"a", "b"}},
		{"import x from 'm'", []string{"x"}},
		{"import * as path from 'path'", []string{"path"}},
		{"import React, { useState, useEffect } from 'react'", []string{"useState", "useEffect"}},
		{"import { a as alias, } from './local'", []string{"a as alias"}},
		{"import type { Props } from './types'", []string{"Props"}},
		{"import 'side-effect'", []string{}},
		{"const fs = require('fs')", []string{}},
	}
	for _, tc := range cases {
		got := ImportedItems(tc.line)
		require.NotNilf(t, got, "ImportedItems(%q)", tc.line)
		assert.Equalf(t, tc.want, got, "ImportedItems(%q)", tc.line)
	}
}

func TestSurroundingLines(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = fmt.Sprintf("l%d", i)
	}
	assert.Equal(t, []string{"l0", "l1", "l2"}, SurroundingLines(lines, 0, 2))
	assert.Equal(t, []string{"l3", "l4", "l5", "l6", "l7"}, SurroundingLines(lines, 5, 2))
	assert.Equal(t, []string{"l7", "l8", "l9"}, SurroundingLines(lines, 9, 2))
	assert.Equal(t, []string{"l5"}, SurroundingLines(lines, 5, 0))
	assert.Equal(t, []string{}, SurroundingLines(lines, 42, 2))
	assert.Equal(t, []string{}, SurroundingLines(nil, 0, 2))

	got := SurroundingLines(lines, 1, 1)
	got[0] = "changed"
	assert.Equal(t, "l0", lines[0], "SurroundingLines must return a copy")
}

func TestContext(t *testing.T) {
	t.Run("import line carries imported items", func(t *testing.T) {
		line := "import { a, b } from 'm'"
		ctx := Context(line, 9, []string{line}, 0)
		assert.False(t, ctx.IsInComment)
		assert.False(t, ctx.IsInString)
		assert.Equal(t, []string{"a", "b"}, ctx.ImportedItems)
		assert.Equal(t, []string{line}, ctx.SurroundingLines)
	})

	t.Run("regular line", func(t *testing.T) {
		lines := []string{
			"class Cart {",
			"  total() {",
			"    return this.items.length; // items count",
			"  }",
			"}",
		}
		ctx := Context(lines[2], 40, lines, 2)
		assert.True(t, ctx.IsInComment)
		assert.Nil(t, ctx.ImportedItems)
		require.NotNil(t, ctx.FunctionName)
		assert.Equal(t, "total", *ctx.FunctionName)
		require.NotNil(t, ctx.ClassName)
		assert.Equal(t, "Cart", *ctx.ClassName)
		assert.Len(t, ctx.SurroundingLines, 5)
	})
}

package analyze

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/phyten/usagex/internal/model"
)

type classifyCase struct {
	name   string
	line   string
	column int
	term   string
	ctx    model.MatchContext
	lang   string
	want   model.Category
}

func classifyCases() []classifyCase {
	return []classifyCase{
		{"comment beats everything", "// call doThing() here", 8, "doThing", model.MatchContext{IsInComment: true, IsInString: true}, "javascript", model.CategoryComment},
		{"string literal", "log('value')", 5, "value", model.MatchContext{IsInString: true}, "javascript", model.CategoryStringLiteral},
		{"es import", "import { useState } from 'react'", 9, "useState", model.MatchContext{}, "javascript", model.CategoryImport},
		{"require import", "const fs = require('fs')", 6, "fs", model.MatchContext{}, "javascript", model.CategoryImport},
		{"python from import", "from os import path", 15, "path", model.MatchContext{}, "python", model.CategoryImport},
		{"export const", "export const LIMIT = 10", 13, "LIMIT", model.MatchContext{}, "javascript", model.CategoryExport},
		{"module.exports", "module.exports = handler", 17, "handler", model.MatchContext{}, "javascript", model.CategoryExport},
		{"export shadows interface", "export interface Props {", 17, "Props", model.MatchContext{}, "typescript", model.CategoryExport},
		{"function declaration", "function doThing(x) {", 9, "doThing", model.MatchContext{}, "javascript", model.CategoryFunctionDefinition},
		{"call shape counts as definition", "  result = compute(a, b)", 11, "compute", model.MatchContext{}, "javascript", model.CategoryFunctionDefinition},
		{"arrow function", "const handler = async (e) => {", 6, "handler", model.MatchContext{}, "javascript", model.CategoryFunctionDefinition},
		{"python lambda", "loader = lambda p: p", 0, "loader", model.MatchContext{}, "python", model.CategoryFunctionDefinition},
		{"lambda line in javascript has an annotation shape", "loader = lambda p: p", 0, "loader", model.MatchContext{}, "javascript", model.CategoryVariableDeclaration},
		{"let assignment", "let count = 0", 4, "count", model.MatchContext{}, "javascript", model.CategoryVariableDeclaration},
		{"declaration keyword covers only the declared name", "const total = x + y", 18, "y", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"annotation shape covers the whole line", "let a: Item = b", 14, "b", model.MatchContext{}, "typescript", model.CategoryVariableDeclaration},
		{"equals right after the term", "x=5", 0, "x", model.MatchContext{}, "javascript", model.CategoryVariableDeclaration},
		{"spaced assignment in javascript", "x = 5", 0, "x", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"comparison", "if (x == y) {", 4, "x", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"strict comparison", "x === y", 0, "x", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"python assignment", "x = 5", 0, "x", model.MatchContext{}, "python", model.CategoryVariableDeclaration},
		{"python assignment line covers every term", "x = foo + bar", 10, "bar", model.MatchContext{}, "python", model.CategoryVariableDeclaration},
		{"python attribute assignment", "self.total = 0", 5, "total", model.MatchContext{}, "python", model.CategoryPropertyAccess},
		{"type annotation", "  count: number;", 2, "count", model.MatchContext{}, "typescript", model.CategoryVariableDeclaration},
		{"bare var declaration", "var total;", 4, "total", model.MatchContext{}, "javascript", model.CategoryVariableDeclaration},
		{"unknown language uses script patterns", "var total;", 4, "total", model.MatchContext{}, "go", model.CategoryVariableDeclaration},
		{"bare var in python is other", "var total;", 4, "total", model.MatchContext{}, "python", model.CategoryOther},
		{"java field assignment", "private int count = 0;", 12, "count", model.MatchContext{}, "java", model.CategoryVariableDeclaration},
		{"java field declaration", "private final Logger log;", 21, "log", model.MatchContext{}, "java", model.CategoryVariableDeclaration},
		{"java field line in javascript", "private final Logger log;", 21, "log", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"java return is not a declaration", "return count;", 7, "count", model.MatchContext{}, "java", model.CategoryVariableUsage},
		{"csharp generic method", "void Foo<T>(T x)", 5, "Foo", model.MatchContext{}, "csharp", model.CategoryFunctionDefinition},
		{"generic method outside java-like languages", "void Foo<T>(T x)", 5, "Foo", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"csharp field", "public string Name;", 14, "Name", model.MatchContext{}, "csharp", model.CategoryVariableDeclaration},
		{"jsx component", "return <Button onClick={go} />", 8, "Button", model.MatchContext{}, "typescriptreact", model.CategoryComponentUsage},
		{"jsx closing tag", "</Button>", 2, "Button", model.MatchContext{}, "javascriptreact", model.CategoryComponentUsage},
		{"component needs a component language", "return <Button onClick={go} />", 8, "Button", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"term is matched literally in tags", "<A+B>", 1, "A+B", model.MatchContext{}, "vue", model.CategoryComponentUsage},
		{"escaped term does not act as a regexp", "<AAB />", 1, "A+B", model.MatchContext{}, "typescriptreact", model.CategoryVariableUsage},
		{"type alias", "type UserId = string", 14, "string", model.MatchContext{}, "typescript", model.CategoryTypeDefinition},
		{"generic type alias", "type Props<T> = Base<T>", 5, "Props", model.MatchContext{}, "typescript", model.CategoryTypeDefinition},
		{"annotation shape precedes type alias", "type Props<T> = { value: T }", 5, "Props", model.MatchContext{}, "typescript", model.CategoryVariableDeclaration},
		{"language id is case insensitive", "type UserId = string", 14, "string", model.MatchContext{}, "TypeScript", model.CategoryTypeDefinition},
		{"type alias outside typescript", "type UserId = string", 14, "string", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"interface", "interface Props {", 10, "Props", model.MatchContext{}, "typescript", model.CategoryInterfaceDefinition},
		{"class", "class UserService {", 6, "UserService", model.MatchContext{}, "javascript", model.CategoryClassDefinition},
		{"java class", "public class Foo {", 13, "Foo", model.MatchContext{}, "java", model.CategoryClassDefinition},
		{"member after dot", "const total = x.value", 16, "value", model.MatchContext{}, "javascript", model.CategoryPropertyAccess},
		{"column on the dot is not the member", "const total = x.value", 15, "value", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"space between dot and member", "a. b", 3, "b", model.MatchContext{}, "javascript", model.CategoryPropertyAccess},
		{"space between receiver and dot", "a .b", 0, "a", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"receiver before dot", "items.map(fn)", 0, "items", model.MatchContext{}, "javascript", model.CategoryPropertyAccess},
		{"bracket access", "obj[key]", 4, "key", model.MatchContext{}, "javascript", model.CategoryPropertyAccess},
		{"plain usage", "  return total + tax", 9, "total", model.MatchContext{}, "javascript", model.CategoryVariableUsage},
		{"keyword without shape", "function  fn", 10, "fn", model.MatchContext{}, "javascript", model.CategoryOther},
	}
}

func TestCategorize(t *testing.T) {
	for _, tc := range classifyCases() {
		t.Run(tc.name, func(t *testing.T) {
			got := Categorize(tc.line, tc.column, tc.term, tc.ctx, []string{tc.line}, 0, tc.lang)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCategorizeWithRule(t *testing.T) {
	cat, name := CategorizeWithRule("function doThing(x) {", 9, "doThing", model.MatchContext{}, nil, 0, "javascript")
	assert.Equal(t, model.CategoryFunctionDefinition, cat)
	assert.Equal(t, "function-definition", name)

	cat, name = CategorizeWithRule("function  fn", 10, "fn", model.MatchContext{}, nil, 0, "javascript")
	assert.Equal(t, model.CategoryOther, cat)
	assert.Equal(t, "default", name)
}

func TestRuleNamesOrder(t *testing.T) {
	names := RuleNames()
	require.Len(t, names, 14)
	assert.Equal(t, []string{
		"comment", "string", "import", "export",
		"function-definition", "variable-declaration", "function-call",
	}, names[:7])
	assert.Equal(t, "variable-usage", names[12])
	assert.Equal(t, "default", names[13])
}

func TestCategorizeNeverReportsFunctionCall(t *testing.T) {
	lines := []string{"doThing(1)", "x.doThing ()", "await doThing\t(a)", "doThing(", "new doThing()"}
	for _, line := range lines {
		for col := 0; col <= len(line); col++ {
			got := Categorize(line, col, "doThing", model.MatchContext{}, nil, 0, "javascript")
			assert.NotEqualf(t, model.CategoryFunctionCall, got, "line %q col %d", line, col)
		}
	}
}

func TestCategorizeIsTotalAndDeterministic(t *testing.T) {
	lines := []string{"", "   ", "const total = x.value", "<div>", "a(b", "}}}", "日本語 の 行", "\t#define X 1"}
	terms := []string{"", "x", "a(b", "[", "日本", "value"}
	langs := []string{"", "javascript", "python", "java", "csharp", "typescriptreact", "unknown"}
	columns := []int{-5, 0, 3, 1000}
	ctxs := []model.MatchContext{{}, {IsInComment: true}, {IsInString: true}}

	for _, line := range lines {
		for _, term := range terms {
			for _, lang := range langs {
				for _, col := range columns {
					for _, ctx := range ctxs {
						first := Categorize(line, col, term, ctx, nil, 0, lang)
						second := Categorize(line, col, term, ctx, nil, 0, lang)
						require.Truef(t, first.Valid(), "invalid category %q for %q/%q/%s/%d", first, line, term, lang, col)
						require.Equal(t, first, second)
					}
				}
			}
		}
	}
}

func TestCategorizeConcurrent(t *testing.T) {
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		term := fmt.Sprintf("name%d", i%4)
		g.Go(func() error {
			line := "const total = x." + term
			got := Categorize(line, 16, term, model.MatchContext{}, nil, 0, "javascript")
			if got != model.CategoryPropertyAccess {
				return fmt.Errorf("%s: got %s", term, got)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

package model

import (
	"fmt"
	"strings"
)

// Category は 1 件のマッチに割り当てる用途の分類です。
type Category string

const (
	CategoryImport              Category = "import"
	CategoryExport              Category = "export"
	CategoryFunctionDefinition  Category = "function-definition"
	CategoryFunctionCall        Category = "function-call"
	CategoryVariableDeclaration Category = "variable-declaration"
	CategoryVariableUsage       Category = "variable-usage"
	CategoryComponentUsage      Category = "component-usage"
	CategoryTypeDefinition      Category = "type-definition"
	CategoryInterfaceDefinition Category = "interface-definition"
	CategoryClassDefinition     Category = "class-definition"
	CategoryPropertyAccess      Category = "property-access"
	CategoryComment             Category = "comment"
	CategoryStringLiteral       Category = "string-literal"
	CategoryOther               Category = "other"
)

// 表示順。Rank はこのスライス内の位置を返す。
var categoryOrder = []Category{
	CategoryImport,
	CategoryExport,
	CategoryFunctionDefinition,
	CategoryFunctionCall,
	CategoryVariableDeclaration,
	CategoryVariableUsage,
	CategoryComponentUsage,
	CategoryTypeDefinition,
	CategoryInterfaceDefinition,
	CategoryClassDefinition,
	CategoryPropertyAccess,
	CategoryComment,
	CategoryStringLiteral,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryImport:              "Imports",
	CategoryExport:              "Exports",
	CategoryFunctionDefinition:  "Function Definitions",
	CategoryFunctionCall:        "Function Calls",
	CategoryVariableDeclaration: "Variable Declarations",
	CategoryVariableUsage:       "Variable Usage",
	CategoryComponentUsage:      "Component Usage",
	CategoryTypeDefinition:      "Type Definitions",
	CategoryInterfaceDefinition: "Interface Definitions",
	CategoryClassDefinition:     "Class Definitions",
	CategoryPropertyAccess:      "Property Access",
	CategoryComment:             "Comments",
	CategoryStringLiteral:       "String Literals",
	CategoryOther:               "Other",
}

// Categories は表示順に並んだ全カテゴリのコピーを返します。
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Rank は表示優先度 (0 が最優先) を返します。未知の値は Other より後ろになります。
func (c Category) Rank() int {
	for i, cat := range categoryOrder {
		if cat == c {
			return i
		}
	}
	return len(categoryOrder)
}

// Label は見出し用の表示名を返します。
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory は大文字小文字と "-" / "_" / 空白の違いを無視してカテゴリ名を解釈します。
func ParseCategory(raw string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	switch norm {
	case "string", "string-literal", "strings":
		return CategoryStringLiteral, nil
	case "call", "function-call", "calls":
		return CategoryFunctionCall, nil
	}
	cat := Category(norm)
	if !cat.Valid() {
		return "", fmt.Errorf("unknown category: %s", raw)
	}
	return cat, nil
}

package layout

import (
	"strings"
)

// productNames 产品线目录，裸产品名覆盖规则据此匹配
var productNames = []string{
	"a3500",
	"a2500",
	"a2300",
	"a3300",
	"e310",
	"e320",
	"5200",
	"7500",
	"750",
	"x2",
	"x5",
}

// bareNamePrefixes 裸产品名匹配允许携带的前缀
var bareNamePrefixes = []string{"the", "vitamix"}

// ProductCatalog 已知产品名集合
type ProductCatalog struct {
	names map[string]string
}

// NewProductCatalog 构建内置产品目录
func NewProductCatalog() *ProductCatalog {
	c := &ProductCatalog{names: make(map[string]string, len(productNames))}
	for _, n := range productNames {
		c.names[strings.ToLower(n)] = n
	}
	return c
}

// Known 判断名称是否为已知产品（大小写不敏感）
func (c *ProductCatalog) Known(name string) bool {
	_, ok := c.names[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names 返回全部产品名
func (c *ProductCatalog) Names() []string {
	out := make([]string, 0, len(productNames))
	out = append(out, productNames...)
	return out
}

// MatchBareProduct 判断查询是否恰为一个产品名（可带 "the"/"vitamix" 前缀）
// 命中返回规范产品名。查询中除产品名与可选前缀外不允许出现其他内容。
func (c *ProductCatalog) MatchBareProduct(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.TrimRight(q, "?!. ")

	fields := strings.Fields(q)
	for len(fields) > 1 {
		stripped := false
		for _, p := range bareNamePrefixes {
			if fields[0] == p {
				fields = fields[1:]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	if len(fields) != 1 {
		return "", false
	}

	name, ok := c.names[fields[0]]
	return name, ok
}

// Package classify 把小写扩展名映射到类别名。
package classify

import (
	"fmt"
	"strings"
)

// DefaultOthers 是无匹配时的兜底类别。
const DefaultOthers = "Others"

// Category 是一个具名分类及其扩展名集合（均为小写、以 '.' 开头）。
type Category struct {
	Name       string   `toml:"name" yaml:"name"`
	Extensions []string `toml:"extensions" yaml:"extensions"`
}

// ExtensionMap 是有序的类别表：声明顺序即匹配优先级（first match wins）。
type ExtensionMap []Category

// Validate 检查类别名非空、同一类别内无重复扩展名、扩展名已规范化。
// 跨类别重复不是错误：前面声明的类别胜出。
func (m ExtensionMap) Validate() error {
	names := make(map[string]struct{}, len(m))
	for i, c := range m {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("categories[%d]：name 不能为空", i)
		}
		// 类别名直接作为 <root> 下的目录名，禁止路径穿越。
		if c.Name == "." || c.Name == ".." || strings.ContainsAny(c.Name, `/\`) {
			return fmt.Errorf("categories[%d]：非法的类别名 %q", i, c.Name)
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("categories[%d]：重复的类别 %q", i, c.Name)
		}
		names[c.Name] = struct{}{}

		seen := make(map[string]struct{}, len(c.Extensions))
		for _, ext := range c.Extensions {
			if ext != NormalizeExt(ext) {
				return fmt.Errorf("类别 %q：扩展名 %q 未规范化（应为 %q）", c.Name, ext, NormalizeExt(ext))
			}
			if _, dup := seen[ext]; dup {
				return fmt.Errorf("类别 %q：重复的扩展名 %q", c.Name, ext)
			}
			seen[ext] = struct{}{}
		}
	}
	return nil
}

// Clone 返回深拷贝，避免调用方事后修改共享底层数组。
func (m ExtensionMap) Clone() ExtensionMap {
	out := make(ExtensionMap, len(m))
	for i, c := range m {
		out[i] = Category{Name: c.Name, Extensions: append([]string(nil), c.Extensions...)}
	}
	return out
}

// NormalizeExt 把用户输入的扩展名规范化为 ".xxx" 小写形式；空串保持为空。
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Classifier 是纯函数式的查表器：构造后不可变，可安全复用。
type Classifier struct {
	order  []string
	byExt  map[string]string
	others string
}

// New 基于 m 构造 Classifier；others 为空时使用 DefaultOthers。
func New(m ExtensionMap, others string) (*Classifier, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	others = strings.TrimSpace(others)
	if others == "" {
		others = DefaultOthers
	}
	if others == "." || others == ".." || strings.ContainsAny(others, `/\`) {
		return nil, fmt.Errorf("非法的兜底类别名 %q", others)
	}

	c := &Classifier{
		order:  make([]string, 0, len(m)),
		byExt:  make(map[string]string, 64),
		others: others,
	}
	for _, cat := range m {
		c.order = append(c.order, cat.Name)
		for _, ext := range cat.Extensions {
			// 先声明者胜出：后续类别不覆盖已有映射。
			if _, ok := c.byExt[ext]; !ok {
				c.byExt[ext] = cat.Name
			}
		}
	}
	return c, nil
}

// Classify 返回 ext 所属类别；ext 应已转小写（含前导 '.'，可为空串）。
// 无匹配时返回兜底类别。
func (c *Classifier) Classify(ext string) string {
	if cat, ok := c.byExt[ext]; ok {
		return cat
	}
	return c.others
}

// Others 返回兜底类别名。
func (c *Classifier) Others() string { return c.others }

// Categories 返回声明顺序的类别名（不含兜底类别）。
func (c *Classifier) Categories() []string {
	return append([]string(nil), c.order...)
}

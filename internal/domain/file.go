package domain

import "strings"

// FileEntry 描述一次扫描得到的文件（只做 stat，不读内容）。
//
// 不变量：
// - AbsPath 必须是 clean + absolute
// - Ext 已转小写，含前导 '.'；无扩展名时为空串
// - 目录只是遍历节点，不会出现在扫描结果中
type FileEntry struct {
	AbsPath string
	RelPath string
	Name    string // base name（含扩展名，保留原大小写）
	Ext     string // ".jpg"
	Size    int64
	ModUnix int64
}

// SplitName 把文件名拆成 stem 与扩展名（保留原大小写）。
//
// 扩展名取最后一个 '.' 起的后缀，但：
// - 以 '.' 开头且没有其他 '.' 的点文件（".bashrc"）没有扩展名
// - 以 '.' 结尾的名字（"file."）没有扩展名
func SplitName(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}

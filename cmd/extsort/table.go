package main

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/extsort/internal/classify"
	"github.com/John-Robertt/extsort/internal/domain"
)

// renderTable 渲染一张圆角表；rightCols 为右对齐的列号（从 1 开始，用于计数列）。
func renderTable(header table.Row, rows []table.Row, rightCols ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.AppendRows(rows)

	configs := make([]table.ColumnConfig, 0, len(rightCols))
	for _, n := range rightCols {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// renderSummary 输出“类别 -> 文件数”表与结果统计表。
func renderSummary(rr domain.RunReport) string {
	names := make([]string, 0, len(rr.Summary.Categories))
	for n := range rr.Summary.Categories {
		names = append(names, n)
	}
	sort.Strings(names)

	catRows := make([]table.Row, 0, len(names))
	for _, n := range names {
		catRows = append(catRows, table.Row{n, rr.Summary.Categories[n]})
	}

	s := rr.Summary
	moved := s.Moved
	movedLabel := "moved"
	if rr.DryRun {
		moved = s.Planned
		movedLabel = "planned"
	}
	outcomeRows := []table.Row{
		{movedLabel, moved},
		{"no movement required", s.NoOp},
		{"collisions (renamed _backup)", s.Collisions},
		{"failed", s.Failed},
		{"total", s.Total},
	}

	var b strings.Builder
	if len(catRows) > 0 {
		b.WriteString(renderTable(table.Row{"Category", "Files"}, catRows, 2))
		b.WriteString("\n")
	}
	b.WriteString(renderTable(table.Row{"Outcome", "Files"}, outcomeRows, 2))
	return b.String()
}

// renderCategories 输出生效的类别表（声明顺序即匹配优先级）。
func renderCategories(m classify.ExtensionMap, others string) string {
	rows := make([]table.Row, 0, len(m)+1)
	for i, c := range m {
		rows = append(rows, table.Row{i + 1, c.Name, strings.Join(c.Extensions, " ")})
	}
	rows = append(rows, table.Row{"-", others, "(anything else)"})
	return renderTable(table.Row{"#", "Category", "Extensions"}, rows, 1)
}

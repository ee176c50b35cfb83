package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/extsort/internal/classify"
	"github.com/John-Robertt/extsort/internal/infra/fsx"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultFileName 是 <path> 下自动发现的配置文件名（可选）。
	DefaultFileName = "extsort.toml"
	// DefaultInfoLog / DefaultErrorLog 相对 cwd 解析。
	DefaultInfoLog  = "info.log"
	DefaultErrorLog = "error.log"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --dry-run=false 必须能覆盖 config.dry_run=true。
type CLIArgs struct {
	Path       string
	ConfigFile string

	DryRun    bool
	DryRunSet bool

	InfoLog    string
	ErrorLog   string
	ReportFile string
}

// FileConfig 对应 extsort.toml / *.yaml 的解析结构。
type FileConfig struct {
	DryRun     *bool               `toml:"dry_run" yaml:"dry_run"`
	InfoLog    string              `toml:"info_log" yaml:"info_log"`
	ErrorLog   string              `toml:"error_log" yaml:"error_log"`
	Others     string              `toml:"others" yaml:"others"`
	Categories []classify.Category `toml:"categories" yaml:"categories"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path   string
	DryRun bool

	// ConfigFile 为实际读取到的配置文件（绝对路径）；未读取时为空。
	ConfigFile string

	InfoLog    string
	ErrorLog   string
	ReportFile string

	Categories classify.ExtensionMap
	Others     string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q not found", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s: config file %q is invalid: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: config file %q is invalid", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试读取 <path>/extsort.toml（可选）
//
// 覆盖优先级（固定）：
// - dry_run：CLI --dry-run/--dry-run=false > config > 默认 false
// - info_log/error_log：CLI > config > 默认（相对 cwd）
// - categories/others：仅由 config 控制；未配置时使用内置表
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	absPath := absCleanFrom(cwdAbs, cli.Path)
	if absPath != "" {
		// 符号链接形式的源目录按真实路径处理（锁键、排除项与扫描保持一致）。
		absPath = fsx.ResolvePath(absPath)
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigFile) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigFile)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else if absPath != "" {
		cfgPath = filepath.Join(absPath, DefaultFileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}
	if !exists {
		cfgPath = ""
	}

	return merge(cwdAbs, absPath, cli, fc, cfgPath)
}

func merge(cwdAbs, absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	} else if fc.DryRun != nil {
		dryRun = *fc.DryRun
	}

	infoLog := firstNonEmpty(cli.InfoLog, fc.InfoLog, DefaultInfoLog)
	errorLog := firstNonEmpty(cli.ErrorLog, fc.ErrorLog, DefaultErrorLog)

	categories := classify.Default()
	if len(fc.Categories) > 0 {
		categories = normalizeCategories(fc.Categories)
	}
	others := strings.TrimSpace(fc.Others)
	if others == "" {
		others = classify.DefaultOthers
	}
	// 与运行期使用同一套校验，配置错误在这里统一映射为 config_invalid。
	if _, err := classify.New(categories, others); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	eff := EffectiveConfig{
		Path:       absPath,
		DryRun:     dryRun,
		ConfigFile: cfgPath,
		InfoLog:    absCleanFrom(cwdAbs, infoLog),
		ErrorLog:   absCleanFrom(cwdAbs, errorLog),
		Categories: categories,
		Others:     others,
	}
	if strings.TrimSpace(cli.ReportFile) != "" {
		eff.ReportFile = absCleanFrom(cwdAbs, cli.ReportFile)
	}
	if eff.InfoLog == eff.ErrorLog {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("info_log and error_log must differ: %q", eff.InfoLog)}
	}
	return eff, nil
}

// normalizeCategories 允许配置中写 "JPG" / ".Jpg" 这类形式，统一成 ".jpg"。
// 重复检查留给 Validate（规范化后才能发现 "jpg" 与 ".JPG" 的重复）。
func normalizeCategories(in []classify.Category) classify.ExtensionMap {
	out := make(classify.ExtensionMap, 0, len(in))
	for _, c := range in {
		exts := make([]string, 0, len(c.Extensions))
		for _, e := range c.Extensions {
			exts = append(exts, classify.NormalizeExt(e))
		}
		out = append(out, classify.Category{Name: strings.TrimSpace(c.Name), Extensions: exts})
	}
	return out
}

// Excluded 返回本次运行自身产生/读取的文件（日志、报告、配置），扫描时必须跳过。
func (e EffectiveConfig) Excluded() []string {
	out := make([]string, 0, 4)
	for _, p := range []string{e.InfoLog, e.ErrorLog, e.ReportFile, e.ConfigFile} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(xs ...string) string {
	for _, x := range xs {
		if strings.TrimSpace(x) != "" {
			return strings.TrimSpace(x)
		}
	}
	return ""
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析配置文件；格式按扩展名决定（.yaml/.yml 为 YAML，其余按 TOML）。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

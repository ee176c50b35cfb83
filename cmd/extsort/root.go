package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/extsort/internal/app/run"
	"github.com/John-Robertt/extsort/internal/config"
	"github.com/John-Robertt/extsort/internal/domain"
	"github.com/John-Robertt/extsort/internal/infra/fsx"
	"github.com/John-Robertt/extsort/internal/infra/lock"
	"github.com/John-Robertt/extsort/internal/infra/logx"
)

type rootFlags struct {
	configFile string
	dryRun     bool
	infoLog    string
	errorLog   string
	reportFile string
	lockDir    string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags

	rootCmd := &cobra.Command{
		Use:   "extsort <source-directory>",
		Short: "Organize files into category folders based on file extensions, e.g. .pdf, .mp3",
		Long: `extsort recursively scans a directory and moves every file into
<source-directory>/<Category>/ according to its extension.

Files with unknown extensions go to "Others". When the destination name is
already taken, the incoming file is renamed with a "_backup" suffix.`,
		Example:       "  extsort ~/Downloads --dry-run\n  extsort ~/Downloads --report report.json",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, args[0], f, stdout, stderr)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "Configuration file (.toml, .yaml); defaults to <source-directory>/extsort.toml when present")
	rootCmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Run in dry run mode, no files will be moved")
	rootCmd.Flags().StringVar(&f.infoLog, "info-log", "", "Info log file (default \"info.log\")")
	rootCmd.Flags().StringVar(&f.errorLog, "error-log", "", "Error log file (default \"error.log\")")
	rootCmd.Flags().StringVar(&f.reportFile, "report", "", "Write a JSON run report to this file")
	rootCmd.Flags().StringVar(&f.lockDir, "lock-dir", "", "Directory for the run lock file (default: system temp dir)")
	_ = rootCmd.Flags().MarkHidden("lock-dir")

	rootCmd.AddCommand(newCategoriesCommand(&f, stdout))
	return rootCmd
}

func runOrganize(cmd *cobra.Command, path string, f rootFlags, stdout, stderr io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return exitWith(exitFailed, "Failed to read current directory: %v", err)
	}

	// 前置条件先于一切：目录不存在时不读配置、不打开日志、不加锁。
	absPath := path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(cwd, absPath)
	}
	if err := run.CheckRoot(absPath); err != nil {
		return exitWith(exitUsage, "%v, exiting...", err)
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Path:       path,
		ConfigFile: f.configFile,
		DryRun:     f.dryRun,
		DryRunSet:  cmd.Flags().Changed("dry-run"),
		InfoLog:    f.infoLog,
		ErrorLog:   f.errorLog,
		ReportFile: f.reportFile,
	})
	if err != nil {
		return exitWith(exitFailed, "Configuration error: %v", err)
	}

	// dry-run 不落盘，也就不需要与其他运行互斥。
	if !eff.DryRun {
		l, err := lock.Acquire(f.lockDir, eff.Path)
		if err != nil {
			if errors.Is(err, lock.ErrBusy) {
				return exitWith(exitFailed, "%v: %s", err, eff.Path)
			}
			return exitWith(exitFailed, "Failed to lock %s: %v", eff.Path, err)
		}
		defer l.Release()
	}

	streams, err := logx.Open(eff.InfoLog, eff.ErrorLog)
	if err != nil {
		return exitWith(exitFailed, "Failed to open log files: %v", err)
	}
	defer streams.Close()

	progressW, interactive := pickProgressWriter(stdout, stderr)
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr, err := run.Execute(cmd.Context(), eff, streams.Logger, obs)
	if err != nil {
		streams.Logger.Error(fmt.Sprintf("Run aborted: %v", err))
		if run.IsPrecondition(err) {
			return exitWith(exitUsage, "%v, exiting...", err)
		}
		return exitWith(exitFailed, "Run aborted: %v\nError has occurred, logging can be found in %s", err, eff.ErrorLog)
	}

	if eff.ReportFile != "" {
		if err := writeReportFile(eff.ReportFile, rr); err != nil {
			emitReport(stdout, stderr, eff, rr)
			return exitWith(exitFailed, "Failed to write report %s: %v", eff.ReportFile, err)
		}
	}

	emitReport(stdout, stderr, eff, rr)

	switch {
	case rr.Interrupted:
		return exitWith(exitInterrupted, "Interrupted by user, exiting... (%d files handled, rerun to continue)", handled(rr))
	case rr.Summary.Failed > 0:
		return &exitError{code: exitFailed}
	default:
		return nil
	}
}

// emitReport 遵守输出契约：
// - stdout 是 TTY：摘要表 + 结束语都写到 stdout
// - stdout 非 TTY：stdout 只输出一个 RunReport JSON；结束语写到 stderr
func emitReport(stdout, stderr io.Writer, eff config.EffectiveConfig, rr domain.RunReport) {
	if isTTY(stdout) {
		fmt.Fprintln(stdout, renderSummary(rr))
		emitSummaryLines(stdout, eff, rr)
		return
	}

	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rr)
	emitSummaryLines(stderr, eff, rr)
}

func emitSummaryLines(w io.Writer, eff config.EffectiveConfig, rr domain.RunReport) {
	switch {
	case rr.Interrupted:
		// 中断提示由调用方统一输出。
	case rr.DryRun:
		fmt.Fprintf(w, "Dry run has finished successfully, logging can be found in %s\n", eff.InfoLog)
	default:
		fmt.Fprintln(w, "Files organization has finished successfully")
	}
	if rr.Summary.HasErrors() {
		fmt.Fprintf(w, "Error has occurred, logging can be found in %s\n", eff.ErrorLog)
	}
}

// handled 统计真正走到 Move 的文件数（不含扫描阶段的问题条目）。
func handled(rr domain.RunReport) int {
	n := 0
	for _, f := range rr.Files {
		if f.ErrorCode != domain.ErrCodeScanFailed {
			n++
		}
	}
	return n
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), b)
}

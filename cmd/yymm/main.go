package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/yymm/internal/app/run"
	"github.com/John-Robertt/yymm/internal/config"
	"github.com/John-Robertt/yymm/internal/domain"
)

// 退出码：0 表示流程正常结束（文件级失败只是警告）；1 为配置/环境错误；2 为参数错误。
const (
	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

type cliOptions struct {
	edited     bool
	dryRun     bool
	configPath string
	jsonLogs   bool
	verbose    bool
}

func execute(args []string, stdout, stderr io.Writer) int {
	code := exitOK
	cmd := newRootCmd(stdout, stderr, &code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "yymm <directory> [target]",
		Short: "按拍摄年月整理照片",
		Long: `yymm 递归扫描 <directory>，按拍摄时间把照片移动到 <target>/YYYY/MM/。

拍摄时间依次取自：内嵌 EXIF -> 保留后缀的 sidecar JSON -> 去掉后缀的 sidecar JSON。
同一目录下的“原图/编辑版”只保留一份（默认保留原图，--edited 保留编辑版）。
target 可省略，此时必须由配置文件（默认 <directory>/yymm.json）提供。`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.CLIArgs{
				Source:        args[0],
				KeepEdited:    opts.edited,
				KeepEditedSet: cmd.Flags().Changed("edited"),
				DryRun:        opts.dryRun,
				DryRunSet:     cmd.Flags().Changed("dryrun"),
				ConfigPath:    opts.configPath,
			}
			if len(args) == 2 {
				cli.Target = args[1]
			}
			*code = runOrganize(cli, opts, stdout, stderr)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.edited, "edited", false, "重复时保留编辑版（默认保留原图）")
	f.BoolVar(&opts.dryRun, "dryrun", false, "只打印计划，不移动任何文件")
	f.StringVar(&opts.configPath, "config", "", "配置文件路径（默认 <directory>/yymm.json，可选）")
	f.BoolVar(&opts.jsonLogs, "json", false, "以 JSON 格式输出日志（stderr）")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func runOrganize(cli config.CLIArgs, opts *cliOptions, stdout, stderr io.Writer) int {
	logger := newLogger(stderr, opts.jsonLogs, opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		logger.Error().Err(err).Msg("读取当前目录失败")
		return exitConfig
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		logger.Error().Err(err).Str("code", config.Code(err)).Msg("配置无效")
		emitReport(stdout, stderr, reportForConfigError(cwd, cli, err))
		return exitConfig
	}
	if eff.ConfigFile != "" {
		logger.Debug().Str("path", eff.ConfigFile).Msg("已读取配置文件")
	}

	rr := run.ExecuteWithObserver(context.Background(), eff, run.Deps{}, newLogObserver(logger))
	emitReport(stdout, stderr, rr)
	return exitOK
}

func reportForConfigError(cwd string, cli config.CLIArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	source := cli.Source
	if !filepath.IsAbs(source) {
		source = filepath.Join(cwd, source)
	}
	rr := domain.RunReport{
		Source:     filepath.Clean(source),
		Target:     cli.Target,
		DryRun:     cli.DryRunSet && cli.DryRun,
		KeepPolicy: domain.PolicyFor(cli.KeepEditedSet && cli.KeepEdited).String(),
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
			Sidecars:  []string{},
		}},
	}
	rr.Finalize()
	return rr
}

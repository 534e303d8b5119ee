package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"s3scanner/internal/aws"
	"s3scanner/internal/config"
	"s3scanner/internal/logging"
	"s3scanner/internal/service/common"
	s3svc "s3scanner/internal/service/s3"
	"s3scanner/internal/service/scan"
)

// runScan は設定に従ってスキャンを組み立てて実行する
func runScan(cmd *cobra.Command, cfg config.Config, inputPath string) error {
	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf(common.OpenErrorFormat, common.ErrorIcon, inputPath, err)
	}
	defer input.Close()

	awsCtx := aws.Context{
		Region:    cfg.DefaultRegion,
		Endpoint:  cfg.Endpoint,
		PathStyle: cfg.PathStyle,
		Timeout:   cfg.Timeout,
	}
	clients, err := aws.NewAwsClients(awsCtx)
	if err != nil {
		return fmt.Errorf(common.SetupErrorFormat, common.ErrorIcon, "AWS設定", err)
	}
	clientFor := func(region string) s3svc.S3API { return clients.S3(region) }

	resultFile, err := scan.OpenResultFile(cfg.OutFile)
	if err != nil {
		return fmt.Errorf(common.OpenErrorFormat, common.ErrorIcon, cfg.OutFile, err)
	}
	defer resultFile.Close()

	opts := []scan.Option{scan.WithLogger(logger)}
	if cfg.Dump {
		dumper, err := s3svc.NewDumper(clientFor, s3svc.DumpOptions{
			Dir:     cfg.DumpDir,
			Workers: cfg.Workers,
			Rate:    cfg.Rate,
			Include: cfg.Include,
		}, logger)
		if err != nil {
			return fmt.Errorf(common.SetupErrorFormat, common.ErrorIcon, "ダンプ処理", err)
		}
		opts = append(opts, scan.WithDumper(dumper))
	}
	if cfg.Progress {
		opts = append(opts, scan.WithProgress(cmd.ErrOrStderr()))
	}

	prober := s3svc.NewProber(clientFor, !cfg.NoSize, logger)
	screen := scan.NewScreen(cmd.OutOrStdout(), !color.NoColor)
	driver := scan.NewDriver(cfg, prober, screen, resultFile, opts...)

	logger.Debug().Str("input", inputPath).Str("out", cfg.OutFile).Str("region", cfg.DefaultRegion).Msg(common.SearchIcon + " スキャン開始")
	summary, err := driver.Run(cmd.Context(), input)
	printSummary(cmd.OutOrStdout(), summary)
	if err != nil {
		return fmt.Errorf(common.ScanErrorFormat, common.ErrorIcon, inputPath, err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%s %d件のバケットを判定できませんでした", common.ErrorIcon, summary.Failed)
	}
	return nil
}

// printSummary はスキャン結果の件数を表形式で表示する
func printSummary(w io.Writer, s scan.Summary) {
	columns := []common.TableColumn{
		{Header: "結果"},
		{Header: "件数", Align: common.AlignRightColumn},
	}
	rows := [][]string{
		{"open", strconv.Itoa(s.Open)},
		{"closed", strconv.Itoa(s.Closed)},
		{"not found", strconv.Itoa(s.NotFound)},
		{"error", strconv.Itoa(s.Failed)},
		{"合計", strconv.Itoa(s.Total())},
	}
	common.PrintTable(w, "スキャン結果", columns, rows)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"s3scanner/internal/config"
	"s3scanner/internal/service/common"
)

const AppName = "s3scanner"

var cfgFile string

// loader は起動時に一度だけ設定を組み立てる
var loader = config.NewLoader()

// errShowHelp は引数なしでヘルプを表示したことを示す（終了コード1で終わる）
var errShowHelp = errors.New("show help")

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   AppName + " [flags] <buckets-file>",
	Short: "S3バケットの存在・公開状態を判定し、公開バケットをダンプするツール",
	Long: `入力ファイルの各行（バケット名・ドメイン名・S3のURL）について、
認証なしでS3バケットの存在と公開状態を判定します。

  [found]   [open]   一覧取得可能なバケット（結果ファイルに必ず出力）
  [found] [closed]   存在するがアクセスできないバケット（-c 指定時のみ結果ファイルに出力）
  [not found]        存在しないバケット

入力ファイルの例:
  mybucket
  flaws.cloud
  flaws.cloud.s3-us-west-2.amazonaws.com

【例】
  ` + AppName + ` buckets.txt
  ` + AppName + ` -c -o found.txt buckets.txt
  ` + AppName + ` -d --dump-dir ./loot --include '**.json' buckets.txt

すべてのフラグは環境変数でも指定できます（例: S3SCANNER_DEFAULT_REGION=eu-west-1）。`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 引数がない場合は短い使い方ではなく全体のヘルプを表示する
		if len(args) == 0 {
			_ = cmd.Help()
			return errShowHelp
		}
		if err := loader.BindFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("❌ フラグの設定に失敗: %w", err)
		}
		cfg, err := loader.Load(cfgFile)
		if err != nil {
			return fmt.Errorf(common.LoadErrorFormat, common.ErrorIcon, "設定", err)
		}
		return runScan(cmd, cfg, args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errShowHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	d := config.Default()
	flags := RootCmd.Flags()

	flags.StringVar(&cfgFile, "config", "", "設定ファイル（YAML）")
	flags.StringP("out-file", "o", d.OutFile, "判定できたバケットを保存するファイル")
	flags.BoolP("include-closed", "c", d.IncludeClosed, "存在するがアクセスできないバケットも結果ファイルに出力")
	flags.StringP("default-region", "r", d.DefaultRegion, "入力からリージョンを特定できない場合のAWSリージョン")
	flags.BoolP("dump", "d", d.Dump, "公開バケットの中身をすべてダウンロード")

	flags.String("dump-dir", d.DumpDir, "ダウンロード先ディレクトリ（バケットごとにサブディレクトリを作成）")
	flags.IntP("workers", "w", d.Workers, "ダウンロードの同時実行数")
	flags.Float64("rate", d.Rate, "1秒あたりのダウンロード数の上限（0は無制限）")
	flags.StringSlice("include", nil, "ダウンロード対象キーのglobパターン（複数指定可、'**' で任意の階層）")
	flags.String("endpoint", d.Endpoint, "S3互換エンドポイントのURL")
	flags.Bool("path-style", d.PathStyle, "パススタイルでアクセス")
	flags.Bool("no-size", d.NoSize, "公開バケットのサイズ集計を行わない")
	flags.Bool("progress", d.Progress, "ダンプ中の進捗を表示")
	flags.Duration("timeout", d.Timeout, "HTTPリクエストのタイムアウト（0は無制限）")
	flags.BoolP("verbose", "v", d.Verbose, "詳細ログを表示")
}

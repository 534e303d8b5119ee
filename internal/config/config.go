// Package config はスキャン設定の定義と読み込みを行う
//
// 設定はコマンドラインフラグ・環境変数（S3SCANNER_ プレフィックス）・YAMLファイルの
// 順で優先される。読み込んだ Config は起動時に一度だけ作り、各コンポーネントに渡す。
package config

import "time"

// DefaultRegion はリージョンを特定できない場合に使うリージョン
const DefaultRegion = "us-west-1"

// Config はスキャン全体の設定
type Config struct {
	OutFile       string        `mapstructure:"out-file" validate:"required"`
	IncludeClosed bool          `mapstructure:"include-closed"`
	DefaultRegion string        `mapstructure:"default-region" validate:"required"`
	Dump          bool          `mapstructure:"dump"`
	DumpDir       string        `mapstructure:"dump-dir" validate:"required"`
	Workers       int           `mapstructure:"workers" validate:"min=1,max=64"`
	Rate          float64       `mapstructure:"rate" validate:"min=0"`
	Include       []string      `mapstructure:"include"`
	Endpoint      string        `mapstructure:"endpoint" validate:"omitempty,url"`
	PathStyle     bool          `mapstructure:"path-style"`
	NoSize        bool          `mapstructure:"no-size"`
	Progress      bool          `mapstructure:"progress"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"min=0"`
	Verbose       bool          `mapstructure:"verbose"`
}

// Default はデフォルト値の設定を返す
func Default() Config {
	return Config{
		OutFile:       "./buckets.txt",
		DefaultRegion: DefaultRegion,
		DumpDir:       "./buckets",
		Workers:       1,
	}
}

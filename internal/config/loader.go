package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix は環境変数のプレフィックス（例: S3SCANNER_DEFAULT_REGION）
const EnvPrefix = "S3SCANNER"

// Loader はフラグ・環境変数・設定ファイルから Config を組み立てる
type Loader struct {
	viper     *viper.Viper
	validator *validator.Validate
}

// NewLoader は新しいLoaderを作成
func NewLoader() *Loader {
	l := &Loader{
		viper:     viper.New(),
		validator: validator.New(),
	}
	l.viper.SetEnvPrefix(EnvPrefix)
	l.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	l.viper.AutomaticEnv()
	l.setDefaults()
	return l
}

// BindFlags はコマンドラインフラグを設定キーに対応付ける
// フラグ名と設定キーは同じ（例: --out-file → out-file）
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	return l.viper.BindPFlags(flags)
}

// Load は設定を読み込んで検証する
// configFile が空の場合は設定ファイルを読まない
func (l *Loader) Load(configFile string) (Config, error) {
	if configFile != "" {
		l.viper.SetConfigFile(configFile)
		if err := l.viper.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("設定の変換に失敗: %w", err)
	}

	if err := l.validator.Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Config{}, fmt.Errorf("設定が不正です: %s", describe(verrs))
		}
		return Config{}, fmt.Errorf("設定の検証に失敗: %w", err)
	}
	return cfg, nil
}

// setDefaults はフラグを使わない場合のデフォルト値を登録
func (l *Loader) setDefaults() {
	d := Default()
	l.viper.SetDefault("out-file", d.OutFile)
	l.viper.SetDefault("include-closed", d.IncludeClosed)
	l.viper.SetDefault("default-region", d.DefaultRegion)
	l.viper.SetDefault("dump", d.Dump)
	l.viper.SetDefault("dump-dir", d.DumpDir)
	l.viper.SetDefault("workers", d.Workers)
	l.viper.SetDefault("rate", d.Rate)
	l.viper.SetDefault("include", []string{})
	l.viper.SetDefault("endpoint", d.Endpoint)
	l.viper.SetDefault("path-style", d.PathStyle)
	l.viper.SetDefault("no-size", d.NoSize)
	l.viper.SetDefault("progress", d.Progress)
	l.viper.SetDefault("timeout", d.Timeout)
	l.viper.SetDefault("verbose", d.Verbose)
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, ", ")
}

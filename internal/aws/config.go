package aws

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
)

// LoadAwsConfig は匿名アクセス用のAWS設定を読み込む
// 認証情報は使わず、SDKのリトライは無効化する
// HTTPクライアントは BuildableClient のまま渡す（AWS_CA_BUNDLE などのCA設定をSDKが反映できるように）
func LoadAwsConfig(ctx Context) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
		config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(ctx.Timeout)),
	}

	if ctx.Region != "" {
		opts = append(opts, config.WithRegion(ctx.Region))
	}
	if ctx.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(ctx.Endpoint))
	}
	return config.LoadDefaultConfig(context.Background(), opts...)
}

// GetConfig は遅延初期化でAWS設定を取得（初回のみ読み込み処理実行）
func (ctx *Context) GetConfig() (aws.Config, error) {
	if ctx.config == nil {
		cfg, err := LoadAwsConfig(*ctx)
		if err != nil {
			return aws.Config{}, err
		}
		ctx.config = &cfg
	}
	return *ctx.config, nil
}

// newHTTPClient はリダイレクトを追従しないHTTPクライアントを作成
// 301/307 のリージョン不一致応答をそのまま判定に使うため
// トランスポートは読み込み済み設定のもの（CAバンドル反映済み）を使う
func newHTTPClient(cfg aws.Config, timeout time.Duration) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if bc, ok := cfg.HTTPClient.(*awshttp.BuildableClient); ok {
		transport = bc.GetTransport()
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

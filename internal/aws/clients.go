package aws

import (
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Clients はAWS設定とリージョンごとのS3クライアントを管理
type Clients struct {
	cfg        aws.Config
	pathStyle  bool
	httpClient *http.Client // リダイレクトを追従しない（全リージョン共通）

	mu sync.Mutex
	s3 map[string]*s3.Client // リージョン別に遅延初期化
}

// NewAwsClients は匿名アクセス用のAWS設定を読み込んでクライアント管理構造体を作成
func NewAwsClients(ctx Context) (*Clients, error) {
	cfg, err := ctx.GetConfig()
	if err != nil {
		return nil, err
	}

	return &Clients{
		cfg:        cfg,
		pathStyle:  ctx.PathStyle,
		httpClient: newHTTPClient(cfg, ctx.Timeout),
		s3:         make(map[string]*s3.Client),
	}, nil
}

// S3 は遅延初期化で指定リージョン向けのS3クライアントを取得
func (c *Clients) S3(region string) *s3.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.s3[region]; ok {
		return client
	}
	client := s3.NewFromConfig(c.cfg, func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
		o.UsePathStyle = c.pathStyle
		o.HTTPClient = c.httpClient
	})
	c.s3[region] = client
	return client
}

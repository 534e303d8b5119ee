package aws

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Context はS3クライアント生成に必要な接続条件を保持
type Context struct {
	Region    string        // 既定リージョン
	Endpoint  string        // S3互換エンドポイント（空ならAWS本番）
	PathStyle bool          // パススタイルでアクセスするか
	Timeout   time.Duration // HTTPクライアントのタイムアウト（0は無制限）
	config    *aws.Config   // AWS設定のキャッシュ（非公開）
}

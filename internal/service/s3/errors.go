package s3

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownResponse は既知の判定に当てはまらないHTTPステータスを受け取ったことを示す
	ErrUnknownResponse = errors.New("s3: unknown response")

	// ErrRedirectLoop はリージョン補正後の再判定でも再びリダイレクトされたことを示す
	ErrRedirectLoop = errors.New("s3: redirect loop")

	// ErrInvalidObjectKey はオブジェクトキーをローカルパスに変換できないことを示す
	ErrInvalidObjectKey = errors.New("s3: invalid object key")
)

// BucketError はバケット操作の失敗をバケット・リージョン・キーの情報付きで表す
type BucketError struct {
	Op     string // "probe", "list", "download" など
	Bucket string
	Region string
	Key    string
	Err    error
}

func (e *BucketError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Region != "" {
		return fmt.Sprintf("s3.%s %s:%s: %v", e.Op, e.Bucket, e.Region, e.Err)
	}
	return fmt.Sprintf("s3.%s %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *BucketError) Unwrap() error {
	return e.Err
}

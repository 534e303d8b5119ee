package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"s3scanner/internal/service/common"
)

// DumpOptions はダンプ処理の設定
type DumpOptions struct {
	Dir     string   // 保存先のルートディレクトリ（バケットごとにサブディレクトリを作る）
	Workers int      // 同時ダウンロード数
	Rate    float64  // 1秒あたりのダウンロード開始数（0は無制限）
	Include []string // 対象キーのglobパターン（空なら全件）
}

// Dumper は公開バケットの全オブジェクトをローカルに保存する
type Dumper struct {
	clients ClientFunc
	dir     string
	workers int
	limiter *rate.Limiter
	filter  *common.KeyFilter
	logger  zerolog.Logger
}

// NewDumper はDumperを作成する
func NewDumper(clients ClientFunc, opts DumpOptions, logger zerolog.Logger) (*Dumper, error) {
	filter, err := common.NewKeyFilter(opts.Include)
	if err != nil {
		return nil, err
	}

	d := &Dumper{
		clients: clients,
		dir:     opts.Dir,
		workers: max(opts.Workers, 1),
		filter:  filter,
		logger:  logger.With().Str("component", "dumper").Logger(),
	}
	if opts.Rate > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	return d, nil
}

// Dump はバケット内のオブジェクトを <Dir>/<bucket>/<key> に保存する
//
// 1件ごとの失敗は DumpResult に記録して処理を続ける。onResult は1件ごとに
// 直列に呼ばれる。一覧取得が途中で失敗した場合は、取得済みのオブジェクトを
// 処理し終えてからそのエラーを返す。
func (d *Dumper) Dump(ctx context.Context, target BucketTarget, onResult func(DumpResult)) (DumpStats, error) {
	log := d.logger.With().Str("bucket", target.Name).Str("region", target.Region).Logger()
	client := d.clients(target.Region)
	root := filepath.Join(d.dir, target.Name)

	var (
		stats   DumpStats
		mu      sync.Mutex
		listErr error
	)
	executor := common.NewParallelExecutor(d.workers)

	for obj, err := range Objects(ctx, client, target.Name) {
		if err != nil {
			listErr = err
			break
		}
		if !d.filter.Match(obj.Key) {
			continue
		}

		executor.Execute(func() {
			result := d.download(ctx, client, target.Name, root, obj)
			if result.Failed() {
				log.Debug().Err(result.Err).Str("key", obj.Key).Msg("ダウンロード失敗")
			}

			mu.Lock()
			defer mu.Unlock()
			stats.add(result)
			if onResult != nil {
				onResult(result)
			}
		})
	}
	executor.Wait()

	log.Debug().
		Int("downloaded", stats.Downloaded).
		Int("failed", stats.Failed).
		Msg("ダンプ完了")
	return stats, listErr
}

// download はオブジェクト1件を保存する
func (d *Dumper) download(ctx context.Context, client S3API, bucket, root string, obj S3Object) DumpResult {
	result := DumpResult{Key: obj.Key}
	objectErr := func(err error) DumpResult {
		result.Err = &BucketError{Op: "download", Bucket: bucket, Key: obj.Key, Err: err}
		return result
	}

	path, err := objectPath(root, obj.Key)
	if err != nil {
		return objectErr(err)
	}
	result.Path = path

	// "/" で終わるキーはディレクトリとして作成するだけ
	if strings.HasSuffix(obj.Key, "/") {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return objectErr(err)
		}
		return result
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return objectErr(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return objectErr(fmt.Errorf("ディレクトリ作成に失敗: %w", err))
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return objectErr(err)
	}
	defer resp.Body.Close()

	n, err := writeFile(path, resp.Body)
	result.Size = n
	if err != nil {
		return objectErr(err)
	}

	// 更新日時はS3上の LastModified に合わせる
	if !obj.LastModified.IsZero() {
		if err := os.Chtimes(path, obj.LastModified, obj.LastModified); err != nil {
			return objectErr(err)
		}
	}

	if mt, err := mimetype.DetectFile(path); err == nil {
		result.ContentType = mt.String()
	}
	return result
}

// objectPath はオブジェクトキーを root 配下のローカルパスに変換する
// root の外を指すキー（".." を含むものなど）は ErrInvalidObjectKey
func objectPath(root, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidObjectKey)
	}
	root = filepath.Clean(root)
	path := filepath.Join(root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidObjectKey, key, root)
	}
	return path, nil
}

func writeFile(path string, body io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

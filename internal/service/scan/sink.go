package scan

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"

	"s3scanner/internal/service/common"
	s3svc "s3scanner/internal/service/s3"
)

// Status は画面・ファイルに出力する判定結果
type Status int

const (
	StatusOpen     Status = iota // 公開バケット
	StatusClosed                 // 存在するがアクセス不可
	StatusNotFound               // 存在しない
	StatusError                  // 判定不能
)

// ScanRecord は出力先に書き込む1件分の結果
type ScanRecord struct {
	Bucket string
	Region string
	Status Status
	Detail string // サイズ情報やエラー内容
}

// Line は結果ファイルの1行（"バケット名:リージョン"）を返す
func (r ScanRecord) Line() string {
	return r.Bucket + ":" + r.Region
}

// ScreenSink は画面出力先
type ScreenSink interface {
	Record(rec ScanRecord)
	Object(res s3svc.DumpResult)
}

// FileSink は結果ファイル出力先
type FileSink interface {
	Append(rec ScanRecord) error
}

// tagWidth は "[found] [closed]" が収まる幅
const tagWidth = 16

// Screen は色付きで1件1行を出力する ScreenSink
type Screen struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time

	open     *color.Color
	closed   *color.Color
	notFound *color.Color
	failure  *color.Color
	stamp    *color.Color
}

// NewScreen は Screen を作成する。colored が false なら色を付けない
func NewScreen(w io.Writer, colored bool) *Screen {
	s := &Screen{
		w:        w,
		now:      time.Now,
		open:     color.New(color.FgBlue),
		closed:   color.New(color.FgYellow),
		notFound: color.New(color.FgRed),
		failure:  color.New(color.FgRed, color.Bold),
		stamp:    color.New(color.FgWhite),
	}
	if !colored {
		for _, c := range []*color.Color{s.open, s.closed, s.notFound, s.failure, s.stamp} {
			c.DisableColor()
		}
	}
	return s
}

// Record は判定結果を1行出力する
func (s *Screen) Record(rec ScanRecord) {
	var (
		c    *color.Color
		line string
	)
	switch rec.Status {
	case StatusOpen:
		c = s.open
		line = fmt.Sprintf("%s : %s - %s", common.AlignRight("[found]   [open]", tagWidth), rec.Line(), rec.Detail)
	case StatusClosed:
		c = s.closed
		line = fmt.Sprintf("%s : %s", common.AlignRight("[found] [closed]", tagWidth), rec.Line())
	case StatusNotFound:
		c = s.notFound
		line = fmt.Sprintf("%s : %s", common.AlignRight("[not found]", tagWidth), rec.Bucket)
		if rec.Detail != "" {
			line += " - " + rec.Detail
		}
	default:
		c = s.failure
		line = fmt.Sprintf("%s : %s - %s", common.AlignRight("[error]", tagWidth), rec.Line(), rec.Detail)
	}
	s.println(c, line)
}

// Object はダンプしたオブジェクト1件を出力する
func (s *Screen) Object(res s3svc.DumpResult) {
	if res.Failed() {
		s.println(s.failure, fmt.Sprintf("    %s %s : %v", common.ErrorIcon, res.Key, res.Err))
		return
	}
	detail := common.FormatBytes(res.Size)
	if res.ContentType != "" {
		detail += ", " + res.ContentType
	}
	s.println(s.open, fmt.Sprintf("    %s %s -> %s (%s)", common.SuccessIcon, res.Key, res.Path, detail))
}

func (s *Screen) println(c *color.Color, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s   %s\n", s.stamp.Sprint(s.now().Format("2006-01-02 15:04:05")), c.Sprint(line))
}

// ResultFile は "バケット名:リージョン" を1行ずつ追記する FileSink
type ResultFile struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// OpenResultFile は結果ファイルを追記モードで開く（なければ作成）
func OpenResultFile(path string) (*ResultFile, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &ResultFile{w: f, c: f}, nil
}

// NewResultWriter は任意の io.Writer に書き込む ResultFile を作成する
func NewResultWriter(w io.Writer) *ResultFile {
	return &ResultFile{w: w}
}

// Append は1行追記する
func (r *ResultFile) Append(rec ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintln(r.w, rec.Line())
	return err
}

// Close はファイルを閉じる
func (r *ResultFile) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

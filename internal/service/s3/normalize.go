package s3

import (
	"regexp"
	"strings"
)

const (
	hostSuffix = ".amazonaws.com"
	s3Marker   = ".s3"
)

// regionPattern はリージョン名の形（us-west-2, us-gov-west-1, ap-southeast-2 など）
var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-[0-9]+$`)

// Normalize は入力行をバケット名とリージョンに分解する
//
// 受け付ける形式:
//
//	mybucket                                   バケット名
//	flaws.cloud                                ドメイン名（バケット名として扱う）
//	flaws.cloud.s3-us-west-2.amazonaws.com     仮想ホスト形式のURL
//	https://s3.eu-west-1.amazonaws.com/bucket  パス形式のURL
//
// リージョンが読み取れない場合は defaultRegion を使う。
// ".amazonaws.com" を含まない入力はそのままバケット名として返す。
// ".amazonaws.com" を含むがバケット名を取り出せない入力は空の名前を返し、判定時に NotFound になる。
func Normalize(rawLine, defaultRegion string) BucketTarget {
	line := strings.TrimSpace(rawLine)
	target := BucketTarget{Name: line, Region: defaultRegion}

	if !strings.Contains(line, hostSuffix) {
		return target
	}

	// URLからバケット名を取り出せない場合でもホスト名は残さない
	target.Name = ""

	host, path := splitHostPath(line)
	end := strings.Index(host, hostSuffix)
	if end < 0 {
		return target
	}
	prefix := host[:end]

	// 仮想ホスト形式: <bucket>.s3[-.]<region>
	if i := strings.LastIndex(prefix, s3Marker); i > 0 {
		target.Name = prefix[:i]
		target.Region = regionOrDefault(prefix[i+len(s3Marker):], defaultRegion)
		return target
	}

	// パス形式: s3[-.]<region>/<bucket>
	if strings.HasPrefix(prefix, "s3") {
		bucket, _, _ := strings.Cut(path, "/")
		if !strings.Contains(bucket, hostSuffix) {
			target.Name = bucket
		}
		target.Region = regionOrDefault(prefix[len("s3"):], defaultRegion)
	}
	return target
}

// splitHostPath はスキームを除いてホスト部とパス部に分ける
func splitHostPath(line string) (host, path string) {
	lower := strings.ToLower(line)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			line = line[len(scheme):]
			break
		}
	}
	host, path, _ = strings.Cut(line, "/")
	return host, path
}

// regionOrDefault は ".s3" 直後の文字列からリージョンを取り出す
// "-us-west-2" / ".us-west-2" / "-website-us-east-1" / ".dualstack.eu-west-1" などを想定
// "-accelerate" のようにリージョンの形でないものは defaultRegion（誤りはリダイレクトで補正される）
func regionOrDefault(segment, defaultRegion string) string {
	region := strings.TrimLeft(segment, "-.")
	for _, qualifier := range []string{"website-", "website.", "dualstack."} {
		region = strings.TrimPrefix(region, qualifier)
	}
	if region == "external-1" {
		return "us-east-1"
	}
	if !regionPattern.MatchString(region) {
		return defaultRegion
	}
	return region
}

package common

import (
	"fmt"

	"github.com/gobwas/glob"
)

// KeyFilter はオブジェクトキーをglobパターンで絞り込む
// "/" を区切り文字として扱うため "*" は階層をまたがず、"**" は任意の階層にマッチする
type KeyFilter struct {
	patterns []glob.Glob
}

// NewKeyFilter はパターン一覧からKeyFilterを作成
// パターンが空の場合はすべてのキーにマッチする
func NewKeyFilter(patterns []string) (*KeyFilter, error) {
	f := &KeyFilter{}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("不正なパターン %q: %w", pattern, err)
		}
		f.patterns = append(f.patterns, g)
	}
	return f, nil
}

// Match はキーがいずれかのパターンにマッチするかを返す
func (f *KeyFilter) Match(key string) bool {
	if f == nil || len(f.patterns) == 0 {
		return true
	}
	for _, g := range f.patterns {
		if g.Match(key) {
			return true
		}
	}
	return false
}

package common

// TableColumn はテーブルの列定義
type TableColumn struct {
	Header string
	Align  Align // 数値列は AlignRightColumn
}

// Align は列の寄せ方向
type Align int

const (
	AlignLeftColumn Align = iota
	AlignRightColumn
)

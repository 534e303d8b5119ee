package common

// メッセージの絵文字定数
const (
	ErrorIcon   = "❌"
	SuccessIcon = "✅"
	WarningIcon = "⚠️"
	SearchIcon  = "🔍"
	ProcessIcon = "🔄"
	PartyIcon   = "🎉"
)

// エラーメッセージフォーマット定数
const (
	LoadErrorFormat  = "%s %s の読み込みに失敗: %w"
	OpenErrorFormat  = "%s %s のオープンに失敗: %w"
	ScanErrorFormat  = "%s %s のスキャン中にエラー: %w"
	SetupErrorFormat = "%s %s の初期化に失敗: %w"
)

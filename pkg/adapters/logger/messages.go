package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Scan messages
		"scan complete: %d added, %d skipped of %d found": "スキャン完了: %d 件追加, %d 件スキップ (全 %d 件)",
		"skipping %s: %v":               "%s をスキップ: %v",
		"store %s: %v":                  "%s の保存に失敗: %v",
		"thumbnail for %s: %v":          "%s のサムネイル生成に失敗: %v",
		"write thumbnail for %s: %v":    "%s のサムネイル書き込みに失敗: %v",
		"sprite sheet for %s: %v":       "%s のスプライトシート生成に失敗: %v",
		"write sprite sheet for %s: %v": "%s のスプライトシート書き込みに失敗: %v",

		// Hover scrub messages
		"open for scrub failed: %s: %v":             "スクラブ用のオープンに失敗: %s: %v",
		"scrub decode produced no frame: %s @ %.3f": "スクラブのデコードでフレームなし: %s @ %.3f",

		// Playback messages
		"seek to %.3fs failed: %v":           "%.3fs へのシークに失敗: %v",
		"at %.2fs of %.2fs (%d frames)":      "%.2fs / %.2fs (%d フレーム)",
		"played %d frames, stopped at %.2fs": "%d フレームを再生, %.2fs で停止",
	})
}

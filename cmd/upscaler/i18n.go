package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Upscale movies with super-resolution models.": "超解像モデルで動画をアップスケールします。",

		// Commands
		"Upscale a movie with a super-resolution model.": "超解像モデルで動画をアップスケール",
		"List the models available in a directory.":      "ディレクトリ内の利用可能なモデルを一覧表示",
		"Show version information.":                      "バージョン情報を表示",
		"upscaler version %s":                            "upscaler バージョン %s",

		// Progress and results
		"Frame: %d":             "フレーム: %d",
		"no models found in %s": "%s にモデルが見つかりません",

		// Summary content
		"Upscale Summary":    "アップスケール概要",
		"Generated":          "生成日時",
		"Run ID":             "実行ID",
		"Result":             "実行結果",
		"Item":               "項目",
		"Value":              "値",
		"Status":             "状態",
		"Completed":          "完了",
		"Failed":             "失敗",
		"Stopped early":      "途中で停止",
		"Error":              "エラー",
		"Frames Written":     "書き出しフレーム数",
		"Elapsed":            "経過時間",
		"Throughput":         "処理速度",
		"Video":              "動画",
		"Input":              "入力",
		"Output":             "出力",
		"File":               "ファイル",
		"Resolution":         "解像度",
		"Frame Rate":         "フレームレート",
		"Codec":              "コーデック",
		"unknown":            "不明",
		"File Size":          "ファイルサイズ",
		"Settings":           "設定",
		"Algorithm":          "アルゴリズム",
		"Scale":              "倍率",
		"Parallel Instances": "並列インスタンス数",
		"CRF":                "CRF値",
		"default":            "デフォルト",
	})
}

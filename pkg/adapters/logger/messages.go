package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration (info)
		"Starting run %s":                         "実行 %s を開始します",
		"Loaded %s x%d model for %d instances":    "%s x%d モデルを %d インスタンス分読み込みました",
		"Input %dx%d at %.2f fps, output %dx%d":   "入力 %dx%d (%.2f fps)、出力 %dx%d",
		"Output saved to %s (%d frames in %s)":    "出力を %s に保存しました (%d フレーム、%s)",
		"Stopped after %d frames":                 "%d フレームで停止しました",
		"Interrupted, finishing queued frames...": "中断されました。キュー内のフレームを処理中...",
		"Summary saved to %s":                     "サマリーを %s に保存しました",

		// Pipeline
		"Starting pipeline with %d workers":          "%d ワーカーでパイプラインを開始します",
		"Pipeline stopped: %d submitted, %d written": "パイプライン停止: 投入 %d、書き出し %d",
		"Source exhausted after %d items":            "%d 件で入力が終了しました",
		"Stopped by callback at item %d":             "%d 件目でコールバックにより停止しました",
		"Item %d dispatched to slot %d":              "%d 件目をスロット %d に割り当てました",
		"End of stream reached":                      "ストリーム終端に到達しました",

		// ffmpeg
		"Running %s %s":                    "%s %s を実行中",
		"Decoding %dx%d %s at %.3f fps":    "%dx%d %s (%.3f fps) をデコード中",
		"Decoder finished after %d frames": "%d フレームでデコードが完了しました",
		"Encoder finished after %d frames": "%d フレームでエンコードが完了しました",
		"Removed partial output %s":        "不完全な出力 %s を削除しました",

		// Warnings
		"Ignoring %d degree display rotation of input":       "入力の %d 度の表示回転を無視します",
		"Pipeline failing: %s":                               "パイプラインでエラーが発生しました: %s",
		"Source failed at item %d: %s":                       "%d 件目の読み込みに失敗しました: %s",
		"Unknown frame rate, using %.0f fps":                 "フレームレートが不明なため %.0f fps を使用します",
		"Container probe failed, falling back to ffmpeg: %s": "コンテナ解析に失敗したため ffmpeg で解析します: %s",
		"Failed to discard output: %s":                       "出力の破棄に失敗しました: %s",
		"Failed to save debug frame %d: %s":                  "デバッグフレーム %d の保存に失敗しました: %s",
		"Failed to save run metadata: %s":                    "実行メタデータの保存に失敗しました: %s",

		// Errors
		"Failed to open input: %s":       "入力を開けませんでした: %s",
		"Failed to open output: %s":      "出力を開けませんでした: %s",
		"Upscale failed at frame %d: %s": "フレーム %d のアップスケールに失敗しました: %s",
		"Pipeline failed: %s":            "パイプラインが失敗しました: %s",
		"Failed to finalize output: %s":  "出力の確定に失敗しました: %s",
		"Failed to write summary: %s":    "サマリーの書き込みに失敗しました: %s",
	})
}

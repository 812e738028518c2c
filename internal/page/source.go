package page

import (
	"io/fs"
	"log"
	"os"
)

// OpenFS はテンプレートを読み込むファイルシステムを返す
// dir がディレクトリとして存在すればそれを使い、なければ fallback を使う。
// fallback は変更されないため、自動リロードの効果はない
func OpenFS(dir string, fallback fs.FS) fs.FS {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return os.DirFS(dir)
	}

	if fallback == nil {
		// 描画時に ErrTemplateNotFound として扱われる
		return os.DirFS(dir)
	}

	log.Printf("テンプレートディレクトリ %s が見つからないため、埋め込みテンプレートを使用します", dir)
	return fallback
}

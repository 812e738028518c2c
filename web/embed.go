// Package web は同梱のテンプレートリソースを提供します。
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed all:templates
var embedFS embed.FS

// TemplatesFS は埋め込まれたテンプレートのファイルシステムを返す
func TemplatesFS() fs.FS {
	// templates のサブディレクトリを取得
	templatesFS, err := fs.Sub(embedFS, "templates")
	if err != nil {
		log.Fatalf("埋め込みテンプレートファイルシステムの作成に失敗: %v", err)
	}
	return templatesFS
}

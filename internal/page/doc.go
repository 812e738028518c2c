// Package page は、ルートで返すテンプレートリソースの描画を担当します。
//
// 責務:
//   - テンプレートディレクトリからテンプレートセットを読み込む
//   - 固定のテンプレート名で可視化ページを描画する
//   - 自動リロードの有無に応じて、毎回読み直すか一度だけ読むかを切り替える
//
// 仕様:
//   - テンプレートエンジンは html/template（ginのHTML描画と同じもの）
//   - テンプレートが見つからない場合は ErrTemplateNotFound を返す
//   - 構文エラーや実行時エラーは ErrTemplateInvalid を返す
//   - 描画データは起動時に一度だけ作られ、以後変更されない
package page

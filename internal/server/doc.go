// Package server は、可視化ページを配信するHTTPサーバーを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// ミドルウェアの構成、管理用エンドポイントの公開を担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - "/" へのGETで可視化ページを返す（唯一のルート）
//   - アクセスログ、リクエストID、セキュリティヘッダー、トレース、メトリクス
//   - 管理用リスナーでのヘルスチェックとメトリクスの公開
//
// 仕様:
//   - ルーターはginを使用
//   - "/" 以外のパスはginのデフォルトの404、"/" への他のメソッドは405
//   - 描画エラーは500（デバッグ時のみ詳細を返す）
//   - グレースフルシャットダウンに対応
package server

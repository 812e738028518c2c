package page

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"algovis/internal/config"
	"algovis/web"
)

// countingObserver は描画結果を記録するテスト用の Observer
type countingObserver struct {
	mu      sync.Mutex
	parses  int
	renders map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{renders: map[string]int{}}
}

func (o *countingObserver) ObserveParse() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.parses++
}

func (o *countingObserver) ObserveRender(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renders[result]++
}

func testTemplatesConfig(autoReload bool) config.TemplatesConfig {
	cfg := config.Default().Templates
	cfg.AutoReload = autoReload
	return cfg
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":      {Data: []byte(`<h1>{{.Title}}</h1>{{template "footer" .}}`)},
		"footer.tmpl":     {Data: []byte(`{{define "footer"}}<p>{{len .Algorithms}} algorithms</p>{{end}}`)},
		"notes.txt":       {Data: []byte(`{{ not a template`)},
		"assets/logo.svg": {Data: []byte(`<svg/>`)},
	}
}

// TestRenderOutput は描画結果をテストする
func TestRenderOutput(t *testing.T) {
	r := NewRenderer(testFS(), testTemplatesConfig(true), NewData("Visualizer"))

	got, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("描画に失敗しました: %v", err)
	}

	want := "<h1>Visualizer</h1><p>3 algorithms</p>"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("描画結果が一致しません (-want +got):\n%s", diff)
	}
}

// TestRenderEscapesData はデータがHTMLエスケープされることをテストする
func TestRenderEscapesData(t *testing.T) {
	r := NewRenderer(testFS(), testTemplatesConfig(true), NewData("<script>x</script>"))

	got, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("描画に失敗しました: %v", err)
	}
	if strings.Contains(string(got), "<script>") {
		t.Errorf("タイトルがエスケープされていません: %s", got)
	}
}

// TestRenderIsStable は同じテンプレートで同じ結果になることをテストする
func TestRenderIsStable(t *testing.T) {
	for _, autoReload := range []bool{true, false} {
		r := NewRenderer(testFS(), testTemplatesConfig(autoReload), NewData("Visualizer"))

		first, err := r.Render(context.Background())
		if err != nil {
			t.Fatalf("描画に失敗しました: %v", err)
		}
		for i := 0; i < 5; i++ {
			again, err := r.Render(context.Background())
			if err != nil {
				t.Fatalf("描画に失敗しました: %v", err)
			}
			if diff := cmp.Diff(string(first), string(again)); diff != "" {
				t.Fatalf("autoReload=%v で描画結果が変化しました (-first +again):\n%s", autoReload, diff)
			}
		}
	}
}

// TestAutoReload は自動リロードの有無による違いをテストする
func TestAutoReload(t *testing.T) {
	testCases := []struct {
		name        string
		autoReload  bool
		wantSecond  string
		wantParses  int
		wantRenders int
	}{
		{"自動リロード有効", true, "<p>v2</p>", 2, 2},
		{"自動リロード無効", false, "<p>v1</p>", 1, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{"index.html": {Data: []byte("<p>v1</p>")}}
			obs := newCountingObserver()
			r := NewRenderer(fsys, testTemplatesConfig(tc.autoReload), NewData("x"), WithObserver(obs))

			if _, err := r.Render(context.Background()); err != nil {
				t.Fatalf("描画に失敗しました: %v", err)
			}

			fsys["index.html"] = &fstest.MapFile{Data: []byte("<p>v2</p>")}

			got, err := r.Render(context.Background())
			if err != nil {
				t.Fatalf("描画に失敗しました: %v", err)
			}
			if string(got) != tc.wantSecond {
				t.Errorf("2回目の描画結果が一致しません: got %q, want %q", got, tc.wantSecond)
			}
			if obs.parses != tc.wantParses {
				t.Errorf("読み込み回数が一致しません: got %d, want %d", obs.parses, tc.wantParses)
			}
			if obs.renders["ok"] != tc.wantRenders {
				t.Errorf("描画回数が一致しません: got %d, want %d", obs.renders["ok"], tc.wantRenders)
			}
		})
	}
}

// TestAutoReloadFromDisk はディスク上のテンプレートの変更が反映されることをテストする
func TestAutoReloadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte("<h1>before</h1>"), 0o644); err != nil {
		t.Fatalf("テンプレートの作成に失敗しました: %v", err)
	}

	r := NewRenderer(os.DirFS(dir), testTemplatesConfig(true), NewData("x"))

	first, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("描画に失敗しました: %v", err)
	}

	if err := os.WriteFile(path, []byte("<h1>after</h1>"), 0o644); err != nil {
		t.Fatalf("テンプレートの更新に失敗しました: %v", err)
	}

	second, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("描画に失敗しました: %v", err)
	}

	if string(first) != "<h1>before</h1>" || string(second) != "<h1>after</h1>" {
		t.Errorf("変更が反映されていません: first=%q second=%q", first, second)
	}
}

// TestRenderErrors はテンプレートの異常系をテストする
func TestRenderErrors(t *testing.T) {
	testCases := []struct {
		name       string
		fsys       fstest.MapFS
		wantErr    error
		wantResult string
	}{
		{
			name:       "テンプレートなし",
			fsys:       fstest.MapFS{"other.html": {Data: []byte("x")}},
			wantErr:    ErrTemplateNotFound,
			wantResult: "not_found",
		},
		{
			name:       "構文エラー",
			fsys:       fstest.MapFS{"index.html": {Data: []byte("{{if}")}},
			wantErr:    ErrTemplateInvalid,
			wantResult: "invalid",
		},
		{
			name:       "未定義のテンプレート呼び出し",
			fsys:       fstest.MapFS{"index.html": {Data: []byte(`{{template "missing"}}`)}},
			wantErr:    ErrTemplateInvalid,
			wantResult: "invalid",
		},
		{
			name:       "存在しないフィールド",
			fsys:       fstest.MapFS{"index.html": {Data: []byte(`{{.Nope}}`)}},
			wantErr:    ErrTemplateInvalid,
			wantResult: "invalid",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obs := newCountingObserver()
			r := NewRenderer(tc.fsys, testTemplatesConfig(true), NewData("x"), WithObserver(obs))

			body, err := r.Render(context.Background())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("エラーが一致しません: got %v, want %v", err, tc.wantErr)
			}
			if body != nil {
				t.Errorf("エラー時に本文が返されました: %q", body)
			}
			if obs.renders[tc.wantResult] != 1 {
				t.Errorf("描画結果 %s が記録されていません: %v", tc.wantResult, obs.renders)
			}
		})
	}
}

// TestNotFoundWrapsErrNotExist は見つからないエラーが fs.ErrNotExist を含むことをテストする
func TestNotFoundWrapsErrNotExist(t *testing.T) {
	r := NewRenderer(fstest.MapFS{}, testTemplatesConfig(true), NewData("x"))

	_, err := r.Render(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("fs.ErrNotExist を含んでいません: %v", err)
	}
}

// TestFailedParseIsNotCached は読み込みの失敗がキャッシュされないことをテストする
func TestFailedParseIsNotCached(t *testing.T) {
	fsys := fstest.MapFS{}
	r := NewRenderer(fsys, testTemplatesConfig(false), NewData("x"))

	if err := r.Preload(); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("事前読み込みのエラーが一致しません: %v", err)
	}

	fsys["index.html"] = &fstest.MapFile{Data: []byte("ok")}

	got, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("テンプレート追加後の描画に失敗しました: %v", err)
	}
	if string(got) != "ok" {
		t.Errorf("描画結果が一致しません: got %q, want %q", got, "ok")
	}
}

// TestConcurrentRender は同時描画をテストする
func TestConcurrentRender(t *testing.T) {
	for _, autoReload := range []bool{true, false} {
		r := NewRenderer(testFS(), testTemplatesConfig(autoReload), NewData("Visualizer"))

		var wg sync.WaitGroup
		errCh := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := r.Render(context.Background()); err != nil {
					errCh <- err
				}
			}()
		}
		wg.Wait()
		close(errCh)

		for err := range errCh {
			t.Errorf("autoReload=%v で描画に失敗しました: %v", autoReload, err)
		}
	}
}

// TestShippedTemplates は同梱のテンプレートが描画できることをテストする
func TestShippedTemplates(t *testing.T) {
	r := NewRenderer(web.TemplatesFS(), testTemplatesConfig(false), NewData("Sorting Algorithm Visualizer"))

	got, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("同梱テンプレートの描画に失敗しました: %v", err)
	}

	body := string(got)
	for _, want := range []string{
		"<title>Sorting Algorithm Visualizer</title>",
		`id="barContainer"`,
		`id="sortBtn"`,
		`id="newArrayBtn"`,
		`id="speedSlider"`,
		`id="barsSlider"`,
		`<option value="bubble">Bubble Sort</option>`,
		`<option value="selection">Selection Sort</option>`,
		`<option value="merge">Merge Sort</option>`,
		"async function mergeSort",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("描画結果に %q が含まれていません", want)
		}
	}
}

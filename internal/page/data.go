package page

// Algorithm はページで選択できるソートアルゴリズム
type Algorithm struct {
	ID   string // select要素の value
	Name string // 表示名
}

// Data はテンプレートに渡す描画データ
type Data struct {
	Title      string
	Algorithms []Algorithm

	// スライダーの範囲と初期値
	MinBars, MaxBars, DefaultBars    int
	MinSpeed, MaxSpeed, DefaultSpeed int
}

// DefaultAlgorithms はクライアント側スクリプトが実装しているアルゴリズム
func DefaultAlgorithms() []Algorithm {
	return []Algorithm{
		{ID: "bubble", Name: "Bubble Sort"},
		{ID: "selection", Name: "Selection Sort"},
		{ID: "merge", Name: "Merge Sort"},
	}
}

// NewData はタイトルから描画データを作成する
func NewData(title string) Data {
	return Data{
		Title:        title,
		Algorithms:   DefaultAlgorithms(),
		MinBars:      10,
		MaxBars:      100,
		DefaultBars:  50,
		MinSpeed:     10,
		MaxSpeed:     100,
		DefaultSpeed: 50,
	}
}

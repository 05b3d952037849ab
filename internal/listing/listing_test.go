package listing

import (
	"slices"
	"testing"
	"time"
)

func TestFold(t *testing.T) {
	tc := []struct {
		in, fold, key string
	}{
		{in: "Björk", fold: "Bjork", key: "BJORK"},
		{in: "Émilie Simon", fold: "Emilie Simon", key: "EMILIE SIMON"},
		{in: "Sigur Rós", fold: "Sigur Ros", key: "SIGUR ROS"},
		{in: "plain", fold: "plain", key: "PLAIN"},
		{in: "", fold: "", key: ""},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.fold {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.fold)
			}
			if got := SortKey(tt.in); got != tt.key {
				t.Errorf("SortKey(%q) = %q, want %q", tt.in, got, tt.key)
			}
		})
	}

	if !Contains("Beyoncé Knowles", "BEYONCE") {
		t.Error("expected accent-insensitive match")
	}
	if Contains("Beyoncé", "Rihanna") {
		t.Error("unexpected match")
	}
}

func TestIndexKey(t *testing.T) {
	tc := map[string]string{
		"Ólafur Arnalds": "O",
		"abba":           "A",
		"  zz top":       "Z",
		"":               "#",
		"10cc":           "1",
	}
	for in, want := range tc {
		if got := IndexKey(in); got != want {
			t.Errorf("IndexKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortAlphabetical(t *testing.T) {
	names := []string{"Zola", "émile", "Eagles", "alpha", "Emile"}
	SortAlphabetical(names, func(s string) string { return s })

	want := []string{"alpha", "Eagles", "émile", "Emile", "Zola"}
	if !slices.Equal(names, want) {
		t.Errorf("got %v, want %v", names, want)
	}
}

func TestSortNewest(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	type item struct {
		name  string
		added time.Time
	}
	items := []item{
		{"old", base},
		{"newest", base.Add(48 * time.Hour)},
		{"middle", base.Add(24 * time.Hour)},
	}
	SortNewest(items, func(i item) time.Time { return i.added })

	if items[0].name != "newest" || items[2].name != "old" {
		t.Errorf("unexpected order %v", items)
	}
}

func TestPage(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tc := []struct {
		name         string
		size, offset int
		want         []int
	}{
		{name: "first page", size: 3, offset: 0, want: []int{0, 1, 2}},
		{name: "middle page", size: 3, offset: 3, want: []int{3, 4, 5}},
		{name: "short last page", size: 3, offset: 9, want: []int{9}},
		{name: "offset past end", size: 3, offset: 10, want: []int{}},
		{name: "offset far past end", size: 3, offset: 100, want: []int{}},
		{name: "zero size", size: 0, offset: 2, want: []int{}},
		{name: "unbounded", size: Unbounded, offset: 7, want: []int{7, 8, 9}},
		{name: "size larger than items", size: 500, offset: 0, want: items},
		{name: "negative offset", size: 2, offset: -5, want: []int{0, 1}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Page(items, tt.size, tt.offset)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Page(size=%d, offset=%d) = %v, want %v", tt.size, tt.offset, got, tt.want)
			}
		})
	}

	if got := Page([]int(nil), 5, 0); len(got) != 0 {
		t.Errorf("expected empty page for nil input, got %v", got)
	}
}

func TestFilterByYear(t *testing.T) {
	years := []int{1995, 1980, 2001, 1990, 1985, 2010}
	id := func(y int) int { return y }

	t.Run("ascending range", func(t *testing.T) {
		got := FilterByYear(years, 1985, 2001, id)
		want := []int{1985, 1990, 1995, 2001}
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("reversed range sorts descending", func(t *testing.T) {
		got := FilterByYear(years, 2001, 1985, id)
		want := []int{2001, 1995, 1990, 1985}
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("single year", func(t *testing.T) {
		got := FilterByYear(years, 1980, 1980, id)
		if !slices.Equal(got, []int{1980}) {
			t.Errorf("got %v", got)
		}
	})
}

func TestFilterByGenre(t *testing.T) {
	genres := []string{"Rock", "rock", "Jazz", "Rockabilly"}
	got := FilterByGenre(genres, "ROCK", func(s string) string { return s })
	if !slices.Equal(got, []string{"Rock", "rock"}) {
		t.Errorf("got %v", got)
	}
}

func TestShuffle(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(items)

	sorted := slices.Clone(items)
	slices.Sort(sorted)
	if !slices.Equal(sorted, []int{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("shuffle lost elements: %v", items)
	}
}

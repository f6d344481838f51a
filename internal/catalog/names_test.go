package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func aliasCatalog(t *testing.T) *Catalog {
	t.Helper()
	fr := region("France", "FRA", 0)
	fr.Formal = "French Republic"
	fr.Alternate = "France"
	cz := region("Czechia", "CZE", 2)
	cz.Formal = "Czech Republic" // 与人工别名 "Czechia" 的目标冲突，用于验证正式名扫描
	cz.Alternate = "Czechia"
	ga := region("Gambia", "GMB", 4)
	ga.Formal = "Republic of The Gambia"
	ga.Alternate = "Gambia"
	kr := region("Dem. Rep. Korea", "PRK", 6)
	c, err := Build(dataset(Res110m, fr, cz, ga, kr))
	require.NoError(t, err)
	return c
}

func TestNameConverterPassThrough(t *testing.T) {
	nc := BuildNameConverter(aliasCatalog(t), CuratedFirst)
	require.Equal(t, "Atlantis", nc.Convert("Atlantis"))
	_, ok := nc.Lookup("Atlantis")
	require.False(t, ok)
	require.Equal(t, "", nc.Convert(""))

	var nilConv *NameConverter
	require.Equal(t, "Atlantis", nilConv.Convert("Atlantis"))
	require.Zero(t, nilConv.Len())
}

func TestNameConverterScansFormalThenAlternate(t *testing.T) {
	nc := BuildNameConverter(aliasCatalog(t), CuratedFirst)
	require.Equal(t, "France", nc.Convert("French Republic"))
	require.Equal(t, "France", nc.Convert("France"))
	require.Equal(t, "Czechia", nc.Convert("Czech Republic"))
}

func TestNameConverterMergeOrder(t *testing.T) {
	c := aliasCatalog(t)

	// 默认：数据源扫描覆盖人工别名
	curated := BuildNameConverter(c, CuratedFirst)
	require.Equal(t, CuratedFirst, curated.Order())
	require.Equal(t, "Czechia", curated.Convert("Czechia"))
	require.Equal(t, "Gambia", curated.Convert("Gambia"))

	// 反向：人工别名覆盖数据源扫描
	scanned := BuildNameConverter(c, ScannedFirst)
	require.Equal(t, "Czech Republic", scanned.Convert("Czechia"))
	require.Equal(t, "The Gambia", scanned.Convert("Gambia"))

	// 数据源未定义的人工别名在两种顺序下一致
	for alias, want := range CuratedAliases() {
		if _, scannedToo := map[string]bool{"Czechia": true, "Gambia": true}[alias]; scannedToo {
			continue
		}
		require.Equal(t, want, curated.Convert(alias), alias)
		require.Equal(t, want, scanned.Convert(alias), alias)
	}
	require.Equal(t, "Dem. Rep. Korea", curated.Convert("Democratic Republic of Korea"))
}

func TestCuratedAliasesIsACopy(t *testing.T) {
	m := CuratedAliases()
	m["Congo"] = "Elsewhere"
	require.Equal(t, "Republic of the Congo", CuratedAliases()["Congo"])
}

func TestNameConverterEachSorted(t *testing.T) {
	nc := BuildNameConverter(aliasCatalog(t), CuratedFirst)
	var keys []string
	nc.Each(func(alias, name string) {
		keys = append(keys, alias)
		require.NotEmpty(t, name)
	})
	require.Len(t, keys, nc.Len())
	require.IsNonDecreasing(t, keys)
}

func TestParseMergeOrder(t *testing.T) {
	o, err := ParseMergeOrder("")
	require.NoError(t, err)
	require.Equal(t, CuratedFirst, o)
	o, err = ParseMergeOrder("Scanned_First")
	require.NoError(t, err)
	require.Equal(t, ScannedFirst, o)
	require.Equal(t, "scanned_first", o.String())
	_, err = ParseMergeOrder("random")
	require.Error(t, err)
}

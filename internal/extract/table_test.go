package extract

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankcap/internal/model"
)

func row(cells ...string) string {
	return "<tr><td>" + strings.Join(cells, "</td><td>") + "</td></tr>"
}

func page(rows ...string) string {
	return "<html><body><table><tbody>" + strings.Join(rows, "") + "</tbody></table></body></html>"
}

const flag = `<span class="flagicon"><a href="/wiki/X"><img alt="X"/></a></span> `

func TestParseTable_Testdata(t *testing.T) {
	f, err := os.Open("../../testdata/largest_banks.html")
	require.NoError(t, err)
	defer f.Close()

	records, stats, err := parseTable(f)
	require.NoError(t, err)
	require.Len(t, records, 10)

	assert.Equal(t, "JPMorgan Chase", records[0].Name)
	assert.Equal(t, "432.92", records[0].MarketCapUSD.String())
	assert.Equal(t, "HDFC Bank", records[4].Name)
	assert.Equal(t, "Wells Fargo", records[5].Name, "footnote row is skipped")
	assert.Equal(t, "HSBC Holdings PLC", records[6].Name)
	assert.Equal(t, "148.9", records[6].MarketCapUSD.String())
	assert.Equal(t, "Bank of China", records[9].Name)

	assert.Equal(t, 12, stats.Rows, "header + 10 banks + footnote row")
	assert.Equal(t, 1, stats.Skipped)
}

func TestParseTable_OnlyFirstTbody(t *testing.T) {
	doc := page(row("1", flag+`<a href="/a">Bank A</a>`, "10.5")) +
		page(row("1", flag+`<a href="/b">Bank B</a>`, "20.5"))

	records, err := ParseTable(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bank A", records[0].Name)
}

func TestParseTable_SkipsHeaderRows(t *testing.T) {
	doc := page(
		"<tr><th>Rank</th><th>Bank name</th><th>Market cap</th></tr>",
		row("1", flag+`<a href="/a">Bank A</a>`, "10.5\n"),
	)

	records, err := ParseTable(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "10.5", records[0].MarketCapUSD.String())
}

func TestParseTable_SkipsRowWithoutSecondLink(t *testing.T) {
	doc := page(
		row("1", flag+`<a href="/a">Bank A</a>`, "10.5"),
		row("", `<a href="#note">[1]</a>`, "not a number"),
		row("2", "plain text", "3"),
		row("3"),
		row("4", flag+`<a href="/c">Bank C</a>`, "7"),
	)

	records, err := ParseTable(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Bank A", records[0].Name)
	assert.Equal(t, "Bank C", records[1].Name)
}

func TestParseTable_StripsNewlines(t *testing.T) {
	doc := page(row("1", flag+`<a href="/a">Bank A</a>`, "1\n23.4\n"))

	records, err := ParseTable(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123.4", records[0].MarketCapUSD.String())
}

func TestParseTable_NonNumericMarketCap(t *testing.T) {
	doc := page(
		row("1", flag+`<a href="/a">Bank A</a>`, "10.5"),
		row("2", flag+`<a href="/b">Bank B</a>`, "1,234.5"),
	)

	_, err := ParseTable(strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrFormat)
	assert.Contains(t, err.Error(), "Bank B")
	assert.Contains(t, err.Error(), "1,234.5")
}

func TestParseTable_MissingMarketCapCell(t *testing.T) {
	doc := page(row("1", flag+`<a href="/a">Bank A</a>`))

	_, err := ParseTable(strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrFormat)
	assert.Contains(t, err.Error(), "no market cap cell")
}

func TestParseTable_NoTbody(t *testing.T) {
	_, err := ParseTable(strings.NewReader("<html><body><p>moved</p></body></html>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrParse)
}

func TestParseTable_EmptyTable(t *testing.T) {
	records, err := ParseTable(strings.NewReader(page()))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseTable_NameFromNestedMarkup(t *testing.T) {
	doc := page(row("1", flag+`<a href="/a"><b>Bank A</b> Group</a>`, "10"))

	records, err := ParseTable(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bank A", records[0].Name, "first child of the link names the bank")
}

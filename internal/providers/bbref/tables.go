package bbref

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

const playByPlayID = "play_by_play"

// Play-by-play header text mapped onto row fields
var pbpColumns = map[string]func(r *models.PlayByPlayRow, v string){
	"Inn":              func(r *models.PlayByPlayRow, v string) { r.Inning = v },
	"Score":            func(r *models.PlayByPlayRow, v string) { r.Score = v },
	"Out":              func(r *models.PlayByPlayRow, v string) { r.Outs = v },
	"RoB":              func(r *models.PlayByPlayRow, v string) { r.RunnersOnBase = v },
	"Pit(cnt)":         func(r *models.PlayByPlayRow, v string) { r.PitchCount = v },
	"R/O":              func(r *models.PlayByPlayRow, v string) { r.RunsOuts = v },
	"@Bat":             func(r *models.PlayByPlayRow, v string) { r.AtBatTeam = v },
	"Batter":           func(r *models.PlayByPlayRow, v string) { r.Batter = v },
	"Pitcher":          func(r *models.PlayByPlayRow, v string) { r.Pitcher = v },
	"Play Description": func(r *models.PlayByPlayRow, v string) { r.Description = v },
}

// ParseGame extracts batting, pitching and play-by-play tables from a page.
// Tables the site ships inside HTML comments are parsed too.
func ParseGame(gameID string, r io.Reader) (models.GameInput, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.GameInput{}, err
	}

	input := models.GameInput{GameID: gameID}
	for _, sel := range tables(doc) {
		sel.Each(func(_ int, table *goquery.Selection) {
			id, _ := table.Attr("id")
			switch {
			case id == playByPlayID:
				input.PlayByPlay = append(input.PlayByPlay, playByPlayRows(table)...)
			case strings.HasSuffix(id, "batting"):
				input.Batting = append(input.Batting, statRows(table)...)
			case strings.HasSuffix(id, "pitching"):
				input.Pitching = append(input.Pitching, statRows(table)...)
			}
		})
	}

	if len(input.Batting) == 0 && len(input.Pitching) == 0 && len(input.PlayByPlay) == 0 {
		return input, ErrNoTables
	}
	return input, nil
}

// tables returns the page's tables followed by any found inside comments
func tables(doc *goquery.Document) []*goquery.Selection {
	found := []*goquery.Selection{doc.Find("table[id]")}

	for _, comment := range commentsWithTables(doc.Nodes) {
		inner, err := goquery.NewDocumentFromReader(strings.NewReader(comment))
		if err != nil {
			continue
		}
		found = append(found, inner.Find("table[id]"))
	}
	return found
}

func commentsWithTables(nodes []*html.Node) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode && strings.Contains(n.Data, "<table") {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// headers reads the last header row of a table
func headers(table *goquery.Selection) []string {
	var cols []string
	table.Find("thead tr").Last().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := cellText(cell)
		if text == "" {
			text, _ = cell.Attr("aria-label")
		}
		cols = append(cols, text)
	})
	return cols
}

// bodyRows visits data rows, skipping repeated header and spacer rows
func bodyRows(table *goquery.Selection, fn func(cells *goquery.Selection)) {
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("spacer") {
			return
		}
		fn(tr.Children())
	})
}

func statRows(table *goquery.Selection) []map[string]interface{} {
	cols := headers(table)
	var rows []map[string]interface{}

	bodyRows(table, func(cells *goquery.Selection) {
		row := make(map[string]interface{}, len(cols))
		cells.Each(func(i int, cell *goquery.Selection) {
			if i < len(cols) && cols[i] != "" {
				row[cols[i]] = cellText(cell)
			}
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return rows
}

func playByPlayRows(table *goquery.Selection) []models.PlayByPlayRow {
	cols := headers(table)
	var rows []models.PlayByPlayRow

	bodyRows(table, func(cells *goquery.Selection) {
		var row models.PlayByPlayRow
		cells.Each(func(i int, cell *goquery.Selection) {
			if i >= len(cols) {
				return
			}
			set, ok := pbpColumns[cols[i]]
			if !ok {
				return
			}
			set(&row, cellText(cell))

			switch cols[i] {
			case "Batter":
				row.BatterID, _ = cell.Attr("data-append-csv")
			case "Pitcher":
				row.PitcherID, _ = cell.Attr("data-append-csv")
			}
		})
		rows = append(rows, row)
	})
	return rows
}

func cellText(cell *goquery.Selection) string {
	return strings.TrimSpace(cell.Text())
}

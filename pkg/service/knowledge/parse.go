package knowledge

import (
	"encoding/csv"
	"io"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	questionHeaders = []string{"question", "ερώτηση", "ερωτηση"}
	answerHeaders   = []string{"answer", "απάντηση", "απαντηση"}
)

// readXLSX returns the rows of the first sheet
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, goerr.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read sheet", goerr.V("sheet", sheets[0]))
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	// Spreadsheet exports often start with a byte order mark
	cr := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read csv")
	}
	return rows, nil
}

// toPairs maps rows to pairs. When the first row names a question and an
// answer column those columns are used and the row is skipped; otherwise
// the first two columns are read and every row is data. Rows missing either
// value are dropped and counted.
func toPairs(rows [][]string) ([]model.KnowledgePair, int) {
	if len(rows) == 0 {
		return nil, 0
	}

	qCol, aCol := 0, 1
	start := 0
	if q, a, ok := headerColumns(rows[0]); ok {
		qCol, aCol = q, a
		start = 1
	}

	var pairs []model.KnowledgePair
	dropped := 0
	for _, row := range rows[start:] {
		q, a := cell(row, qCol), cell(row, aCol)
		if q == "" || a == "" {
			dropped++
			continue
		}
		pairs = append(pairs, model.KnowledgePair{Question: q, Answer: a})
	}
	return pairs, dropped
}

func headerColumns(row []string) (q, a int, ok bool) {
	q, a = -1, -1
	for i, v := range row {
		name := strings.ToLower(strings.TrimSpace(v))
		switch {
		case q < 0 && slices.Contains(questionHeaders, name):
			q = i
		case a < 0 && slices.Contains(answerHeaders, name):
			a = i
		}
	}
	return q, a, q >= 0 && a >= 0
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

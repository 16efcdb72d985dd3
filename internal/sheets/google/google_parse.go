package google

import (
	"fmt"
	"strings"

	"debts/internal/core"
	"debts/internal/ledger"
)

// fromValues converts a values matrix (as returned by the Sheets API) into
// CSV-like records, dropping the header row when present. It also returns
// the sheet row number of the first record.
func fromValues(values [][]interface{}) ([][]string, int) {
	records := make([][]string, 0, len(values))
	for _, row := range values {
		records = append(records, toStrings(row))
	}
	if len(records) > 0 && ledger.IsHeader(records[0]) {
		return records[1:], 2
	}
	return records, 1
}

// toValues renders the ledger as header + rows. Amounts and dates are kept
// as text so the sheet round-trips them exactly.
func toValues(entries []core.DebtEntry) [][]interface{} {
	rows := ledger.EncodeRows(entries)
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}
	return values
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

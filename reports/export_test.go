package reports_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/npl-portal/reports"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data string) []reports.Record {
	t.Helper()
	var records []reports.Record
	require.NoError(t, json.Unmarshal([]byte(data), &records))
	return records
}

func TestExportCSV(t *testing.T) {
	t.Run("key order preserved", func(t *testing.T) {
		out, err := reports.ExportCSV(decode(t, `[{"a":1,"b":2},{"a":3,"b":4}]`))
		require.NoError(t, err)
		require.Equal(t, "a,b\n1,2\n3,4", out)
	})

	t.Run("encounter order not alphabetical", func(t *testing.T) {
		out, err := reports.ExportCSV(decode(t, `[{"z":1,"a":2}]`))
		require.NoError(t, err)
		require.Equal(t, "z,a\n1,2", out)
	})

	t.Run("empty data set", func(t *testing.T) {
		out, err := reports.ExportCSV(nil)
		require.NoError(t, err)
		require.Equal(t, "", out)

		out, err = reports.ExportCSV(decode(t, `[]`))
		require.NoError(t, err)
		require.Equal(t, "", out)
	})

	t.Run("rows follow the first record's keys", func(t *testing.T) {
		out, err := reports.ExportCSV(decode(t, `[{"a":1,"b":2},{"b":4,"a":3},{"a":5,"c":9}]`))
		require.NoError(t, err)
		require.Equal(t, "a,b\n1,2\n3,4\n5,", out)
	})

	t.Run("value rendering", func(t *testing.T) {
		out, err := reports.ExportCSV(decode(t, `[{"s":"BR001","f":12.50,"big":1e6,"t":true,"n":null,"o":{"k":[1, 2]}}]`))
		require.NoError(t, err)
		require.Equal(t, "s,f,big,t,n,o\nBR001,12.50,1e6,true,,\"{\"\"k\"\":[1,2]}\"", out)
	})

	t.Run("fields needing quotes", func(t *testing.T) {
		out, err := reports.ExportCSV(decode(t, `[{"name":"Kisumu, West","note":"say \"hi\"","multi":"a\nb"}]`))
		require.NoError(t, err)
		require.Equal(t, "name,note,multi\n\"Kisumu, West\",\"say \"\"hi\"\"\",\"a\nb\"", out)
	})

	t.Run("npl summary rows", func(t *testing.T) {
		out, err := reports.ExportCSV(decode(t, `[
			{"_id":"BR001","total_loans":42,"total_outstanding":12500000.5,"total_arrears":3100000,"avg_days_arrears":97.25},
			{"_id":"BR002","total_loans":17,"total_outstanding":4000000,"total_arrears":900000,"avg_days_arrears":120}
		]`))
		require.NoError(t, err)
		require.Equal(t, "_id,total_loans,total_outstanding,total_arrears,avg_days_arrears\n"+
			"BR001,42,12500000.5,3100000,97.25\n"+
			"BR002,17,4000000,900000,120", out)
	})
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	require.Equal(t, "npl-report-2024-03-09.csv", reports.FileName(reports.KindNPL, now))
	require.Equal(t, "collection-report-2024-03-09.csv", reports.FileName(reports.KindCollection, now))

	nairobi := time.FixedZone("EAT", 3*60*60)
	require.Equal(t, "npl-report-2024-03-09.csv", reports.FileName(reports.KindNPL, now.In(nairobi)), "dated in UTC")
}

func TestParseKind(t *testing.T) {
	k, ok := reports.ParseKind("npl")
	require.True(t, ok)
	require.Equal(t, reports.KindNPL, k)
	require.Equal(t, "NPL Summary", k.Title())

	k, ok = reports.ParseKind("collection")
	require.True(t, ok)
	require.Equal(t, "Collection Performance", k.Title())

	_, ok = reports.ParseKind("members")
	require.False(t, ok)
}

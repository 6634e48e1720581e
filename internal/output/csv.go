package output

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/phyten/usagex/internal/model"
)

// WriteCSV は RFC 4180 準拠 (CRLF 改行) の CSV を書きます。
func WriteCSV(w io.Writer, items []model.Match, sel FieldSelection) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(Headers(sel.Fields)); err != nil {
		return err
	}
	for _, it := range items {
		if err := writer.Write(RowValues(it, sel.Fields)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\r", " ", "\n", " ")

// WriteTSV はタブ区切りで書きます。値の中のタブと改行は空白に置き換え、引用符は付けません。
func WriteTSV(w io.Writer, items []model.Match, sel FieldSelection) error {
	if err := writeTSVRow(w, Headers(sel.Fields)); err != nil {
		return err
	}
	for _, it := range items {
		if err := writeTSVRow(w, RowValues(it, sel.Fields)); err != nil {
			return err
		}
	}
	return nil
}

func writeTSVRow(w io.Writer, values []string) error {
	for i, v := range values {
		values[i] = tsvReplacer.Replace(v)
	}
	_, err := io.WriteString(w, strings.Join(values, "\t")+"\n")
	return err
}

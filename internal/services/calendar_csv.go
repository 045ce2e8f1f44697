package services

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

var calendarCSVHeader = []string{"Title", "Date", "Type", "Status", "Amount", "Description"}

// ExportCSV renders events as CSV. Every field is double-quoted; dates are
// written as YYYY-MM-DD in the business location.
func ExportCSV(events []*models.CalendarEvent) []byte {
	var b bytes.Buffer
	writeCSVRow(&b, calendarCSVHeader)
	for _, e := range events {
		amount := ""
		if e.Amount != nil {
			amount = fmt.Sprintf("%.2f", *e.Amount)
		}
		writeCSVRow(&b, []string{
			e.Title,
			timeutil.DayKey(e.Date),
			string(e.Type),
			string(e.Status),
			amount,
			e.Description,
		})
	}
	return b.Bytes()
}

// csv.Writer only quotes fields that need it, so rows are written by hand.
func writeCSVRow(b *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

const utf8BOM = "\ufeff"

// ParseCSV reads events written by ExportCSV. Ids are not part of the format
// and come back empty.
func ParseCSV(r io.Reader) ([]*models.CalendarEvent, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && string(lead) == utf8BOM {
		br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(calendarCSVHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv vacío")
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i, h := range calendarCSVHeader {
		if header[i] != h {
			return nil, fmt.Errorf("columna %d: se esperaba %q, se encontró %q", i+1, h, header[i])
		}
	}

	var out []*models.CalendarEvent
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		date, err := timeutil.ParseLocal(timeutil.DateLayout, rec[1])
		if err != nil {
			return nil, fmt.Errorf("línea %d: fecha inválida %q", line, rec[1])
		}
		e := &models.CalendarEvent{
			Title:       rec[0],
			Date:        date,
			Type:        models.CalendarEventType(rec[2]),
			Status:      models.CalendarEventStatus(rec[3]),
			Description: rec[5],
		}
		if rec[4] != "" {
			v, err := strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("línea %d: monto inválido %q", line, rec[4])
			}
			e.Amount = &v
		}
		out = append(out, e)
	}
	return out, nil
}

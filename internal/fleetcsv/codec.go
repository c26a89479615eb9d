// Package fleetcsv implements the delimited-text interchange format for
// ship records: a fixed five-column comma-separated layout with a header.
package fleetcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fleetcore/pkg/domain"
)

// Header is the required first line of every payload.
const Header = "id,name,capacity,speed,fuel_consumption"

var columns = strings.Split(Header, ",")

// Row is the decoded form of a single data line. Err carries the parse
// failure for the line, leaving Ship unset.
type Row struct {
	Line int
	Ship domain.Ship
	Err  error
}

// ErrEmptyPayload is returned when the payload has no header line.
var ErrEmptyPayload = errors.New("empty payload")

// Decode parses a delimited-text payload into rows. The header must match
// the five-column schema exactly; it counts as line 1. Individual row
// failures are reported on the row, not as a decode error, so callers can
// apply valid rows and surface the rest.
func Decode(text string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPayload
		}
		return nil, domain.ParseError{Line: 1, Reason: err.Error()}
	}
	if !headerMatches(header) {
		return nil, domain.ParseError{Line: 1, Reason: fmt.Sprintf("expected header %q", Header)}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rows = append(rows, Row{Line: line, Err: domain.ParseError{Line: line, Reason: err.Error()}})
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, decodeRecord(line, record))
	}
	return rows, nil
}

func headerMatches(fields []string) bool {
	if len(fields) != len(columns) {
		return false
	}
	for i, col := range columns {
		if strings.TrimSpace(fields[i]) != col {
			return false
		}
	}
	return true
}

func decodeRecord(line int, record []string) Row {
	if len(record) != len(columns) {
		return Row{Line: line, Err: domain.ParseError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d columns, got %d", len(columns), len(record)),
		}}
	}
	capacity, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return Row{Line: line, Err: domain.ParseError{Line: line, Reason: "capacity is not a number"}}
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return Row{Line: line, Err: domain.ParseError{Line: line, Reason: "speed is not a number"}}
	}
	fuel, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil {
		return Row{Line: line, Err: domain.ParseError{Line: line, Reason: "fuel_consumption is not a number"}}
	}
	return Row{Line: line, Ship: domain.Ship{
		Base:              domain.Base{ID: strings.TrimSpace(record[0])},
		Name:              strings.TrimSpace(record[1]),
		CapacityTEU:       capacity,
		SpeedKnots:        speed,
		FuelLitersPerHour: fuel,
	}}
}

// Encode serializes ships into the five-column delimited format, header
// first, one row per ship in the given order. Decode(Encode(ships)) yields
// the same records in the same order.
func Encode(ships []domain.Ship) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	if err := writer.Write(columns); err != nil {
		return "", err
	}
	for _, ship := range ships {
		record := []string{
			ship.ID,
			ship.Name,
			formatFloat(ship.CapacityTEU),
			formatFloat(ship.SpeedKnots),
			formatFloat(ship.FuelLitersPerHour),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

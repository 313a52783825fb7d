// Package swingio decodes swing-point series from CSV and JSON
// inputs produced by external swing extractors.
package swingio

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "wavescan/internal/errors"
	"wavescan/internal/wave"
)

// csv columns: index,timestamp,price,kind. The header row is
// optional; timestamp is RFC3339 or empty.
const csvColumns = 4

// ReadCSV decodes swing points from CSV.
func ReadCSV(r io.Reader) ([]wave.SwingPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvColumns
	cr.TrimLeadingSpace = true

	var swings []wave.SwingPoint
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewDataError("csv", "malformed record", err)
		}
		line++
		if line == 1 && strings.EqualFold(rec[0], "index") {
			continue
		}

		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, apperrors.NewDataError("csv", "bad index "+rec[0], err)
		}
		var ts time.Time
		if rec[1] != "" {
			ts, err = time.Parse(time.RFC3339, rec[1])
			if err != nil {
				return nil, apperrors.NewDataError("csv", "bad timestamp "+rec[1], err)
			}
		}
		price, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, apperrors.NewDataError("csv", "bad price "+rec[2], err)
		}
		kind, err := parseKind(rec[3])
		if err != nil {
			return nil, err
		}
		swings = append(swings, wave.SwingPoint{Index: idx, Timestamp: ts, Price: price, Kind: kind})
	}
	return swings, nil
}

type jsonSwing struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Kind      string    `json:"kind"`
}

// ReadJSON decodes swing points from a JSON array.
func ReadJSON(r io.Reader) ([]wave.SwingPoint, error) {
	var rows []jsonSwing
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, apperrors.NewDataError("json", "malformed swing array", err)
	}
	swings := make([]wave.SwingPoint, 0, len(rows))
	for _, row := range rows {
		kind, err := parseKind(row.Kind)
		if err != nil {
			return nil, err
		}
		swings = append(swings, wave.SwingPoint{Index: row.Index, Timestamp: row.Timestamp, Price: row.Price, Kind: kind})
	}
	return swings, nil
}

func parseKind(s string) (wave.PointKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return wave.KindHigh, nil
	case "low", "l":
		return wave.KindLow, nil
	default:
		return "", apperrors.NewValidationError("kind", s, "must be high or low")
	}
}

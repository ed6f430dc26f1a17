// Package seatmap describes the cabin layout used for seat selection.
package seatmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/marcos020499/booker/shared/models"
)

var ErrInvalidSeat = errors.New("invalid seat")

// Section is a block of rows sharing a class and column layout. An empty
// column marks the aisle.
type Section struct {
	Class    models.SeatClass `json:"class"`
	FirstRow int              `json:"firstRow"`
	LastRow  int              `json:"lastRow"`
	Columns  []string         `json:"columns"`
}

// Layout is an ordered list of cabin sections
type Layout []Section

// Row is one rendered row of the seat map
type Row struct {
	Number int              `json:"number"`
	Class  models.SeatClass `json:"class"`
	Seats  []string         `json:"seats"`
}

// Default is the single-aisle cabin offered on every flight
var Default = Layout{
	{Class: models.SeatClassFirst, FirstRow: 1, LastRow: 2, Columns: []string{"A", "B", "", "C", "D"}},
	{Class: models.SeatClassBusiness, FirstRow: 3, LastRow: 5, Columns: []string{"A", "B", "", "C", "D"}},
	{Class: models.SeatClassEconomy, FirstRow: 6, LastRow: 12, Columns: []string{"A", "B", "C", "", "D", "E", "F"}},
}

// Rows expands the layout into rows of seat codes. Aisle positions are empty strings.
func (l Layout) Rows() []Row {
	var rows []Row
	for _, section := range l {
		for n := section.FirstRow; n <= section.LastRow; n++ {
			seats := make([]string, len(section.Columns))
			for i, col := range section.Columns {
				if col != "" {
					seats[i] = strconv.Itoa(n) + col
				}
			}
			rows = append(rows, Row{Number: n, Class: section.Class, Seats: seats})
		}
	}
	return rows
}

// ClassOf returns the cabin class of a seat code such as "12F"
func (l Layout) ClassOf(code string) (models.SeatClass, error) {
	row, col, err := ParseSeat(code)
	if err != nil {
		return "", err
	}
	for _, section := range l {
		if row < section.FirstRow || row > section.LastRow {
			continue
		}
		for _, c := range section.Columns {
			if c != "" && c == col {
				return section.Class, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSeat, code)
}

// Valid reports whether code names a seat in the layout
func (l Layout) Valid(code string) bool {
	_, err := l.ClassOf(code)
	return err == nil
}

// ParseSeat splits a seat code into its row number and column letter
func ParseSeat(code string) (int, string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 2 {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidSeat, code)
	}
	col := code[len(code)-1:]
	if col < "A" || col > "Z" {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidSeat, code)
	}
	row, err := strconv.Atoi(code[:len(code)-1])
	if err != nil || row < 1 {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidSeat, code)
	}
	return row, col, nil
}

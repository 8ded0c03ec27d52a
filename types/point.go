package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a screen coordinate in device pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// ParsePoint parses "x,y".
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("invalid coordinate format. Expected 'x,y', got '%s'", s)
	}

	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return Point{}, fmt.Errorf("invalid coordinate values. x and y must be integers. Got x='%s', y='%s'", parts[0], parts[1])
	}

	return Point{X: x, Y: y}, nil
}

// ParsePoints parses a ';' or whitespace separated list of "x,y" pairs.
func ParsePoints(s string) ([]Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one 'x,y' point is required")
	}

	points := make([]Point, 0, len(fields))
	for _, field := range fields {
		p, err := ParsePoint(field)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, nil
}

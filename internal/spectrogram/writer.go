package spectrogram

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// valuePrecision is the number of decimals written per magnitude.
const valuePrecision = 10

// MatrixWriter streams magnitude rows as tab-separated text, one line per
// frame, no header. Rows are buffered; call Flush when done.
type MatrixWriter struct {
	w    *bufio.Writer
	buf  []byte
	rows int
}

func NewMatrixWriter(w io.Writer) *MatrixWriter {
	return &MatrixWriter{w: bufio.NewWriter(w)}
}

// WriteRow appends one line.
func (m *MatrixWriter) WriteRow(row []float64) error {
	m.buf = m.buf[:0]
	for i, v := range row {
		if i > 0 {
			m.buf = append(m.buf, '\t')
		}
		m.buf = strconv.AppendFloat(m.buf, v, 'f', valuePrecision, 64)
	}
	m.buf = append(m.buf, '\n')
	if _, err := m.w.Write(m.buf); err != nil {
		return fmt.Errorf("writing row %d: %w", m.rows, err)
	}
	m.rows++
	return nil
}

// Rows returns the number of rows written so far.
func (m *MatrixWriter) Rows() int { return m.rows }

func (m *MatrixWriter) Flush() error {
	return m.w.Flush()
}

// ReadMatrix parses text produced by MatrixWriter. Empty fields, such as the
// trailing tab some older tools emit, are ignored.
func ReadMatrix(r io.Reader) ([][]float64, error) {
	var matrix [][]float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		row := make([]float64, 0, len(fields))
		for col, f := range fields {
			if f == "" {
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, col+1, err)
			}
			row = append(row, v)
		}
		matrix = append(matrix, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return matrix, nil
}

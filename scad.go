package solid

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultFacets is the number of fragments OpenSCAD uses for round
// primitives unless a part sets its own.
const DefaultFacets = 40

// Header returns the OpenSCAD file header setting the global fragment count.
func Header(facets int) string {
	return "$fn=" + strconv.Itoa(facets) + ";"
}

// AppendSCAD appends the header, a blank line and the OpenSCAD source of s to b.
func AppendSCAD(b []byte, s Shape, header string) ([]byte, error) {
	if s == nil {
		return b, ErrNilShape
	}
	if header != "" {
		b = append(b, header...)
		b = append(b, '\n', '\n')
	}
	b = s.AppendSCAD(b, 0)
	return b, nil
}

// WriteSCAD writes the OpenSCAD source of s preceded by header to w.
func WriteSCAD(w io.Writer, s Shape, header string) error {
	b, err := AppendSCAD(make([]byte, 0, 4096), s, header)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// WriteSCADFile creates the file at path and writes the OpenSCAD source of s to it.
func WriteSCADFile(path string, s Shape, header string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteSCAD(fp, s, header)
	if errClose := fp.Close(); err == nil {
		err = errClose
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// AppendFloat appends v with at most 6 decimals and no trailing zeros.
func AppendFloat(b []byte, v float64) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, v, 'f', 6, 64)
	idx := bytes.IndexByte(b[start:], '.')
	if idx >= 0 {
		end := len(b)
		for end > start+idx+1 && b[end-1] == '0' {
			end--
		}
		if end == start+idx+1 {
			end-- // Drop the decimal point.
		}
		b = b[:end]
	}
	if string(b[start:]) == "-0" {
		b = append(b[:start], '0')
	}
	return b
}

// AppendVec appends v as an OpenSCAD vector literal.
func AppendVec(b []byte, v r3.Vec) []byte {
	b = append(b, '[')
	b = AppendFloat(b, v.X)
	b = append(b, ", "...)
	b = AppendFloat(b, v.Y)
	b = append(b, ", "...)
	b = AppendFloat(b, v.Z)
	return append(b, ']')
}

func appendInt(b []byte, v int) []byte {
	return strconv.AppendInt(b, int64(v), 10)
}

func appendIndent(b []byte, depth int) []byte {
	for i := 0; i < depth; i++ {
		b = append(b, '\t')
	}
	return b
}

// appendBlock appends an operation with its children enclosed in braces.
func appendBlock(b []byte, depth int, op string, children []Shape) []byte {
	b = appendIndent(b, depth)
	b = append(b, op...)
	b = append(b, ' ')
	return appendChildren(b, depth, children)
}

func appendChildren(b []byte, depth int, children []Shape) []byte {
	b = append(b, "{\n"...)
	for _, c := range children {
		b = c.AppendSCAD(b, depth+1)
	}
	b = appendIndent(b, depth)
	return append(b, "}\n"...)
}

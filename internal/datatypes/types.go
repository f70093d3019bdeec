// Package datatypes translates catalog type strings to Arrow types and casts
// Arrow records to a catalog type map.
package datatypes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"lakewriter/internal/domain"
)

var primitives = map[string]arrow.DataType{
	"tinyint":   arrow.PrimitiveTypes.Int8,
	"smallint":  arrow.PrimitiveTypes.Int16,
	"int":       arrow.PrimitiveTypes.Int32,
	"integer":   arrow.PrimitiveTypes.Int32,
	"bigint":    arrow.PrimitiveTypes.Int64,
	"float":     arrow.PrimitiveTypes.Float32,
	"double":    arrow.PrimitiveTypes.Float64,
	"boolean":   arrow.FixedWidthTypes.Boolean,
	"string":    arrow.BinaryTypes.String,
	"varchar":   arrow.BinaryTypes.String,
	"char":      arrow.BinaryTypes.String,
	"date":      arrow.FixedWidthTypes.Date32,
	"timestamp": arrow.FixedWidthTypes.Timestamp_ns,
	"binary":    arrow.BinaryTypes.Binary,
}

// ParseType converts a catalog type string into an Arrow data type.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseType(s string) (arrow.DataType, error) {
	p := &typeParser{src: strings.ToLower(strings.TrimSpace(s)), orig: s}
	dt, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, domain.ErrUnsupportedType(s)
	}
	return dt, nil
}

type typeParser struct {
	src  string
	orig string
	pos  int
}

func (p *typeParser) parse() (arrow.DataType, error) {
	p.skipSpace()
	name := p.ident()
	switch name {
	case "":
		return nil, domain.ErrUnsupportedType(p.orig)
	case "decimal":
		args, err := p.intArgs()
		if err != nil {
			return nil, err
		}
		prec, scale := int32(38), int32(0)
		switch len(args) {
		case 0:
		case 2:
			prec, scale = args[0], args[1]
		case 1:
			prec = args[0]
		default:
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		if prec < 1 || prec > 38 || scale < 0 || scale > prec {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		return &arrow.Decimal128Type{Precision: prec, Scale: scale}, nil
	case "varchar", "char":
		// Length qualifiers do not change the Arrow type.
		if _, err := p.intArgs(); err != nil {
			return nil, err
		}
		return arrow.BinaryTypes.String, nil
	case "array":
		if !p.consume('<') {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		if !p.consume('>') {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		return arrow.ListOf(elem), nil
	case "map":
		if !p.consume('<') {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		key, err := p.parse()
		if err != nil {
			return nil, err
		}
		if !p.consume(',') {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		val, err := p.parse()
		if err != nil {
			return nil, err
		}
		if !p.consume('>') {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		return arrow.MapOf(key, val), nil
	case "struct":
		return p.structBody()
	}
	if dt, ok := primitives[name]; ok {
		return dt, nil
	}
	return nil, domain.ErrUnsupportedType(p.orig)
}

func (p *typeParser) structBody() (arrow.DataType, error) {
	if !p.consume('<') {
		return nil, domain.ErrUnsupportedType(p.orig)
	}
	var fields []arrow.Field
	for {
		p.skipSpace()
		name := p.ident()
		if name == "" || !p.consume(':') {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		dt, err := p.parse()
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: name, Type: dt, Nullable: true})
		if p.consume(',') {
			continue
		}
		if p.consume('>') {
			return arrow.StructOf(fields...), nil
		}
		return nil, domain.ErrUnsupportedType(p.orig)
	}
}

// intArgs parses an optional "(n[, m...])" suffix.
func (p *typeParser) intArgs() ([]int32, error) {
	if !p.consume('(') {
		return nil, nil
	}
	var out []int32
	for {
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		n, err := strconv.ParseInt(p.src[start:p.pos], 10, 32)
		if err != nil {
			return nil, domain.ErrUnsupportedType(p.orig)
		}
		out = append(out, int32(n))
		if p.consume(',') {
			continue
		}
		if p.consume(')') {
			return out, nil
		}
		return nil, domain.ErrUnsupportedType(p.orig)
	}
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) consume(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// FromArrow renders an Arrow data type in the catalog dialect.
func FromArrow(dt arrow.DataType) (string, error) {
	switch t := dt.(type) {
	case *arrow.Int8Type:
		return "tinyint", nil
	case *arrow.Int16Type:
		return "smallint", nil
	case *arrow.Int32Type:
		return "int", nil
	case *arrow.Int64Type:
		return "bigint", nil
	case *arrow.Uint8Type:
		return "smallint", nil
	case *arrow.Uint16Type:
		return "int", nil
	case *arrow.Uint32Type, *arrow.Uint64Type:
		return "bigint", nil
	case *arrow.Float16Type, *arrow.Float32Type:
		return "float", nil
	case *arrow.Float64Type:
		return "double", nil
	case *arrow.BooleanType:
		return "boolean", nil
	case *arrow.StringType, *arrow.LargeStringType:
		return "string", nil
	case *arrow.BinaryType, *arrow.LargeBinaryType:
		return "binary", nil
	case *arrow.Date32Type, *arrow.Date64Type:
		return "date", nil
	case *arrow.TimestampType:
		return "timestamp", nil
	case *arrow.Decimal128Type:
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale), nil
	case *arrow.ListType:
		elem, err := FromArrow(t.Elem())
		if err != nil {
			return "", err
		}
		return "array<" + elem + ">", nil
	case *arrow.MapType:
		k, err := FromArrow(t.KeyType())
		if err != nil {
			return "", err
		}
		v, err := FromArrow(t.ItemType())
		if err != nil {
			return "", err
		}
		return "map<" + k + "," + v + ">", nil
	case *arrow.StructType:
		parts := make([]string, 0, t.NumFields())
		for _, f := range t.Fields() {
			ft, err := FromArrow(f.Type)
			if err != nil {
				return "", err
			}
			parts = append(parts, f.Name+":"+ft)
		}
		return "struct<" + strings.Join(parts, ",") + ">", nil
	case *arrow.NullType:
		return "string", nil
	}
	return "", domain.ErrUnsupportedType(dt.String())
}

package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// parseNumberLiteral turns a scanned numeric literal's raw text and suffix
// byte into a typed Constant: underscores are digit separators and are
// stripped before parsing; a suffix of b/s/l fixes an integral width, f/d
// fixes a floating width, and an unsuffixed literal is int unless it
// contains a decimal point or exponent, in which case it is double. Hex
// literals (0x/0X prefix) are always integral.
func parseNumberLiteral(raw string, suffix byte) (Constant, error) {
	clean := strings.ReplaceAll(raw, "_", "")

	isFloat := strings.ContainsAny(clean, ".eE") && !strings.HasPrefix(clean, "0x") && !strings.HasPrefix(clean, "0X")

	switch suffix {
	case 'f', 'F':
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return Constant{}, fmt.Errorf("invalid float literal %q: %w", raw, err)
		}
		return Constant{Kind: ConstFloat, Float: v, Typ: types.BuiltinType{Kind: types.Float}}, nil
	case 'd', 'D':
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return Constant{}, fmt.Errorf("invalid double literal %q: %w", raw, err)
		}
		return Constant{Kind: ConstFloat, Float: v, Typ: types.BuiltinType{Kind: types.Double}}, nil
	case 'b', 'B':
		v, err := strconv.ParseInt(clean, 0, 8)
		if err != nil {
			return Constant{}, fmt.Errorf("invalid byte literal %q: %w", raw, err)
		}
		return Constant{Kind: ConstInt, Int: v, Typ: types.BuiltinType{Kind: types.Byte}}, nil
	case 's', 'S':
		v, err := strconv.ParseInt(clean, 0, 16)
		if err != nil {
			return Constant{}, fmt.Errorf("invalid short literal %q: %w", raw, err)
		}
		return Constant{Kind: ConstInt, Int: v, Typ: types.BuiltinType{Kind: types.Short}}, nil
	case 'l', 'L':
		v, err := strconv.ParseInt(clean, 0, 64)
		if err != nil {
			return Constant{}, fmt.Errorf("invalid long literal %q: %w", raw, err)
		}
		return Constant{Kind: ConstInt, Int: v, Typ: types.BuiltinType{Kind: types.Long}}, nil
	}

	if isFloat {
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return Constant{}, fmt.Errorf("invalid number literal %q: %w", raw, err)
		}
		return Constant{Kind: ConstFloat, Float: v, Typ: types.BuiltinType{Kind: types.Double}}, nil
	}
	v, err := strconv.ParseInt(clean, 0, 32)
	if err != nil {
		return Constant{}, fmt.Errorf("invalid number literal %q: %w", raw, err)
	}
	return Constant{Kind: ConstInt, Int: v, Typ: types.BuiltinType{Kind: types.Int}}, nil
}

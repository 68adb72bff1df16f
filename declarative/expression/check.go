package expression

// Check validates the types of a tree: for every child whose parent expects a
// known inlet type, the child's known outlet type must match.
func Check(expr Expression) error {
	for _, child := range expr.Children() {
		expected := expr.ConsultInletType(child.Key, child.Expr)
		actual := child.Expr.OutletType()
		if expected.Known() && actual.Known() && !compatible(expected, actual) {
			return &TypeError{
				Location: child.Expr.Location(),
				Key:      child.Key,
				Expected: expected,
				Actual:   actual,
			}
		}
		if err := Check(child.Expr); err != nil {
			return err
		}
	}
	return nil
}

// compatible reports whether a value of type actual may flow where expected is
// required. Integer widths of the same signedness are interchangeable.
func compatible(expected, actual Type) bool {
	if expected == actual {
		return true
	}
	return integerFamily(expected) != "" && integerFamily(expected) == integerFamily(actual)
}

func integerFamily(t Type) string {
	switch t {
	case TypeSI8, TypeSI16, TypeSI32, TypeSI64, TypeSI128, TypeSI256:
		return "si"
	case TypeUI8, TypeUI16, TypeUI32, TypeUI64, TypeUI128, TypeUI256:
		return "ui"
	default:
		return ""
	}
}

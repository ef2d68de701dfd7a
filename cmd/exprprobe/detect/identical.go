package detect

import "github.com/kolkov/exprprobe/internal/cparse"

// structurallyIdentical reports whether two expressions denote the same
// computation. It is the dedup relation behind both the per-statement
// occurrence filter and the cross-run temporary filter.
//
// The comparison looks through parentheses, then requires matching kind
// tags, pairwise identical children and a kind-specific payload match.
// Any expression with a side effect compares unequal to everything,
// including itself: two textually equal calls may yield different values,
// so deduplicating them would hide a real second occurrence.
func structurallyIdentical(a, b cparse.Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a = cparse.StripParens(a)
	b = cparse.StripParens(b)
	if a.Kind() != b.Kind() {
		return false
	}
	if cparse.HasSideEffects(a) || cparse.HasSideEffects(b) {
		return false
	}
	ca, cb := cparse.Children(a), cparse.Children(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !structurallyIdentical(ca[i], cb[i]) {
			return false
		}
	}
	return payloadIdentical(a, b)
}

// payloadIdentical compares the kind-specific payload of two expressions
// that already matched on kind and children.
func payloadIdentical(a, b cparse.Expr) bool {
	switch x := a.(type) {
	case *cparse.SubscriptExpr:
		// Base and index already compared as children.
		return true
	case *cparse.CallExpr:
		// Callee and arguments already compared as children.
		return true
	case *cparse.CastExpr:
		y := b.(*cparse.CastExpr)
		return cparse.TypesEqual(x.To, y.To)
	case *cparse.MemberExpr:
		y := b.(*cparse.MemberExpr)
		return x.Name == y.Name && x.Arrow == y.Arrow
	case *cparse.NameRef:
		y := b.(*cparse.NameRef)
		return x.Obj != nil && x.Obj == y.Obj
	case *cparse.BinaryExpr:
		y := b.(*cparse.BinaryExpr)
		return x.Op == y.Op
	case *cparse.UnaryExpr:
		y := b.(*cparse.UnaryExpr)
		return x.Op == y.Op
	case *cparse.CharLit:
		y := b.(*cparse.CharLit)
		return x.Value == y.Value
	case *cparse.StringLit:
		y := b.(*cparse.StringLit)
		return x.Bytes == y.Bytes
	case *cparse.IntLit:
		y := b.(*cparse.IntLit)
		return x.Type().Bits() == y.Type().Bits() && x.Value == y.Value
	case *cparse.FloatLit:
		// Same bit pattern in a different type, as in 1.5f against 1.5,
		// is still a different literal.
		y := b.(*cparse.FloatLit)
		return cparse.TypesEqual(x.Type(), y.Type()) && x.Bits == y.Bits
	}
	// Sizeof, conditionals and anything else are conservatively distinct.
	return false
}

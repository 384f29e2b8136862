package types

// NewUnion builds a normalised union: nested unions are flattened,
// duplicates removed, `never` dropped, and `any`/`unknown` absorb the rest.
func NewUnion(ts ...Type) Type {
	out := make([]Type, 0, len(ts))
	var add func(t Type) Type
	add = func(t Type) Type {
		switch t := t.(type) {
		case nil:
			return nil
		case *Union:
			for _, inner := range t.Types {
				if abs := add(inner); abs != nil {
					return abs
				}
			}
			return nil
		case *Error:
			return t
		case *Keyword:
			switch t.Name {
			case KeywordAny, KeywordUnknown:
				return t
			case KeywordNever:
				return nil
			}
		}
		if !containsType(out, t) {
			out = append(out, t)
		}
		return nil
	}
	var absorbing Type
	for _, t := range ts {
		if abs := add(t); abs != nil {
			if absorbing == nil || IsKeyword(abs, KeywordAny) || IsError(abs) {
				absorbing = abs
			}
		}
	}
	if absorbing != nil {
		return absorbing
	}
	switch len(out) {
	case 0:
		return Never
	case 1:
		return out[0]
	}
	return &Union{Types: out}
}

// NewIntersection builds a normalised intersection. Disjoint primitives and
// distinct literals collapse to `never`.
func NewIntersection(ts ...Type) Type {
	out := make([]Type, 0, len(ts))
	var flatten func(t Type)
	flatten = func(t Type) {
		if in, ok := t.(*Intersection); ok {
			for _, inner := range in.Types {
				flatten(inner)
			}
			return
		}
		if t != nil && !containsType(out, t) {
			out = append(out, t)
		}
	}
	for _, t := range ts {
		flatten(t)
	}
	kept := out[:0]
	for _, t := range out {
		switch {
		case IsError(t), IsKeyword(t, KeywordAny):
			return t
		case IsKeyword(t, KeywordNever):
			return Never
		case IsKeyword(t, KeywordUnknown):
			continue
		}
		kept = append(kept, t)
	}
	if disjoint(kept) {
		return Never
	}
	kept = dropWidened(kept)
	switch len(kept) {
	case 0:
		return Unknown
	case 1:
		return kept[0]
	}
	return &Intersection{Types: kept}
}

func disjoint(ts []Type) bool {
	var prim KeywordKind
	var lit *Lit
	for _, t := range ts {
		k, l := primitiveOf(t)
		if k == "" {
			continue
		}
		if prim != "" && prim != k {
			return true
		}
		prim = k
		if l != nil {
			if lit != nil && !Equal(lit, l) {
				return true
			}
			lit = l
		}
	}
	return false
}

// dropWidened removes a primitive keyword when a literal of that primitive is
// also present: `"a" & string` is `"a"`.
func dropWidened(ts []Type) []Type {
	lits := map[KeywordKind]bool{}
	for _, t := range ts {
		if l, ok := t.(*Lit); ok {
			lits[KeywordKind(l.LitKind)] = true
		}
	}
	if len(lits) == 0 {
		return ts
	}
	out := ts[:0]
	for _, t := range ts {
		if kw, ok := t.(*Keyword); ok && lits[kw.Name] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func primitiveOf(t Type) (KeywordKind, *Lit) {
	switch t := t.(type) {
	case *Keyword:
		switch t.Name {
		case KeywordString, KeywordNumber, KeywordBoolean, KeywordBigInt, KeywordSymbol, KeywordNull, KeywordUndefined:
			return t.Name, nil
		}
	case *Lit:
		return KeywordKind(t.LitKind), t
	}
	return "", nil
}

// Widen replaces literal types with their primitive.
func Widen(t Type) Type {
	switch t := t.(type) {
	case *Lit:
		switch t.LitKind {
		case LitString:
			return String
		case LitNumber:
			return Number
		case LitBigInt:
			return BigInt
		case LitBoolean:
			return Boolean
		}
	case *Union:
		widened := make([]Type, len(t.Types))
		for i, inner := range t.Types {
			widened[i] = Widen(inner)
		}
		return NewUnion(widened...)
	}
	return t
}

// Members returns the flattened member list of a union, or t itself.
func Members(t Type) []Type {
	if u, ok := t.(*Union); ok {
		return u.Types
	}
	return []Type{t}
}

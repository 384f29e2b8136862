package types

import "strconv"

// OwnMembers returns the members declared directly on an object-like type.
// Heritage clauses are not followed; the analyzer flattens them first.
func OwnMembers(t Type) ([]Member, bool) {
	switch t := t.(type) {
	case *TypeLit:
		return t.Members, true
	case *Interface:
		return t.Body, true
	case *Class:
		return t.Body, true
	}
	return nil, false
}

// KeysOf returns the key type of a shape's members: the union of its named
// keys as string literals plus the key types of its index signatures.
func KeysOf(members []Member) Type {
	keys := make([]Type, 0, len(members))
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		switch m := m.(type) {
		case *Property:
			if !seen[m.Key] {
				seen[m.Key] = true
				keys = append(keys, StringLit(m.Key))
			}
		case *Method:
			if !seen[m.Key] {
				seen[m.Key] = true
				keys = append(keys, StringLit(m.Key))
			}
		case *IndexSignature:
			keys = append(keys, m.Key)
			if IsKeyword(m.Key, KeywordString) {
				keys = append(keys, Number)
			}
		}
	}
	return NewUnion(keys...)
}

// PropertyOf finds the type of the named member. Methods yield their function
// type; index signatures with a matching key type are used as a fallback.
func PropertyOf(members []Member, key string) (Type, bool) {
	var indexed Type
	for _, m := range members {
		switch m := m.(type) {
		case *Property:
			if m.Key == key {
				if m.Optional {
					return NewUnion(m.Type, Undefined), true
				}
				return m.Type, true
			}
		case *Method:
			if m.Key == key {
				return m.Fn, true
			}
		case *IndexSignature:
			if indexed == nil && (IsKeyword(m.Key, KeywordString) || (IsKeyword(m.Key, KeywordNumber) && isNumeric(key))) {
				indexed = m.Type
			}
		}
	}
	if indexed != nil {
		return indexed, true
	}
	return nil, false
}

// FindMember returns the first member with the given key.
func FindMember(members []Member, key string) Member {
	for _, m := range members {
		if m.MemberKey() == key {
			return m
		}
	}
	return nil
}

func isNumeric(key string) bool {
	_, err := strconv.ParseFloat(key, 64)
	return err == nil
}

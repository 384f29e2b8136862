package types

import (
	"strconv"
	"strings"
)

func (k *Keyword) String() string { return string(k.Name) }

func (l *Lit) String() string {
	if l.LitKind == LitString {
		return strconv.Quote(l.Value)
	}
	if l.LitKind == LitBigInt {
		return l.Value + "n"
	}
	return l.Value
}

func (t *TypeLit) String() string { return printMembers(t.Members) }

func (i *Interface) String() string {
	var sb strings.Builder
	sb.WriteString("interface ")
	sb.WriteString(i.Name.Sym)
	sb.WriteString(printTypeParams(i.TypeParams))
	if len(i.Extends) > 0 {
		sb.WriteString(" extends ")
		sb.WriteString(joinTypes(i.Extends, ", "))
	}
	sb.WriteString(" ")
	sb.WriteString(printMembers(i.Body))
	return sb.String()
}

func (c *Class) String() string {
	var sb strings.Builder
	if c.Abstract {
		sb.WriteString("abstract ")
	}
	sb.WriteString("class ")
	sb.WriteString(c.Name.Sym)
	sb.WriteString(printTypeParams(c.TypeParams))
	if c.Super != nil {
		sb.WriteString(" extends ")
		sb.WriteString(c.Super.String())
	}
	if len(c.Implements) > 0 {
		sb.WriteString(" implements ")
		sb.WriteString(joinTypes(c.Implements, ", "))
	}
	sb.WriteString(" ")
	sb.WriteString(printMembers(c.Body))
	return sb.String()
}

func (e *Enum) String() string {
	parts := make([]string, len(e.Members))
	for i, m := range e.Members {
		parts[i] = m.Name + " = " + m.Value.String()
	}
	prefix := "enum "
	if e.Const {
		prefix = "const enum "
	}
	return prefix + e.Name.Sym + " { " + strings.Join(parts, ", ") + " }"
}

func (a *Alias) String() string {
	return "type " + a.Name.Sym + printTypeParams(a.TypeParams) + " = " + a.Target.String()
}

func (r *Ref) String() string {
	if len(r.Args) == 0 {
		return r.Name.Sym
	}
	return r.Name.Sym + "<" + joinTypes(r.Args, ", ") + ">"
}

func (p *Param) String() string { return p.Name.Sym }

func (u *Union) String() string { return joinOperands(u.Types, " | ") }

func (i *Intersection) String() string { return joinOperands(i.Types, " & ") }

func (f *Function) String() string {
	return printTypeParams(f.TypeParams) + "(" + printParams(f.Params) + ") => " + typeString(f.Ret)
}

func (c *Constructor) String() string {
	prefix := "new "
	if c.Abstract {
		prefix = "abstract new "
	}
	return prefix + printTypeParams(c.TypeParams) + "(" + printParams(c.Params) + ") => " + typeString(c.Ret)
}

func (a *Array) String() string {
	switch a.Elem.(type) {
	case *Union, *Intersection, *Function, *Constructor, *Conditional:
		return "(" + a.Elem.String() + ")[]"
	}
	return a.Elem.String() + "[]"
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		var sb strings.Builder
		if e.Rest {
			sb.WriteString("...")
		}
		if e.Label != "" {
			sb.WriteString(e.Label)
			if e.Optional {
				sb.WriteString("?")
			}
			sb.WriteString(": ")
			sb.WriteString(e.Type.String())
		} else {
			sb.WriteString(e.Type.String())
			if e.Optional {
				sb.WriteString("?")
			}
		}
		parts[i] = sb.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o *Operator) String() string { return string(o.Op) + " " + o.Type.String() }

func (i *IndexedAccess) String() string { return i.Obj.String() + "[" + i.Index.String() + "]" }

func (c *Conditional) String() string {
	return c.Check.String() + " extends " + c.Extends.String() + " ? " + c.True.String() + " : " + c.False.String()
}

func (i *Infer) String() string { return "infer " + i.Name.Sym }

func (m *Mapped) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	switch m.Readonly {
	case ModifierAdd:
		sb.WriteString("readonly ")
	case ModifierRemove:
		sb.WriteString("-readonly ")
	}
	sb.WriteString("[")
	sb.WriteString(m.Param.Sym)
	sb.WriteString(" in ")
	sb.WriteString(typeString(m.Constraint))
	if m.NameType != nil {
		sb.WriteString(" as ")
		sb.WriteString(m.NameType.String())
	}
	sb.WriteString("]")
	switch m.Optional {
	case ModifierAdd:
		sb.WriteString("?")
	case ModifierRemove:
		sb.WriteString("-?")
	}
	sb.WriteString(": ")
	sb.WriteString(typeString(m.Type))
	sb.WriteString(" }")
	return sb.String()
}

func (q *Query) String() string {
	if len(q.Path) == 0 {
		return "typeof " + q.Name.Sym
	}
	return "typeof " + q.Name.Sym + "." + strings.Join(q.Path, ".")
}

func (m *Module) String() string { return "namespace " + m.Name.Sym }

func (*This) String() string { return "this" }

func (*Error) String() string { return "error" }

func typeString(t Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = typeString(t)
	}
	return strings.Join(parts, sep)
}

func joinOperands(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		switch t.(type) {
		case *Function, *Constructor, *Conditional:
			parts[i] = "(" + t.String() + ")"
		case *Union, *Intersection:
			parts[i] = "(" + t.String() + ")"
		default:
			parts[i] = typeString(t)
		}
	}
	return strings.Join(parts, sep)
}

func printTypeParams(params []*TypeParamDecl) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		s := p.Name.Sym
		if p.Constraint != nil {
			s += " extends " + p.Constraint.String()
		}
		if p.Default != nil {
			s += " = " + p.Default.String()
		}
		parts[i] = s
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func printParams(params []FnParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		var sb strings.Builder
		if p.Rest {
			sb.WriteString("...")
		}
		sb.WriteString(p.Name)
		if p.Optional {
			sb.WriteString("?")
		}
		sb.WriteString(": ")
		sb.WriteString(typeString(p.Type))
		parts[i] = sb.String()
	}
	return strings.Join(parts, ", ")
}

func printMembers(members []Member) string {
	if len(members) == 0 {
		return "{}"
	}
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = printMember(m)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func printMember(m Member) string {
	switch m := m.(type) {
	case *Property:
		s := m.Key
		if m.Readonly {
			s = "readonly " + s
		}
		if m.Optional {
			s += "?"
		}
		return s + ": " + typeString(m.Type)
	case *Method:
		s := m.Key
		if m.Optional {
			s += "?"
		}
		return s + printTypeParams(m.Fn.TypeParams) + "(" + printParams(m.Fn.Params) + "): " + typeString(m.Fn.Ret)
	case *CallSignature:
		return printTypeParams(m.Fn.TypeParams) + "(" + printParams(m.Fn.Params) + "): " + typeString(m.Fn.Ret)
	case *ConstructSignature:
		return "new " + printTypeParams(m.Fn.TypeParams) + "(" + printParams(m.Fn.Params) + "): " + typeString(m.Fn.Ret)
	case *IndexSignature:
		s := "[key: " + m.Key.String() + "]: " + typeString(m.Type)
		if m.Readonly {
			s = "readonly " + s
		}
		return s
	}
	return "?"
}

package template

import (
	"vidcompose/pkg/document"
)

// Declaration describes one entry of a document's declared-variables block.
type Declaration struct {
	Name        string
	Default     document.Node
	HasDefault  bool
	Description string
}

// Declared reads a declared-variables block. Three shapes are accepted:
//
//	variables: {title: "Default", duration: {default: 10, description: "..."}}
//	variables: [title, duration]
//	variables: [{name: title, default: "Default"}]
//
// Entries whose names are not valid identifiers are skipped and returned
// separately so a validator can report them.
func Declared(block document.Node) (decls []Declaration, invalid []string) {
	add := func(d Declaration) {
		if !ValidIdentifier(d.Name) {
			invalid = append(invalid, d.Name)
			return
		}
		decls = append(decls, d)
	}

	switch block.Kind() {
	case document.KindMap:
		for _, name := range block.Keys() {
			value, _ := block.Get(name)
			add(declarationFromValue(name, value))
		}
	case document.KindSequence:
		for _, item := range block.Items() {
			switch item.Kind() {
			case document.KindString:
				name, _ := item.Str()
				add(Declaration{Name: name})
			case document.KindMap:
				name, _ := item.GetString("name")
				add(declarationFromValue(name, item.Without("name")))
			default:
				invalid = append(invalid, item.Text())
			}
		}
	}
	return decls, invalid
}

func declarationFromValue(name string, value document.Node) Declaration {
	d := Declaration{Name: name}
	if value.Kind() != document.KindMap {
		if value.IsScalar() && !value.IsNull() {
			d.Default = value
			d.HasDefault = true
		}
		return d
	}
	if def, ok := value.Get("default"); ok && def.IsScalar() {
		d.Default = def
		d.HasDefault = true
	}
	d.Description, _ = value.GetString("description")
	return d
}

// DeclaredSet returns the names declared in block.
func DeclaredSet(block document.Node) VarSet {
	decls, _ := Declared(block)
	out := make(VarSet, len(decls))
	for _, d := range decls {
		out.Add(d.Name)
	}
	return out
}

// Defaults returns bindings for every declared variable carrying a default.
func Defaults(block document.Node) Bindings {
	decls, _ := Declared(block)
	out := Bindings{}
	for _, d := range decls {
		if d.HasDefault {
			out[d.Name] = d.Default
		}
	}
	return out
}

// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package genvalkey

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"
)

// fieldType is the Go type a generated struct field takes for a given
// ArgKind.
func fieldType(kind ArgKind) string {
	switch kind {
	case ArgToken:
		return "bool"
	case ArgMultiple:
		return "[]string"
	default:
		return "string"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// fieldView is one generated struct field / constructor parameter.
type fieldView struct {
	Name string // Go identifier, lowerCamel
	Type string
}

// encodeStep is one line of the generated Encode method body.
type encodeStep struct {
	// Call is the full statement, e.g. `b.Arg(c.key)`.
	Call string
}

// entryView is an Entry flattened into everything the template needs,
// computed ahead of time so the template itself stays free of control
// flow beyond straight substitution and range loops.
type entryView struct {
	Entry
	StructName string
	CtorName string
	Builder string // NewBuilder("NAME") or NewBuilder("NAME", "SUB")
	Fields []fieldView
	EncodeBody []encodeStep
	KeysExpr string
}

func buildEntryView(e Entry) (entryView, error) {
	v := entryView{Entry: e, StructName: e.GoName + "Cmd", CtorName: e.GoName}

	parts := strings.Fields(e.Name)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	v.Builder = fmt.Sprintf("NewBuilder(%s)", strings.Join(quoted, ", "))

	var keyFields []string
	for _, a := range e.Args {
		fname := lowerFirst(a.Name)
		v.Fields = append(v.Fields, fieldView{Name: fname, Type: fieldType(a.Kind)})

		switch a.Kind {
		case ArgPositional:
			v.EncodeBody = append(v.EncodeBody, encodeStep{Call: fmt.Sprintf("b.Arg(c.%s)", fname)})
		case ArgToken:
			v.EncodeBody = append(v.EncodeBody, encodeStep{Call: fmt.Sprintf("b.Token(%q, c.%s)", a.Flag, fname)})
		case ArgTokenArg:
			v.EncodeBody = append(v.EncodeBody, encodeStep{Call: fmt.Sprintf("b.TokenArg(%q, c.%s, c.%s != \"\")", a.Flag, fname, fname)})
		case ArgMultiple:
			v.EncodeBody = append(v.EncodeBody, encodeStep{Call: fmt.Sprintf("b.Multiple(c.%s)", fname)})
		default:
			return entryView{}, errors.Errorf("genvalkey: %s: unknown arg kind %q", e.GoName, a.Kind)
		}

		if a.IsKey {
			keyFields = append(keyFields, fname)
		}
	}

	switch len(keyFields) {
	case 0:
		v.KeysExpr = "nil"
	case 1:
		field := keyFields[0]
		for _, a := range e.Args {
			if lowerFirst(a.Name) == field && a.Kind == ArgMultiple {
				v.KeysExpr = "c." + field
				break
			}
		}
		if v.KeysExpr == "" {
			v.KeysExpr = fmt.Sprintf("[]string{c.%s}", field)
		}
	default:
		elems := make([]string, len(keyFields))
		for i, f := range keyFields {
			elems[i] = "c." + f
		}
		v.KeysExpr = fmt.Sprintf("[]string{%s}", strings.Join(elems, ", "))
	}

	return v, nil
}

const sourceTemplate = `// Code generated by cmd/valkeygen from a command catalogue. DO NOT EDIT.

package {{.Package}}

import "github.com/valkeygo/valkeygo/resp"
{{range .Entries}}
// {{.CtorName}} builds a {{.Name}} command.{{if .Decoder}} Its reply decodes with {{.Decoder}}.{{end}}
func {{.CtorName}}({{range $i, $f := .Fields}}{{if $i}}, {{end}}{{$f.Name}} {{$f.Type}}{{end}}) *{{.StructName}} {
	return &{{.StructName}}{ {{range $i, $f := .Fields}}{{if $i}}, {{end}}{{$f.Name}}: {{$f.Name}}{{end}} }
}

// {{.StructName}} is the generated {{.Name}} command.
type {{.StructName}} struct {
{{range .Fields}}	{{.Name}} {{.Type}}
{{end}}}

func (c *{{.StructName}}) Name() string { return {{printf "%q" .Name}} }
func (c *{{.StructName}}) Keys() []string { return {{.KeysExpr}} }
func (c *{{.StructName}}) ReadOnly() bool { return {{.ReadOnly}} }
func (c *{{.StructName}}) Blocking() bool { return {{.Blocking}} }
func (c *{{.StructName}}) Encode(e *resp.Encoder) {
	b := {{.Builder}}
{{range .EncodeBody}}	{{.Call}}
{{end}}	b.Encode(e)
}
{{end}}`

var tmpl = template.Must(template.New("catalogue").Parse(sourceTemplate))

// Generate renders cat as Go source in package pkg, implementing
// command.Command for every catalogue entry.
func Generate(w io.Writer, pkg string, cat *Catalogue) error {
	views := make([]entryView, 0, len(cat.Commands))
	for _, e := range cat.Commands {
		v, err := buildEntryView(e)
		if err != nil {
			return err
		}
		views = append(views, v)
	}

	data := struct {
		Package string
		Entries []entryView
	}{Package: pkg, Entries: views}

	if err := tmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "genvalkey: render template")
	}
	return nil
}

package types

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the environment description handed over by the front end.
type Document struct {
	Types []TypeDoc `yaml:"types"`
}

type TypeDoc struct {
	Name       string      `yaml:"name"`
	Kind       string      `yaml:"kind"`
	Super      string      `yaml:"super"`
	Interfaces []string    `yaml:"interfaces"`
	Namespace  string      `yaml:"namespace"`
	Open       bool        `yaml:"open"`
	Fields     []FieldDoc  `yaml:"fields"`
	Methods    []MethodDoc `yaml:"methods"`
	Ctors      []MethodDoc `yaml:"constructors"`
	Constants  []string    `yaml:"constants"`
}

type FieldDoc struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static"`
}

type MethodDoc struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
	Result string   `yaml:"result"`
	Static bool     `yaml:"static"`
}

// Decode reads an environment document and registers its types into e.
func (e *Environment) Decode(r io.Reader) error {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decoding environment: %w", err)
	}
	for i, td := range doc.Types {
		info, err := td.info()
		if err != nil {
			return fmt.Errorf("type #%d: %w", i+1, err)
		}
		if err := e.Register(info); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile registers the types of an environment document on disk.
func (e *Environment) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening environment: %w", err)
	}
	defer f.Close()
	if err := e.Decode(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (td TypeDoc) info() (*TypeInfo, error) {
	if td.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	kind, err := ParseTypeKind(td.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", td.Name, err)
	}
	info := &TypeInfo{
		Name:       td.Name,
		Kind:       kind,
		Super:      td.Super,
		Interfaces: td.Interfaces,
		Namespace:  td.Namespace,
		Open:       td.Open,
		Constants:  td.Constants,
	}
	for _, fd := range td.Fields {
		info.Fields = append(info.Fields, &FieldInfo{Name: fd.Name, Type: ParseType(fd.Type), Static: fd.Static})
	}
	for _, md := range td.Methods {
		info.Methods = append(info.Methods, md.info())
	}
	for _, md := range td.Ctors {
		m := md.info()
		m.Name = "<init>"
		info.Constructors = append(info.Constructors, m)
	}
	return info, nil
}

func (md MethodDoc) info() *MethodInfo {
	m := &MethodInfo{Name: md.Name, Static: md.Static, Result: VoidType{}}
	if md.Result != "" {
		m.Result = ParseType(md.Result)
	}
	for _, p := range md.Params {
		m.Params = append(m.Params, ParseType(p))
	}
	return m
}

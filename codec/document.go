package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"github.com/hupe1980/meshkit/mesh"
)

// Document is the serialized form of a mesh.
type Document struct {
	Name           string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	SpaceDimension int             `json:"space_dimension" yaml:"space_dimension"`
	Coordinates    []float64       `json:"coordinates" yaml:"coordinates"`
	Blocks         []BlockDocument `json:"blocks" yaml:"blocks"`
}

// BlockDocument is the serialized form of one element block. Offsets are
// present for poly types only.
type BlockDocument struct {
	Type         string            `json:"type" yaml:"type"`
	Connectivity []int             `json:"connectivity" yaml:"connectivity"`
	Offsets      []int             `json:"offsets,omitempty" yaml:"offsets,omitempty"`
	Fields       map[string]Values `json:"fields,omitempty" yaml:"fields,omitempty"`
	Families     []int             `json:"families,omitempty" yaml:"families,omitempty"`
	FamilyGroups map[int][]string  `json:"family_groups,omitempty" yaml:"family_groups,omitempty"`
	Groups       map[string][]int  `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// Values is a field array. JSON has no NaN, so NaN is written as null.
type Values []float64

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer

	buf.WriteByte('[')

	for i, x := range v {
		if i > 0 {
			buf.WriteByte(',')
		}

		if math.IsNaN(x) {
			buf.WriteString("null")
			continue
		}

		buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}

	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == nil {
		*v = nil
		return nil
	}

	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}

	*v = out

	return nil
}

// FromMesh captures r as a document.
func FromMesh(r mesh.Reader) *Document {
	doc := &Document{
		Name:           r.Name(),
		Description:    r.Description(),
		SpaceDimension: r.SpaceDim(),
		Coordinates:    r.Coords().Data(),
		Blocks:         make([]BlockDocument, 0, len(r.Types())),
	}

	for _, et := range r.Types() {
		b, _ := r.Block(et)
		conn := b.Connectivity()

		bd := BlockDocument{Type: et.String(), Connectivity: conn.Data()}
		if conn.IsPoly() {
			bd.Offsets = conn.Offsets()
		}

		if names := b.FieldNames(); len(names) > 0 {
			bd.Fields = make(map[string]Values, len(names))
			for _, name := range names {
				vals, _ := b.Field(name)
				bd.Fields[name] = Values(vals)
			}
		}

		if names := b.GroupNames(); len(names) > 0 {
			bd.Families = b.Families()
			bd.FamilyGroups = b.FamilyTable()
			bd.Groups = make(map[string][]int, len(names))

			for _, name := range names {
				bd.Groups[name] = b.GroupMembers(name)
			}
		}

		doc.Blocks = append(doc.Blocks, bd)
	}

	return doc
}

// Mesh rebuilds the mesh through the public constructors, so every
// structural check of package mesh applies. Families take precedence over
// groups when both are present. The document is not retained; it can be
// turned into any number of independent meshes.
func (d *Document) Mesh() (*mesh.Mesh, error) {
	cs, err := mesh.NewCoordStore(d.SpaceDimension, slices.Clone(d.Coordinates))
	if err != nil {
		return nil, err
	}

	blocks := make([]*mesh.ElementBlock, 0, len(d.Blocks))

	for _, bd := range d.Blocks {
		b, err := bd.block()
		if err != nil {
			cs.Release()
			return nil, err
		}

		blocks = append(blocks, b)
	}

	m, err := mesh.New(cs, blocks, mesh.WithName(d.Name), mesh.WithDescription(d.Description))
	if err != nil {
		cs.Release()
		return nil, err
	}

	return m, nil
}

func (bd BlockDocument) block() (*mesh.ElementBlock, error) {
	et, err := mesh.ParseElementType(bd.Type)
	if err != nil {
		return nil, err
	}

	var conn mesh.Connectivity
	if et.IsPoly() {
		conn, err = mesh.NewPoly(slices.Clone(bd.Connectivity), slices.Clone(bd.Offsets))
	} else {
		conn, err = mesh.NewRegular(et.NumNodes(), slices.Clone(bd.Connectivity))
	}

	if err != nil {
		return nil, err
	}

	opts := make([]mesh.BlockOption, 0, len(bd.Fields)+len(bd.Groups)+1)
	for name, vals := range bd.Fields {
		opts = append(opts, mesh.WithField(name, slices.Clone(vals)))
	}

	if bd.Families != nil {
		opts = append(opts, mesh.WithFamilies(slices.Clone(bd.Families), bd.FamilyGroups))
	} else {
		for name, members := range bd.Groups {
			opts = append(opts, mesh.WithGroup(name, members...))
		}
	}

	return mesh.NewElementBlock(et, conn, opts...)
}

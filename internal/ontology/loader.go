package ontology

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// XML namespaces used by OWL/RDF documents.
const (
	nsOWL  = "http://www.w3.org/2002/07/owl#"
	nsRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	nsXSD  = "http://www.w3.org/2001/XMLSchema#"
)

// node is a generic element tree; encoding/xml fills it recursively.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) attr(space, local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) is(space, local string) bool {
	return n.XMLName.Space == space && n.XMLName.Local == local
}

// walk visits every descendant of n (not n itself) in document order.
// Returning false from fn stops the walk.
func (n *node) walk(fn func(*node) bool) bool {
	for i := range n.Children {
		c := &n.Children[i]
		if !fn(c) {
			return false
		}
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// find returns the first descendant with the given name.
func (n *node) find(space, local string) *node {
	var found *node
	n.walk(func(c *node) bool {
		if c.is(space, local) {
			found = c
			return false
		}
		return true
	})
	return found
}

// fragment returns the part of a URI after the last '#'.
func fragment(uri string) string {
	if i := strings.LastIndex(uri, "#"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// Load reads and parses the ontology file at path. A missing file yields the
// sample ontology; a malformed one yields an error.
func Load(path string) (*Ontology, error) {
	o, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ontology: file not found, using sample data", slog.String("path", path))
		o = Sample()
		o.Path = path
		return o, nil
	}
	return o, err
}

// Read is Load without the sample fallback: a missing file is an error
// wrapping fs.ErrNotExist.
func Read(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ontology: read %s: %w", path, err)
	}
	o, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ontology: parse %s: %w", path, err)
	}
	o.Path = path
	return o, nil
}

// entityDecl matches general entity declarations in a DOCTYPE internal
// subset. Parameter entities (<!ENTITY % ...>) are not matched.
var entityDecl = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_][\w.:-]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// doctypeEntities returns the general entities declared in a DOCTYPE
// directive, with references to earlier declarations expanded.
func doctypeEntities(d xml.Directive) map[string]string {
	out := map[string]string{}
	for _, m := range entityDecl.FindAllSubmatch(d, -1) {
		value := string(m[2])
		if len(m[3]) > 0 {
			value = string(m[3])
		}
		for name, v := range out {
			value = strings.ReplaceAll(value, "&"+name+";", v)
		}
		out[string(m[1])] = value
	}
	return out
}

// decodeRoot decodes the document element into root. Entities declared in
// a leading DOCTYPE are registered first so that &owl;-style references in
// attributes and text resolve.
func decodeRoot(data []byte, root *node) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return errors.New("no root element")
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.Directive:
			for name, value := range doctypeEntities(t) {
				dec.Entity[name] = value
			}
		case xml.StartElement:
			return dec.DecodeElement(root, &t)
		}
	}
}

// Parse builds an Ontology from raw RDF/XML bytes in a single pass.
func Parse(data []byte) (*Ontology, error) {
	var root node
	if err := decodeRoot(data, &root); err != nil {
		return nil, err
	}

	o := newOntology("")
	sum := sha256.Sum256(data)
	o.Checksum = hex.EncodeToString(sum[:])

	root.walk(func(n *node) bool {
		about, hasAbout := n.attr(nsRDF, "about")
		if !hasAbout {
			return true
		}
		if n.is(nsOWL, "Class") && about != "" {
			o.addClass(n, about)
		}
		o.addIndividual(n, about)
		return true
	})

	o.Loaded = true
	return o, nil
}

func (o *Ontology) addClass(n *node, uri string) {
	name := fragment(uri)
	c := &Class{Name: name, URI: uri, Label: name, Type: "class"}
	if l := n.find(nsRDFS, "label"); l != nil {
		c.Label = strings.TrimSpace(l.Text)
	}
	if cm := n.find(nsRDFS, "comment"); cm != nil {
		c.Comment = strings.TrimSpace(cm.Text)
	}
	if sub := n.find(nsRDFS, "subClassOf"); sub != nil {
		if res, ok := sub.attr(nsRDF, "resource"); ok && res != "" {
			c.Parent = fragment(res)
		}
	}
	o.Classes[name] = c
	if c.Parent != "" {
		o.Hierarchy[c.Parent] = append(o.Hierarchy[c.Parent], name)
	}
}

// addIndividual records n when its first rdf:type carries a resource.
func (o *Ontology) addIndividual(n *node, uri string) {
	t := n.find(nsRDF, "type")
	if t == nil {
		return
	}
	res, ok := t.attr(nsRDF, "resource")
	if !ok || res == "" {
		return
	}
	typeName := fragment(res)
	ind := Individual{
		URI:        uri,
		Type:       typeName,
		Label:      typeName,
		Properties: map[string]string{},
	}
	if l := n.find(nsRDFS, "label"); l != nil {
		ind.Label = strings.TrimSpace(l.Text)
	}
	if cm := n.find(nsRDFS, "comment"); cm != nil {
		ind.Comment = strings.TrimSpace(cm.Text)
	}

	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Space == "" {
			continue
		}
		prop := c.XMLName.Local
		if prop == "type" || prop == "label" || prop == "comment" {
			continue
		}
		if text := strings.TrimSpace(c.Text); text != "" {
			ind.Properties[prop] = text
		} else if res, ok := c.attr(nsRDF, "resource"); ok {
			ind.Properties[prop] = fragment(res)
		} else {
			ind.Properties[prop] = ""
		}
		if dt, ok := c.attr(nsRDF, "datatype"); ok {
			ind.setDatatype(prop, dt)
		} else if dt, ok := c.attr(nsXSD, "datatype"); ok {
			ind.setDatatype(prop, dt)
		}
	}
	o.Individuals = append(o.Individuals, ind)
}

func (ind *Individual) setDatatype(prop, dt string) {
	if ind.Datatypes == nil {
		ind.Datatypes = map[string]string{}
	}
	ind.Datatypes[prop] = dt
}

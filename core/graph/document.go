package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// DocumentVersion is the current blueprint document format version.
const DocumentVersion = 1

// Document is the on-disk blueprint encoding of a schema graph.
type Document struct {
	Version   int               `json:"version"`
	Tables    []*Table          `json:"tables"`
	Edges     []*ForeignKeyEdge `json:"edges,omitempty"`
	EnumTypes []*EnumType       `json:"enumTypes,omitempty"`
	Settings  Settings          `json:"settings"`
}

// ToJSON serializes the graph to an indented blueprint document.
func (g *SchemaGraph) ToJSON() ([]byte, error) {
	doc := Document{
		Version:   DocumentVersion,
		Tables:    g.Tables,
		Edges:     g.Edges,
		EnumTypes: g.EnumTypes,
		Settings:  g.Settings,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ParseDocument parses a blueprint document into a graph. Entities missing
// IDs (hand-authored documents) are assigned fresh ones.
func ParseDocument(data []byte) (*SchemaGraph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid blueprint document: %w", err)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("unsupported blueprint version %d (newest supported is %d)", doc.Version, DocumentVersion)
	}
	g := &SchemaGraph{
		Tables:    doc.Tables,
		Edges:     doc.Edges,
		EnumTypes: doc.EnumTypes,
		Settings:  doc.Settings,
	}
	if g.Tables == nil {
		g.Tables = []*Table{}
	}
	g.EnsureIDs()
	return g, nil
}

// LoadDocument reads a blueprint document from disk.
func LoadDocument(path string) (*SchemaGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint: %w", err)
	}
	return ParseDocument(data)
}

// SaveDocument writes the graph to disk as a blueprint document.
func SaveDocument(path string, g *SchemaGraph) error {
	data, err := g.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write blueprint: %w", err)
	}
	return nil
}

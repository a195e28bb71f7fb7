package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orchestrated/intentgate/internal/types"
)

// rootKey returns whichever of "active_intents" / "intents" is present
// in doc, preferring the current name.
func rootKey(doc *yaml.Node) (*yaml.Node, string, error) {
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, "", fmt.Errorf("catalog root is not a mapping")
	}
	mapping := doc.Content[0]

	for _, key := range []string{"active_intents", "intents"} {
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			if mapping.Content[i].Value == key {
				return mapping.Content[i+1], key, nil
			}
		}
	}
	return nil, "", fmt.Errorf("catalog has neither active_intents nor intents key")
}

// findIntentNode locates the mapping node for id within a sequence node
// of intent entries.
func findIntentNode(seq *yaml.Node, id string) (*yaml.Node, error) {
	for _, entry := range seq.Content {
		if entry.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(entry.Content); i += 2 {
			if entry.Content[i].Value == "id" && entry.Content[i+1].Value == id {
				return entry, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", types.ErrIntentNotFound, id)
}

// setMappingField overwrites (or appends) a scalar string field within
// a mapping node, preserving every other field's position and the
// document's comments.
func setMappingField(mapping *yaml.Node, field, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == field {
			mapping.Content[i+1].Value = value
			mapping.Content[i+1].Tag = "!!str"
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: field},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: "!!str"},
	)
}

func (c *Catalog) readDocument() (*yaml.Node, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog for mutation: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCatalogParse, err)
	}
	return &doc, nil
}

func (c *Catalog) writeDocument(doc *yaml.Node) error {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("writing catalog temp file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing catalog file: %w", err)
	}

	c.mu.Lock()
	c.intents = nil
	c.mu.Unlock()
	return nil
}

// TransitionIntent moves an intent to newStatus, failing with
// ErrIllegalTransition if the move is not in the allowed transition
// table. It reads the catalog file fresh, mutates it via the
// comment-preserving AST, writes it back, and invalidates the cache.
func (c *Catalog) TransitionIntent(id string, newStatus types.Status, now time.Time) error {
	doc, err := c.readDocument()
	if err != nil {
		return err
	}

	seq, _, err := rootKey(doc)
	if err != nil {
		return err
	}

	entry, err := findIntentNode(seq, id)
	if err != nil {
		return err
	}

	var currentStatus types.Status
	for i := 0; i+1 < len(entry.Content); i += 2 {
		if entry.Content[i].Value == "status" {
			currentStatus = types.Status(entry.Content[i+1].Value)
		}
	}

	if !types.CanTransition(currentStatus, newStatus) {
		return fmt.Errorf("%w: %s -> %s", types.ErrIllegalTransition, currentStatus, newStatus)
	}

	setMappingField(entry, "status", string(newStatus))
	setMappingField(entry, "updated_at", now.UTC().Format(time.RFC3339))

	return c.writeDocument(doc)
}

// UpdateIntentField overwrites field on intent id with value and bumps
// updated_at, preserving the rest of the document.
func (c *Catalog) UpdateIntentField(id, field, value string, now time.Time) error {
	doc, err := c.readDocument()
	if err != nil {
		return err
	}

	seq, _, err := rootKey(doc)
	if err != nil {
		return err
	}

	entry, err := findIntentNode(seq, id)
	if err != nil {
		return err
	}

	setMappingField(entry, field, value)
	setMappingField(entry, "updated_at", now.UTC().Format(time.RFC3339))

	return c.writeDocument(doc)
}

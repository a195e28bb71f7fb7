package context

import (
	"strconv"
	"strings"

	"github.com/orchestrated/intentgate/internal/types"
)

// FormatContextForPrompt renders ctx as a well-formed XML-like block,
// truncated to fit byteBudget by dropping, in order: trace entries
// (oldest first), spec excerpts (one at a time), related files
// (oldest first). The intent's own scope, constraints, and acceptance
// criteria are never dropped. RecentEntries are not rendered, so
// dropping them does not shrink the block. A nil context yields "".
func FormatContextForPrompt(ctx *IntentContext) string {
	if ctx == nil {
		return ""
	}

	working := cloneContext(ctx)
	out := render(working)
	for len(out) > byteBudget && dropOneEntry(working) {
		out = render(working)
	}
	return out
}

func cloneContext(ctx *IntentContext) *IntentContext {
	c := *ctx
	c.RecentEntries = append([]types.LedgerRecord(nil), ctx.RecentEntries...)
	c.SpecExcerpts = append([]SpecExcerpt(nil), ctx.SpecExcerpts...)
	c.RelatedFiles = append([]string(nil), ctx.RelatedFiles...)
	return &c
}

// dropOneEntry removes the single next-cheapest item per the drop
// order, returning false once nothing droppable remains.
func dropOneEntry(c *IntentContext) bool {
	if len(c.RecentEntries) > 0 {
		c.RecentEntries = c.RecentEntries[1:]
		return true
	}
	if len(c.SpecExcerpts) > 0 {
		c.SpecExcerpts = c.SpecExcerpts[1:]
		return true
	}
	if len(c.RelatedFiles) > 0 {
		c.RelatedFiles = c.RelatedFiles[1:]
		return true
	}
	return false
}

func render(c *IntentContext) string {
	var b strings.Builder

	b.WriteString(`<intent_context id="`)
	b.WriteString(escapeXML(c.Intent.ID))
	b.WriteString(`" name="`)
	b.WriteString(escapeXML(c.Intent.Name))
	b.WriteString(`" status="`)
	b.WriteString(escapeXML(string(c.Intent.Status)))
	if c.Intent.Version != 0 {
		b.WriteString(`" version="`)
		b.WriteString(strconv.Itoa(c.Intent.Version))
	}
	b.WriteString("\">\n")

	writeListTag(&b, "scope", "pattern", c.Intent.OwnedScope)
	writeListTag(&b, "constraints", "constraint", c.Intent.Constraints)
	writeListTag(&b, "acceptance_criteria", "criterion", c.Intent.AcceptanceCriteria)

	if len(c.RelatedFiles) > 0 {
		b.WriteString("  <related_files>\n")
		for _, f := range c.RelatedFiles {
			b.WriteString(`    <file path="`)
			b.WriteString(escapeXML(f))
			b.WriteString("\"/>\n")
		}
		b.WriteString("  </related_files>\n")
	}

	if len(c.SpecExcerpts) > 0 {
		b.WriteString("  <related_specs>\n")
		for _, ex := range c.SpecExcerpts {
			b.WriteString("    <spec_excerpt>")
			if ex.Error != "" {
				b.WriteString(escapeXML(ex.Ref + ": " + ex.Error))
			} else {
				b.WriteString(escapeXML(ex.Text))
			}
			b.WriteString("</spec_excerpt>\n")
		}
		b.WriteString("  </related_specs>\n")
	}

	b.WriteString("</intent_context>")
	return b.String()
}

func writeListTag(b *strings.Builder, tag, itemTag string, items []string) {
	b.WriteString("  <")
	b.WriteString(tag)
	b.WriteString(">")
	for _, item := range items {
		b.WriteString("<")
		b.WriteString(itemTag)
		b.WriteString(">")
		b.WriteString(escapeXML(item))
		b.WriteString("</")
		b.WriteString(itemTag)
		b.WriteString(">")
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">\n")
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

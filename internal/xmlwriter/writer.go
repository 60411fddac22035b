// =============================================================================
// PAXML Exporter - XML Writer Module
// =============================================================================
//
// This module renders transactions and schedule blocks into a PAXML 2.2
// document. The payroll system parses the file with a strict parser, so the
// output is byte-exact and deterministic.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="utf-8"?>
//   <paxml xmlns:xsi="..." xsi:noNamespaceSchemaLocation="...">
//     <header>
//       <format>LÖNIN</format>
//       <version>2.2</version>
//     </header>
//     <tidtransaktioner>                          <!-- omitted when empty -->
//       <tidtrans anstid="E001" persnr="198505121234" postid="1">
//         <tidkod>SJK</tidkod>
//         <datum>2024-05-10</datum>
//         <timmar>8.00</timmar>
//         <info>comment</info>                   <!-- omitted when empty -->
//       </tidtrans>
//     </tidtransaktioner>
//     <schematransaktioner>                       <!-- omitted when empty -->
//       <schema anstid="E001" persnr="198505121234">
//         <dag datum="2024-05-10" starttid="08:00" sluttid="16:30" timmar="8.00" />
//       </schema>
//     </schematransaktioner>
//   </paxml>
//
// FORMAT RULES:
//   - Two-space indentation, "\n" line endings, trailing newline.
//   - Hours always carry two decimals.
//   - Text and attribute values are escaped once for & < > " '. CR is
//     written as &#xD; and, inside attributes, tab and LF as character
//     references, so a parser reads back the exact value. Nothing else is
//     changed: no trimming, no truncation.
//   - Values must be legal XML 1.0 text (see LegalText). The validator
//     blocks an export holding anything else.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// Fixed document constants.
const (
	Declaration       = `<?xml version="1.0" encoding="utf-8"?>`
	SchemaInstanceNS  = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation    = "http://www.paxml.se/2.2/paxml.xsd"
	Format            = "LÖNIN"
	Version           = "2.2"
	indent            = "  "
	ContentType       = "application/xml"
	ContentTypeHeader = ContentType + "; charset=utf-8"
)

// =============================================================================
// ELEMENT TREE
// =============================================================================

// attribute is one name="value" pair. Order is preserved.
type attribute struct {
	name  string
	value string
}

// element is a node of the output tree. An element with neither value nor
// children is written self-closing.
type element struct {
	name       string
	attributes []attribute
	value      string
	children   []element
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Serialize renders the document.
//
// PARAMETERS:
//   - transactions: Validated transactions in export order.
//   - schedules: Optional schedule blocks; nil or empty omits the section.
//
// RETURNS:
//   - The complete document.
func Serialize(transactions []types.Transaction, schedules []types.ScheduleTransaction) string {
	root := element{
		name: "paxml",
		attributes: []attribute{
			{"xmlns:xsi", SchemaInstanceNS},
			{"xsi:noNamespaceSchemaLocation", SchemaLocation},
		},
		children: []element{{
			name: "header",
			children: []element{
				{name: "format", value: Format},
				{name: "version", value: Version},
			},
		}},
	}

	if len(transactions) > 0 {
		section := element{name: "tidtransaktioner"}
		for i, transaction := range transactions {
			section.children = append(section.children, buildTransactionElement(transaction, i))
		}
		root.children = append(root.children, section)
	}

	if len(schedules) > 0 {
		section := element{name: "schematransaktioner"}
		for _, block := range schedules {
			section.children = append(section.children, buildScheduleElement(block))
		}
		root.children = append(root.children, section)
	}

	var buffer bytes.Buffer
	buffer.WriteString(Declaration)
	buffer.WriteString("\n")
	writeElement(&buffer, root, 0)
	return buffer.String()
}

// buildTransactionElement creates a <tidtrans> element. The postid is the
// transaction's sequence number, or its 1-based position when unset.
func buildTransactionElement(transaction types.Transaction, index int) element {
	postID := transaction.Sequence
	if postID <= 0 {
		postID = index + 1
	}

	tidtrans := element{
		name: "tidtrans",
		attributes: []attribute{
			{"anstid", transaction.EmployeeID},
			{"persnr", transaction.PersonalNumber},
			{"postid", strconv.Itoa(postID)},
		},
		children: []element{
			{name: "tidkod", value: transaction.TimeCode},
			{name: "datum", value: transaction.Date},
			{name: "timmar", value: FormatHours(transaction.Hours)},
		},
	}
	if transaction.Comment != "" {
		tidtrans.children = append(tidtrans.children, element{name: "info", value: transaction.Comment})
	}
	return tidtrans
}

// buildScheduleElement creates a <schema> element with one <dag> per day.
func buildScheduleElement(block types.ScheduleTransaction) element {
	schema := element{
		name: "schema",
		attributes: []attribute{
			{"anstid", block.EmployeeID},
			{"persnr", block.PersonalNumber},
		},
	}
	for _, day := range block.Days {
		dag := element{name: "dag", attributes: []attribute{{"datum", day.Date}}}
		if day.StartTime != "" {
			dag.attributes = append(dag.attributes, attribute{"starttid", types.NormalizeClock(day.StartTime)})
		}
		if day.EndTime != "" {
			dag.attributes = append(dag.attributes, attribute{"sluttid", types.NormalizeClock(day.EndTime)})
		}
		dag.attributes = append(dag.attributes, attribute{"timmar", FormatHours(day.Hours)})
		schema.children = append(schema.children, dag)
	}
	return schema
}

// FormatHours renders hours with exactly two decimals.
func FormatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 2, 64)
}

// writeElement writes an element and its subtree to the buffer.
func writeElement(buffer *bytes.Buffer, node element, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(node.name)
	for _, attr := range node.attributes {
		buffer.WriteString(" ")
		buffer.WriteString(attr.name)
		buffer.WriteString(`="`)
		buffer.WriteString(escapeAttribute(attr.value))
		buffer.WriteString(`"`)
	}

	if len(node.children) == 0 && node.value == "" {
		buffer.WriteString(" />\n")
		return
	}
	buffer.WriteString(">")

	if len(node.children) == 0 {
		buffer.WriteString(escapeXML(node.value))
	} else {
		buffer.WriteString("\n")
		for _, child := range node.children {
			writeElement(buffer, child, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(node.name)
	buffer.WriteString(">\n")
}

// escapeXML escapes the five reserved markup characters and CR.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		case '\r':
			buffer.WriteString("&#xD;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// escapeAttribute also protects tab and LF from attribute normalization.
func escapeAttribute(s string) string {
	var buffer bytes.Buffer

	for _, r := range escapeXML(s) {
		switch r {
		case '\t':
			buffer.WriteString("&#x9;")
		case '\n':
			buffer.WriteString("&#xA;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// LegalText reports whether s is valid UTF-8 made only of characters XML 1.0
// allows. On failure it returns the byte offset of the first bad character.
func LegalText(s string) (int, bool) {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return i, false
			}
		}
		if !isXMLChar(r) {
			return i, false
		}
	}
	return 0, true
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

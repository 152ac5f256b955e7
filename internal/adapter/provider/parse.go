package provider

import (
	"strings"

	"pdfqa/internal/domain"
)

// Model output is parsed with strict line-oriented contracts. It is
// never evaluated or interpreted beyond the formats below.

// parseQueryVariants extracts up to n rephrasings from raw model
// output, one per line. List markers, numbering, and surrounding
// quotes are trimmed; empty lines and preamble lines ending in a colon
// are dropped. n <= 0 means no cap.
func parseQueryVariants(raw string, n int) []string {
	var variants []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•*")
		line = strings.TrimLeft(line, "0123456789.) ")
		line = strings.Trim(line, `"' `)
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		variants = append(variants, line)
		if n > 0 && len(variants) == n {
			break
		}
	}
	return variants
}

// parseMetadata parses the fixed key/value metadata contract:
//
//	topic: <topic or none>
//	entities: <comma-separated or none>
//	section_title: <title or none>
//
// Lines outside the contract are ignored. Output that yields no
// recognized field degrades to the empty record.
func parseMetadata(raw string) domain.ChunkMetadata {
	var meta domain.ChunkMetadata
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, "none") || strings.EqualFold(value, "null") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "topic":
			meta.Topic = value
		case "entities":
			for _, e := range strings.Split(value, ",") {
				if e = strings.TrimSpace(e); e != "" {
					meta.Entities = append(meta.Entities, e)
				}
			}
		case "section_title", "section title", "section":
			meta.SectionTitle = value
		}
	}
	return meta
}

package slurm

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Parse converts raw delimited command output into a RecordSet under the
// given schema. Malformed lines degrade gracefully: a line with fewer tokens
// than declared fields still yields a record with the missing fields empty,
// counted as a warning. Lines with an empty or duplicate identity key are
// dropped, also counted as warnings. Parsing fails outright only when at
// least one content line was present and none of them produced a record.
func Parse(raw string, kind QueryKind, schema FieldSchema, seq uint64) (RecordSet, *Failure) {
	set := RecordSet{
		Kind:      kind,
		Seq:       seq,
		Identity:  schema.Identity,
		FetchedAt: time.Now(),
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if schema.SkipLines > 0 && schema.SkipLines < len(lines) {
		lines = lines[schema.SkipLines:]
	} else if schema.SkipLines >= len(lines) {
		lines = nil
	}

	seen := make(map[string]bool)
	content := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		content++

		rec, short, ok := parseLine(line, schema)
		if !ok {
			set.Warnings++
			continue
		}
		if short {
			set.Warnings++
		}

		key := rec.Get(schema.Identity)
		if key == "" || seen[key] {
			// Never silently merge entities; drop and flag instead.
			set.Warnings++
			continue
		}
		seen[key] = true
		set.Records = append(set.Records, rec)
	}

	if content > 0 && len(set.Records) == 0 {
		return set, &Failure{
			Kind:    FailParse,
			Query:   kind,
			Message: fmt.Sprintf("no parseable records in %d line(s)", content),
		}
	}
	return set, nil
}

func parseLine(line string, schema FieldSchema) (rec Record, short, ok bool) {
	tokens := strings.SplitN(line, schema.Delimiter, len(schema.Fields))
	if len(tokens) == 0 {
		return nil, false, false
	}
	if len(tokens) < len(schema.Fields) {
		// Partial data beats no data for monitoring; missing fields stay empty.
		any := false
		for _, tok := range tokens {
			if strings.TrimSpace(tok) != "" {
				any = true
				break
			}
		}
		if !any {
			return nil, false, false
		}
		short = true
	}

	rec = make(Record, len(schema.Fields))
	for i, f := range schema.Fields {
		value := ""
		if i < len(tokens) {
			value = strings.TrimSpace(tokens[i])
			if f.Width > 0 && runewidth.StringWidth(value) > f.Width {
				value = runewidth.Truncate(value, f.Width, "")
			}
		}
		rec[f.Name] = value
	}
	return rec, short, true
}

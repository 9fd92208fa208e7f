package progress

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Source identifies where a record's answered/correct counts came from.
type Source int

const (
	// SourceScoreHeuristic infers one correct answer from a passing score.
	// It exists for older records written before per-question results were
	// stored and is intentionally lossy.
	SourceScoreHeuristic Source = iota
	// SourceStructured counts a list of per-question results.
	SourceStructured
	// SourceLegacySingle counts a single per-question result object.
	SourceLegacySingle
)

// HeuristicPassScore is the minimum score that counts as one correct
// answer when no per-question results are stored.
const HeuristicPassScore = 70

func (s Source) String() string {
	switch s {
	case SourceStructured:
		return "structured"
	case SourceLegacySingle:
		return "legacy_single"
	case SourceScoreHeuristic:
		return "score_heuristic"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Tally is one record's contribution to a learner's question totals.
type Tally struct {
	Source   Source
	Answered int
	Correct  int
}

// Add accumulates another tally's counts.
func (t *Tally) Add(o Tally) {
	t.Answered += o.Answered
	t.Correct += o.Correct
}

// Classify resolves a record's answer source in priority order: a list of
// per-question results, then a single legacy result object, then the
// score heuristic. Malformed question results never fail; they fall
// through to the next source.
func Classify(r Record) Tally {
	if doc, ok := decodeResults(r.QuestionResults); ok {
		schemas, err := compiledSchemas()
		if err == nil {
			if schemas.structured.Validate(doc) == nil {
				return countStructured(doc)
			}
			if schemas.legacy.Validate(doc) == nil {
				return countLegacy(doc)
			}
		}
	}
	return scoreHeuristic(r.Score)
}

func decodeResults(raw json.RawMessage) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

func countStructured(doc any) Tally {
	items, _ := doc.([]any)
	t := Tally{Source: SourceStructured, Answered: len(items)}
	for _, item := range items {
		if isCorrect(item) {
			t.Correct++
		}
	}
	return t
}

func countLegacy(doc any) Tally {
	t := Tally{Source: SourceLegacySingle, Answered: 1}
	if isCorrect(doc) {
		t.Correct = 1
	}
	return t
}

func scoreHeuristic(score int) Tally {
	if score >= HeuristicPassScore {
		return Tally{Source: SourceScoreHeuristic, Answered: 1, Correct: 1}
	}
	return Tally{Source: SourceScoreHeuristic}
}

func isCorrect(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	correct, _ := obj["correct"].(bool)
	return correct
}

var structuredResultsSchema = map[string]any{
	"type":     "array",
	"minItems": 1,
	// Every item counts as answered; only "correct": true counts as correct.
	"items": map[string]any{"type": "object"},
}

var legacyResultSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"correct": map[string]any{"type": "boolean"},
	},
	"required": []any{"correct"},
}

type resultSchemas struct {
	structured *jsonschema.Schema
	legacy     *jsonschema.Schema
}

var compiledSchemas = sync.OnceValues(func() (*resultSchemas, error) {
	structured, err := compileSchema("question-results", structuredResultsSchema)
	if err != nil {
		return nil, err
	}
	legacy, err := compileSchema("question-result", legacyResultSchema)
	if err != nil {
		return nil, err
	}
	return &resultSchemas{structured: structured, legacy: legacy}, nil
})

func compileSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	// Round-trip through JSON so the compiler sees plain decoded values.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return compiled, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ModelJudgment holds the validated fields extracted from one model reply.
type ModelJudgment struct {
	Score     int
	Level     string
	DataTypes []string
}

// replyPayload mirrors the JSON object the prompt asks for. RawMessage
// fields tolerate the shape drift local models produce (numbers as strings,
// arrays as single strings, and so on).
type replyPayload struct {
	RiskScore      json.RawMessage `json:"risk_score"`
	Classification json.RawMessage `json:"classification"`
	DataType       json.RawMessage `json:"data_type"`
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	scoreFieldRe = regexp.MustCompile(`(?i)\b(?:risk[_ ]?score|risk|score)\b\s*[:=]\s*"?([0-9]+(?:\.[0-9]+)?)`)
	levelFieldRe = regexp.MustCompile(`(?i)\b(?:classification|level)\b\s*[:=]\s*"?([^",\n]+)`)
	typesFieldRe = regexp.MustCompile(`(?i)\b(?:data[_ ]?types?|types)\b\s*[:=]\s*\[?([^\]\n]*)`)
)

// ParseModelReply extracts a judgment from a raw model reply. It is a pure
// function: the same text and schema always yield the same result.
//
// Extraction is layered: a fenced JSON block, then a bare JSON object, then
// labelled fields in free text. A field that is present but invalid (score
// out of range, level not in the schema) fails the whole record; a field
// that is simply absent falls back to its sentinel. A reply with no
// recognizable fields at all is a parse failure.
func ParseModelReply(schema ClassificationSchema, text string) (ModelJudgment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ModelJudgment{}, fmt.Errorf("empty reply")
	}

	var scoreRaw, levelRaw string
	var typesRaw []string
	var scoreFound, levelFound, typesFound bool

	if payload, ok := extractJSONPayload(trimmed); ok {
		scoreRaw, scoreFound = rawToString(payload.RiskScore)
		levelRaw, levelFound = rawToString(payload.Classification)
		typesRaw, typesFound = rawToStrings(payload.DataType)
	} else {
		if m := scoreFieldRe.FindStringSubmatch(trimmed); m != nil {
			scoreRaw, scoreFound = m[1], true
		}
		if m := levelFieldRe.FindStringSubmatch(trimmed); m != nil {
			levelRaw, levelFound = strings.TrimSpace(m[1]), true
		}
		if m := typesFieldRe.FindStringSubmatch(trimmed); m != nil {
			typesRaw, typesFound = splitTags(m[1]), true
		}
	}

	if !scoreFound && !levelFound && !typesFound {
		return ModelJudgment{}, fmt.Errorf("no recognizable fields in reply")
	}

	judgment := ModelJudgment{Score: scoreUnknown, Level: sentinelUnknown}

	if scoreFound {
		f, err := strconv.ParseFloat(strings.TrimSpace(scoreRaw), 64)
		if err != nil {
			return ModelJudgment{}, fmt.Errorf("risk score %q is not numeric", scoreRaw)
		}
		score := int(f)
		if !schema.ScoreInRange(score) {
			return ModelJudgment{}, fmt.Errorf("risk score %d outside [%d, %d]", score, schema.MinScore, schema.MaxScore)
		}
		judgment.Score = score
	}

	if levelFound {
		level, ok := schema.MatchLevel(levelRaw)
		if !ok {
			return ModelJudgment{}, fmt.Errorf("classification %q does not match any schema level", levelRaw)
		}
		judgment.Level = level
	}

	if typesFound {
		judgment.DataTypes = typesRaw
	}

	return judgment, nil
}

// extractJSONPayload pulls a JSON object out of the reply: a ```json fenced
// block first (reasoning mode puts prose before it), then the outermost
// brace pair for models that emit raw JSON.
func extractJSONPayload(text string) (replyPayload, bool) {
	var payload replyPayload

	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &payload); err == nil {
			return payload, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err == nil {
			return payload, true
		}
	}

	return replyPayload{}, false
}

func rawToString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString), true
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.FormatFloat(asNumber, 'f', -1, 64), true
	}

	return "", false
}

func rawToStrings(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}

	// Primary expected shape: ["PII", "financial"]
	var asStringSlice []string
	if err := json.Unmarshal(raw, &asStringSlice); err == nil {
		var out []string
		for _, s := range asStringSlice {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	}

	// Also accept "PII, financial".
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return splitTags(asString), true
	}

	// Fallback for mixed arrays.
	var asAnySlice []any
	if err := json.Unmarshal(raw, &asAnySlice); err == nil {
		var out []string
		for _, v := range asAnySlice {
			if s, ok := v.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out, true
	}

	return nil, false
}

func splitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

package main

import (
	"reflect"
	"testing"
)

func fourLevelSchema() ClassificationSchema {
	return ClassificationSchema{
		Levels:   []string{"low", "medium", "high", "critical"},
		MinScore: 1,
		MaxScore: 10,
	}
}

func TestParseModelReply_LabelledFields(t *testing.T) {
	got, err := ParseModelReply(fourLevelSchema(), "risk: 8, level: high, types: PII, financial")
	if err != nil {
		t.Fatalf("ParseModelReply failed: %v", err)
	}
	if got.Score != 8 {
		t.Fatalf("expected score 8, got %d", got.Score)
	}
	if got.Level != "high" {
		t.Fatalf("expected level high, got %q", got.Level)
	}
	if !reflect.DeepEqual(got.DataTypes, []string{"PII", "financial"}) {
		t.Fatalf("unexpected data types: %v", got.DataTypes)
	}
}

func TestParseModelReply_RawJSON(t *testing.T) {
	reply := `{"risk_score": 10, "classification": "critical", "data_type": ["credentials"]}`
	got, err := ParseModelReply(fourLevelSchema(), reply)
	if err != nil {
		t.Fatalf("ParseModelReply failed: %v", err)
	}
	if got.Score != 10 || got.Level != "critical" {
		t.Fatalf("unexpected judgment: %+v", got)
	}
	if !reflect.DeepEqual(got.DataTypes, []string{"credentials"}) {
		t.Fatalf("unexpected data types: %v", got.DataTypes)
	}
}

func TestParseModelReply_FencedJSONWithReasoningPreamble(t *testing.T) {
	reply := "The name suggests payroll data, which is financial PII.\n" +
		"Salary information maps to the high level.\n\n" +
		"```json\n{\"risk_score\": 8, \"classification\": \"high\", \"data_type\": [\"PII\", \"financial\"]}\n```\n"
	got, err := ParseModelReply(fourLevelSchema(), reply)
	if err != nil {
		t.Fatalf("ParseModelReply failed: %v", err)
	}
	if got.Score != 8 || got.Level != "high" {
		t.Fatalf("unexpected judgment: %+v", got)
	}
}

func TestParseModelReply_NYUSchemaLevels(t *testing.T) {
	reply := `{"risk_score": 10, "classification": "High Risk (Level 3)", "data_type": ["credentials"]}`
	got, err := ParseModelReply(DefaultSchema(), reply)
	if err != nil {
		t.Fatalf("ParseModelReply failed: %v", err)
	}
	if got.Level != "High Risk (Level 3)" {
		t.Fatalf("unexpected level: %q", got.Level)
	}
}

func TestParseModelReply_StringScoreAndStringTypes(t *testing.T) {
	reply := `{"risk_score": "7", "classification": "high", "data_type": "PII, health"}`
	got, err := ParseModelReply(fourLevelSchema(), reply)
	if err != nil {
		t.Fatalf("ParseModelReply failed: %v", err)
	}
	if got.Score != 7 {
		t.Fatalf("expected score 7, got %d", got.Score)
	}
	if !reflect.DeepEqual(got.DataTypes, []string{"PII", "health"}) {
		t.Fatalf("unexpected data types: %v", got.DataTypes)
	}
}

func TestParseModelReply_EmptyTypesIsOK(t *testing.T) {
	reply := `{"risk_score": 2, "classification": "low", "data_type": []}`
	got, err := ParseModelReply(fourLevelSchema(), reply)
	if err != nil {
		t.Fatalf("expected success with empty data types, got %v", err)
	}
	if len(got.DataTypes) != 0 {
		t.Fatalf("expected empty data types, got %v", got.DataTypes)
	}
}

func TestParseModelReply_ScoreAndLevelOnly(t *testing.T) {
	got, err := ParseModelReply(fourLevelSchema(), "risk: 5, level: medium")
	if err != nil {
		t.Fatalf("expected success without a types field, got %v", err)
	}
	if got.Score != 5 || got.Level != "medium" {
		t.Fatalf("unexpected judgment: %+v", got)
	}
	if len(got.DataTypes) != 0 {
		t.Fatalf("expected no data types, got %v", got.DataTypes)
	}
}

func TestParseModelReply_MissingFieldsGetSentinels(t *testing.T) {
	got, err := ParseModelReply(fourLevelSchema(), `{"classification": "high"}`)
	if err != nil {
		t.Fatalf("expected partial reply to succeed, got %v", err)
	}
	if got.Score != scoreUnknown {
		t.Fatalf("expected unknown score sentinel, got %d", got.Score)
	}
	if got.Level != "high" {
		t.Fatalf("unexpected level: %q", got.Level)
	}
}

func TestParseModelReply_EmptyReply(t *testing.T) {
	if _, err := ParseModelReply(fourLevelSchema(), ""); err == nil {
		t.Fatal("expected parse failure for empty reply")
	}
	if _, err := ParseModelReply(fourLevelSchema(), "   \n"); err == nil {
		t.Fatal("expected parse failure for whitespace reply")
	}
}

func TestParseModelReply_NoFields(t *testing.T) {
	if _, err := ParseModelReply(fourLevelSchema(), "I cannot help with that."); err == nil {
		t.Fatal("expected parse failure when no fields are present")
	}
	if _, err := ParseModelReply(fourLevelSchema(), "{}"); err == nil {
		t.Fatal("expected parse failure for an empty JSON object")
	}
}

func TestParseModelReply_OutOfRangeScore(t *testing.T) {
	if _, err := ParseModelReply(fourLevelSchema(), `{"risk_score": 42, "classification": "high"}`); err == nil {
		t.Fatal("expected parse failure for out-of-range score")
	}
	if _, err := ParseModelReply(fourLevelSchema(), `{"risk_score": 0, "classification": "high"}`); err == nil {
		t.Fatal("expected parse failure for score below range")
	}
}

func TestParseModelReply_UnmatchedLevel(t *testing.T) {
	if _, err := ParseModelReply(fourLevelSchema(), `{"risk_score": 5, "classification": "catastrophic"}`); err == nil {
		t.Fatal("expected parse failure for a level outside the schema")
	}
}

func TestParseModelReply_Idempotent(t *testing.T) {
	reply := "Some preamble text.\n```json\n{\"risk_score\": 6, \"classification\": \"medium\", \"data_type\": [\"internal\"]}\n```"
	first, err1 := ParseModelReply(fourLevelSchema(), reply)
	second, err2 := ParseModelReply(fourLevelSchema(), reply)
	if err1 != nil || err2 != nil {
		t.Fatalf("ParseModelReply failed: %v / %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-parsing differed: %+v vs %+v", first, second)
	}
}

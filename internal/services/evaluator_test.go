package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recruitment-audit-agent/internal/models"
)

type stubCompletion struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (s *stubCompletion) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubMajors struct {
	category string
}

func (s stubMajors) MapCategory(string) string               { return s.category }
func (s stubMajors) IsMajorAcceptable(string, []string) bool { return false }

func newTestEvaluator(completion CompletionService, category string) *evaluatorService {
	return &evaluatorService{
		completion:    completion,
		majors:        stubMajors{category: category},
		promptBuilder: NewPromptBuilder(),
		now: func() time.Time {
			return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
		},
	}
}

func sampleCandidate() *models.Candidate {
	return &models.Candidate{
		Name:            "张三",
		Birthdate:       "1995-06-15",
		Education:       "本科",
		Degree:          "学士",
		Major:           "计算机科学与技术",
		PoliticalStatus: "共产党员",
		Location:        "北京市",
		Certificates:    []string{"计算机二级"},
		Experience:      "3年软件开发经验",
	}
}

const sampleJD = "岗位要求：1. 年龄30岁以下 2. 本科及以上学历 3. 专业：计算机科学与技术、软件工程"

func TestEvaluateSuccessFillsOmittedDerivedFields(t *testing.T) {
	stub := &stubCompletion{reply: "```json\n" +
		`{"verdict": "通过", "criteria": [{"name": "年龄", "job_requirement": "30岁以下", "candidate_evidence": "29岁", "match": "Yes", "rationale": "29 < 30"}], "missing_data": ["健康状况"]}` +
		"\n```\n结论：通过\n- 年龄符合要求\n"}
	ev := newTestEvaluator(stub, "计算机类")

	summary, result := ev.Evaluate(context.Background(), sampleCandidate(), sampleJD)

	if result.Verdict != models.VerdictPass {
		t.Errorf("verdict = %q, want %q", result.Verdict, models.VerdictPass)
	}
	if result.DerivedFields.CandidateAge != "29" {
		t.Errorf("candidate_age = %q, want 29 (computed locally)", result.DerivedFields.CandidateAge)
	}
	if result.DerivedFields.NormalizedMajor != "计算机科学与技术" {
		t.Errorf("normalized_major = %q, want 计算机科学与技术", result.DerivedFields.NormalizedMajor)
	}
	if len(result.MissingData) != 1 || result.MissingData[0] != "健康状况" {
		t.Errorf("missing_data = %v, want [健康状况]", result.MissingData)
	}
	if len(result.Criteria) != 1 || result.Criteria[0].Match != models.MatchYes {
		t.Errorf("criteria = %v, want one Yes criterion", result.Criteria)
	}
	if !strings.Contains(summary, "结论：通过") {
		t.Errorf("summary = %q, want it to contain 结论：通过", summary)
	}
}

func TestEvaluateModelDerivedFieldsKept(t *testing.T) {
	stub := &stubCompletion{reply: "```json\n" +
		`{"verdict": "通过", "derived_fields": {"candidate_age": "30", "age_cutoff": {"op": "on_or_before", "date": "1994-06-15"}, "normalized_major": "软件工程"}, "criteria": []}` +
		"\n```\n结论：通过\n"}
	ev := newTestEvaluator(stub, "计算机类")

	_, result := ev.Evaluate(context.Background(), sampleCandidate(), sampleJD)

	if result.DerivedFields.CandidateAge != "30" {
		t.Errorf("candidate_age = %q, want model-supplied 30", result.DerivedFields.CandidateAge)
	}
	if result.DerivedFields.NormalizedMajor != "软件工程" {
		t.Errorf("normalized_major = %q, want model-supplied 软件工程", result.DerivedFields.NormalizedMajor)
	}
	if result.DerivedFields.AgeCutoff == nil || result.DerivedFields.AgeCutoff.Op != "on_or_before" {
		t.Errorf("age_cutoff = %v, want model-supplied on_or_before", result.DerivedFields.AgeCutoff)
	}
}

func TestEvaluateCompletionFailure(t *testing.T) {
	stub := &stubCompletion{err: &CompletionError{Err: errors.New("connection refused")}}
	ev := newTestEvaluator(stub, "计算机类")

	summary, result := ev.Evaluate(context.Background(), sampleCandidate(), sampleJD)

	if result.Verdict != models.VerdictPending {
		t.Errorf("verdict = %q, want %q", result.Verdict, models.VerdictPending)
	}
	if len(result.Criteria) != 1 {
		t.Fatalf("criteria count = %d, want exactly 1", len(result.Criteria))
	}
	if result.Criteria[0].Name != "系统错误" {
		t.Errorf("criterion name = %q, want 系统错误", result.Criteria[0].Name)
	}
	if result.Criteria[0].Match != models.MatchUnknown {
		t.Errorf("criterion match = %q, want Unknown", result.Criteria[0].Match)
	}
	if !strings.Contains(summary, "connection refused") {
		t.Errorf("summary = %q, want it to contain the failure reason", summary)
	}
	if result.DerivedFields.CandidateAge != "29" {
		t.Errorf("candidate_age = %q, want locally computed 29 on failure", result.DerivedFields.CandidateAge)
	}
}

func TestEvaluateUnparsableReply(t *testing.T) {
	stub := &stubCompletion{reply: "结论：通过，但没有返回任何JSON。"}
	ev := newTestEvaluator(stub, "计算机类")

	summary, result := ev.Evaluate(context.Background(), sampleCandidate(), sampleJD)

	if result.Verdict != models.VerdictPending {
		t.Errorf("verdict = %q, want %q", result.Verdict, models.VerdictPending)
	}
	if len(result.Criteria) != 1 {
		t.Fatalf("criteria count = %d, want exactly 1", len(result.Criteria))
	}
	if result.Criteria[0].Name != "AI解析" {
		t.Errorf("criterion name = %q, want AI解析", result.Criteria[0].Name)
	}
	if result.Criteria[0].Match != models.MatchUnknown {
		t.Errorf("criterion match = %q, want Unknown", result.Criteria[0].Match)
	}
	if summary != "AI解析异常，需人工审核" {
		t.Errorf("summary = %q, want the fixed parse-failure message", summary)
	}
}

func TestEvaluateMissingBirthdate(t *testing.T) {
	stub := &stubCompletion{reply: "```json\n" +
		`{"verdict": "待核验", "criteria": []}` +
		"\n```\n结论：待核验\n"}
	ev := newTestEvaluator(stub, "计算机类")

	candidate := sampleCandidate()
	candidate.Birthdate = ""

	_, result := ev.Evaluate(context.Background(), candidate, sampleJD)

	if result.DerivedFields.CandidateAge != models.UnknownValue {
		t.Errorf("candidate_age = %q, want %q", result.DerivedFields.CandidateAge, models.UnknownValue)
	}
	found := false
	for _, field := range result.MissingData {
		if field == "出生日期" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing_data = %v, want it to contain 出生日期", result.MissingData)
	}
}

func TestEvaluateMissingDataDeduplicated(t *testing.T) {
	stub := &stubCompletion{reply: "```json\n" +
		`{"verdict": "待核验", "criteria": [], "missing_data": ["出生日期", "健康状况"]}` +
		"\n```\n结论：待核验\n"}
	ev := newTestEvaluator(stub, "计算机类")

	candidate := sampleCandidate()
	candidate.Birthdate = ""

	_, result := ev.Evaluate(context.Background(), candidate, sampleJD)

	count := 0
	for _, field := range result.MissingData {
		if field == "出生日期" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("出生日期 appears %d times in missing_data %v, want exactly once", count, result.MissingData)
	}
}

func TestEvaluatePromptRestatesDerivedValues(t *testing.T) {
	stub := &stubCompletion{reply: "```json\n{\"verdict\": \"通过\", \"criteria\": []}\n```\n结论：通过\n"}
	ev := newTestEvaluator(stub, "计算机类")

	ev.Evaluate(context.Background(), sampleCandidate(), sampleJD)

	if !strings.Contains(stub.lastUser, "29岁") {
		t.Errorf("user prompt does not restate the computed age:\n%s", stub.lastUser)
	}
	if !strings.Contains(stub.lastUser, "计算机类") {
		t.Errorf("user prompt does not restate the mapped category:\n%s", stub.lastUser)
	}
	if !strings.Contains(stub.lastUser, sampleJD) {
		t.Errorf("user prompt does not embed the job requirement text")
	}
	if !strings.Contains(stub.lastSystem, "岗位条件审核") {
		t.Errorf("system prompt is not the audit policy")
	}
}

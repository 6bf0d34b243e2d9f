package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"recruitment-audit-agent/internal/models"
)

// Chinese field labels recorded in missing_data. Kept as the human-readable
// literals downstream consumers already key on.
const (
	missingBirthdateLabel = "出生日期"
	missingMajorLabel     = "专业"
)

type EvaluatorService interface {
	Evaluate(ctx context.Context, candidate *models.Candidate, jobRequirements string) (string, *models.EvaluationResult)
}

type evaluatorService struct {
	completion    CompletionService
	majors        MajorService
	promptBuilder *PromptBuilder
	now           func() time.Time
}

func NewEvaluatorService(completion CompletionService, majors MajorService) EvaluatorService {
	return &evaluatorService{
		completion:    completion,
		majors:        majors,
		promptBuilder: NewPromptBuilder(),
		now:           time.Now,
	}
}

// Evaluate runs one audit: derive the deterministic fields, call the model
// once, split and parse its reply, and reconcile. Completion and parse
// failures are absorbed into degraded 待核验 results; this method never
// returns an error.
func (e *evaluatorService) Evaluate(ctx context.Context, candidate *models.Candidate, jobRequirements string) (string, *models.EvaluationResult) {
	derived := models.DerivedFields{
		CandidateAge:    models.UnknownValue,
		NormalizedMajor: models.UnknownValue,
	}
	var missing []string
	var calculatedAge *int

	if candidate.Birthdate != "" {
		if age, ok := CalculateAge(candidate.Birthdate, e.now()); ok {
			derived.CandidateAge = strconv.Itoa(age)
			calculatedAge = &age
		}
	} else {
		missing = append(missing, missingBirthdateLabel)
	}

	if candidate.Major != "" {
		derived.NormalizedMajor = NormalizeMajor(candidate.Major)
	} else {
		missing = append(missing, missingMajorLabel)
	}

	majorCategory := ""
	if candidate.Major != "" {
		majorCategory = e.majors.MapCategory(candidate.Major)
	}

	userPrompt := e.promptBuilder.BuildAuditPrompt(candidate, jobRequirements, calculatedAge, majorCategory)

	raw, err := e.completion.Complete(ctx, e.promptBuilder.SystemPrompt(), userPrompt)
	if err != nil {
		log.WithError(err).Error("completion service call failed")
		return e.completionFailureResult(err, derived, missing)
	}

	summary, jsonText := splitModelReply(raw)

	var result models.EvaluationResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		log.WithError(err).Warn("model reply JSON is unparsable")
		return e.parseFailureResult(derived, missing)
	}

	reconcile(&result, derived, missing)
	return summary, &result
}

// reconcile merges the deterministic fields into the model's JSON. Keys the
// model supplied are kept; locally computed values fill any it omitted.
// missing_data becomes the deduplicated union of both sides.
func reconcile(result *models.EvaluationResult, derived models.DerivedFields, missing []string) {
	if result.DerivedFields.CandidateAge == "" {
		result.DerivedFields.CandidateAge = derived.CandidateAge
	}
	if result.DerivedFields.NormalizedMajor == "" {
		result.DerivedFields.NormalizedMajor = derived.NormalizedMajor
	}

	result.MissingData = dedupeUnion(result.MissingData, missing)
	if result.Criteria == nil {
		result.Criteria = []models.Criterion{}
	}
	if result.PolicyFlags == nil {
		result.PolicyFlags = []string{}
	}
}

func dedupeUnion(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (e *evaluatorService) parseFailureResult(derived models.DerivedFields, missing []string) (string, *models.EvaluationResult) {
	result := &models.EvaluationResult{
		Verdict:       models.VerdictPending,
		DerivedFields: derived,
		Criteria: []models.Criterion{
			{
				Name:              "AI解析",
				JobRequirement:    "完整岗位要求",
				CandidateEvidence: "候选人完整信息",
				Match:             models.MatchUnknown,
				Rationale:         "AI解析结果格式异常，需人工审核",
			},
		},
		MissingData: dedupeUnion(missing, nil),
		PolicyFlags: []string{},
	}
	return "AI解析异常，需人工审核", result
}

func (e *evaluatorService) completionFailureResult(callErr error, derived models.DerivedFields, missing []string) (string, *models.EvaluationResult) {
	result := &models.EvaluationResult{
		Verdict:       models.VerdictPending,
		DerivedFields: derived,
		Criteria: []models.Criterion{
			{
				Name:              "系统错误",
				JobRequirement:    "API调用",
				CandidateEvidence: "无法获取",
				Match:             models.MatchUnknown,
				Rationale:         "API调用失败：" + callErr.Error(),
			},
		},
		MissingData: dedupeUnion(missing, nil),
		PolicyFlags: []string{},
	}
	return "API调用失败，需人工审核：" + callErr.Error(), result
}

package services

import (
	"encoding/json"
	"fmt"

	"recruitment-audit-agent/internal/models"
)

// auditSystemPrompt is the fixed audit policy. It embeds the full output
// contract: a short prose summary plus a JSON object with verdict, derived
// fields, per-criterion matches, missing data and policy flags.
const auditSystemPrompt = `你是一名用于招聘场景的"岗位条件审核"AI。你的唯一任务：给定（A）候选人信息与（B）岗位要求，逐条判断候选人是否满足要求，并输出简洁、可审计的结论。

输入：候选人信息（学历、学位、专业、出生日期、所在地/户籍、政治面貌、证书、健康、经历等）；岗位要求（地点/单位、岗位类型、年龄、学历与学位、专业清单、证书、政治面貌、经历及其他限制）。

规则：

1. 逐条对照：每项要求输出「要求 → 候选人证据 → 匹配 = Yes/No/Unknown + 一行理由」。
2. 明确从严，模糊从谨：
   * 年龄："以后/及以后"=含当日（on_or_after）；"之前/及以前"=含当日（on_or_before）；展示年龄与对比。
   * 学历&学位：若同时出现，两者都需满足。
   * 专业：JD列举的为**或**逻辑；做字符串规范化（去括号/方向）；仅当与列明或明确等同时判定 Yes；若仅相关且JD未写"相关/相近可"，判定 No。
   * 证书/经验/政治面貌/户籍/健康：严格证据化判定。
   * 地点/单位级别：据文本核验。
3. 证据缺失记 Unknown，并加入 ` + "`missing_data`" + `；禁止臆测。
4. 合规提示：如出现潜在歧视性条件，在 ` + "`policy_flags`" + ` 提示"潜在合规风险：{项}"。
5. 语言与单位：保留原文；日期用 ISO；展示派生字段（年龄、归一化专业名等）。
6. 禁止外部检索，仅基于给定文本。
7. 简洁输出：每条理由一行。

输出格式（必须同时返回摘要与JSON）：

* 摘要（3–6行）：结论：通过/未通过/待核验；关键理由2–5条。
* JSON：
{
"verdict": "通过|未通过|待核验",
"derived_fields": {
"candidate_age": "<years>",
"age_cutoff": {"op": "on_or_after|on_or_before", "date": "YYYY-MM-DD"},
"normalized_major": "<string>"
},
"criteria": [
{"name":"<如：年龄>","job_requirement":"<原文>","candidate_evidence":"<原文或'无'>","match":"Yes|No|Unknown","rationale":"<一句话理由>"}
],
"missing_data": ["<字段>", "..."],
"policy_flags": ["<风险提示>", "..."]
}`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SystemPrompt returns the fixed audit policy instruction.
func (pb *PromptBuilder) SystemPrompt() string {
	return auditSystemPrompt
}

// enrichedCandidate is the candidate view embedded in the user prompt: the
// original attributes plus the deterministically computed age and mapped
// category, so the model does not re-derive them.
type enrichedCandidate struct {
	models.Candidate
	CalculatedAge *int   `json:"calculated_age,omitempty"`
	MajorCategory string `json:"major_category,omitempty"`
}

// BuildAuditPrompt assembles the per-request user message: the enriched
// candidate as indented JSON, the raw job requirement text, and an explicit
// restatement of the computed age and major category to keep the model from
// doing its own arithmetic.
func (pb *PromptBuilder) BuildAuditPrompt(candidate *models.Candidate, jobRequirements string, calculatedAge *int, majorCategory string) string {
	enriched := enrichedCandidate{Candidate: *candidate}
	if calculatedAge != nil {
		enriched.CalculatedAge = calculatedAge
	}
	if candidate.Major != "" {
		enriched.MajorCategory = majorCategory
	}

	candidateJSON, err := json.MarshalIndent(enriched, "", "  ")
	if err != nil {
		candidateJSON = []byte("{}")
	}

	ageText := models.UnknownValue
	if calculatedAge != nil {
		ageText = fmt.Sprintf("%d", *calculatedAge)
	}
	majorText := candidate.Major
	if majorText == "" {
		majorText = models.UnknownValue
	}

	return fmt.Sprintf(`请根据以下候选人信息和岗位要求，进行逐条比对审核：

候选人信息：
%s

岗位要求：
%s

请严格按照系统提示的规则和输出格式进行审核。特别注意：
1. 年龄计算基于出生日期，候选人当前年龄为%s岁（如有）
2. 专业匹配时，候选人专业"%s"对应的大类为"%s"（如适用）
3. 每项要求都要明确输出匹配结果：Yes/No/Unknown
4. 缺失信息标记为Unknown，不要推测
`, candidateJSON, jobRequirements, ageText, majorText, majorCategory)
}

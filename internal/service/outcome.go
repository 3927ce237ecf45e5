package service

import "SevenDay/internal/model"

// StepStatus 报告落库之后各个后续步骤的结果
type StepStatus string

const (
	StepSucceeded   StepStatus = "succeeded"
	StepSkipped     StepStatus = "skipped"
	StepAlreadyDone StepStatus = "already_done"
	StepFailed      StepStatus = "failed"
)

const (
	StepPublication = "publication"
	StepCompletion  = "completion"
)

// StepOutcome 单个步骤的结果，失败时带上错误信息
type StepOutcome struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

func succeeded(step string) StepOutcome   { return StepOutcome{Step: step, Status: StepSucceeded} }
func skipped(step string) StepOutcome     { return StepOutcome{Step: step, Status: StepSkipped} }
func alreadyDone(step string) StepOutcome { return StepOutcome{Step: step, Status: StepAlreadyDone} }

func failed(step string, err error) StepOutcome {
	return StepOutcome{Step: step, Status: StepFailed, Error: err.Error()}
}

// OK 没有失败即可，skipped 与 already_done 都算完成
func (o StepOutcome) OK() bool {
	return o.Status != StepFailed
}

// GenerationResult 一次生成的完整结果。
// 拿到它说明报告已经存在；动态发布与结营是否完成看各自的 StepOutcome。
type GenerationResult struct {
	Report      *model.Report
	Post        *model.Post
	Publication StepOutcome
	Completion  StepOutcome
	// Replayed 本期报告早已存在，本次只补跑了后续步骤
	Replayed bool
}

// FullySucceeded 报告已存在且所有后续步骤都没有失败
func (r *GenerationResult) FullySucceeded() bool {
	return r != nil && r.Report != nil && r.Publication.OK() && r.Completion.OK()
}

package errors

import stderrors "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	Forbidden       = Definition{Code: "FORBIDDEN", Message: "Capability required"}
	InvalidUserID   = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	ErrUserNotFound = Definition{Code: "USER_NOT_FOUND", Message: "Participant not found"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
)

// 训练营打卡错误。
var (
	ProgramNotActive   = Definition{Code: "PROGRAM_NOT_ACTIVE", Message: "Program is not in progress"}
	ProgramStarted     = Definition{Code: "PROGRAM_ALREADY_STARTED", Message: "Program already started"}
	DayLocked          = Definition{Code: "DAY_LOCKED", Message: "This day is not unlocked yet"}
	DayOutOfWindow     = Definition{Code: "DAY_OUT_OF_WINDOW", Message: "Today is outside the program window"}
	CheckInAlreadyDone = Definition{Code: "CHECK_IN_ALREADY_DONE", Message: "Check-in already done"}
	CheckInNotFound    = Definition{Code: "CHECK_IN_NOT_FOUND", Message: "Check-in not found"}
	NoMissedDay        = Definition{Code: "NO_MISSED_DAY", Message: "No missed day detected"}
	ResetNotConfirmed  = Definition{Code: "RESET_NOT_CONFIRMED", Message: "Reset requires explicit confirmation"}
)

// 报告生成流水线错误。
var (
	InsufficientData     = Definition{Code: "INSUFFICIENT_DATA", Message: "At least 7 approved check-ins are required"}
	UpstreamError        = Definition{Code: "UPSTREAM_ERROR", Message: "Report model call failed"}
	PersistenceError     = Definition{Code: "PERSISTENCE_ERROR", Message: "Failed to persist report"}
	StateConflict        = Definition{Code: "STATE_CONFLICT", Message: "Program state does not allow this action"}
	GenerationInProgress = Definition{Code: "GENERATION_IN_PROGRESS", Message: "Another generation is in progress"}
	ReportNotFound       = Definition{Code: "REPORT_NOT_FOUND", Message: "Report not found"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:         Unauthorized,
	Forbidden.Code:            Forbidden,
	InvalidUserID.Code:        InvalidUserID,
	ErrUserNotFound.Code:      ErrUserNotFound,
	TooManyRequests.Code:      TooManyRequests,
	InvalidRequest.Code:       InvalidRequest,
	ProgramNotActive.Code:     ProgramNotActive,
	ProgramStarted.Code:       ProgramStarted,
	DayLocked.Code:            DayLocked,
	DayOutOfWindow.Code:       DayOutOfWindow,
	CheckInAlreadyDone.Code:   CheckInAlreadyDone,
	CheckInNotFound.Code:      CheckInNotFound,
	NoMissedDay.Code:          NoMissedDay,
	ResetNotConfirmed.Code:    ResetNotConfirmed,
	InsufficientData.Code:     InsufficientData,
	UpstreamError.Code:        UpstreamError,
	PersistenceError.Code:     PersistenceError,
	StateConflict.Code:        StateConflict,
	GenerationInProgress.Code: GenerationInProgress,
	ReportNotFound.Code:       ReportNotFound,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// As 从错误链中取出第一个业务错误
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}

package model

import "time"

// Result 是一次生成的后处理结果：分析面板 + 最终提交文本。
type Result struct {
	Analysis         string    `json:"analysis"`
	AnalysisHTML     string    `json:"analysis_html"`
	Final            string    `json:"final"`
	Split            bool      `json:"split"`
	CharCount        int       `json:"char_count"`
	CharCountNoSpace int       `json:"char_count_no_space"`
	TargetLength     int       `json:"target_length"`
	Mode             Mode      `json:"mode"`
	Model            string    `json:"model"`
	Attempts         []Attempt `json:"attempts,omitempty"`
}

// Attempt 记录回退链中的一次模型调用。
type Attempt struct {
	Model string `json:"model"`
	Error string `json:"error,omitempty"`
}

// Record 是保存在历史中的一次生成。
type Record struct {
	ID          string    `json:"id"`
	Observation string    `json:"observation"`
	Options     Options   `json:"options"`
	Result      Result    `json:"result"`
	CreatedAt   time.Time `json:"created_at"`
}

type RecordSummary struct {
	ID        string    `json:"id"`
	Preview   string    `json:"preview"`
	Mode      Mode      `json:"mode"`
	Model     string    `json:"model"`
	CharCount int       `json:"char_count"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type OptionsResponse struct {
	Modes            []Mode            `json:"modes"`
	Models           []ModelPreference `json:"models"`
	Keywords         []KeywordInfo     `json:"keywords"`
	MinTargetLength  int               `json:"min_target_length"`
	MaxTargetLength  int               `json:"max_target_length"`
	TargetLengthStep int               `json:"target_length_step"`
	Defaults         Options           `json:"defaults"`
	ClientKeyAllowed bool              `json:"client_key_allowed"`
}

package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

type Mode string

const (
	ModeRich   Mode = "rich"   // 풍성하게: 내용 보강
	ModeStrict Mode = "strict" // 엄격하게: 팩트 중심
)

type ModelPreference string

const (
	PreferFlash ModelPreference = "flash"
	PreferPro   ModelPreference = "pro"
)

type Keyword string

const (
	KeywordAIAuto     Keyword = "ai_auto"
	KeywordAcademic   Keyword = "academic"
	KeywordCommunity  Keyword = "community"
	KeywordCareer     Keyword = "career"
	KeywordGrowth     Keyword = "growth"
	KeywordCreativity Keyword = "creativity"
	KeywordCharacter  Keyword = "character"
	KeywordDiligence  Keyword = "diligence"
)

const (
	MinTargetLength     = 100
	MaxTargetLength     = 600
	TargetLengthStep    = 10
	DefaultTargetLength = 500

	// ShortInputThreshold 低于该字数时页面提示观察内容偏短。
	ShortInputThreshold = 30
)

var ErrInvalidOptions = errors.New("invalid options")

// KeywordInfo 用于页面渲染和 /api/options。
type KeywordInfo struct {
	ID    Keyword `json:"id"`
	Label string  `json:"label"`
	Icon  string  `json:"icon"`
}

// Keywords 保持页面上的展示顺序。
var Keywords = []KeywordInfo{
	{KeywordAIAuto, "AI 자동 판단", "👑"},
	{KeywordAcademic, "학업 역량", "📘"},
	{KeywordCommunity, "공동체 역량", "🤝"},
	{KeywordCareer, "진로 역량", "🚀"},
	{KeywordGrowth, "발전 가능성", "🌱"},
	{KeywordCreativity, "창의적 문제해결력", "🎨"},
	{KeywordCharacter, "인성/나눔/배려", "😊"},
	{KeywordDiligence, "성실성/규칙준수", "⏰"},
}

func (k Keyword) Label() string {
	for _, info := range Keywords {
		if info.ID == k {
			return info.Label
		}
	}
	return string(k)
}

// Tag 返回页面上显示的完整标签（图标 + 展示名）。
func (k Keyword) Tag() string {
	for _, info := range Keywords {
		if info.ID == k {
			return info.Icon + " " + info.Label
		}
	}
	return string(k)
}

func knownKeyword(k Keyword) bool {
	for _, info := range Keywords {
		if info.ID == k {
			return true
		}
	}
	return false
}

func (m Mode) Label() string {
	if m == ModeStrict {
		return "엄격하게"
	}
	return "풍성하게"
}

// Temperature 返回该模式对应的采样温度。
func (m Mode) Temperature() float32 {
	if m == ModeStrict {
		return 0.2
	}
	return 0.75
}

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRich:
		return ModeRich, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, s)
}

func ParseModelPreference(s string) (ModelPreference, error) {
	switch ModelPreference(strings.ToLower(strings.TrimSpace(s))) {
	case "", PreferFlash:
		return PreferFlash, nil
	case PreferPro:
		return PreferPro, nil
	}
	return "", fmt.Errorf("%w: unknown model preference %q", ErrInvalidOptions, s)
}

func ParseKeyword(s string) (Keyword, error) {
	k := Keyword(strings.ToLower(strings.TrimSpace(s)))
	for _, info := range Keywords {
		if info.ID == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown keyword %q", ErrInvalidOptions, s)
}

// Options 是一次生成的全部界面选项。
type Options struct {
	Mode         Mode            `json:"mode"`
	TargetLength int             `json:"target_length"`
	Keywords     []Keyword       `json:"keywords"`
	Model        ModelPreference `json:"model"`
}

func DefaultOptions() Options {
	return Options{
		Mode:         ModeRich,
		TargetLength: DefaultTargetLength,
		Model:        PreferFlash,
	}
}

// Normalize 填充默认值，把可识别的取值转换为规范形式（大小写、空白），
// 并去掉重复的关键词（保留首次出现的顺序）。无法识别的取值原样保留，交给 Validate 报错。
func (o Options) Normalize() Options {
	if m, err := ParseMode(string(o.Mode)); err == nil {
		o.Mode = m
	}
	if p, err := ParseModelPreference(string(o.Model)); err == nil {
		o.Model = p
	}
	if o.TargetLength == 0 {
		o.TargetLength = DefaultTargetLength
	}
	if len(o.Keywords) > 0 {
		seen := make(map[Keyword]struct{}, len(o.Keywords))
		out := make([]Keyword, 0, len(o.Keywords))
		for _, k := range o.Keywords {
			if canonical, err := ParseKeyword(string(k)); err == nil {
				k = canonical
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
		o.Keywords = out
	}
	return o
}

// Validate 只接受规范取值；外部输入应先经过 Normalize。
func (o Options) Validate() error {
	if o.Mode != ModeRich && o.Mode != ModeStrict {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, o.Mode)
	}
	if o.Model != PreferFlash && o.Model != PreferPro {
		return fmt.Errorf("%w: unknown model preference %q", ErrInvalidOptions, o.Model)
	}
	if o.TargetLength < MinTargetLength || o.TargetLength > MaxTargetLength {
		return fmt.Errorf("%w: target length %d out of range [%d, %d]",
			ErrInvalidOptions, o.TargetLength, MinTargetLength, MaxTargetLength)
	}
	if o.TargetLength%TargetLengthStep != 0 {
		return fmt.Errorf("%w: target length %d is not a multiple of %d",
			ErrInvalidOptions, o.TargetLength, TargetLengthStep)
	}
	for _, k := range o.Keywords {
		if !knownKeyword(k) {
			return fmt.Errorf("%w: unknown keyword %q", ErrInvalidOptions, k)
		}
	}
	return nil
}

// KeywordLabels 返回已选关键词的展示名。
func (o Options) KeywordLabels() []string {
	labels := make([]string, 0, len(o.Keywords))
	for _, k := range o.Keywords {
		labels = append(labels, k.Label())
	}
	return labels
}

// ShortInput 观察内容非空但少于 ShortInputThreshold 个字符时返回 true。
func ShortInput(observation string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(observation))
	return n > 0 && n < ShortInputThreshold
}

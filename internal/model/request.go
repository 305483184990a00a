package model

type GenerateRequest struct {
	Observation  string   `json:"observation" binding:"required"`
	Mode         string   `json:"mode"`
	TargetLength int      `json:"target_length"`
	Keywords     []string `json:"keywords"`
	Model        string   `json:"model"`
	APIKey       string   `json:"api_key"` // 仅在服务端未配置 Key 且允许客户端 Key 时使用
}

// ToOptions 把请求里的字符串选项解析为 Options。
func (r GenerateRequest) ToOptions() (Options, error) {
	mode, err := ParseMode(r.Mode)
	if err != nil {
		return Options{}, err
	}
	pref, err := ParseModelPreference(r.Model)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Mode:         mode,
		TargetLength: r.TargetLength,
		Model:        pref,
	}
	for _, raw := range r.Keywords {
		k, err := ParseKeyword(raw)
		if err != nil {
			return Options{}, err
		}
		opts.Keywords = append(opts.Keywords, k)
	}
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

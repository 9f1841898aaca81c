package vo

// LoginResult 登录结果
type LoginResult struct {
	Token        string `json:"token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *User  `json:"user"`
}

// UserInfo 当前登录用户
type UserInfo struct {
	*User
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	SystemLevel bool     `json:"system_level"`
}

package params

// LoginRequest 登录
type LoginRequest struct {
	Username string `json:"username" vd:"len($)>0"`
	Password string `json:"password" vd:"len($)>0"`
}

// RegisterRequest 注册
type RegisterRequest struct {
	Username string `json:"username" vd:"len($)>=3&&len($)<=50"`
	Password string `json:"password" vd:"len($)>=6&&len($)<=64"`
	Nickname string `json:"nickname" vd:"len($)<=50"`
	Email    string `json:"email" vd:"len($)<=100"`
	Phone    string `json:"phone" vd:"len($)<=20"`
}

// RefreshTokenRequest 刷新令牌
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" vd:"len($)>0"`
}

// ChangePasswordRequest 修改本人密码
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" vd:"len($)>0"`
	NewPassword string `json:"new_password" vd:"len($)>=6&&len($)<=64"`
}

// ResetPasswordRequest 管理员重置密码
type ResetPasswordRequest struct {
	UserID      uint64 `json:"user_id" vd:"$>0"`
	NewPassword string `json:"new_password" vd:"len($)>=6&&len($)<=64"`
}

package dto

// ========== Auth 相关 DTO ==========

// RefreshTokenRequest 刷新访问令牌
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenData 新的令牌对
type TokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

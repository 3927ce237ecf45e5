package token

import (
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"SevenDay/config"
)

const (
	IdentityKey   = "uid"
	CapabilityKey = "caps"
)

// 能力标识，由签发方写入 token，业务代码只做能力判断
const (
	CapReportAdmin   = "report:admin"
	CapCheckInReview = "checkin:review"
)

var (
	ErrTokenGeneratorNotInitialized = stderrors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = stderrors.New("unexpected signing method")
	ErrInvalidToken                 = stderrors.New("invalid token")
	ErrInvalidTokenClaims           = stderrors.New("invalid token claims")
	ErrInvalidTokenType             = stderrors.New("invalid token type")
	ErrUserIDNotFound               = stderrors.New("user id not found in token")
)

var (
	// 这个实例会被 middleware 和 token 包共同使用
	sharedGenerator *jwt.HertzJWTMiddleware
)

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// GenerateTokenPair 生成 access token 和 refresh token
func GenerateTokenPair(userID string, caps []string) (accessToken, refreshToken string, expiresIn int, err error) {
	if sharedGenerator == nil {
		return "", "", 0, ErrTokenGeneratorNotInitialized
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute)

	accessClaims := jwtv5.MapClaims{
		IdentityKey:   userID,
		CapabilityKey: caps,
		"iat":         now.Unix(),
		"exp":         expiresAt.Unix(),
	}

	accessToken, err = jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, accessClaims).SignedString([]byte(config.Cfg.JWTSecret))
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	expiresIn = int(time.Until(expiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	refreshClaims := jwtv5.MapClaims{
		IdentityKey:   userID,
		CapabilityKey: caps,
		"iat":         now.Unix(),
		"type":        "refresh",
		"exp":         now.Add(time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour).Unix(),
	}

	refreshToken, err = jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, refreshClaims).SignedString([]byte(config.Cfg.JWTSecret))
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, expiresIn, nil
}

// ValidateRefreshToken 验证 refresh token 并返回用户 ID 与能力列表
func ValidateRefreshToken(tokenString string) (userID string, caps []string, err error) {
	token, err := jwtv5.ParseWithClaims(tokenString, jwtv5.MapClaims{}, func(token *jwtv5.Token) (interface{}, error) {
		if token.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v, expected HS256", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return []byte(config.Cfg.JWTSecret), nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", nil, ErrInvalidTokenClaims
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return "", nil, ErrInvalidTokenType
	}

	uid, ok := ClaimUserID(claims[IdentityKey])
	if !ok {
		return "", nil, ErrUserIDNotFound
	}

	return uid, ClaimCapabilities(claims[CapabilityKey]), nil
}

// ClaimUserID 兼容字符串与数字两种 uid 写法
func ClaimUserID(v interface{}) (string, bool) {
	switch uid := v.(type) {
	case string:
		return uid, uid != ""
	case float64:
		return fmt.Sprintf("%.0f", uid), true
	default:
		return "", false
	}
}

// ClaimCapabilities 解析 caps claim，JSON 解码后是 []interface{}
func ClaimCapabilities(v interface{}) []string {
	switch caps := v.(type) {
	case []string:
		return caps
	case []interface{}:
		out := make([]string, 0, len(caps))
		for _, c := range caps {
			if s, ok := c.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// HasCapability caps 中是否包含 capability
func HasCapability(caps []string, capability string) bool {
	return capability != "" && slices.Contains(caps, capability)
}

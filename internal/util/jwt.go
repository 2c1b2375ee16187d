package util

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/kitokazu/gymunyfu/config"
)

// ValidateToken 校验身份提供方签发的令牌，返回其中的用户ID（sub）
func ValidateToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return "", errors.New("令牌缺少用户标识")
		}
		return sub, nil
	}

	return "", errors.New("无效的令牌")
}

// GenerateToken 签发一个携带用户ID的令牌（本地调试与测试使用）
func GenerateToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour * 24).Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

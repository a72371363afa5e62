package jwt

import (
	"time"

	"foodgram/domain"
	"foodgram/internal/utils"

	"github.com/golang-jwt/jwt/v4"
)

type (
	JWTService interface {
		GenerateTokenUser(userID string) string
		ValidateTokenUser(token string) (*jwt.Token, error)
		GetUserIDByToken(token string) (string, error)
		GenerateTokenForgetPassword(email string) string
		ValidateTokenForgetPassword(token string) (string, error)
	}

	jwtUserClaim struct {
		UserID string `json:"user_id"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
	}
)

func NewJWTService() JWTService {
	return &jwtService{
		secretKey: utils.GetConfig("JWT_SECRET"),
		issuer:    "FOODGRAM",
	}
}

func (j *jwtService) GenerateTokenUser(userID string) string {
	userClaim := jwtUserClaim{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 7)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, userClaim)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return ""
	}
	return tokenString
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, domain.ErrTokenInvalid
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenUser(token string) (*jwt.Token, error) {
	return jwt.Parse(token, j.parseToken)
}

func (j *jwtService) GetUserIDByToken(token string) (string, error) {
	tToken, err := j.ValidateTokenUser(token)
	if err != nil || !tToken.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := tToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	return userID, nil
}

func (j *jwtService) GenerateTokenForgetPassword(email string) string {
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Minute * 15).Unix(),
		"iss":   j.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return ""
	}
	return tokenString
}

func (j *jwtService) ValidateTokenForgetPassword(token string) (string, error) {
	tToken, err := jwt.Parse(token, j.parseToken)
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if !tToken.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := tToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrTokenInvalid
	}

	email, ok := claims["email"].(string)
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	return email, nil
}

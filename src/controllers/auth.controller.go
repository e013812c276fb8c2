package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/arslanhfz7-dot/taxi-reserve/src/db"
	"github.com/arslanhfz7-dot/taxi-reserve/src/models"
	"github.com/arslanhfz7-dot/taxi-reserve/src/types"
	"github.com/arslanhfz7-dot/taxi-reserve/src/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func AuthRegister(ctx *gin.Context) (user *models.User, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	db := db.GetDb()
	var existing models.User
	err = db.
		Model(&models.User{}).
		Select("id").
		Where(&models.User{Email: body.Email}).
		First(&existing).
		Error
	if err == nil {
		return nil, http.StatusBadRequest, errors.New("email already in use")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking for existing user: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("something went wrong")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), 10)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("something went wrong")
	}
	var name *string
	if body.Name != "" {
		name = &body.Name
	}
	muser := models.User{
		Name:     name,
		Email:    body.Email,
		Password: string(hash),
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&muser).Error
	}); err != nil {
		log.Printf("Error creating user: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("something went wrong")
	}
	return &muser, http.StatusCreated, nil
}

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	db := db.GetDb()
	var muser models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{Email: body.Email}).
		First(&muser).
		Error; err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(muser.Password), []byte(body.Password)); err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}

	jwt, err := utils.GenerateJWT(muser.Email, muser.ID)
	if err != nil {
		log.Printf("Error generating JWT for user [%s]: %s\n", muser.ID, err.Error())
		return nil, http.StatusInternalServerError, errors.New("something went wrong")
	}
	return &jwt, http.StatusOK, nil
}

func ChangePassword(ctx *gin.Context) (status int, err error) {
	var body types.ChangePasswordRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return http.StatusBadRequest, err
	}
	email := ctx.GetString("email")
	if email == "" {
		return http.StatusUnauthorized, errors.New("unauthorized")
	}

	db := db.GetDb()
	var muser models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{Email: email}).
		First(&muser).
		Error; err != nil {
		return http.StatusUnauthorized, errors.New("unauthorized")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(muser.Password), []byte(body.CurrentPassword)); err != nil {
		return http.StatusBadRequest, errors.New("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), 12)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return http.StatusInternalServerError, errors.New("something went wrong")
	}
	if err := db.
		Model(&models.User{}).
		Where(&models.User{ID: muser.ID}).
		Update("password", string(hash)).
		Error; err != nil {
		log.Printf("Error updating password for user [%s]: %s\n", muser.ID, err.Error())
		return http.StatusInternalServerError, errors.New("something went wrong")
	}
	return http.StatusOK, nil
}

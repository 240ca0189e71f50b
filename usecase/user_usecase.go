package usecase

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/infrastructure/utils"
)

const sessionTTL = 24 * time.Hour

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepo  repository.IUser
	secretKey string
}

func NewUserUsecase(userRepo repository.IUser, secretKey string) IUserUsecase {
	return &userUsecase{userRepo: userRepo, secretKey: secretKey}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	log := logger.GetLogger()
	user, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err != nil {
		log.WithField("user_name", req.UserName).Errorf("loading user: %v", err)
		return dto.Res{ResponseCode: "401", ResponseMessage: "invalid username or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return dto.Res{ResponseCode: "401", ResponseMessage: "invalid username or password"}
	}

	now := utils.GetCurrentTime()
	token, err := utils.GenerateToken(map[string]interface{}{
		"user_name": user.UserName,
		// Issuer is the owner id every credential and scheduled post is
		// scoped by.
		"iss": strconv.FormatInt(user.ID, 10),
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	}, u.secretKey)
	if err != nil {
		return dto.Res{ResponseCode: "500", ResponseMessage: "could not issue session token"}
	}
	return dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "OK",
		Data:            map[string]string{"token": token},
	}
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	log := logger.GetLogger()
	existing, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err == nil && existing.ID != 0 {
		return dto.Res{ResponseCode: "409", ResponseMessage: "username already taken"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("hashing password: %v", err)
		return dto.Res{ResponseCode: "500", ResponseMessage: "could not register user"}
	}
	user := model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: string(hash),
	}
	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		log.WithField("user_name", req.UserName).Errorf("creating user: %v", err)
		return dto.Res{ResponseCode: "500", ResponseMessage: "could not register user"}
	}
	return dto.Res{ResponseCode: "201", ResponseMessage: "registered"}
}

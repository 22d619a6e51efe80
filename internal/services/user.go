package services

import (
	"strings"
	"sync"

	"github.com/adi-253/roomline/internal/models"
)

// UserService hands out stable user ids per nickname for dev sign-in.
type UserService struct {
	byNickname map[string]models.UserInfo
	lastID     int64
	mu         sync.Mutex
}

func NewUserService(known ...models.Participant) *UserService {
	s := &UserService{byNickname: make(map[string]models.UserInfo)}
	for _, p := range known {
		s.byNickname[p.Nickname] = models.UserInfo{UserID: p.UserID, Nickname: p.Nickname}
		if p.UserID > s.lastID {
			s.lastID = p.UserID
		}
	}
	return s
}

// SignIn returns the user registered under nickname, registering it first
// if needed.
func (s *UserService) SignIn(nickname string) (models.UserInfo, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return models.UserInfo{}, ErrNicknameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byNickname[nickname]; ok {
		return u, nil
	}
	s.lastID++
	u := models.UserInfo{UserID: s.lastID, Nickname: nickname}
	s.byNickname[nickname] = u
	return u, nil
}
